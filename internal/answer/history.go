package answer

import "sync"

// Role is the speaker of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a user's conversation.
type Turn struct {
	Role    Role
	Content string
}

type conversation struct {
	turns []Turn
	mu    sync.Mutex
}

// History keeps per-user conversations for the LLM backend.
type History struct {
	conversations map[int64]*conversation
	mu            sync.RWMutex
}

func NewHistory() *History {
	return &History{
		conversations: make(map[int64]*conversation),
	}
}

// Add appends turns to the user's conversation and keeps at most limit of them.
func (h *History) Add(uid int64, limit int, turns ...Turn) {
	h.mu.Lock()
	conv, exists := h.conversations[uid]
	if !exists {
		conv = &conversation{}
		h.conversations[uid] = conv
	}
	h.mu.Unlock()

	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.turns = append(conv.turns, turns...)
	if limit > 0 && len(conv.turns) > limit {
		conv.turns = append([]Turn(nil), conv.turns[len(conv.turns)-limit:]...)
	}
}

// Turns returns a copy of the user's conversation.
func (h *History) Turns(uid int64) []Turn {
	h.mu.RLock()
	conv, exists := h.conversations[uid]
	h.mu.RUnlock()
	if !exists {
		return nil
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	return append([]Turn(nil), conv.turns...)
}

// Clear drops the user's conversation.
func (h *History) Clear(uid int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conversations, uid)
}
