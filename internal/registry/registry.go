package registry

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSize = 10000

// Key identifies a message. Telegram message ids are only unique within a chat.
type Key struct {
	ChatID    int64
	MessageID int
}

// PendingReply links a sent answer to the conversation that produced it.
type PendingReply struct {
	ChatID      int64
	MessageID   int
	CommandName string
	AuthorID    int64
}

func (p PendingReply) Key() Key {
	return Key{ChatID: p.ChatID, MessageID: p.MessageID}
}

// Registry stores pending replies keyed by message. It is safe for concurrent
// use; once full, the least recently used entry is evicted.
type Registry struct {
	cache *lru.Cache[Key, PendingReply]
}

// New creates a registry holding at most size entries.
func New(size int) (*Registry, error) {
	if size <= 0 {
		size = defaultSize
	}
	cache, err := lru.New[Key, PendingReply](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create reply registry: %w", err)
	}
	return &Registry{cache: cache}, nil
}

// Set registers p under its own message key, replacing any previous entry.
func (r *Registry) Set(p PendingReply) {
	r.cache.Add(p.Key(), p)
}

// Has reports whether key is registered without touching its recency.
func (r *Registry) Has(key Key) bool {
	return r.cache.Contains(key)
}

// Get returns the pending reply registered under key.
func (r *Registry) Get(key Key) (PendingReply, bool) {
	return r.cache.Get(key)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
