package ask

import (
	"context"

	"github.com/j0lvera/mica/internal/registry"
)

// CommandName tags every pending reply created by this handler.
const CommandName = "ai"

// ResetKeyword clears the remote conversation when sent as a reply.
const ResetKeyword = "reset"

// Message is an incoming chat message, independent of the chat platform.
type Message struct {
	ChatID    int64
	MessageID int
	SenderID  int64
	Text      string
	// ReplyToID is the id of the message being replied to, zero otherwise.
	ReplyToID int
}

// PendingReply is the registry entry handled by Route.
type PendingReply = registry.PendingReply

// Answerer is the remote answer service.
type Answerer interface {
	Ask(ctx context.Context, uid int64, question string) (string, error)
	Reset(ctx context.Context, uid int64) error
}

// Messenger sends replies and reactions on the chat platform.
type Messenger interface {
	// Reply sends text as a reply to replyTo and returns the new message id.
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	React(ctx context.Context, chatID int64, messageID int, emoji string) error
}

// Directory resolves user display names.
type Directory interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}
