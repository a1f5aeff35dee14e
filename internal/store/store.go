package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a user has never been seen.
var ErrNotFound = errors.New("not found")

// User is the profile recorded from incoming messages.
type User struct {
	ID          int64
	DisplayName string
}

// Thread is a chat the bot has received a message in.
type Thread struct {
	ChatID     int64
	Title      string
	LastSeenAt time.Time
}

// Users records senders and resolves their display names.
type Users interface {
	Upsert(ctx context.Context, user User) error
	DisplayName(ctx context.Context, userID int64) (string, error)
}

// Threads records known chats.
type Threads interface {
	Track(ctx context.Context, thread Thread) error
	List(ctx context.Context) ([]Thread, error)
}

// DisplayName builds a name from Telegram profile fields, preferring the full name.
func DisplayName(firstName, lastName, username string) string {
	name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(username)
}
