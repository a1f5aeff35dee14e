package bot

import (
	"context"
	"fmt"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// telegram is the part of *tbot.Bot the messenger uses.
type telegram interface {
	SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error)
	SetMessageReaction(ctx context.Context, params *tbot.SetMessageReactionParams) (bool, error)
}

// Messenger sends replies, reactions and broadcasts through Telegram.
type Messenger struct {
	tg telegram
}

func NewMessenger(tg telegram) *Messenger {
	return &Messenger{tg: tg}
}

// Reply sends text as a reply to replyTo and returns the new message id.
func (m *Messenger) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	msg, err := m.tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		ReplyParameters: &models.ReplyParameters{
			MessageID:                replyTo,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("send reply: %w", err)
	}
	if msg == nil {
		return 0, fmt.Errorf("send reply: no message returned")
	}
	return msg.ID, nil
}

// React replaces the bot's reaction on a message with emoji.
func (m *Messenger) React(ctx context.Context, chatID int64, messageID int, emoji string) error {
	_, err := m.tg.SetMessageReaction(ctx, &tbot.SetMessageReactionParams{
		ChatID:    chatID,
		MessageID: messageID,
		Reaction: []models.ReactionType{
			{
				Type: models.ReactionTypeTypeEmoji,
				ReactionTypeEmoji: &models.ReactionTypeEmoji{
					Type:  models.ReactionTypeTypeEmoji,
					Emoji: emoji,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("set reaction: %w", err)
	}
	return nil
}

// Send posts text to a chat without replying to anything.
func (m *Messenger) Send(ctx context.Context, chatID int64, text string) error {
	if _, err := m.tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
