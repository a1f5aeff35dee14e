package ask

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/j0lvera/mica/internal/config"
	"github.com/j0lvera/mica/internal/metrics"
	"github.com/j0lvera/mica/internal/registry"
	"github.com/rs/zerolog"
)

// Options configures a Handler. Zero values fall back to the config defaults.
type Options struct {
	Triggers  []string
	Location  *time.Location
	Messages  config.Messages
	Reactions config.Reactions
	Metrics   *metrics.Recorder
	Logger    *zerolog.Logger
	Clock     func() time.Time
}

// Handler answers trigger messages and follow-up replies.
type Handler struct {
	answerer  Answerer
	messenger Messenger
	replies   *registry.Registry
	users     Directory

	triggers  []string
	location  *time.Location
	messages  config.Messages
	reactions config.Reactions
	metrics   *metrics.Recorder
	logger    *zerolog.Logger
	now       func() time.Time
}

func New(answerer Answerer, messenger Messenger, replies *registry.Registry, users Directory, opts Options) *Handler {
	h := &Handler{
		answerer:  answerer,
		messenger: messenger,
		replies:   replies,
		users:     users,
		location:  opts.Location,
		messages:  opts.Messages,
		reactions: opts.Reactions,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Clock,
	}

	for _, t := range opts.Triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			h.triggers = append(h.triggers, t)
		}
	}

	if h.location == nil {
		h.location = time.UTC
	}
	if h.messages == (config.Messages{}) {
		h.messages = config.DefaultMessages
	}
	if h.reactions == (config.Reactions{}) {
		h.reactions = config.DefaultReactions
	}
	if h.logger == nil {
		nop := zerolog.Nop()
		h.logger = &nop
	}
	if h.now == nil {
		h.now = time.Now
	}

	return h
}

// Match returns the question following the first trigger word that prefixes
// text, compared case-insensitively.
func (h *Handler) Match(text string) (string, bool) {
	for _, trigger := range h.triggers {
		if len(text) < len(trigger) {
			continue
		}
		if strings.EqualFold(text[:len(trigger)], trigger) {
			return strings.TrimSpace(text[len(trigger):]), true
		}
	}
	return "", false
}

// Dispatch routes a reply to a tracked answer to Route and a trigger message
// to Ask. Anything else is ignored.
func (h *Handler) Dispatch(ctx context.Context, msg Message) {
	if msg.ReplyToID != 0 {
		key := registry.Key{ChatID: msg.ChatID, MessageID: msg.ReplyToID}
		if pending, ok := h.replies.Get(key); ok && pending.CommandName == CommandName {
			h.Route(ctx, msg, pending)
			return
		}
	}

	if question, ok := h.Match(msg.Text); ok {
		h.Ask(ctx, msg, question)
	}
}

// Ask answers question for the sender of msg.
func (h *Handler) Ask(ctx context.Context, msg Message, question string) {
	logger := h.messageLogger(msg)

	if question == "" {
		logger.Debug().Msg("empty question, sending usage")
		h.reply(ctx, &logger, msg, h.messages.Usage)
		return
	}

	h.answer(ctx, &logger, msg, question, metrics.KindQuestion, h.messages.AskAction)
}

// Route handles a reply to a message registered as pending.
func (h *Handler) Route(ctx context.Context, msg Message, pending PendingReply) {
	logger := h.messageLogger(msg)

	if pending.AuthorID != msg.SenderID {
		logger.Info().Int64("author_id", pending.AuthorID).Msg("reply from someone other than the asker")
		h.reply(ctx, &logger, msg, h.messages.Unauthorized)
		return
	}

	if h.replies.Has(registry.Key{ChatID: msg.ChatID, MessageID: msg.MessageID}) {
		return
	}

	text := strings.TrimSpace(msg.Text)

	if strings.EqualFold(text, ResetKeyword) {
		h.reset(ctx, &logger, msg)
		return
	}

	if text == "" {
		h.reply(ctx, &logger, msg, h.messages.Usage)
		return
	}

	h.answer(ctx, &logger, msg, text, metrics.KindFollowUp, h.messages.FollowUpAction)
}

func (h *Handler) answer(ctx context.Context, logger *zerolog.Logger, msg Message, question, kind, action string) {
	h.react(ctx, logger, msg, h.reactions.Pending)

	logger.Info().Str("kind", kind).Msg("answer request sending")
	start := h.now()
	answer, err := h.answerer.Ask(ctx, msg.SenderID, question)
	end := h.now()
	elapsed := end.Sub(start)

	if err != nil {
		h.metrics.ObserveAsk(kind, metrics.OutcomeFailure, elapsed)
		h.fail(ctx, logger, msg, action, err)
		return
	}
	logger.Info().Str("kind", kind).Dur("elapsed", elapsed).Msg("answer received")

	name := h.displayName(ctx, logger, msg.SenderID)
	text := FormatAnswer(question, answer, name, end.In(h.location), elapsed)

	replyID, err := h.messenger.Reply(ctx, msg.ChatID, msg.MessageID, text)
	if err != nil {
		logger.Error().Err(err).Msg("unable to send answer")
		h.metrics.ObserveAsk(kind, metrics.OutcomeFailure, elapsed)
		h.react(ctx, logger, msg, h.reactions.Failure)
		return
	}

	h.replies.Set(registry.PendingReply{
		ChatID:      msg.ChatID,
		MessageID:   replyID,
		CommandName: CommandName,
		AuthorID:    msg.SenderID,
	})

	h.metrics.ObserveAsk(kind, metrics.OutcomeSuccess, elapsed)
	h.react(ctx, logger, msg, h.reactions.Success)
}

func (h *Handler) reset(ctx context.Context, logger *zerolog.Logger, msg Message) {
	h.react(ctx, logger, msg, h.reactions.Pending)

	start := h.now()
	err := h.answerer.Reset(ctx, msg.SenderID)
	elapsed := h.now().Sub(start)

	if err != nil {
		h.metrics.ObserveAsk(metrics.KindReset, metrics.OutcomeFailure, elapsed)
		h.fail(ctx, logger, msg, h.messages.ResetAction, err)
		return
	}

	logger.Info().Msg("conversation reset by user")
	h.metrics.ObserveAsk(metrics.KindReset, metrics.OutcomeSuccess, elapsed)
	h.reply(ctx, logger, msg, h.messages.ResetDone)
	h.react(ctx, logger, msg, h.reactions.Success)
}

// fail logs err with its status code and reports it to the user.
func (h *Handler) fail(ctx context.Context, logger *zerolog.Logger, msg Message, action string, err error) {
	code, hasCode := statusCode(err)

	event := logger.Error().Err(err)
	if hasCode {
		event = event.Int("status_code", code)
	} else {
		event = event.Str("status_code", "N/A")
	}
	event.Msg("answer service call failed")

	h.reply(ctx, logger, msg, FormatError(action, err))
	h.react(ctx, logger, msg, h.reactions.Failure)
}

func (h *Handler) displayName(ctx context.Context, logger *zerolog.Logger, userID int64) string {
	if h.users == nil {
		return h.messages.FallbackName
	}
	name, err := h.users.DisplayName(ctx, userID)
	if err != nil || name == "" {
		logger.Debug().Err(err).Msg("no display name, using fallback")
		return h.messages.FallbackName
	}
	return name
}

func (h *Handler) reply(ctx context.Context, logger *zerolog.Logger, msg Message, text string) {
	if _, err := h.messenger.Reply(ctx, msg.ChatID, msg.MessageID, text); err != nil {
		logger.Error().Err(err).Msg("unable to send reply")
	}
}

func (h *Handler) react(ctx context.Context, logger *zerolog.Logger, msg Message, emoji string) {
	if emoji == "" {
		return
	}
	if err := h.messenger.React(ctx, msg.ChatID, msg.MessageID, emoji); err != nil {
		logger.Warn().Err(err).Str("emoji", emoji).Msg("unable to set reaction")
	}
}

func (h *Handler) messageLogger(msg Message) zerolog.Logger {
	return h.logger.With().
		Int64("chat_id", msg.ChatID).
		Int64("user_id", msg.SenderID).
		Int("message_id", msg.MessageID).
		Logger()
}

// statusCode extracts the HTTP status carried by err, if any.
func statusCode(err error) (int, bool) {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode(), true
	}
	return 0, false
}
