package bot

import (
	"context"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/j0lvera/mica/internal/ask"
	"github.com/j0lvera/mica/internal/config"
	"github.com/j0lvera/mica/internal/metrics"
	"github.com/j0lvera/mica/internal/registry"
	"github.com/j0lvera/mica/internal/schedule"
	"github.com/j0lvera/mica/internal/store"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config   *config.Config
	Answerer ask.Answerer
	Replies  *registry.Registry
	Users    store.Users
	Threads  store.Threads
	Metrics  *metrics.Recorder
}

type Result struct {
	fx.Out

	Bot     *tbot.Bot
	Handler *ask.Handler
	Sender  schedule.Sender
}

func New(lc fx.Lifecycle, p Params, log zerolog.Logger) (Result, error) {
	var handler *ask.Handler

	opts := []tbot.Option{
		tbot.WithDefaultHandler(
			func(ctx context.Context, tg *tbot.Bot, update *models.Update) {
				handleUpdate(ctx, update, handler, p.Users, p.Threads, &log)
			},
		),
	}

	tg, err := tbot.New(p.Config.Token, opts...)
	if err != nil {
		return Result{}, err
	}

	messenger := NewMessenger(tg)
	handler = ask.New(p.Answerer, messenger, p.Replies, p.Users, ask.Options{
		Triggers:  p.Config.Triggers,
		Location:  p.Config.Location,
		Messages:  p.Config.Messages,
		Reactions: p.Config.Reactions,
		Metrics:   p.Metrics,
		Logger:    &log,
	})

	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				log.Info().Msg("starting telegram bot...")
				go tg.Start(ctx)
				return nil
			},
			OnStop: func(context.Context) error {
				log.Info().Msg("stopping telegram bot...")
				cancel()
				return nil
			},
		},
	)

	return Result{
		Bot:     tg,
		Handler: handler,
		Sender:  messenger,
	}, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}

// dispatcher is the part of *ask.Handler the update handler uses.
type dispatcher interface {
	Dispatch(ctx context.Context, msg ask.Message)
}

func handleUpdate(
	ctx context.Context,
	update *models.Update,
	handler dispatcher,
	users store.Users,
	threads store.Threads,
	log *zerolog.Logger,
) {
	msg, ok := toMessage(update)
	if !ok {
		return
	}

	from := update.Message.From
	chat := update.Message.Chat

	// Record the sender and the chat so names resolve and broadcasts reach it.
	if err := users.Upsert(ctx, store.User{
		ID:          from.ID,
		DisplayName: store.DisplayName(from.FirstName, from.LastName, from.Username),
	}); err != nil {
		log.Warn().Err(err).Int64("user_id", from.ID).Msg("unable to record user")
	}

	if err := threads.Track(ctx, store.Thread{
		ChatID: chat.ID,
		Title:  chatTitle(chat),
	}); err != nil {
		log.Warn().Err(err).Int64("chat_id", chat.ID).Msg("unable to record thread")
	}

	handler.Dispatch(ctx, msg)
}

// toMessage converts a text message update. Updates without a message,
// a human sender or text are skipped.
func toMessage(update *models.Update) (ask.Message, bool) {
	if update == nil || update.Message == nil {
		return ask.Message{}, false
	}

	m := update.Message
	if m.From == nil || m.From.IsBot || m.Text == "" {
		return ask.Message{}, false
	}

	msg := ask.Message{
		ChatID:    m.Chat.ID,
		MessageID: m.ID,
		SenderID:  m.From.ID,
		Text:      m.Text,
	}
	if m.ReplyToMessage != nil {
		msg.ReplyToID = m.ReplyToMessage.ID
	}

	return msg, true
}

func chatTitle(chat models.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	if name := store.DisplayName(chat.FirstName, chat.LastName, chat.Username); name != "" {
		return name
	}
	return string(chat.Type)
}
