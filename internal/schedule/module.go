package schedule

import (
	"context"

	"github.com/j0lvera/mica/internal/config"
	"github.com/j0lvera/mica/internal/metrics"
	"github.com/j0lvera/mica/internal/store"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config  *config.Config
	Threads store.Threads
	Sender  Sender
	Metrics *metrics.Recorder
	Logger  zerolog.Logger
}

func New(lc fx.Lifecycle, p Params) (*Scheduler, error) {
	table, err := NewTable(p.Config.Schedule, &p.Logger)
	if err != nil {
		return nil, err
	}

	scheduler := NewScheduler(table, p.Threads, p.Sender, Options{
		Location:    p.Config.Location,
		Signature:   p.Config.Signature,
		Rate:        p.Config.BroadcastRate,
		Concurrency: p.Config.BroadcastConcurrency,
		Metrics:     p.Metrics,
		Logger:      &p.Logger,
	})

	if !p.Config.ScheduleEnabled {
		p.Logger.Info().Msg("scheduler disabled by config")
		return scheduler, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				return scheduler.Start(ctx)
			},
			OnStop: func(context.Context) error {
				p.Logger.Info().Msg("stopping scheduler...")
				cancel()
				scheduler.Stop()
				return nil
			},
		},
	)

	return scheduler, nil
}

func Module() fx.Option {
	return fx.Module(
		"schedule",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(*Scheduler) {},
		),
	)
}
