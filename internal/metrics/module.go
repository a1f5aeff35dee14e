package metrics

import (
	"context"

	"github.com/j0lvera/mica/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	Recorder *Recorder
}

func New(lc fx.Lifecycle, p Params) Result {
	recorder := NewRecorder(prometheus.DefaultRegisterer)

	if p.Config.MetricsAddr == "" {
		return Result{Recorder: recorder}
	}

	server := NewServer(p.Config.MetricsAddr, prometheus.DefaultGatherer)

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				p.Logger.Info().Str("addr", p.Config.MetricsAddr).Msg("starting metrics server...")
				go func() {
					if err := server.ListenAndServe(); err != nil {
						p.Logger.Error().Err(err).Msg("metrics server stopped")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				p.Logger.Info().Msg("stopping metrics server...")
				return server.Shutdown(ctx)
			},
		},
	)

	return Result{Recorder: recorder}
}

func Module() fx.Option {
	return fx.Module(
		"metrics",
		fx.Provide(
			New,
		),
	)
}
