package registry

import (
	"github.com/j0lvera/mica/internal/config"
	"go.uber.org/fx"
)

func NewFromConfig(cfg *config.Config) (*Registry, error) {
	return New(cfg.ReplyRegistrySize)
}

func Module() fx.Option {
	return fx.Module(
		"registry",
		fx.Provide(
			NewFromConfig,
		),
	)
}
