package main

import (
	"github.com/ipfans/fxlogger"
	"github.com/j0lvera/mica/internal/answer"
	"github.com/j0lvera/mica/internal/bot"
	"github.com/j0lvera/mica/internal/config"
	"github.com/j0lvera/mica/internal/log"
	"github.com/j0lvera/mica/internal/metrics"
	"github.com/j0lvera/mica/internal/registry"
	"github.com/j0lvera/mica/internal/schedule"
	"github.com/j0lvera/mica/internal/store"
	"go.uber.org/fx"
)

func main() {

	fx.New(
		fx.WithLogger(fxlogger.WithZerolog(log.NewLogger())),
		log.Module(),
		config.Module(),
		metrics.Module(),
		store.Module(),
		registry.Module(),
		answer.Module(),
		bot.Module(),
		schedule.Module(),
	).Run()
}
