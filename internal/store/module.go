package store

import (
	"github.com/j0lvera/mica/internal/db"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	DBClient *db.Client
}

type Result struct {
	fx.Out

	Users   Users
	Threads Threads
}

// New picks the Postgres stores when a database is configured and falls back to memory.
func New(p Params) Result {
	if p.DBClient.Enabled() {
		return Result{
			Users:   NewPostgresUsers(p.DBClient),
			Threads: NewPostgresThreads(p.DBClient),
		}
	}
	return Result{
		Users:   NewMemoryUsers(),
		Threads: NewMemoryThreads(),
	}
}

func Module() fx.Option {
	return fx.Options(
		db.Module(),
		fx.Module(
			"store",
			fx.Provide(
				New,
			),
		),
	)
}
