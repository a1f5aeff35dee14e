package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/j0lvera/mica/internal/config"
)

// schema is applied on start; every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS mica_users (
	user_id      BIGINT PRIMARY KEY,
	display_name TEXT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS mica_threads (
	chat_id       BIGINT PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	first_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	Client *Client
}

// Client wraps the connection pool. Pool is nil when no DATABASE_URL is configured.
type Client struct {
	Pool *pgxpool.Pool
}

func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{
		Pool: pool,
	}
}

// Enabled reports whether a database is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.Pool != nil
}

// Migrate creates the tables used by the stores.
func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to apply schema: %w", err)
	}
	return nil
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	if p.Config.DatabaseURL == "" {
		p.Logger.Info().Msg("no database configured, keeping users and threads in memory")
		return Result{Client: NewClient(nil)}, nil
	}

	pool, err := pgxpool.New(context.Background(), p.Config.DatabaseURL)
	if err != nil {
		return Result{}, fmt.Errorf("unable to create connection pool: %w", err)
	}

	client := NewClient(pool)

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := pool.Ping(ctx); err != nil {
					return fmt.Errorf("unable to reach database: %w", err)
				}
				p.Logger.Info().Msg("database connection established")
				return client.Migrate(ctx)
			},
			OnStop: func(ctx context.Context) error {
				p.Logger.Info().Msg("closing database connection")
				pool.Close()
				return nil
			},
		},
	)

	return Result{Client: client}, nil
}

func Module() fx.Option {
	return fx.Module(
		"db",
		fx.Provide(New),
	)
}
