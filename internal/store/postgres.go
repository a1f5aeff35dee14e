package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/j0lvera/mica/internal/db"
	"github.com/jackc/pgx/v5"
)

// PostgresUsers manages user profiles using PostgreSQL
type PostgresUsers struct {
	client *db.Client
}

func NewPostgresUsers(client *db.Client) *PostgresUsers {
	return &PostgresUsers{client: client}
}

func (s *PostgresUsers) Upsert(ctx context.Context, user User) error {
	_, err := s.client.Pool.Exec(ctx, `
		INSERT INTO mica_users (user_id, display_name, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name, updated_at = now()`,
		user.ID, user.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("unable to upsert user %d: %w", user.ID, err)
	}
	return nil
}

func (s *PostgresUsers) DisplayName(ctx context.Context, userID int64) (string, error) {
	var name string
	err := s.client.Pool.QueryRow(ctx,
		`SELECT display_name FROM mica_users WHERE user_id = $1`, userID,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("unable to get user %d: %w", userID, err)
	}
	if name == "" {
		return "", ErrNotFound
	}
	return name, nil
}

// PostgresThreads manages known chats using PostgreSQL
type PostgresThreads struct {
	client *db.Client
}

func NewPostgresThreads(client *db.Client) *PostgresThreads {
	return &PostgresThreads{client: client}
}

func (s *PostgresThreads) Track(ctx context.Context, thread Thread) error {
	_, err := s.client.Pool.Exec(ctx, `
		INSERT INTO mica_threads (chat_id, title, last_seen_at)
		VALUES ($1, $2, now())
		ON CONFLICT (chat_id) DO UPDATE
		SET title = EXCLUDED.title, last_seen_at = now()`,
		thread.ChatID, thread.Title,
	)
	if err != nil {
		return fmt.Errorf("unable to track thread %d: %w", thread.ChatID, err)
	}
	return nil
}

func (s *PostgresThreads) List(ctx context.Context) ([]Thread, error) {
	rows, err := s.client.Pool.Query(ctx,
		`SELECT chat_id, title, last_seen_at FROM mica_threads ORDER BY chat_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to list threads: %w", err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ChatID, &t.Title, &t.LastSeenAt); err != nil {
			return nil, fmt.Errorf("unable to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list threads: %w", err)
	}
	return threads, nil
}
