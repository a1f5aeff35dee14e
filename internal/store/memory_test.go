package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUsers()

	_, err := users.DisplayName(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, users.Upsert(ctx, User{ID: 1, DisplayName: "Ada"}))
	name, err := users.DisplayName(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)

	require.NoError(t, users.Upsert(ctx, User{ID: 1, DisplayName: "Ada Lovelace"}))
	name, err = users.DisplayName(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", name)

	require.NoError(t, users.Upsert(ctx, User{ID: 2}))
	_, err = users.DisplayName(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryThreadsListIsSortedSnapshot(t *testing.T) {
	ctx := context.Background()
	threads := NewMemoryThreads()

	list, err := threads.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, threads.Track(ctx, Thread{ChatID: 30, Title: "c"}))
	require.NoError(t, threads.Track(ctx, Thread{ChatID: -10, Title: "a"}))
	require.NoError(t, threads.Track(ctx, Thread{ChatID: 20, Title: "b"}))
	require.NoError(t, threads.Track(ctx, Thread{ChatID: 20, Title: "b2"}))

	list, err = threads.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(-10), list[0].ChatID)
	assert.Equal(t, int64(20), list[1].ChatID)
	assert.Equal(t, "b2", list[1].Title)
	assert.Equal(t, int64(30), list[2].ChatID)

	list[0].Title = "mutated"
	again, err := threads.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Title)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", DisplayName("Ada", "Lovelace", "ada"))
	assert.Equal(t, "Ada", DisplayName(" Ada ", "", "ada"))
	assert.Equal(t, "ada", DisplayName("", "", "ada"))
	assert.Equal(t, "", DisplayName("", "", ""))
}
