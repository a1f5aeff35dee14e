package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryUsers keeps user profiles in a map.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[int64]User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		users: make(map[int64]User),
	}
}

func (s *MemoryUsers) Upsert(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = user
	return nil
}

func (s *MemoryUsers) DisplayName(_ context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok || user.DisplayName == "" {
		return "", ErrNotFound
	}
	return user.DisplayName, nil
}

// MemoryThreads keeps known chats in a map.
type MemoryThreads struct {
	mu      sync.RWMutex
	threads map[int64]Thread
}

func NewMemoryThreads() *MemoryThreads {
	return &MemoryThreads{
		threads: make(map[int64]Thread),
	}
}

func (s *MemoryThreads) Track(_ context.Context, thread Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[thread.ChatID] = thread
	return nil
}

// List returns a snapshot ordered by chat id.
func (s *MemoryThreads) List(_ context.Context) ([]Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ChatID < result[j].ChatID
	})
	return result, nil
}
