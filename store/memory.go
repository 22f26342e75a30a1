package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryUserStore is the in-process fallback used when Redis is not
// configured, and the store the tests run against.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]memoryUser
	byName map[string]int64
}

type memoryUser struct {
	username string
	password string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:   make(map[int64]memoryUser),
		byName: make(map[string]int64),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, username, password string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[username]; exists {
		return User{}, ErrDuplicateUsername
	}

	s.nextID++
	id := s.nextID
	s.byID[id] = memoryUser{username: username, password: password}
	s.byName[username] = id
	return User{ID: id, Username: username}, nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]User, 0, len(s.byID))
	for id, u := range s.byID {
		users = append(users, User{ID: id, Username: u.username})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryUserStore) Get(_ context.Context, id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return User{ID: id, Username: u.username}, nil
}
