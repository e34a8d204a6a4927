package memory

import (
	"context"
	"sync"

	"github.com/mcoot/battleship-client/internal/session"
)

// Store is an in-memory session store
type Store struct {
	mu           sync.RWMutex
	token        string
	refreshToken string
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{}
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *Store) RemoveToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken, nil
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = token
	return nil
}

func (s *Store) RemoveRefreshToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = ""
	return nil
}
