package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mcoot/battleship-client/internal/session"
)

// refreshSuffix is appended to the token path to locate the refresh token
const refreshSuffix = ".refresh"

// Store keeps tokens in plain files readable only by the current user
type Store struct {
	mu          sync.Mutex
	tokenPath   string
	refreshPath string
}

// New creates a file store backed by tokenPath. The refresh token lives
// next to it with a ".refresh" suffix.
func New(tokenPath string) *Store {
	return &Store{
		tokenPath:   tokenPath,
		refreshPath: tokenPath + refreshSuffix,
	}
}

// DefaultPath returns ~/.battleship/token, or a relative path when the home
// directory is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".battleship", "token")
	}
	return filepath.Join(home, ".battleship", "token")
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

func (s *Store) Token(ctx context.Context) (string, error) {
	return s.read(s.tokenPath)
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.write(s.tokenPath, token)
}

func (s *Store) RemoveToken(ctx context.Context) error {
	return s.remove(s.tokenPath)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.read(s.refreshPath)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.write(s.refreshPath, token)
}

func (s *Store) RemoveRefreshToken(ctx context.Context) error {
	return s.remove(s.refreshPath)
}

func (s *Store) read(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil // No token file is fine
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) write(path, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(value), 0600)
}

func (s *Store) remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
