package session

import "context"

// Store holds the session token and refresh token. An empty string means
// the value is absent. Removing an absent value is a no-op.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error

	RefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error
	RemoveRefreshToken(ctx context.Context) error
}

// IsAuthenticated returns true if a session token is present.
// Read failures count as unauthenticated.
func IsAuthenticated(ctx context.Context, s Store) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// Clear removes both tokens
func Clear(ctx context.Context, s Store) error {
	if err := s.RemoveToken(ctx); err != nil {
		return err
	}
	return s.RemoveRefreshToken(ctx)
}
