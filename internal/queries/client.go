// Package queries binds API operations to the cache. Reads go through the
// cache; mutations call the API and then update or invalidate the entries
// they affect. The cache is only touched after a successful response, so a
// failed call never changes what readers see.
package queries

import (
	"context"
	"io"
	"log/slog"

	"github.com/mcoot/battleship-client/internal/cache"
	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/services/auth"
	"github.com/mcoot/battleship-client/internal/services/match"
	"github.com/mcoot/battleship-client/internal/session"
)

// Client exposes every API operation with cache side effects applied
type Client struct {
	cache   *cache.Cache
	auth    *auth.Service
	matches *match.Service
	store   session.Store
	logger  *slog.Logger
}

// New creates a new Client
func New(c *cache.Cache, authService *auth.Service, matchService *match.Service, store session.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		cache:   c,
		auth:    authService,
		matches: matchService,
		store:   store,
		logger:  logger,
	}
}

// Cache returns the underlying cache
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

// Reads

// Matches returns the match list, fetching it when missing or stale
func (c *Client) Matches(ctx context.Context) ([]model.MatchListItem, error) {
	return cache.Fetch(ctx, c.cache, MatchesKey, c.matches.List)
}

// Match returns a match snapshot, fetching it when missing or stale
func (c *Client) Match(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return cache.Fetch(ctx, c.cache, MatchKey(id), func(ctx context.Context) (*model.Match, error) {
		return c.matches.Get(ctx, id)
	})
}

// Profile returns the authenticated user's profile
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	return cache.Fetch(ctx, c.cache, ProfileKey, c.auth.Profile)
}

// RefreshMatch invalidates a match and reads it again from the server
func (c *Client) RefreshMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	c.cache.Invalidate(MatchKey(id))
	return c.Match(ctx, id)
}

// Match mutations

// CreateMatch creates a match. The match list is invalidated; the new
// match itself is not cached.
func (c *Client) CreateMatch(ctx context.Context) (*model.Match, error) {
	m, err := c.matches.Create(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(MatchesKey)
	return m, nil
}

// JoinMatch joins a match, invalidates the match list and caches the
// joined match under the id the server returned
func (c *Client) JoinMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	m, err := c.matches.Join(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(MatchesKey)
	cache.Set(c.cache, MatchKey(m.ID), m)
	return m, nil
}

// PlaceShip places a ship and caches the returned snapshot
func (c *Client) PlaceShip(ctx context.Context, id model.MatchID, ship model.SetupShipPayload) (*model.Match, error) {
	m, err := c.matches.PlaceShip(ctx, id, ship)
	if err != nil {
		return nil, err
	}
	cache.Set(c.cache, MatchKey(id), m)
	return m, nil
}

// ConfirmSetup readies the caller and caches the returned snapshot
func (c *Client) ConfirmSetup(ctx context.Context, id model.MatchID) (*model.Match, error) {
	m, err := c.matches.ConfirmSetup(ctx, id)
	if err != nil {
		return nil, err
	}
	cache.Set(c.cache, MatchKey(id), m)
	return m, nil
}

// Forfeit concedes the match and caches the returned snapshot
func (c *Client) Forfeit(ctx context.Context, id model.MatchID) (*model.Match, error) {
	m, err := c.matches.Forfeit(ctx, id)
	if err != nil {
		return nil, err
	}
	cache.Set(c.cache, MatchKey(id), m)
	return m, nil
}

// Shoot fires a shot. The response is a shot outcome rather than a
// snapshot, so the cached match is invalidated instead of replaced.
func (c *Client) Shoot(ctx context.Context, id model.MatchID, shot model.ShootPayload) (*model.ShootResponse, error) {
	result, err := c.matches.Shoot(ctx, id, shot)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(MatchKey(id))
	return result, nil
}

// Session

// Login authenticates, persists the token and seeds the profile
func (c *Client) Login(ctx context.Context, in auth.LoginInput) (*model.AuthResponse, error) {
	resp, err := c.auth.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	return resp, c.startSession(ctx, resp)
}

// Register creates an account, persists the token and seeds the profile
func (c *Client) Register(ctx context.Context, in auth.RegisterInput) (*model.AuthResponse, error) {
	resp, err := c.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return resp, c.startSession(ctx, resp)
}

func (c *Client) startSession(ctx context.Context, resp *model.AuthResponse) error {
	// Data cached under a previous identity is not valid for this one
	c.cache.Clear()
	if err := c.store.SetToken(ctx, resp.Token); err != nil {
		return err
	}
	// A refresh token left by a previous identity must not outlive it
	if resp.RefreshToken != "" {
		if err := c.store.SetRefreshToken(ctx, resp.RefreshToken); err != nil {
			return err
		}
	} else if err := c.store.RemoveRefreshToken(ctx); err != nil {
		return err
	}
	user := resp.User
	cache.Set(c.cache, ProfileKey, &user)
	c.logger.Info("session started", slog.String("user_id", string(user.ID)))
	return nil
}

// Logout drops both tokens and everything cached for the session. No
// request is sent.
func (c *Client) Logout(ctx context.Context) error {
	c.cache.Clear()
	return session.Clear(ctx, c.store)
}

// ValidateToken reports whether the stored token is still accepted
func (c *Client) ValidateToken(ctx context.Context) bool {
	return c.auth.ValidateToken(ctx)
}
