package match

import (
	"context"
	"net/url"

	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/transport"
)

// Service maps match lifecycle operations to API calls. Every method
// returns the server's snapshot; nothing is derived locally.
type Service struct {
	client transport.Doer
}

// New creates a new match Service
func New(client transport.Doer) *Service {
	return &Service{client: client}
}

func matchPath(id model.MatchID, action string) string {
	path := "/matches/" + url.PathEscape(string(id))
	if action != "" {
		path += "/" + action
	}
	return path
}

// List returns the matches visible to the caller
func (s *Service) List(ctx context.Context) ([]model.MatchListItem, error) {
	return transport.Get[[]model.MatchListItem](ctx, s.client, "/matches")
}

// Create starts a new match with the caller as player1
func (s *Service) Create(ctx context.Context) (*model.Match, error) {
	return transport.Post[*model.Match](ctx, s.client, "/matches", nil)
}

// Join takes the player2 slot of a match
func (s *Service) Join(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return transport.Post[*model.Match](ctx, s.client, matchPath(id, "join"), nil)
}

// Get fetches a match
func (s *Service) Get(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return transport.Get[*model.Match](ctx, s.client, matchPath(id, ""))
}

// PlaceShip places one ship on the caller's board during setup
func (s *Service) PlaceShip(ctx context.Context, id model.MatchID, ship model.SetupShipPayload) (*model.Match, error) {
	return transport.Post[*model.Match](ctx, s.client, matchPath(id, "setup"), ship)
}

// ConfirmSetup marks the caller as ready
func (s *Service) ConfirmSetup(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return transport.Post[*model.Match](ctx, s.client, matchPath(id, "ready"), nil)
}

// Shoot fires at a cell of the opponent's board. The result is a shot
// outcome, not a match snapshot.
func (s *Service) Shoot(ctx context.Context, id model.MatchID, shot model.ShootPayload) (*model.ShootResponse, error) {
	return transport.Post[*model.ShootResponse](ctx, s.client, matchPath(id, "shoot"), shot)
}

// Forfeit ends the match with the caller as loser
func (s *Service) Forfeit(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return transport.Post[*model.Match](ctx, s.client, matchPath(id, "forfeit"), nil)
}
