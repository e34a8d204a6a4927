// Package autopilot plays a match on behalf of the logged-in user: it
// places a whole fleet and picks shots. Every action goes through the
// cache-bound query client, so the cache reflects what the autopilot did.
package autopilot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/queries"
	"github.com/mcoot/battleship-client/internal/transport"
)

// DefaultMaxAttempts is how many placements are tried per ship
const DefaultMaxAttempts = 10

// Config holds autopilot settings
type Config struct {
	// MaxAttempts bounds the placements tried for one ship when the server
	// rejects them
	MaxAttempts int
}

// DefaultConfig returns the default autopilot configuration
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts}
}

// Shot is a fired shot and the server's verdict
type Shot struct {
	Position model.Position
	Result   *model.ShootResponse
}

// Service places fleets and fires shots using a Strategy
type Service struct {
	client   *queries.Client
	strategy Strategy
	cfg      Config
	logger   *slog.Logger
}

// NewService creates a new autopilot Service
func NewService(client *queries.Client, strategy Strategy, cfg Config, logger *slog.Logger) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		client:   client,
		strategy: strategy,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "autopilot")),
	}
}

// PlaceFleet places every ship of fleet the user has not placed yet and
// returns the last snapshot. A placement the server rejects as invalid is
// retried with a new choice up to MaxAttempts times.
func (s *Service) PlaceFleet(ctx context.Context, id model.MatchID, userID model.UserID, fleet []model.ShipSpec) (*model.Match, error) {
	m, err := s.client.Match(ctx, id)
	if err != nil {
		return nil, err
	}
	player := m.Player(userID)
	if player == nil {
		return nil, model.ErrNotParticipant
	}

	for _, ship := range fleet {
		if hasShip(player.Board, ship.Type) {
			continue
		}
		m, err = s.placeShip(ctx, id, ship, player.Board)
		if err != nil {
			return nil, err
		}
		if player = m.Player(userID); player == nil {
			return nil, model.ErrNotParticipant
		}
	}
	return m, nil
}

func (s *Service) placeShip(ctx context.Context, id model.MatchID, ship model.ShipSpec, board *model.Board) (*model.Match, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		payload, err := s.strategy.ChoosePlacement(ship, board)
		if err != nil {
			return nil, fmt.Errorf("placing %s: %w", ship.Type, err)
		}

		m, err := s.client.PlaceShip(ctx, id, payload)
		if err == nil {
			s.logger.Debug("ship placed",
				slog.String("match_id", string(id)),
				slog.String("ship", ship.Type),
				slog.String("orientation", string(payload.Orientation)),
				slog.Int("row", payload.StartRow),
				slog.Int("col", payload.StartCol),
			)
			return m, nil
		}
		if transport.StatusOf(err) != http.StatusBadRequest {
			return nil, err
		}

		s.logger.Warn("placement rejected",
			slog.String("match_id", string(id)),
			slog.String("ship", ship.Type),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		lastErr = err
	}
	return nil, fmt.Errorf("placing %s: gave up after %d attempts: %w", ship.Type, s.cfg.MaxAttempts, lastErr)
}

// FireShot refreshes the match, picks a target on the opponent's board and
// shoots at it. The opponent moves outside this process, so the cached
// snapshot is never trusted for whose turn it is.
func (s *Service) FireShot(ctx context.Context, id model.MatchID, userID model.UserID) (*Shot, error) {
	m, err := s.client.RefreshMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Player(userID) == nil {
		return nil, model.ErrNotParticipant
	}
	opponent := m.Opponent(userID)
	if opponent == nil {
		return nil, model.ErrNoOpponent
	}
	if !m.IsTurn(userID) {
		return nil, model.ErrNotYourTurn
	}

	pos, err := s.strategy.ChooseTarget(opponent.Board)
	if err != nil {
		return nil, err
	}
	result, err := s.client.Shoot(ctx, id, model.ShootPayload{Row: pos.Row, Col: pos.Col})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shot fired",
		slog.String("match_id", string(id)),
		slog.Int("row", pos.Row),
		slog.Int("col", pos.Col),
		slog.Bool("hit", result.Hit),
		slog.Bool("sunk", result.Sunk),
	)
	return &Shot{Position: pos, Result: result}, nil
}

func hasShip(board *model.Board, shipType string) bool {
	if board == nil {
		return false
	}
	return slices.ContainsFunc(board.Ships, func(ship model.Ship) bool {
		return ship.Type == shipType
	})
}
