package autopilot

import (
	"github.com/mcoot/battleship-client/internal/dependencies/random"
	"github.com/mcoot/battleship-client/internal/model"
)

// RandomStrategy places ships and shoots uniformly at random
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChoosePlacement picks a random orientation, then a random legal anchor.
// The other orientation is tried when the first has no room.
func (s *RandomStrategy) ChoosePlacement(ship model.ShipSpec, board *model.Board) (model.SetupShipPayload, error) {
	orientations := []model.ShipOrientation{model.Horizontal, model.Vertical}
	first := s.random.Intn(len(orientations))
	for i := range orientations {
		candidates := placements(ship, orientations[(first+i)%len(orientations)], board)
		if len(candidates) > 0 {
			return candidates[s.random.Intn(len(candidates))], nil
		}
	}
	return model.SetupShipPayload{}, model.ErrInvalidShip
}

// ChooseTarget picks a random cell that has not been shot at
func (s *RandomStrategy) ChooseTarget(board *model.Board) (model.Position, error) {
	cells := untargeted(board)
	if len(cells) == 0 {
		return model.Position{}, model.ErrNoTargets
	}
	return cells[s.random.Intn(len(cells))], nil
}
