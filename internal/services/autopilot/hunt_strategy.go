package autopilot

import (
	"github.com/mcoot/battleship-client/internal/dependencies/random"
	"github.com/mcoot/battleship-client/internal/model"
)

// HuntStrategy shoots at random until it scores a hit, then works the
// unknown cells around hits that do not belong to a sunk ship. Placement
// is random.
type HuntStrategy struct {
	*RandomStrategy
}

// NewHuntStrategy creates a new HuntStrategy
func NewHuntStrategy(rnd random.Random) *HuntStrategy {
	return &HuntStrategy{RandomStrategy: NewRandomStrategy(rnd)}
}

// ChooseTarget picks a random neighbour of an open hit, or any untargeted
// cell when there is none
func (s *HuntStrategy) ChooseTarget(board *model.Board) (model.Position, error) {
	if cells := huntCells(board); len(cells) > 0 {
		return cells[s.random.Intn(len(cells))], nil
	}
	return s.RandomStrategy.ChooseTarget(board)
}

// huntCells returns the unknown cells orthogonally adjacent to hits on
// ships that are still afloat
func huntCells(board *model.Board) []model.Position {
	sunk := make(map[model.Position]bool)
	if board != nil {
		for _, ship := range board.Ships {
			if !ship.IsSunk {
				continue
			}
			for _, pos := range shipCells(ship.Orientation, ship.StartRow, ship.StartCol, ship.Size) {
				sunk[pos] = true
			}
		}
	}

	seen := make(map[model.Position]bool)
	var result []model.Position
	for _, hit := range board.Positions(model.CellHit) {
		if sunk[hit] {
			continue
		}
		neighbours := []model.Position{
			{Row: hit.Row - 1, Col: hit.Col},
			{Row: hit.Row + 1, Col: hit.Col},
			{Row: hit.Row, Col: hit.Col - 1},
			{Row: hit.Row, Col: hit.Col + 1},
		}
		for _, pos := range neighbours {
			if seen[pos] || !board.IsValidPosition(pos) || board.Get(pos) != model.CellUnknown {
				continue
			}
			seen[pos] = true
			result = append(result, pos)
		}
	}
	return result
}
