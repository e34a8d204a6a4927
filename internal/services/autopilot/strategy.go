package autopilot

import (
	"github.com/mcoot/battleship-client/internal/dependencies/random"
	"github.com/mcoot/battleship-client/internal/model"
)

// Strategy names accepted by Strategies
const (
	StrategyRandom = "random"
	StrategyHunt   = "hunt"
)

// Strategy decides where ships go and where to shoot
type Strategy interface {
	// ChoosePlacement picks an in-bounds, non-overlapping placement for ship
	// on the player's own board. The board may be nil before the server has
	// returned one.
	ChoosePlacement(ship model.ShipSpec, board *model.Board) (model.SetupShipPayload, error)
	// ChooseTarget picks a cell to shoot on the opponent's masked board
	ChooseTarget(board *model.Board) (model.Position, error)
}

// gridSize returns the board dimension, falling back to the standard size
// when no board is visible
func gridSize(board *model.Board) int {
	if size := board.Size(); size > 0 {
		return size
	}
	return model.BoardSize
}

// shipCells returns the cells covered by a ship of the given size
func shipCells(orientation model.ShipOrientation, row, col, size int) []model.Position {
	cells := make([]model.Position, size)
	for i := range cells {
		if orientation == model.Vertical {
			cells[i] = model.Position{Row: row + i, Col: col}
		} else {
			cells[i] = model.Position{Row: row, Col: col + i}
		}
	}
	return cells
}

// placements lists every legal placement for ship in row-major order
func placements(ship model.ShipSpec, orientation model.ShipOrientation, board *model.Board) []model.SetupShipPayload {
	size := gridSize(board)
	var result []model.SetupShipPayload
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if fits(shipCells(orientation, row, col, ship.Size), size, board) {
				result = append(result, model.SetupShipPayload{
					ShipType:    ship.Type,
					Orientation: orientation,
					StartRow:    row,
					StartCol:    col,
				})
			}
		}
	}
	return result
}

func fits(cells []model.Position, size int, board *model.Board) bool {
	for _, pos := range cells {
		if pos.Row < 0 || pos.Row >= size || pos.Col < 0 || pos.Col >= size {
			return false
		}
		if board.Get(pos) == model.CellShip {
			return false
		}
	}
	return true
}

// untargeted lists the cells not yet shot at, in row-major order
func untargeted(board *model.Board) []model.Position {
	if board.Size() > 0 {
		return board.Positions(model.CellUnknown)
	}
	size := model.BoardSize
	cells := make([]model.Position, 0, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			cells = append(cells, model.Position{Row: row, Col: col})
		}
	}
	return cells
}

// Strategies returns every built-in strategy keyed by name
func Strategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom: NewRandomStrategy(rnd),
		StrategyHunt:   NewHuntStrategy(rnd),
	}
}
