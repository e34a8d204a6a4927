package model

// BoardSize is the grid dimension used by the standard ruleset
const BoardSize = 10

// CellState is the state of a single grid cell as reported by the server
type CellState string

const (
	CellUnknown CellState = "unknown"
	CellEmpty   CellState = "empty"
	CellShip    CellState = "ship"
	CellHit     CellState = "hit"
	CellMiss    CellState = "miss"
)

// Position identifies a cell on the board
type Position struct {
	Row int `json:"row"` // 0-indexed from top
	Col int `json:"col"` // 0-indexed from left
}

// Board is a player's grid and fleet. The server masks cells the
// viewer is not allowed to see as CellUnknown.
type Board struct {
	Grid  [][]CellState `json:"grid"`
	Ships []Ship        `json:"ships"`
}

// Size returns the grid dimension, or 0 for an empty grid
func (b *Board) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Grid)
}

// Get returns the state at the given position, or CellUnknown when out of range
func (b *Board) Get(pos Position) CellState {
	if !b.IsValidPosition(pos) {
		return CellUnknown
	}
	return b.Grid[pos.Row][pos.Col]
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	if b == nil || pos.Row < 0 || pos.Row >= len(b.Grid) {
		return false
	}
	return pos.Col >= 0 && pos.Col < len(b.Grid[pos.Row])
}

// Positions returns every cell in the given state, in row-major order
func (b *Board) Positions(state CellState) []Position {
	if b == nil {
		return nil
	}
	var result []Position
	for row := range b.Grid {
		for col := range b.Grid[row] {
			if b.Grid[row][col] == state {
				result = append(result, Position{Row: row, Col: col})
			}
		}
	}
	return result
}

// ShipsAfloat returns the number of ships that are not sunk
func (b *Board) ShipsAfloat() int {
	if b == nil {
		return 0
	}
	count := 0
	for _, s := range b.Ships {
		if !s.IsSunk {
			count++
		}
	}
	return count
}
