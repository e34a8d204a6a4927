package model

// ShipOrientation is the direction a ship extends from its anchor cell
type ShipOrientation string

const (
	Horizontal ShipOrientation = "horizontal"
	Vertical   ShipOrientation = "vertical"
)

// Ship is a placed ship. Hits never exceed Size and IsSunk is set by the
// server once Hits reaches Size.
type Ship struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Size        int             `json:"size"`
	Orientation ShipOrientation `json:"orientation"`
	StartRow    int             `json:"startRow"`
	StartCol    int             `json:"startCol"`
	Hits        int             `json:"hits"`
	IsSunk      bool            `json:"isSunk"`
}

// Remaining returns the number of cells of the ship not yet hit
func (s Ship) Remaining() int {
	if s.Hits >= s.Size {
		return 0
	}
	return s.Size - s.Hits
}

// ShipSpec describes a ship that has to be placed during setup
type ShipSpec struct {
	Type string
	Size int
}

// DefaultFleet is the standard five-ship fleet
var DefaultFleet = []ShipSpec{
	{Type: "carrier", Size: 5},
	{Type: "battleship", Size: 4},
	{Type: "cruiser", Size: 3},
	{Type: "submarine", Size: 3},
	{Type: "destroyer", Size: 2},
}
