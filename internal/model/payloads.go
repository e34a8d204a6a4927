package model

// SetupShipPayload places one ship during setup
type SetupShipPayload struct {
	ShipType    string          `json:"shipType"`
	Orientation ShipOrientation `json:"orientation"`
	StartRow    int             `json:"startRow"`
	StartCol    int             `json:"startCol"`
}

// ShootPayload targets one cell of the opponent's board
type ShootPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ShootResponse is the outcome of a shot. It is not a match snapshot.
type ShootResponse struct {
	Hit      bool    `json:"hit"`
	Sunk     bool    `json:"sunk"`
	ShipType *string `json:"shipType,omitempty"`
	GameOver bool    `json:"gameOver"`
	Winner   *UserID `json:"winner,omitempty"`
}
