package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/battleship-client/internal/model"
)

// match is the server-side state. Boards are always fully populated here
// and masked per viewer in view.
type match struct {
	snapshot model.Match
	boards   map[model.UserID]*model.Board
}

func newBoard() *model.Board {
	grid := make([][]model.CellState, model.BoardSize)
	for row := range grid {
		grid[row] = make([]model.CellState, model.BoardSize)
		for col := range grid[row] {
			grid[row][col] = model.CellEmpty
		}
	}
	return &model.Board{Grid: grid, Ships: []model.Ship{}}
}

// view returns the snapshot as seen by viewer: their own board in full,
// the opponent's board with unrevealed cells masked
func (m *match) view(viewer model.UserID) model.Match {
	snapshot := m.snapshot
	snapshot.Player1.Board = m.boardView(snapshot.Player1.ID, viewer)
	if m.snapshot.Player2 != nil {
		p2 := *m.snapshot.Player2
		p2.Board = m.boardView(p2.ID, viewer)
		snapshot.Player2 = &p2
	}
	return snapshot
}

func (m *match) boardView(owner, viewer model.UserID) *model.Board {
	board, ok := m.boards[owner]
	if !ok {
		return nil
	}
	if owner == viewer {
		return copyBoard(board, false)
	}
	if m.snapshot.Phase == model.PhaseSetup {
		return nil
	}
	return copyBoard(board, true)
}

func copyBoard(b *model.Board, masked bool) *model.Board {
	grid := make([][]model.CellState, len(b.Grid))
	for row := range b.Grid {
		grid[row] = make([]model.CellState, len(b.Grid[row]))
		for col, cell := range b.Grid[row] {
			if masked && (cell == model.CellEmpty || cell == model.CellShip) {
				cell = model.CellUnknown
			}
			grid[row][col] = cell
		}
	}
	ships := make([]model.Ship, 0, len(b.Ships))
	for _, ship := range b.Ships {
		if !masked || ship.IsSunk {
			ships = append(ships, ship)
		}
	}
	return &model.Board{Grid: grid, Ships: ships}
}

func (m *match) opponentOf(id model.UserID) model.UserID {
	if m.snapshot.Player1.ID == id {
		if m.snapshot.Player2 != nil {
			return m.snapshot.Player2.ID
		}
		return ""
	}
	return m.snapshot.Player1.ID
}

func (m *match) isParticipant(id model.UserID) bool {
	return m.snapshot.Player(id) != nil
}

func shipCells(p model.SetupShipPayload, size int) []model.Position {
	cells := make([]model.Position, size)
	for i := range cells {
		if p.Orientation == model.Vertical {
			cells[i] = model.Position{Row: p.StartRow + i, Col: p.StartCol}
		} else {
			cells[i] = model.Position{Row: p.StartRow, Col: p.StartCol + i}
		}
	}
	return cells
}

// Match handlers

// loadMatch resolves the {id} route variable. Callers hold s.mu.
func (s *Server) loadMatch(w http.ResponseWriter, r *http.Request) (*match, bool) {
	m, ok := s.matches[model.MatchID(mux.Vars(r)["id"])]
	if !ok {
		writeError(w, http.StatusNotFound, "MATCH_NOT_FOUND", "Match not found")
		return nil, false
	}
	return m, true
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.MatchListItem, 0, len(s.order))
	for _, id := range s.order {
		m := s.matches[id].snapshot
		item := model.MatchListItem{
			ID:        m.ID,
			Player1:   m.Player1.Username,
			Status:    m.Status,
			CreatedAt: m.CreatedAt,
		}
		if m.Player2 != nil {
			name := m.Player2.Username
			item.Player2 = &name
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, _ := s.userByID(caller(r))
	ts := now()
	m := &match{
		snapshot: model.Match{
			ID:        model.MatchID(s.newID("m")),
			Player1:   model.Player{ID: user.ID, Username: user.Username},
			Phase:     model.PhaseSetup,
			Status:    model.StatusWaiting,
			CreatedAt: ts,
			UpdatedAt: ts,
		},
		boards: map[model.UserID]*model.Board{user.ID: newBoard()},
	}
	s.matches[m.snapshot.ID] = m
	s.order = append(s.order, m.snapshot.ID)

	writeJSON(w, http.StatusCreated, m.view(user.ID))
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.loadMatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.view(caller(r)))
}

func (s *Server) joinMatch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.loadMatch(w, r)
	if !ok {
		return
	}
	id := caller(r)
	switch {
	case m.snapshot.Player1.ID == id:
		writeError(w, http.StatusConflict, "ALREADY_IN_MATCH", "You are already in this match")
		return
	case m.snapshot.Player2 != nil:
		writeError(w, http.StatusConflict, "MATCH_FULL", "Match is full")
		return
	case m.snapshot.Status != model.StatusWaiting:
		writeError(w, http.StatusConflict, "MATCH_NOT_JOINABLE", "Match is not joinable")
		return
	}

	user, _ := s.userByID(id)
	first := m.snapshot.Player1.ID
	m.snapshot.Player2 = &model.Player{ID: user.ID, Username: user.Username}
	m.snapshot.CurrentTurn = &first
	m.snapshot.Status = model.StatusInProgress
	m.snapshot.UpdatedAt = now()
	m.boards[user.ID] = newBoard()

	writeJSON(w, http.StatusOK, m.view(id))
}

func (s *Server) placeShip(w http.ResponseWriter, r *http.Request) {
	var req model.SetupShipPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.loadMatch(w, r)
	if !ok {
		return
	}
	id := caller(r)
	player := m.snapshot.Player(id)
	if player == nil {
		writeError(w, http.StatusForbidden, "NOT_IN_MATCH", "You are not in this match")
		return
	}
	if m.snapshot.Phase != model.PhaseSetup || player.IsReady {
		writeError(w, http.StatusConflict, "WRONG_PHASE", "Ships can only be placed during setup")
		return
	}

	size := 0
	for _, spec := range s.Fleet {
		if spec.Type == req.ShipType {
			size = spec.Size
		}
	}
	if size == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_SHIP", "Unknown ship type")
		return
	}

	board := m.boards[id]
	for _, ship := range board.Ships {
		if ship.Type == req.ShipType {
			writeError(w, http.StatusConflict, "SHIP_ALREADY_PLACED", "Ship already placed")
			return
		}
	}
	cells := shipCells(req, size)
	for _, pos := range cells {
		if !board.IsValidPosition(pos) {
			writeError(w, http.StatusBadRequest, "OUT_OF_BOUNDS", "Ship is out of bounds")
			return
		}
		if board.Get(pos) != model.CellEmpty {
			writeError(w, http.StatusBadRequest, "OVERLAP", "Ship overlaps another ship")
			return
		}
	}

	for _, pos := range cells {
		board.Grid[pos.Row][pos.Col] = model.CellShip
	}
	board.Ships = append(board.Ships, model.Ship{
		ID:          s.newID("s"),
		Type:        req.ShipType,
		Size:        size,
		Orientation: req.Orientation,
		StartRow:    req.StartRow,
		StartCol:    req.StartCol,
	})
	m.snapshot.UpdatedAt = now()

	writeJSON(w, http.StatusOK, m.view(id))
}

func (s *Server) confirmSetup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.loadMatch(w, r)
	if !ok {
		return
	}
	id := caller(r)
	player := m.snapshot.Player(id)
	if player == nil {
		writeError(w, http.StatusForbidden, "NOT_IN_MATCH", "You are not in this match")
		return
	}
	if m.snapshot.Phase != model.PhaseSetup {
		writeError(w, http.StatusConflict, "WRONG_PHASE", "Setup is already complete")
		return
	}
	if len(m.boards[id].Ships) != len(s.Fleet) {
		writeError(w, http.StatusBadRequest, "FLEET_INCOMPLETE", "All ships must be placed")
		return
	}

	player.IsReady = true
	if m.snapshot.Player2 != nil && m.snapshot.Player1.IsReady && m.snapshot.Player2.IsReady {
		m.snapshot.Phase = model.PhasePlaying
	}
	m.snapshot.UpdatedAt = now()

	writeJSON(w, http.StatusOK, m.view(id))
}

func (s *Server) shoot(w http.ResponseWriter, r *http.Request) {
	var req model.ShootPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.loadMatch(w, r)
	if !ok {
		return
	}
	id := caller(r)
	if !m.isParticipant(id) {
		writeError(w, http.StatusForbidden, "NOT_IN_MATCH", "You are not in this match")
		return
	}
	if m.snapshot.Phase != model.PhasePlaying {
		writeError(w, http.StatusConflict, "WRONG_PHASE", "Match is not in progress")
		return
	}
	if !m.snapshot.IsTurn(id) {
		writeError(w, http.StatusConflict, "NOT_YOUR_TURN", "Not your turn")
		return
	}

	opponent := m.opponentOf(id)
	board := m.boards[opponent]
	pos := model.Position{Row: req.Row, Col: req.Col}
	if !board.IsValidPosition(pos) {
		writeError(w, http.StatusBadRequest, "OUT_OF_BOUNDS", "Shot is out of bounds")
		return
	}

	result := model.ShootResponse{}
	switch board.Get(pos) {
	case model.CellHit, model.CellMiss:
		writeError(w, http.StatusConflict, "ALREADY_TARGETED", "Cell already targeted")
		return
	case model.CellShip:
		board.Grid[pos.Row][pos.Col] = model.CellHit
		result.Hit = true
		for i := range board.Ships {
			ship := &board.Ships[i]
			if !occupies(*ship, pos) {
				continue
			}
			ship.Hits++
			if ship.Hits == ship.Size {
				ship.IsSunk = true
				result.Sunk = true
				shipType := ship.Type
				result.ShipType = &shipType
			}
		}
	default:
		board.Grid[pos.Row][pos.Col] = model.CellMiss
	}

	if board.ShipsAfloat() == 0 {
		winner := id
		result.GameOver = true
		result.Winner = &winner
		m.snapshot.Winner = &winner
		m.snapshot.Status = model.StatusFinished
		m.snapshot.Phase = model.PhaseFinished
		m.snapshot.CurrentTurn = nil
	} else {
		m.snapshot.CurrentTurn = &opponent
	}
	m.snapshot.UpdatedAt = now()

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) forfeit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.loadMatch(w, r)
	if !ok {
		return
	}
	id := caller(r)
	if !m.isParticipant(id) {
		writeError(w, http.StatusForbidden, "NOT_IN_MATCH", "You are not in this match")
		return
	}
	if m.snapshot.IsFinished() {
		writeError(w, http.StatusConflict, "MATCH_FINISHED", "Match is already finished")
		return
	}

	if opponent := m.opponentOf(id); opponent != "" {
		m.snapshot.Winner = &opponent
		m.snapshot.Status = model.StatusFinished
	} else {
		m.snapshot.Status = model.StatusAbandoned
	}
	m.snapshot.Phase = model.PhaseFinished
	m.snapshot.CurrentTurn = nil
	m.snapshot.UpdatedAt = now()

	writeJSON(w, http.StatusOK, m.view(id))
}

func occupies(ship model.Ship, pos model.Position) bool {
	payload := model.SetupShipPayload{
		Orientation: ship.Orientation,
		StartRow:    ship.StartRow,
		StartCol:    ship.StartCol,
	}
	for _, cell := range shipCells(payload, ship.Size) {
		if cell == pos {
			return true
		}
	}
	return false
}
