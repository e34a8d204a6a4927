package model

// MatchID uniquely identifies a match
type MatchID string

// GamePhase is the phase of play within a match
type GamePhase string

const (
	PhaseSetup    GamePhase = "setup"
	PhasePlaying  GamePhase = "playing"
	PhaseFinished GamePhase = "finished"
)

// GameStatus is the lifecycle state of a match
type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
	StatusAbandoned  GameStatus = "abandoned"
)

// IsTerminal returns true for statuses after which the match never changes
func (s GameStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusAbandoned
}

// Match is the server-authoritative snapshot of a match.
// Player2 and CurrentTurn stay nil until a second player joins, and Winner
// stays nil until the status is terminal.
type Match struct {
	ID          MatchID    `json:"id"`
	Player1     Player     `json:"player1"`
	Player2     *Player    `json:"player2"`
	CurrentTurn *UserID    `json:"currentTurn"`
	Phase       GamePhase  `json:"phase"`
	Status      GameStatus `json:"status"`
	Winner      *UserID    `json:"winner"`

	// Timestamps are passed through as the server formats them
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// IsFull returns true once a second player has joined
func (m *Match) IsFull() bool {
	return m.Player2 != nil
}

// IsFinished returns true once the match reached a terminal status
func (m *Match) IsFinished() bool {
	return m.Status.IsTerminal()
}

// Player returns the slot occupied by the given user, or nil
func (m *Match) Player(id UserID) *Player {
	if m.Player1.ID == id {
		return &m.Player1
	}
	if m.Player2 != nil && m.Player2.ID == id {
		return m.Player2
	}
	return nil
}

// Opponent returns the slot not occupied by the given user, or nil
func (m *Match) Opponent(id UserID) *Player {
	switch {
	case m.Player1.ID == id:
		return m.Player2
	case m.Player2 != nil && m.Player2.ID == id:
		return &m.Player1
	default:
		return nil
	}
}

// IsTurn returns true if it is the given user's turn to shoot
func (m *Match) IsTurn(id UserID) bool {
	return m.CurrentTurn != nil && *m.CurrentTurn == id
}

// MatchListItem is the summary returned when listing matches
type MatchListItem struct {
	ID        MatchID    `json:"id"`
	Player1   string     `json:"player1"`
	Player2   *string    `json:"player2"`
	Status    GameStatus `json:"status"`
	CreatedAt string     `json:"createdAt"`
}
