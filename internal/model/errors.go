package model

import "errors"

// Client-side errors. Game rule violations are reported by the server.
var (
	ErrNoOpponent     = errors.New("match has no opponent yet")
	ErrNotParticipant = errors.New("user is not a participant in this match")
	ErrNoTargets      = errors.New("no untargeted cells left")
	ErrInvalidShip    = errors.New("ship does not fit on the board")
	ErrNotYourTurn    = errors.New("it is not your turn")
)
