package model

// UserID uniquely identifies an account
type UserID string

// User is an account as reported by the server. The counters are
// authoritative server-side only.
type User struct {
	ID          UserID `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	GamesPlayed int    `json:"gamesPlayed"`
}

// Player is a participant slot in a match. Board is only present in the
// owning player's view.
type Player struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	IsReady  bool   `json:"isReady"`
	Board    *Board `json:"board,omitempty"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token string `json:"token"`
	// RefreshToken is only sent by servers that support token refresh
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}
