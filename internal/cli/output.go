package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/session"
	"github.com/mcoot/battleship-client/internal/transport"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing results to w and errors
// to errW
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// ShotReport is a shot outcome together with the match it changed
type ShotReport struct {
	Position *model.Position      `json:"position,omitempty"`
	Result   *model.ShootResponse `json:"result"`
	Match    *model.Match         `json:"match,omitempty"`
}

// SessionStatus describes the stored session
type SessionStatus struct {
	Authenticated bool               `json:"authenticated"`
	Token         *session.TokenInfo `json:"token,omitempty"`
	Expired       bool               `json:"expired"`
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error. API errors keep their status and code.
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		body := map[string]any{"message": err.Error()}
		if apiErr, ok := transport.AsError(err); ok {
			body["message"] = apiErr.Message
			if apiErr.Status != 0 {
				body["status"] = apiErr.Status
			}
			if apiErr.Code != "" {
				body["code"] = apiErr.Code
			}
		}
		data, _ := json.Marshal(map[string]any{"error": body})
		_, _ = fmt.Fprintln(o.errW, string(data))
		return
	}

	if apiErr, ok := transport.AsError(err); ok {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", apiErr.Message)
		return
	}
	_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *model.User:
		o.printUser(v)
	case *model.AuthResponse:
		o.printAuthResponse(v)
	case []model.MatchListItem:
		o.printMatchList(v)
	case *model.Match:
		o.printMatch(v)
	case *ShotReport:
		o.printShotReport(v)
	case *SessionStatus:
		o.printSessionStatus(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printUser(u *model.User) {
	o.printf("User: %s (%s)\n", u.Username, u.ID)
	o.printf("Email: %s\n", u.Email)
	o.printf("Record: %d wins, %d losses, %d games\n", u.Wins, u.Losses, u.GamesPlayed)
}

func (o *Output) printAuthResponse(a *model.AuthResponse) {
	o.printUser(&a.User)
	o.printf("Token: %s\n", a.Token)
}

func (o *Output) printMatchList(items []model.MatchListItem) {
	if len(items) == 0 {
		o.printf("No matches\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tPLAYER 1\tPLAYER 2\tCREATED")
	for _, m := range items {
		player2 := "-"
		if m.Player2 != nil {
			player2 = *m.Player2
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Status, m.Player1, player2, m.CreatedAt)
	}
	_ = tw.Flush()
}

func (o *Output) printMatch(m *model.Match) {
	o.printf("Match: %s\n", m.ID)
	o.printf("Status: %s\n", m.Status)
	o.printf("Phase: %s\n", m.Phase)
	o.printPlayer("Player 1", &m.Player1)
	if m.Player2 != nil {
		o.printPlayer("Player 2", m.Player2)
	} else {
		o.printf("Player 2: (waiting)\n")
	}
	if m.CurrentTurn != nil {
		o.printf("Turn: %s\n", playerName(m, *m.CurrentTurn))
	}
	if m.Winner != nil {
		o.printf("Winner: %s\n", playerName(m, *m.Winner))
	}

	for _, p := range []*model.Player{&m.Player1, m.Player2} {
		if p == nil || p.Board == nil {
			continue
		}
		o.printf("\n%s's board (%d afloat):\n", p.Username, p.Board.ShipsAfloat())
		o.printBoard(p.Board)
	}
}

func (o *Output) printPlayer(label string, p *model.Player) {
	ready := ""
	if p.IsReady {
		ready = " [ready]"
	}
	o.printf("%s: %s (%s)%s\n", label, p.Username, p.ID, ready)
}

func playerName(m *model.Match, id model.UserID) string {
	if p := m.Player(id); p != nil {
		return p.Username
	}
	return string(id)
}

var cellSymbols = map[model.CellState]string{
	model.CellUnknown: "~",
	model.CellEmpty:   ".",
	model.CellShip:    "#",
	model.CellHit:     "X",
	model.CellMiss:    "o",
}

func (o *Output) printBoard(b *model.Board) {
	size := b.Size()
	if size == 0 {
		return
	}

	// Column headers
	o.printf("   ")
	for col := 0; col < size; col++ {
		o.printf(" %d", col%10)
	}
	o.printf("\n")

	for row := 0; row < size; row++ {
		o.printf("%2d ", row)
		for col := 0; col < size; col++ {
			symbol, ok := cellSymbols[b.Get(model.Position{Row: row, Col: col})]
			if !ok {
				symbol = "?"
			}
			o.printf(" %s", symbol)
		}
		o.printf("\n")
	}
}

func (o *Output) printShotReport(r *ShotReport) {
	if r.Position != nil {
		o.printf("Shot at (%d, %d): ", r.Position.Row, r.Position.Col)
	}
	switch {
	case r.Result.Sunk && r.Result.ShipType != nil:
		o.printf("hit, sunk %s!\n", *r.Result.ShipType)
	case r.Result.Sunk:
		o.printf("hit, sunk!\n")
	case r.Result.Hit:
		o.printf("hit!\n")
	default:
		o.printf("miss\n")
	}
	if r.Result.GameOver {
		winner := "unknown"
		if r.Result.Winner != nil {
			winner = string(*r.Result.Winner)
			if r.Match != nil {
				winner = playerName(r.Match, *r.Result.Winner)
			}
		}
		o.printf("Game over! Winner: %s\n", winner)
	}
	if r.Match != nil {
		o.printf("\n")
		o.printMatch(r.Match)
	}
}

// parseOrientation accepts full names or their first letter
func parseOrientation(s string) (model.ShipOrientation, error) {
	switch strings.ToLower(s) {
	case "h", "horizontal":
		return model.Horizontal, nil
	case "v", "vertical":
		return model.Vertical, nil
	default:
		return "", fmt.Errorf("orientation must be horizontal or vertical, got %q", s)
	}
}

func (o *Output) printSessionStatus(s *SessionStatus) {
	if !s.Authenticated {
		o.printf("Not logged in\n")
		return
	}
	o.printf("Logged in\n")
	if s.Token == nil {
		return
	}
	if s.Token.Subject != "" {
		o.printf("User: %s\n", s.Token.Subject)
	}
	if s.Token.ExpiresAt != nil {
		suffix := ""
		if s.Expired {
			suffix = " (expired)"
		}
		o.printf("Expires: %s%s\n", s.Token.ExpiresAt.Format(time.RFC3339), suffix)
	}
}
