package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-client/internal/model"
)

// DefaultWatchInterval is the polling interval for match watch
const DefaultWatchInterval = 2 * time.Second

func newMatchWatchCmd(e *env) *cobra.Command {
	var (
		interval  time.Duration
		autoShoot bool
	)

	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow a match until it finishes",
		Long: `Poll a match and print it whenever it changes.

The cached match is invalidated before every read so each poll goes to the
server. With --auto-shoot the autopilot fires whenever it is your turn.

Stops when the match finishes. Press Ctrl+C to stop earlier.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = DefaultWatchInterval
			}
			return e.watch(cmd.Context(), model.MatchID(args[0]), interval, autoShoot)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", DefaultWatchInterval, "Polling interval")
	cmd.Flags().BoolVar(&autoShoot, "auto-shoot", false, "Fire automatically on your turn")

	return cmd
}

func (e *env) watch(ctx context.Context, id model.MatchID, interval time.Duration, autoShoot bool) error {
	var me model.UserID
	if autoShoot {
		user, err := e.app.Queries.Profile(ctx)
		if err != nil {
			return err
		}
		me = user.ID
	}

	var (
		printed    bool
		lastUpdate string
	)
	for {
		m, err := e.app.Queries.RefreshMatch(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if !printed || m.UpdatedAt != lastUpdate {
			printed = true
			lastUpdate = m.UpdatedAt
			e.out.Print(m)
		}
		if m.IsFinished() {
			return nil
		}

		if autoShoot && m.Phase == model.PhasePlaying && m.IsTurn(me) {
			shot, err := e.app.Autopilot.FireShot(ctx, id, me)
			switch {
			case errors.Is(err, model.ErrNotYourTurn):
				// the turn moved on between the two reads
			case err != nil:
				return err
			default:
				e.out.Print(&ShotReport{Position: &shot.Position, Result: shot.Result})
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-e.app.Clock.After(interval):
		}
	}
}
