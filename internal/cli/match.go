package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-client/internal/model"
)

func newMatchCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match commands",
	}

	cmd.AddCommand(newMatchListCmd(e))
	cmd.AddCommand(newMatchCreateCmd(e))
	cmd.AddCommand(newMatchJoinCmd(e))
	cmd.AddCommand(newMatchGetCmd(e))
	cmd.AddCommand(newMatchPlaceCmd(e))
	cmd.AddCommand(newMatchReadyCmd(e))
	cmd.AddCommand(newMatchShootCmd(e))
	cmd.AddCommand(newMatchForfeitCmd(e))
	cmd.AddCommand(newMatchAutoplaceCmd(e))
	cmd.AddCommand(newMatchWatchCmd(e))

	return cmd
}

func newMatchListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := e.app.Queries.Matches(cmd.Context())
			if err != nil {
				return err
			}
			e.out.Print(matches)
			return nil
		},
	}
}

func newMatchCreateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new match",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := e.app.Queries.CreateMatch(cmd.Context())
			if err != nil {
				return err
			}
			e.out.Print(m)
			return nil
		},
	}
}

func newMatchJoinCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Join a waiting match as player 2",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := e.app.Queries.JoinMatch(cmd.Context(), model.MatchID(args[0]))
			if err != nil {
				return err
			}
			e.out.Print(m)
			return nil
		},
	}
}

func newMatchGetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := e.app.Queries.Match(cmd.Context(), model.MatchID(args[0]))
			if err != nil {
				return err
			}
			e.out.Print(m)
			return nil
		},
	}
}

func newMatchPlaceCmd(e *env) *cobra.Command {
	var (
		ship        string
		orientation string
		row, col    int
	)

	cmd := &cobra.Command{
		Use:   "place <id>",
		Short: "Place a ship during setup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parseOrientation(orientation)
			if err != nil {
				return err
			}

			m, err := e.app.Queries.PlaceShip(cmd.Context(), model.MatchID(args[0]), model.SetupShipPayload{
				ShipType:    ship,
				Orientation: o,
				StartRow:    row,
				StartCol:    col,
			})
			if err != nil {
				return err
			}
			e.out.Print(m)
			return nil
		},
	}

	cmd.Flags().StringVar(&ship, "ship", "", "Ship type, e.g. carrier (required)")
	cmd.Flags().StringVar(&orientation, "orientation", "horizontal", "horizontal (h) or vertical (v)")
	cmd.Flags().IntVar(&row, "row", 0, "Start row, 0-indexed")
	cmd.Flags().IntVar(&col, "col", 0, "Start column, 0-indexed")
	_ = cmd.MarkFlagRequired("ship")

	return cmd
}

func newMatchReadyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ready <id>",
		Short: "Confirm ship placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := e.app.Queries.ConfirmSetup(cmd.Context(), model.MatchID(args[0]))
			if err != nil {
				return err
			}
			e.out.Print(m)
			return nil
		},
	}
}

func newMatchShootCmd(e *env) *cobra.Command {
	var (
		row, col int
		auto     bool
	)

	cmd := &cobra.Command{
		Use:   "shoot <id>",
		Short: "Fire at a cell of the opponent's board",
		Long: `Fire at a cell of the opponent's board and show the updated match.

With --auto the autopilot strategy picks the cell.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := model.MatchID(args[0])

			if !auto && (!cmd.Flags().Changed("row") || !cmd.Flags().Changed("col")) {
				return fmt.Errorf("--row and --col are required unless --auto is set")
			}

			report := &ShotReport{}
			if auto {
				user, err := e.app.Queries.Profile(ctx)
				if err != nil {
					return err
				}
				shot, err := e.app.Autopilot.FireShot(ctx, id, user.ID)
				if err != nil {
					return err
				}
				report.Position = &shot.Position
				report.Result = shot.Result
			} else {
				result, err := e.app.Queries.Shoot(ctx, id, model.ShootPayload{Row: row, Col: col})
				if err != nil {
					return err
				}
				report.Position = &model.Position{Row: row, Col: col}
				report.Result = result
			}

			// The shot invalidated the cached match, so this reads it fresh
			m, err := e.app.Queries.Match(ctx, id)
			if err != nil {
				return err
			}
			report.Match = m

			e.out.Print(report)
			return nil
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "Target row, 0-indexed")
	cmd.Flags().IntVar(&col, "col", 0, "Target column, 0-indexed")
	cmd.Flags().BoolVar(&auto, "auto", false, "Let the autopilot pick the target")

	return cmd
}

func newMatchForfeitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "forfeit <id>",
		Short: "Forfeit a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := e.app.Queries.Forfeit(cmd.Context(), model.MatchID(args[0]))
			if err != nil {
				return err
			}
			e.out.Print(m)
			return nil
		},
	}
}

func newMatchAutoplaceCmd(e *env) *cobra.Command {
	var ready bool

	cmd := &cobra.Command{
		Use:   "autoplace <id>",
		Short: "Place the rest of the fleet automatically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := model.MatchID(args[0])

			user, err := e.app.Queries.Profile(ctx)
			if err != nil {
				return err
			}
			m, err := e.app.Autopilot.PlaceFleet(ctx, id, user.ID, model.DefaultFleet)
			if err != nil {
				return err
			}
			if ready {
				if m, err = e.app.Queries.ConfirmSetup(ctx, id); err != nil {
					return err
				}
			}
			e.out.Print(m)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ready, "ready", false, "Confirm setup after placing")

	return cmd
}
