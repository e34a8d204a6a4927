package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-client/internal/services/auth"
	"github.com/mcoot/battleship-client/internal/session"
)

var errInvalidToken = errors.New("session token is not valid")

func newPlayerCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Account and session commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd(e))
	cmd.AddCommand(newPlayerLoginCmd(e))
	cmd.AddCommand(newPlayerLogoutCmd(e))
	cmd.AddCommand(newPlayerMeCmd(e))
	cmd.AddCommand(newPlayerValidateCmd(e))
	cmd.AddCommand(newPlayerStatusCmd(e))

	return cmd
}

func newPlayerRegisterCmd(e *env) *cobra.Command {
	var in auth.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := e.app.Queries.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			e.out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newPlayerLoginCmd(e *env) *cobra.Command {
	var in auth.LoginInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := e.app.Queries.Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			e.out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newPlayerLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.Queries.Logout(cmd.Context()); err != nil {
				return err
			}
			e.out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newPlayerMeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := e.app.Queries.Profile(cmd.Context())
			if err != nil {
				return err
			}
			e.out.Print(user)
			return nil
		},
	}
}

func newPlayerValidateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the stored session token is still accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.app.Queries.ValidateToken(cmd.Context()) {
				return errInvalidToken
			}
			e.out.PrintMessage("Session token is valid")
			return nil
		},
	}
}

func newPlayerStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session without contacting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := e.app.Session.Token(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read session: %w", err)
			}

			status := &SessionStatus{Authenticated: token != ""}
			if status.Authenticated {
				// opaque tokens are still valid sessions, there is just nothing to show
				if info, err := session.ParseToken(token); err == nil {
					status.Token = info
					status.Expired = info.Expired(e.app.Clock.Now())
				}
			}
			e.out.Print(status)
			return nil
		},
	}
}
