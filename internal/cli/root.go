package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-client/internal/factory"
	redissession "github.com/mcoot/battleship-client/internal/session/redis"
)

// env is the state shared by every command of one invocation
type env struct {
	cfg *Config
	app *factory.App
	out *Output
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	e := &env{cfg: DefaultConfig()}
	cfg := e.cfg

	rootCmd := &cobra.Command{
		Use:   "battleship",
		Short: "CLI client for the Battleship API",
		Long: `battleship is a command line client for the Battleship JSON API.

It covers account management, the match lifecycle (create, join, ship
placement, shooting, forfeit) and can place fleets or play shots
automatically.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.app == nil {
				return nil
			}
			return e.app.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "API base URL (env: BATTLESHIP_SERVER)")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "Session token, used for this invocation only (env: BATTLESHIP_TOKEN)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: BATTLESHIP_TOKEN_FILE)")
	flags.StringVar(&cfg.SessionStore, "session-store", cfg.SessionStore, "Session store: file, memory, redis (env: BATTLESHIP_SESSION_STORE)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis session store (env: BATTLESHIP_REDIS_URL)")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout (env: BATTLESHIP_TIMEOUT)")
	flags.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "Autopilot strategy: random, hunt (env: BATTLESHIP_STRATEGY)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newPlayerCmd(e))
	rootCmd.AddCommand(newMatchCmd(e))

	return rootCmd
}

// setup wires the application for the command about to run
func (e *env) setup(cmd *cobra.Command) error {
	cfg := e.cfg
	if cfg.Output != "text" && cfg.Output != "json" {
		return fmt.Errorf("invalid output format %q: must be text or json", cfg.Output)
	}
	e.out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	storeType := cfg.SessionStore
	if cfg.Token != "" {
		// An explicit token must not overwrite the persisted session
		storeType = factory.SessionStoreMemory
	}

	redisCfg := redissession.DefaultConfig()
	redisCfg.URL = cfg.RedisURL

	app, err := factory.New(factory.Config{
		BaseURL:      cfg.ServerURL,
		Timeout:      cfg.Timeout,
		Logger:       logger,
		SessionStore: storeType,
		TokenPath:    cfg.TokenFile,
		RedisConfig:  &redisCfg,
		Strategy:     cfg.Strategy,
	})
	if err != nil {
		return err
	}
	e.app = app

	if cfg.Token != "" {
		if err := app.Session.SetToken(cmd.Context(), cfg.Token); err != nil {
			return fmt.Errorf("failed to set token: %w", err)
		}
	}
	return nil
}

// Run executes the CLI with the given arguments and returns the process
// exit code. Errors are printed in the selected output format.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		NewOutput(outputFlag(cmd), stdout, stderr).PrintError(err)
		return 1
	}
	return 0
}

// Execute runs the root command against the process arguments
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func outputFlag(cmd *cobra.Command) string {
	if f := cmd.PersistentFlags().Lookup("output"); f != nil && f.Value.String() == "json" {
		return "json"
	}
	return "text"
}
