package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/battleship-client/internal/cache"
	"github.com/mcoot/battleship-client/internal/dependencies/clock"
	"github.com/mcoot/battleship-client/internal/dependencies/random"
	"github.com/mcoot/battleship-client/internal/queries"
	"github.com/mcoot/battleship-client/internal/services/auth"
	"github.com/mcoot/battleship-client/internal/services/autopilot"
	"github.com/mcoot/battleship-client/internal/services/match"
	"github.com/mcoot/battleship-client/internal/session"
	"github.com/mcoot/battleship-client/internal/session/file"
	"github.com/mcoot/battleship-client/internal/session/memory"
	redissession "github.com/mcoot/battleship-client/internal/session/redis"
	"github.com/mcoot/battleship-client/internal/transport"
)

// Session store type constants
const (
	SessionStoreFile   = "file"
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// App contains all wired client components
type App struct {
	// Session
	Session session.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Transport and adapters
	Transport    *transport.Client
	AuthService  *auth.Service
	MatchService *match.Service

	// Cache-bound operations
	Cache     *cache.Cache
	Queries   *queries.Client
	Autopilot *autopilot.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:3000/api
	BaseURL string
	// Timeout bounds each request. If zero, transport.DefaultTimeout is used.
	Timeout time.Duration
	// HTTPClient overrides the HTTP client (optional)
	HTTPClient *http.Client
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// SessionStore selects the token backend ("file", "memory" or "redis")
	// If empty, defaults to "memory"
	SessionStore string
	// TokenPath is the token file (used if SessionStore is "file")
	// If empty, file.DefaultPath() is used
	TokenPath string
	// RedisConfig holds Redis connection settings (required if SessionStore is "redis")
	RedisConfig *redissession.Config

	// CacheConfig configures the query cache
	CacheConfig cache.Config
	// AutopilotConfig configures fleet placement retries
	// If zero value, defaults to autopilot.DefaultConfig()
	AutopilotConfig autopilot.Config
	// Strategy names the autopilot strategy. If empty, "random" is used.
	Strategy string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func newSessionStore(cfg Config) (session.Store, io.Closer, error) {
	storeType := cfg.SessionStore
	if storeType == "" {
		storeType = SessionStoreMemory
	}

	switch storeType {
	case SessionStoreMemory:
		return memory.New(), nil, nil
	case SessionStoreFile:
		path := cfg.TokenPath
		if path == "" {
			path = file.DefaultPath()
		}
		return file.New(path), nil, nil
	case SessionStoreRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when SessionStore is redis")
		}
		store, err := redissession.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("invalid SessionStore %q: must be 'file', 'memory' or 'redis'", storeType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store session.Store, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	strategyName := cfg.Strategy
	if strategyName == "" {
		strategyName = autopilot.StrategyRandom
	}
	strategy, ok := autopilot.Strategies(rnd)[strategyName]
	if !ok {
		return nil, fmt.Errorf("unknown autopilot strategy: %s", strategyName)
	}

	autopilotCfg := cfg.AutopilotConfig
	if autopilotCfg.MaxAttempts == 0 {
		autopilotCfg = autopilot.DefaultConfig()
	}

	client := transport.New(transport.Config{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		Store:      store,
		Logger:     logger,
		HTTPClient: cfg.HTTPClient,
	})
	authService := auth.New(client)
	matchService := match.New(client)
	queryCache := cache.New(cfg.CacheConfig, clk, logger)
	queryClient := queries.New(queryCache, authService, matchService, store, logger)

	return &App{
		Session:      store,
		Clock:        clk,
		Random:       rnd,
		Transport:    client,
		AuthService:  authService,
		MatchService: matchService,
		Cache:        queryCache,
		Queries:      queryClient,
		Autopilot:    autopilot.NewService(queryClient, strategy, autopilotCfg, logger),
	}, nil
}

// Close releases connections held by the session store
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
