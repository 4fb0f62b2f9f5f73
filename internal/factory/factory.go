// Package factory wires the application components together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/comus-party/justeprix/internal/dependencies/clock"
	"github.com/comus-party/justeprix/internal/dependencies/random"
	"github.com/comus-party/justeprix/internal/owner"
	"github.com/comus-party/justeprix/internal/services/scoring"
	"github.com/comus-party/justeprix/internal/services/session"
	"github.com/comus-party/justeprix/internal/storage"
	"github.com/comus-party/justeprix/internal/storage/memory"
	redisstorage "github.com/comus-party/justeprix/internal/storage/redis"
	"github.com/comus-party/justeprix/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	ScoringService    *scoring.Service
	SessionController *session.Controller
	OwnerClient       *owner.Client
	HubManager        *ws.HubManager
	Dispatcher        *ws.Dispatcher
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// OwnerURL is the base URL of the owner platform
	OwnerURL string
	// SessionConfig holds the round pacing and roster settings
	// Unset fields are filled from session.DefaultConfig()
	SessionConfig session.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	sessionCfg := applySessionDefaults(cfg.SessionConfig)

	return newWithDependencies(store, clk, rnd, cfg.OwnerURL, sessionCfg, logger), nil
}

// applySessionDefaults fills unset pacing fields from
// session.DefaultConfig, field by field, so a caller setting only some
// of the config keeps the rest at defaults.
func applySessionDefaults(cfg session.Config) session.Config {
	def := session.DefaultConfig()
	if cfg.NextRoundDelay == 0 {
		cfg.NextRoundDelay = def.NextRoundDelay
	}
	if cfg.PersonalScoreDelay == 0 {
		cfg.PersonalScoreDelay = def.PersonalScoreDelay
	}
	if cfg.SettlementPace == 0 {
		cfg.SettlementPace = def.SettlementPace
	}
	if cfg.RedirectDelay == 0 {
		cfg.RedirectDelay = def.RedirectDelay
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = def.RedirectURL
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, ownerURL string, sessionCfg session.Config, logger *slog.Logger) *App {
	// Create services
	scoringService := scoring.New(rnd)
	hubManager := ws.NewHubManager(logger)
	dispatcher := ws.NewDispatcher(hubManager, logger)
	ownerClient := owner.NewClient(ownerURL, logger)
	sessionController := session.NewController(store, scoringService, dispatcher, ownerClient, clk, sessionCfg, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		ScoringService:    scoringService,
		SessionController: sessionController,
		OwnerClient:       ownerClient,
		HubManager:        hubManager,
		Dispatcher:        dispatcher,
	}
}
