package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tunequiz/tunequiz/internal/dependencies/clock"
	"github.com/tunequiz/tunequiz/internal/dependencies/random"
	"github.com/tunequiz/tunequiz/internal/services/grading"
	"github.com/tunequiz/tunequiz/internal/services/history"
	"github.com/tunequiz/tunequiz/internal/services/session"
	"github.com/tunequiz/tunequiz/internal/storage"
	"github.com/tunequiz/tunequiz/internal/storage/memory"
	"github.com/tunequiz/tunequiz/internal/storage/postgres"
	redisstorage "github.com/tunequiz/tunequiz/internal/storage/redis"
	"github.com/tunequiz/tunequiz/internal/tracks"
	"github.com/tunequiz/tunequiz/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage

	Clock  clock.Clock
	Random random.Random

	Library  *tracks.Library
	Grader   *grading.Service
	Recorder *history.Recorder
	Manager  *session.Manager
	Sessions *ws.Sessions
}

// Config holds configuration for the application factory
type Config struct {
	// TracksPath is the path to the JSON track library
	TracksPath string
	// SessionConfig holds per-session gameplay settings
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// GradingConfig holds answer matching settings
	// If zero value, defaults to grading.DefaultConfig()
	GradingConfig grading.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresDSN is the Postgres connection string (required if StorageType is "postgres")
	PostgresDSN string
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	library, err := tracks.LoadFile(cfg.TracksPath, logger)
	if err != nil {
		return nil, err
	}

	sessionCfg := cfg.SessionConfig
	if sessionCfg == (session.Config{}) {
		sessionCfg = session.DefaultConfig()
	}

	gradingCfg := cfg.GradingConfig
	if gradingCfg == (grading.Config{}) {
		gradingCfg = grading.DefaultConfig()
	}

	return newWithDependencies(store, library, sessionCfg, gradingCfg, clock.New(), random.New(), logger), nil
}

func newStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	library *tracks.Library,
	sessionCfg session.Config,
	gradingCfg grading.Config,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	grader := grading.New(gradingCfg)
	recorder := history.New(store, logger)
	manager := session.NewManager(sessionCfg, library, grader, recorder, clk, rnd, logger)
	sessions := ws.NewSessions(manager, logger)

	return &App{
		Storage:  store,
		Clock:    clk,
		Random:   rnd,
		Library:  library,
		Grader:   grader,
		Recorder: recorder,
		Manager:  manager,
		Sessions: sessions,
	}
}
