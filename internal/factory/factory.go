package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/demesup/awale/internal/dependencies/clock"
	"github.com/demesup/awale/internal/dependencies/random"
	"github.com/demesup/awale/internal/protocol"
	"github.com/demesup/awale/internal/services/auth"
	"github.com/demesup/awale/internal/services/challenge"
	"github.com/demesup/awale/internal/services/game"
	"github.com/demesup/awale/internal/services/observer"
	"github.com/demesup/awale/internal/services/registry"
	"github.com/demesup/awale/internal/services/social"
	"github.com/demesup/awale/internal/session"
	"github.com/demesup/awale/internal/storage"
	"github.com/demesup/awale/internal/storage/file"
	"github.com/demesup/awale/internal/storage/memory"
	redisstorage "github.com/demesup/awale/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.PlayerStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Hasher auth.Hasher

	// Services
	Hub                 *session.Hub
	Registry            *registry.Registry
	GameController      *game.Controller
	ChallengeController *challenge.Controller
	ObserverController  *observer.Controller
	SocialService       *social.Service
	Dispatcher          *protocol.Dispatcher

	// SessionConfig is applied to every new connection
	SessionConfig session.Config
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// PlayerFile is the path of the player file (required if StorageType is "file")
	PlayerFile string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AuthConfig holds credential hashing settings (optional)
	AuthConfig auth.Config
	// RegistryConfig, SocialConfig and SessionConfig default when zero
	RegistryConfig registry.Config
	SocialConfig   social.Config
	SessionConfig  session.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.PlayerStore
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		if cfg.PlayerFile == "" {
			return nil, errors.New("PlayerFile required when StorageType is file")
		}
		store = file.New(cfg.PlayerFile)
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
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if authCfg.Cost == 0 {
		authCfg = auth.DefaultConfig()
	}
	hasher := auth.New(authCfg)

	hub := session.NewHub(logger)
	return newWithDependencies(store, hasher, clk, rnd, hub, hub, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.PlayerStore,
	hasher auth.Hasher,
	clk clock.Clock,
	rnd random.Random,
	hub *session.Hub,
	notifier registry.Notifier,
	cfg Config,
	logger *slog.Logger,
) *App {
	sessionCfg := cfg.SessionConfig
	if sessionCfg.SendBufferSize == 0 {
		sessionCfg = session.DefaultConfig()
	}

	reg := registry.New(store, hasher, notifier, clk, logger, cfg.RegistryConfig)
	gameController := game.NewController(reg, clk, rnd, logger)
	observerController := observer.NewController(reg, logger)
	challengeController := challenge.NewController(reg, gameController, observerController, logger)
	socialService := social.New(reg, observerController, logger, cfg.SocialConfig)

	// Logout teardown order: game, then challenge, then observation
	reg.OnLogout(gameController.OnLogout)
	reg.OnLogout(challengeController.OnLogout)
	reg.OnLogout(observerController.OnLogout)

	dispatcher := protocol.NewDispatcher(reg, gameController, challengeController, observerController, socialService, logger)

	return &App{
		Storage:             store,
		Clock:               clk,
		Random:              rnd,
		Hasher:              hasher,
		Hub:                 hub,
		Registry:            reg,
		GameController:      gameController,
		ChallengeController: challengeController,
		ObserverController:  observerController,
		SocialService:       socialService,
		Dispatcher:          dispatcher,
		SessionConfig:       sessionCfg,
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
