// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/demesup/awale/internal/factory"
	"github.com/demesup/awale/internal/server"
	"github.com/demesup/awale/internal/services/auth"
	"github.com/demesup/awale/internal/services/registry"
	"github.com/demesup/awale/internal/services/social"
	"github.com/demesup/awale/internal/session"
	redisstorage "github.com/demesup/awale/internal/storage/redis"
)

// Config is the process configuration
type Config struct {
	Addr       string `env:"AWALE_ADDR"        envDefault:":4000"`
	StatusAddr string `env:"AWALE_STATUS_ADDR" envDefault:":8080"`

	StorageType string `env:"STORAGE_TYPE"      envDefault:"file"`
	PlayerFile  string `env:"AWALE_PLAYER_FILE" envDefault:"players.txt"`
	RedisURL    string `env:"REDIS_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MaxFriends     int           `env:"AWALE_MAX_FRIENDS"     envDefault:"20"`
	MaxBioLength   int           `env:"AWALE_MAX_BIO_LENGTH"  envDefault:"1000"`
	BcryptCost     int           `env:"AWALE_BCRYPT_COST"     envDefault:"10"`
	SendBuffer     int           `env:"AWALE_SEND_BUFFER"     envDefault:"256"`
	PersistTimeout time.Duration `env:"AWALE_PERSIST_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file from dotenvPath, then parses the
// environment. Variables already set take precedence over the file.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	switch c.StorageType {
	case factory.StorageTypeFile:
		if c.PlayerFile == "" {
			return errors.New("AWALE_PLAYER_FILE required when STORAGE_TYPE=file")
		}
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case factory.StorageTypeMemory:
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be file, memory or redis", c.StorageType)
	}
	if c.MaxFriends < 1 {
		return errors.New("AWALE_MAX_FRIENDS must be positive")
	}
	if c.MaxBioLength < 1 {
		return errors.New("AWALE_MAX_BIO_LENGTH must be positive")
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to Info
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Factory builds the application factory configuration
func (c Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:         logger,
		StorageType:    c.StorageType,
		PlayerFile:     c.PlayerFile,
		AuthConfig:     auth.Config{Cost: c.BcryptCost},
		RegistryConfig: registry.Config{PersistTimeout: c.PersistTimeout},
		SocialConfig:   social.Config{MaxFriends: c.MaxFriends, MaxBioLength: c.MaxBioLength},
		SessionConfig:  session.Config{SendBufferSize: c.SendBuffer},
	}
	if c.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// Server builds the TCP listener configuration
func (c Config) Server() server.Config {
	cfg := server.DefaultConfig()
	cfg.Addr = c.Addr
	return cfg
}
