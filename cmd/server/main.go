package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/demesup/awale/internal/api"
	"github.com/demesup/awale/internal/api/ws"
	"github.com/demesup/awale/internal/config"
	"github.com/demesup/awale/internal/factory"
	"github.com/demesup/awale/internal/server"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(cfg.Factory(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Load every stored player, all offline
	if err := app.Registry.Load(context.Background()); err != nil {
		logger.Error("failed to load players", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Game listener
	gameServer := server.New(cfg.Server(), app.Hub, app.Dispatcher, app.SessionConfig, app.Random, logger)
	if err := gameServer.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Status API and WebSocket gateway
	gateway := ws.NewGateway(ws.DefaultConfig(), app.Hub, app.Dispatcher, app.SessionConfig, app.Random, logger)
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Registry:       app.Registry,
		GameController: app.GameController,
		Gateway:        gateway,
	})
	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.StatusAddr
	statusServer := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- gameServer.Serve() }()
	go func() { errCh <- statusServer.Start() }()

	logger.Info("server started",
		slog.String("addr", gameServer.Addr()),
		slog.String("status_addr", cfg.StatusAddr),
		slog.String("storage", cfg.StorageType),
	)

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop intake first, then end sessions so each runs its logout teardown
	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := gateway.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := gameServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := app.Registry.PersistAll(shutdownCtx); err != nil {
		logger.Error("failed to persist players", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		_ = app.Close()
		os.Exit(exitCode)
	}
}
