package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/comus-party/justeprix/internal/api"
	"github.com/comus-party/justeprix/internal/config"
	"github.com/comus-party/justeprix/internal/factory"
	"github.com/comus-party/justeprix/internal/services/session"
	redisstorage "github.com/comus-party/justeprix/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessionCfg := session.Config{
		AllowSinglePlayer:  cfg.AllowSinglePlayer,
		NextRoundDelay:     cfg.NextRoundDelay,
		PersonalScoreDelay: cfg.PersonalScoreDelay,
		SettlementPace:     cfg.SettlementPace,
		RedirectDelay:      cfg.RedirectDelay,
		RedirectURL:        cfg.OwnerHome,
	}

	factoryCfg := factory.Config{
		Logger:        logger,
		StorageType:   cfg.Storage,
		OwnerURL:      cfg.OwnerURL,
		SessionConfig: sessionCfg,
	}

	if cfg.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		HubManager:        app.HubManager,
		Dispatcher:        app.Dispatcher,
		OwnerKeyHash:      cfg.OwnerKeyHash,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
