package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vgogokhia/StrelokAI/internal/api"
	"github.com/vgogokhia/StrelokAI/internal/auth"
	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/internal/metrics"
	"github.com/vgogokhia/StrelokAI/internal/profiles"
	"github.com/vgogokhia/StrelokAI/internal/scope"
	"github.com/vgogokhia/StrelokAI/internal/storage/sqlite"
	"github.com/vgogokhia/StrelokAI/internal/weather"
	"github.com/vgogokhia/StrelokAI/internal/websocket"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting StrelokAI server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// SQLite storage
	dbDir := filepath.Dir(cfg.Storage.SQLitePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Error("Failed to create database directory", logger.Error(err), logger.String("path", dbDir))
		os.Exit(1)
	}

	store, err := sqlite.NewStore(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Error("Failed to create SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	userStorage, err := sqlite.NewUserStorage(store.GetDB(), log)
	if err != nil {
		log.Error("Failed to create user storage", logger.Error(err))
		os.Exit(1)
	}
	profileStorage, err := sqlite.NewProfileStorage(store.GetDB(), log)
	if err != nil {
		log.Error("Failed to create profile storage", logger.Error(err))
		os.Exit(1)
	}

	// Services
	weatherService := weather.NewService(cfg.Weather, log)
	authService := auth.NewService(userStorage, &cfg.Auth, log)
	profileService := profiles.NewService(profileStorage, log)
	scopeService := scope.NewService(&cfg.AI, log)
	if !scopeService.Enabled() {
		log.Info("Scope recognition running in demo mode (no Gemini API key)")
	}

	collector := metrics.NewCollector()

	// WebSocket server with the trajectory streamer
	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	handler := api.NewHandler(weatherService, authService, profileService,
		scopeService, cfg, log, wsServer, collector)
	wsServer.SetMessageHandler(api.NewSolveStreamHandler(handler, log))

	// Periodic session cleanup
	sessionCleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				authService.CleanupExpired()
			case <-sessionCleanupDone:
				return
			}
		}
	}()

	router := api.NewRouter(handler, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", addr), logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")
	close(sessionCleanupDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", logger.Error(err))
	}

	log.Info("Server stopped")
}
