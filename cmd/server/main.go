package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/adveron/messaging-backend/internal/api"
	"github.com/adveron/messaging-backend/internal/config"
	"github.com/adveron/messaging-backend/internal/database"
	"github.com/adveron/messaging-backend/internal/notify"
	"github.com/adveron/messaging-backend/internal/services"
	"github.com/adveron/messaging-backend/internal/storage"
	"github.com/adveron/messaging-backend/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting messaging backend")
	cfg.LogConfig(logger)

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Attachment store
	fileStorage, err := storage.NewLocalStorage(cfg.AttachmentStoragePath)
	if err != nil {
		logger.Error("failed to initialize attachment storage", slog.Any("error", err))
		os.Exit(1)
	}

	// WebSocket hub for new-message push
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Email notification relay (optional)
	var notifier services.Notifier
	if cfg.NotifyEnabled {
		notifier = notify.NewEmailNotifier(notify.Config{
			RelayAddr: cfg.SMTPRelayAddr,
			From:      cfg.SMTPFrom,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
		})
		logger.Info("email notifications enabled", slog.String("relay", cfg.SMTPRelayAddr))
	}

	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		FileStorage:    fileStorage,
		Hub:            hub,
		Notifier:       notifier,
		Logger:         logger,
		APIKey:         cfg.APIKey,
		AllowedOrigins: splitOrigins(cfg.AllowedOrigins),
		RateLimit:      int(cfg.RateLimitRequests),
		RateBurst:      cfg.RateLimitBurst,
		EnableAuth:     cfg.APIKey != "",
	})

	go func() {
		addr := ":" + strconv.Itoa(cfg.APIPort)
		logger.Info("HTTP server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", slog.Any("error", err))
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
