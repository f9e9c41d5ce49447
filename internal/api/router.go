package api

import (
	"log/slog"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/adveron/messaging-backend/internal/api/handlers"
	"github.com/adveron/messaging-backend/internal/api/middleware"
	"github.com/adveron/messaging-backend/internal/directory"
	"github.com/adveron/messaging-backend/internal/repository"
	"github.com/adveron/messaging-backend/internal/services"
	"github.com/adveron/messaging-backend/internal/storage"
	"github.com/adveron/messaging-backend/internal/websocket"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB          *gorm.DB
	FileStorage storage.FileStorage
	Hub         *websocket.Hub
	Notifier    services.Notifier
	Logger      *slog.Logger
	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	RateLimit      int      // Requests per second (0 = use env default)
	RateBurst      int      // Burst size for rate limiter
	EnableAuth     bool     // Enable API key authentication
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Security middleware, outermost first
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())

	if len(cfg.AllowedOrigins) > 0 {
		os.Setenv("ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	}
	e.Use(middleware.SecureCORS())

	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(float64(cfg.RateLimit), cfg.RateBurst, cfg.Logger))
	} else {
		e.Use(middleware.RateLimiter(cfg.Logger))
	}

	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Initialize repositories
	participantRepo := repository.NewParticipantRepository(cfg.DB)
	conversationRepo := repository.NewConversationRepository(cfg.DB)
	messageRepo := repository.NewMessageRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)

	// Orchestration core
	dir := directory.New(participantRepo)
	var publisher services.MessagePublisher
	if cfg.Hub != nil {
		publisher = cfg.Hub
	}
	messaging := services.NewMessagingService(
		conversationRepo,
		messageRepo,
		dir,
		cfg.FileStorage,
		publisher,
		cfg.Notifier,
		cfg.Logger,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	participantHandler := handlers.NewParticipantHandler(participantRepo)
	conversationHandler := handlers.NewConversationHandler(messaging)
	messageHandler := handlers.NewMessageHandler(messaging)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentRepo, messageRepo, cfg.FileStorage)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// WebSocket push
	if cfg.Hub != nil {
		wsHandler := handlers.NewWSHandler(cfg.Hub, cfg.Logger)
		e.GET("/ws", wsHandler.Serve)
	}

	// API routes
	api := e.Group("/api")

	if cfg.EnableAuth && cfg.APIKey != "" {
		os.Setenv("API_KEY", cfg.APIKey)
	}
	api.Use(middleware.APIKeyAuth(cfg.Logger))

	// Participant directory routes
	participants := api.Group("/participants")
	participants.POST("", participantHandler.Create)
	participants.GET("", participantHandler.List)
	participants.GET("/:id", participantHandler.Get)

	// Conversation routes
	conversations := api.Group("/conversations")
	conversations.GET("", conversationHandler.List)
	conversations.GET("/:id", conversationHandler.Open)
	conversations.PATCH("/:id/archive", conversationHandler.ToggleArchive)
	conversations.POST("/:id/recount", conversationHandler.Recount)

	// Message routes
	messages := api.Group("/messages")
	messages.POST("", messageHandler.Send)
	messages.PATCH("/:id/star", messageHandler.ToggleStar)

	// Attachment routes (nested under messages)
	messages.GET("/:message_id/attachments", attachmentHandler.List)

	// Attachment routes (standalone)
	attachments := api.Group("/attachments")
	attachments.GET("/:id", attachmentHandler.Get)
	attachments.GET("/:id/download", attachmentHandler.Download)

	return e
}
