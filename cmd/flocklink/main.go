package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/flocklink/flocklink/internal/config"
	httpserver "github.com/flocklink/flocklink/internal/http"
	"github.com/flocklink/flocklink/pkg/auth"
	"github.com/flocklink/flocklink/pkg/notification"
	"github.com/flocklink/flocklink/pkg/repository"
	"github.com/flocklink/flocklink/pkg/workflow"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsingDevSecret {
		logger.Warn("SESSION_SECRET not configured, using development fallback key; do not run this in production")
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	membersRepo := repository.NewMembersRepository(db)
	membershipsRepo := repository.NewMembershipsRepository(db)
	churchesRepo := repository.NewChurchesRepository(db)
	requestsRepo := repository.NewRequestsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Session token codec
	codec := auth.NewTokenCodec(auth.TokenConfig{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
	})

	// Optional revocation denylist
	denylist, err := auth.NewDenylist(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if denylist != nil {
		defer denylist.Close()
		logger.Info("revocation denylist enabled")
	}

	guard := auth.NewGuard(codec, denylist, cfg.SystemAdminEmail)

	// Optional audit event stream
	var auditEvents *notification.AuditPublisher
	if cfg.HasKafka() {
		auditEvents = notification.NewAuditPublisher(cfg.KafkaBroker, cfg.KafkaAuditTopic)
		defer auditEvents.Close()
		logger.Info("audit event stream enabled", "topic", cfg.KafkaAuditTopic)
	}

	// Decision workflow
	decisionWorkflow := workflow.NewService(db, requestsRepo, auditRepo, auditEvents, logger)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:           logger,
		Config:           cfg,
		DB:               db,
		TokenCodec:       codec,
		Guard:            guard,
		MembersRepo:      membersRepo,
		MembershipsRepo:  membershipsRepo,
		ChurchesRepo:     churchesRepo,
		RequestsRepo:     requestsRepo,
		AuditRepo:        auditRepo,
		DecisionWorkflow: decisionWorkflow,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
