package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dossier/internal/auth"
	"dossier/internal/config"
	"dossier/internal/handler"
	"dossier/internal/handler/sse"
	"dossier/internal/middleware"
	"dossier/internal/qc"
	"dossier/internal/repository/postgres"
	"dossier/internal/service/organizer"
	"dossier/internal/taxonomy"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create Redis client for the QC status feed
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	logger.Info("redis connected")

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	submissionRepo := postgres.NewSubmissionRepository(repoConfig)
	documentRepo := postgres.NewDocumentRepository(repoConfig)

	// QC pipeline client (bulk approval and placement guidance)
	pipelineClient := qc.NewClient(cfg.QCBaseURL)

	// Load the regional module taxonomy
	taxonomyProvider, err := taxonomy.NewProvider()
	if err != nil {
		log.Fatalf("Failed to load module taxonomy: %v", err)
	}
	logger.Info("taxonomy loaded", "regions", len(taxonomyProvider.Regions()))

	// Session registry: one organizer actor per open (user, submission) view
	registry := organizer.NewRegistry(
		taxonomyProvider,
		submissionRepo,
		documentRepo,
		documentRepo,
		pipelineClient,
		redisClient,
		logger,
	)

	// Create handlers
	sseConfig := sse.DefaultConfig()
	organizerHandler := handler.NewOrganizerHandler(registry, logger)
	eventsHandler := handler.NewEventsHandler(registry, sseConfig, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionRepo, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", organizerHandler.HealthCheck)

	// Submission routes
	mux.HandleFunc("GET /api/submissions", submissionHandler.List)
	mux.HandleFunc("GET /api/submissions/{id}", submissionHandler.Get)

	// Organizer routes
	mux.HandleFunc("GET /api/submissions/{id}/organizer", organizerHandler.GetState)
	mux.HandleFunc("DELETE /api/submissions/{id}/organizer", organizerHandler.Dismiss)
	mux.HandleFunc("POST /api/submissions/{id}/organizer/move", organizerHandler.Move)
	mux.HandleFunc("POST /api/submissions/{id}/organizer/selection", organizerHandler.ToggleSelect)
	mux.HandleFunc("POST /api/submissions/{id}/organizer/bulk-approve", organizerHandler.BulkApprove)
	mux.HandleFunc("POST /api/submissions/{id}/organizer/order", organizerHandler.SaveOrder)
	mux.HandleFunc("GET /api/submissions/{id}/organizer/advisory", organizerHandler.GetAdvisory)

	// Event feed (SSE)
	mux.HandleFunc("GET /api/submissions/{id}/organizer/events", eventsHandler.Stream)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.AuthMiddleware(jwtVerifier)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Start server; shut down cleanly on SIGINT/SIGTERM so live sessions
	// and their status subscriptions are closed.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
		registry.CloseAll()
	}
}
