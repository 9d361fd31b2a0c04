package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"quill/internal/artifact"
	"quill/internal/auth"
	"quill/internal/config"
	"quill/internal/handler"
	"quill/internal/handler/sse"
	"quill/internal/middleware"
	"quill/internal/repository/postgres"
	"quill/internal/service"
	"quill/internal/settings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if logDir := os.Getenv("LOG_DIR"); logDir != "" {
		logFile, err := config.SetupLogFile(logDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names and repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	versionRepo := postgres.NewVersionRepository(repoConfig)
	suggestionRepo := postgres.NewSuggestionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Load engine settings (visibility threshold, SSE tuning, retention)
	settingsRegistry, err := settings.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load engine settings: %v", err)
	}
	engine := settingsRegistry.Engine()
	logger.Info("engine settings loaded",
		"visibility_threshold", engine.Visibility.ContentThreshold,
		"immediate_kinds", engine.Visibility.ImmediateKinds,
	)

	// Create the streaming engine pieces
	gate := artifact.NewGate(engine.Visibility)
	sessionRegistry := artifact.NewSessionRegistry(
		time.Duration(engine.Sessions.CleanupIntervalSeconds)*time.Second,
		time.Duration(engine.Sessions.RetentionMinutes)*time.Minute,
	)
	go sessionRegistry.StartCleanup(ctx)

	// Create services
	versionStore := service.NewVersionStore(versionRepo, txManager, logger)
	suggestionService := service.NewSuggestionService(suggestionRepo, logger)

	// Create handlers
	sseConfig := &sse.Config{
		KeepAliveInterval: time.Duration(engine.Stream.KeepaliveSeconds) * time.Second,
	}
	sseHandler := handler.NewSSEHandler(sessionRegistry, logger, sseConfig)
	versionHandler := handler.NewVersionHandler(versionStore, sessionRegistry, logger)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService, versionStore, sessionRegistry, logger)
	streamHandler := handler.NewStreamHandler(sessionRegistry, sseHandler, logger)
	consoleHandler := handler.NewConsoleHandler(sessionRegistry, logger)

	// Debug handlers (only in dev environment)
	var debugHandler *handler.DebugHandler
	if cfg.Environment == "dev" {
		debugHandler = handler.NewDebugHandler(sessionRegistry, versionStore, gate, engine.Stream, cfg, logger)
		logger.Warn("DEBUG MODE: Debug endpoints enabled (NEVER use in production!)")
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", versionHandler.HealthCheck)

	// Version routes
	mux.HandleFunc("GET /api/documents/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("POST /api/documents/{id}/versions", versionHandler.SaveVersion)
	mux.HandleFunc("POST /api/documents/{id}/versions/restore", versionHandler.RestoreVersion)
	mux.HandleFunc("GET /api/documents/{id}/versions/index", versionHandler.GetVersionIndex)
	mux.HandleFunc("PUT /api/documents/{id}/versions/index", versionHandler.SetVersionIndex)

	// Suggestion routes
	mux.HandleFunc("GET /api/documents/{id}/suggestions", suggestionHandler.ListSuggestions)
	mux.HandleFunc("POST /api/documents/{id}/suggestions", suggestionHandler.CreateSuggestions)
	mux.HandleFunc("PATCH /api/suggestions/{id}/resolve", suggestionHandler.ResolveSuggestion)

	// Streaming routes
	mux.HandleFunc("GET /api/documents/{id}/stream", streamHandler.StreamDocument)   // SSE by document
	mux.HandleFunc("GET /api/sessions/{id}/stream", streamHandler.StreamSession)     // SSE by session
	mux.HandleFunc("GET /api/sessions/{id}", streamHandler.GetSession)               // Session status/snapshot
	mux.HandleFunc("POST /api/sessions/{id}/interrupt", streamHandler.InterruptSession) // Cancel stream

	// Console routes (tool runner + UI)
	mux.HandleFunc("POST /api/sessions/{id}/console", consoleHandler.UpsertOutput)
	mux.HandleFunc("GET /api/sessions/{id}/console", consoleHandler.ListOutputs)
	mux.HandleFunc("DELETE /api/sessions/{id}/console", consoleHandler.ClearOutputs)

	// Debug routes (only in dev environment)
	if cfg.Environment == "dev" && debugHandler != nil {
		mux.HandleFunc("POST /debug/api/documents/generate", debugHandler.GenerateDocument)
		logger.Warn("Debug route registered: POST /debug/api/documents/generate (lorem streaming session)")
	}

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

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
