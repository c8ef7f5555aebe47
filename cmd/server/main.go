package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/config"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/handlers"
	"github.com/nayan947211-pixel/study-buddy/internal/logger"
	"github.com/nayan947211-pixel/study-buddy/internal/middleware"
	"github.com/nayan947211-pixel/study-buddy/internal/queue"
	"github.com/nayan947211-pixel/study-buddy/internal/services/ai"
	"github.com/nayan947211-pixel/study-buddy/internal/services/auth"
	"github.com/nayan947211-pixel/study-buddy/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "study-buddy-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	// Connect to Redis for rate limiting
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ for job queue (required)
	// Retry connection with exponential backoff to handle RabbitMQ startup delays
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var jobQueue queue.JobQueue
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
			break
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt)) // Exponential backoff
		if delay > 30*time.Second {
			delay = 30 * time.Second // Cap at 30 seconds
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	quizRepo := database.NewQuizRepository(db)
	flashcardRepo := database.NewFlashcardRepository(db)
	topicRepo := database.NewTopicRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Initialize services
	tokenService, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		zapLogger.Fatal("failed_to_create_token_service", zap.Error(err))
	}
	analyticsService := analytics.NewService(analyticsRepo, zapLogger)

	// Initialize AI provider
	aiProvider, err := createAIProvider(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_ai_features_disabled", zap.Error(err))
		aiProvider = nil
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, tokenService)
	quizHandler := handlers.NewQuizHandler(quizRepo, jobQueue, analyticsService)
	flashcardHandler := handlers.NewFlashcardHandler(flashcardRepo, jobQueue, analyticsService)
	plannerHandler := handlers.NewPlannerHandler(topicRepo, analyticsService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, quizRepo, flashcardRepo, topicRepo)
	healthChecker := handlers.NewHealthChecker(db, jobQueue)

	var chatHandler *handlers.ChatHandler
	if aiProvider != nil {
		chatHandler = handlers.NewChatHandler(aiProvider, analyticsService)
	}

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	// OpenTelemetry tracing (if enabled)
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("study-buddy-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	// Security headers (set on all responses)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	// CORS (load from DB, hot-reload; fallback to FRONTEND_URL)
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())
	// Rate limit middleware (applied selectively to specific routes, not globally)
	rateLimitReloader := middleware.NewRateLimitReloader(redisClient, ratelimitConfigRepo, cfg.RateLimit, zapLogger, 1*time.Minute)
	if rateLimitReloader == nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader")
	}
	rateLimitMW := rateLimitReloader.Middleware()
	// Request size limits
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	// Content-Type validation for POST/PATCH/PUT requests
	r.Use(middleware.ContentType)
	// Request timeout
	r.Use(middleware.Timeout(30 * time.Second))
	// Error handler (catches panics)
	r.Use(middleware.ErrorHandler(zapLogger))
	// Audit logging (for security events)
	r.Use(middleware.Audit(zapLogger))
	// Request logging
	r.Use(middleware.Logging(zapLogger))

	authMW := middleware.Auth(tokenService, userRepo)

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// OpenAPI spec (public)
	openAPIPath := filepath.Join("api", "openapi.yaml")
	openAPIHandler := handlers.NewOpenAPIHandler(openAPIPath)
	openAPIHandler.RegisterRoutes(r)

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	// Auth routes
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()

	// Public auth routes with rate limiting (more restrictive for unauthenticated)
	publicAuthRouter := authRouter.PathPrefix("").Subrouter()
	publicAuthRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(publicAuthRouter)

	// Protected auth routes
	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(authMW)
	protectedAuthRouter.Use(rateLimitMW)
	authHandler.RegisterProtectedRoutes(protectedAuthRouter)

	// Quiz routes (protected)
	quizRouter := apiRouter.PathPrefix("/quizzes").Subrouter()
	quizRouter.Use(authMW)
	quizRouter.Use(rateLimitMW)
	quizHandler.RegisterRoutes(quizRouter)

	// Flashcard routes (protected)
	flashcardRouter := apiRouter.PathPrefix("/flashcards").Subrouter()
	flashcardRouter.Use(authMW)
	flashcardRouter.Use(rateLimitMW)
	flashcardHandler.RegisterRoutes(flashcardRouter)

	// Planner routes (protected)
	plannerRouter := apiRouter.PathPrefix("/planner/topics").Subrouter()
	plannerRouter.Use(authMW)
	plannerRouter.Use(rateLimitMW)
	plannerHandler.RegisterRoutes(plannerRouter)

	// Analytics routes (protected)
	analyticsRouter := apiRouter.PathPrefix("/analytics").Subrouter()
	analyticsRouter.Use(authMW)
	analyticsRouter.Use(rateLimitMW)
	analyticsHandler.RegisterRoutes(analyticsRouter)

	// Chat routes (if AI provider available)
	if chatHandler != nil {
		aiRouter := apiRouter.PathPrefix("/ai").Subrouter()
		aiRouter.Use(authMW)
		aiRouter.Use(rateLimitMW)
		chatHandler.RegisterRoutes(aiRouter)
	}

	// Catch-all OPTIONS handler for preflight requests
	// The CORS middleware sets headers before this is called
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// CORS and rate limit hot-reload loops
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	// Start DLQ garbage collector if the queue implementation supports it
	// Run every hour, retain messages for 24 hours
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(reloadCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// createAIProvider creates an AI provider based on configuration
func createAIProvider(cfg *config.Config, logger *zap.Logger, debugMode bool) (ai.AIProvider, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	providerType := cfg.AIProvider
	if providerType == "" {
		providerType = "openai"
	}

	// Create provider directly with logger support
	if providerType == "openai" {
		return ai.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			logger,
			debugMode,
		), nil
	}

	// Fallback to registry for other providers (without logger)
	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry)

	config := map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	}

	return registry.GetProvider(providerType, config)
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
