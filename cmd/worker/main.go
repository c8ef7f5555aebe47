package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/nayan947211-pixel/study-buddy/internal/config"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/logger"
	"github.com/nayan947211-pixel/study-buddy/internal/queue"
	"github.com/nayan947211-pixel/study-buddy/internal/services/ai"
	"github.com/nayan947211-pixel/study-buddy/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag
	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync(zapLogger)

	if err := run(cfg, zapLogger, debugMode); err != nil {
		zapLogger.Fatal("Worker failed", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) error {
	zapLogger.Info("Starting worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	aiProvider, err := buildAIProvider(cfg, zapLogger, debugMode)
	if err != nil {
		return err
	}

	generator := workers.NewContentGenerator(
		aiProvider,
		database.NewQuizRepository(db),
		database.NewFlashcardRepository(db),
		jobQueue,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	zapLogger.Info("Worker started, consuming messages",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	for {
		select {
		case <-ctx.Done():
			zapLogger.Info("Shutdown signal received, stopping worker")
			return nil

		case msg, ok := <-msgChan:
			if !ok {
				zapLogger.Info("Message channel closed")
				return nil
			}
			if err := generator.ProcessJob(ctx, msg); err != nil {
				zapLogger.Error("Failed to process job",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}

		case err, ok := <-errChan:
			if !ok {
				return nil
			}
			zapLogger.Error("Queue error", zap.Error(err))
		}
	}
}

func buildAIProvider(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) (ai.AIProvider, error) {
	switch cfg.AIProvider {
	case "openai":
		return ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AIProvider)
	}
}
