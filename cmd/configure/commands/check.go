package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/config"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/queue"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check backend connectivity",
		Long:  "Verify connectivity to the database, Redis and RabbitMQ using the current configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			failed := false

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				fmt.Printf("  database: FAIL (%v)\n", err)
				failed = true
			} else {
				defer func() {
					if err := db.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
					}
				}()
				if err := db.PingContext(ctx); err != nil {
					fmt.Printf("  database: FAIL (%v)\n", err)
					failed = true
				} else {
					fmt.Println("  database: OK")
				}
			}

			redisOpts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				fmt.Printf("  redis: FAIL (%v)\n", err)
				failed = true
			} else {
				redisClient := redis.NewClient(redisOpts)
				defer func() { _ = redisClient.Close() }()
				if err := redisClient.Ping(ctx).Err(); err != nil {
					fmt.Printf("  redis: FAIL (%v)\n", err)
					failed = true
				} else {
					fmt.Println("  redis: OK")
				}
			}

			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				fmt.Printf("  rabbitmq: FAIL (%v)\n", err)
				failed = true
			} else {
				defer func() { _ = jobQueue.Close() }()
				if err := jobQueue.HealthCheck(ctx); err != nil {
					fmt.Printf("  rabbitmq: FAIL (%v)\n", err)
					failed = true
				} else {
					fmt.Println("  rabbitmq: OK")
				}
			}

			if failed {
				return fmt.Errorf("one or more connectivity checks failed")
			}
			fmt.Println("All connectivity checks passed.")
			return nil
		},
	}

	return cmd
}
