package commands

import (
	"fmt"
	"strings"

	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/spf13/cobra"
)

// NewRatelimitCmd groups the rate limit management subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "Inspect or update the database-backed request rate limit, using limiter notation such as 5-S or 100-M.",
	}
	cmd.AddCommand(newRatelimitListCmd(), newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the active rate limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			c, err := database.NewRatelimitConfigRepository(db).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}
			if c == nil {
				cmd.Println("No rate limit configuration in database. Use 'ratelimit set' to add one.")
				return nil
			}

			cmd.Printf("Rate limit: %s\n", c.Rate)
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the active rate limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			repo := database.NewRatelimitConfigRepository(db)
			if err := repo.Set(cmd.Context(), &models.RatelimitConfig{Rate: rate}); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}

			cmd.Println("Rate limit configuration updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&rate, "rate", "", "Rate in limiter notation, e.g. 5-S, 100-M, 1000-H (required)")
	return cmd
}
