package commands

import (
	"fmt"
	"strings"

	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd groups the CORS management subcommands.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "Inspect or update the database-backed CORS policy. Running servers pick up changes without a restart.",
	}
	cmd.AddCommand(newCorsListCmd(), newCorsSetCmd())
	return cmd
}

func newCorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the active CORS policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			c, err := database.NewCorsConfigRepository(db).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get cors config: %w", err)
			}
			if c == nil {
				cmd.Println("No CORS configuration in database. Use 'cors set' to add one.")
				return nil
			}

			cmd.Println("CORS configuration:")
			cmd.Printf("  Allowed origins: %s\n", c.AllowedOrigins)
			cmd.Printf("  Allow credentials: %v\n", c.AllowCredentials)
			cmd.Printf("  Max-Age: %d\n", c.MaxAge)
			return nil
		},
	}
}

func newCorsSetCmd() *cobra.Command {
	var (
		origins    string
		allowCreds bool
		maxAge     int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the active CORS policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			origins = strings.TrimSpace(origins)
			if origins == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			policy := &models.CorsConfig{
				AllowedOrigins:   origins,
				AllowCredentials: allowCreds,
				MaxAge:           maxAge,
			}
			if err := database.NewCorsConfigRepository(db).Set(cmd.Context(), policy); err != nil {
				return fmt.Errorf("set cors config: %w", err)
			}

			cmd.Println("CORS configuration updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age in seconds")
	return cmd
}
