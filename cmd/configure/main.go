package main

import (
	"fmt"
	"os"

	"github.com/nayan947211-pixel/study-buddy/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "study-buddy-configure",
		Short: "Admin tool for the Study Buddy API",
		Long:  "Manages database-backed runtime settings (CORS policy, rate limits) and checks backend connectivity.",
	}

	root.AddCommand(
		commands.NewCorsCmd(),
		commands.NewRatelimitCmd(),
		commands.NewCheckCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
