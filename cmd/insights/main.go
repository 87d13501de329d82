// Package main provides the entry point for the Feedback Insights HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "Feedback Insights HTTP API Server",
	Long:  "Feedback Insights aggregates evaluation and survey records and synthesizes narrative summaries and satisfaction scores via a text-generation model.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
