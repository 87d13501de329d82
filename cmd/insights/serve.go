package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmarinho/feedback-insights/internal/config"
	"github.com/rmarinho/feedback-insights/internal/cryptotext"
	"github.com/rmarinho/feedback-insights/internal/db"
	"github.com/rmarinho/feedback-insights/internal/llm"
	"github.com/rmarinho/feedback-insights/internal/records"
	"github.com/rmarinho/feedback-insights/internal/server"
	"github.com/rmarinho/feedback-insights/internal/summary"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes generation and read endpoints for evaluation and survey summaries.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	codec := cryptotext.NewCodec(cfg.FieldSecret)
	aggregator := records.NewAggregator(database, codec)

	evaluations := summary.NewEvaluationService(database, aggregator, client)
	surveys := summary.NewSurveyService(database, aggregator, client)

	srv := server.New(server.Config{Port: cfg.Port}, evaluations, surveys)
	return srv.Start(ctx)
}
