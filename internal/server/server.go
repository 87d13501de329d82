package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rmarinho/feedback-insights/internal/db"
)

// EvaluationSummaries is the evaluation pipeline surface the server exposes.
// *summary.EvaluationService satisfies it.
type EvaluationSummaries interface {
	Generate(ctx context.Context, subjectID, cycleID int64) (*db.EvaluationSummary, error)
	Get(ctx context.Context, subjectID, cycleID int64) (*db.EvaluationSummary, error)
}

// SurveySummaries is the survey pipeline surface the server exposes.
// *summary.SurveyService satisfies it.
type SurveySummaries interface {
	Generate(ctx context.Context, surveyID uuid.UUID) (*db.SurveySummary, error)
	Get(ctx context.Context, surveyID uuid.UUID) (*db.SurveySummary, error)
	List(ctx context.Context, filters db.SummaryFilters) ([]db.SurveySummaryListItem, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	evaluations EvaluationSummaries
	surveys     SurveySummaries
	validate    *validator.Validate
}

// Config holds server configuration
type Config struct {
	Port int
}

// New creates a new server instance over the injected pipeline services
func New(cfg Config, evaluations EvaluationSummaries, surveys SurveySummaries) *Server {
	s := &Server{
		evaluations: evaluations,
		surveys:     surveys,
		validate:    validator.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /evaluation-summaries", s.handleGenerateEvaluation)
	mux.HandleFunc("GET /evaluation-summaries", s.handleGetEvaluation)
	mux.HandleFunc("POST /survey-summaries", s.handleGenerateSurvey)
	mux.HandleFunc("GET /survey-summaries", s.handleListSurveys)
	mux.HandleFunc("GET /survey-summaries/{survey_id}", s.handleGetSurvey)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for generation runs
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start listens for requests until the context is cancelled or a signal
// arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}

// Handler exposes the configured handler for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// writeJSON writes a JSON response with the given status code
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// errorResponse writes a JSON error response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
