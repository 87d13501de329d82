package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rmarinho/feedback-insights/internal/db"
	"github.com/rmarinho/feedback-insights/internal/llm"
	"github.com/rmarinho/feedback-insights/internal/prompting"
	"github.com/rmarinho/feedback-insights/internal/records"
)

// EvaluationStore is the artifact store slice the evaluation pipeline needs.
// *db.DB satisfies it. Status mutations go only through these methods.
type EvaluationStore interface {
	ClaimEvaluationSummary(ctx context.Context, subjectID, cycleID int64) (bool, error)
	CompleteEvaluationSummary(ctx context.Context, subjectID, cycleID int64, fullText string) error
	FailEvaluationSummary(ctx context.Context, subjectID, cycleID int64) error
	GetEvaluationSummary(ctx context.Context, subjectID, cycleID int64) (*db.EvaluationSummary, error)
}

// EvaluationSource aggregates the records behind a (subject, cycle) key.
// *records.Aggregator satisfies it.
type EvaluationSource interface {
	EvaluationBundle(ctx context.Context, subjectID, cycleID int64) (*records.EvaluationBundle, error)
}

// Generator is the external text-generation collaborator. llm.Client
// satisfies it. A call either returns text or fails; no retries here.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// EvaluationService generates and caches performance summaries keyed by
// (subject, cycle).
type EvaluationService struct {
	store     EvaluationStore
	source    EvaluationSource
	generator Generator
}

// NewEvaluationService wires the evaluation pipeline's collaborators.
func NewEvaluationService(store EvaluationStore, source EvaluationSource, generator Generator) *EvaluationService {
	return &EvaluationService{store: store, source: source, generator: generator}
}

// Generate runs the pipeline for one key: claim the artifact slot, aggregate,
// compose, call the model once, validate, persist. Completed artifacts are
// overwritten by a new call; an in-flight generation yields ConflictError.
func (s *EvaluationService) Generate(ctx context.Context, subjectID, cycleID int64) (*db.EvaluationSummary, error) {
	if subjectID <= 0 {
		return nil, &InputError{Message: fmt.Sprintf("invalid subject id: %d", subjectID)}
	}
	if cycleID <= 0 {
		return nil, &InputError{Message: fmt.Sprintf("invalid cycle id: %d", cycleID)}
	}

	claimed, err := s.store.ClaimEvaluationSummary(ctx, subjectID, cycleID)
	if err != nil {
		return nil, &StorageError{Message: "failed to claim generation slot", Cause: err}
	}
	if !claimed {
		return nil, &ConflictError{Key: fmt.Sprintf("subject %d cycle %d", subjectID, cycleID)}
	}

	fullText, err := s.run(ctx, subjectID, cycleID)
	if err != nil {
		if failErr := s.store.FailEvaluationSummary(ctx, subjectID, cycleID); failErr != nil {
			return nil, &StorageError{
				Message: "failed to mark summary failed",
				Cause:   errors.Join(err, failErr),
			}
		}
		return nil, err
	}

	if err := s.store.CompleteEvaluationSummary(ctx, subjectID, cycleID, fullText); err != nil {
		return nil, &StorageError{Message: "failed to persist completed summary", Cause: err}
	}

	return &db.EvaluationSummary{
		SubjectID: subjectID,
		CycleID:   cycleID,
		Status:    db.StatusCompleted,
		FullText:  &fullText,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// run performs everything between the PROCESSING claim and the final
// transition. Its error decides FAILED.
func (s *EvaluationService) run(ctx context.Context, subjectID, cycleID int64) (string, error) {
	bundle, err := s.source.EvaluationBundle(ctx, subjectID, cycleID)
	if err != nil {
		return "", &StorageError{Message: "failed to aggregate evaluation records", Cause: err}
	}
	if bundle.Total() == 0 {
		return "", &NoRecordsError{
			Message: fmt.Sprintf("no evaluation records found for subject %d cycle %d", subjectID, cycleID),
		}
	}

	prompt := prompting.BuildEvaluationPrompt(bundle)
	text, err := s.generator.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", &UpstreamError{Message: "summary generation failed", Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &UpstreamError{Message: "summary generation returned empty text"}
	}

	return text, nil
}

// Get reads the cached artifact without triggering generation. (nil, nil)
// means no generation was ever requested for the key.
func (s *EvaluationService) Get(ctx context.Context, subjectID, cycleID int64) (*db.EvaluationSummary, error) {
	artifact, err := s.store.GetEvaluationSummary(ctx, subjectID, cycleID)
	if err != nil {
		return nil, &StorageError{Message: "failed to read evaluation summary", Cause: err}
	}
	return artifact, nil
}
