package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmarinho/feedback-insights/internal/db"
	"github.com/rmarinho/feedback-insights/internal/llm"
	"github.com/rmarinho/feedback-insights/internal/prompting"
	"github.com/rmarinho/feedback-insights/internal/records"
)

// SurveyStore is the artifact store slice the survey pipeline needs.
// *db.DB satisfies it.
type SurveyStore interface {
	ClaimSurveySummary(ctx context.Context, surveyID uuid.UUID) (bool, error)
	CompleteSurveySummary(ctx context.Context, surveyID uuid.UUID, fullText, shortText string, score int) error
	FailSurveySummary(ctx context.Context, surveyID uuid.UUID) error
	GetSurveySummary(ctx context.Context, surveyID uuid.UUID) (*db.SurveySummary, error)
	ListSurveySummaries(ctx context.Context, filters db.SummaryFilters) ([]db.SurveySummaryListItem, error)
}

// SurveySource aggregates the submitted responses of a survey.
// *records.Aggregator satisfies it.
type SurveySource interface {
	SurveyBundle(ctx context.Context, surveyID uuid.UUID) (*records.SurveyBundle, error)
}

// surveyContent is the output of one successful survey pipeline run.
type surveyContent struct {
	fullText  string
	shortText string
	score     int
}

// SurveyService generates and caches climate-survey summaries keyed by survey.
type SurveyService struct {
	store     SurveyStore
	source    SurveySource
	generator Generator
}

// NewSurveyService wires the survey pipeline's collaborators.
func NewSurveyService(store SurveyStore, source SurveySource, generator Generator) *SurveyService {
	return &SurveyService{store: store, source: source, generator: generator}
}

// Generate runs the survey pipeline: claim the slot, aggregate submitted
// responses, then issue the full, short and score generations in that fixed
// order so an early failure prevents the later calls. Any failure discards
// all partial output and marks the artifact FAILED.
func (s *SurveyService) Generate(ctx context.Context, surveyID uuid.UUID) (*db.SurveySummary, error) {
	if surveyID == uuid.Nil {
		return nil, &InputError{Message: "survey id is required"}
	}

	claimed, err := s.store.ClaimSurveySummary(ctx, surveyID)
	if err != nil {
		return nil, &StorageError{Message: "failed to claim generation slot", Cause: err}
	}
	if !claimed {
		return nil, &ConflictError{Key: fmt.Sprintf("survey %s", surveyID)}
	}

	content, err := s.run(ctx, surveyID)
	if err != nil {
		if failErr := s.store.FailSurveySummary(ctx, surveyID); failErr != nil {
			return nil, &StorageError{
				Message: "failed to mark summary failed",
				Cause:   errors.Join(err, failErr),
			}
		}
		return nil, err
	}

	if err := s.store.CompleteSurveySummary(ctx, surveyID, content.fullText, content.shortText, content.score); err != nil {
		return nil, &StorageError{Message: "failed to persist completed summary", Cause: err}
	}

	return &db.SurveySummary{
		SurveyID:          surveyID,
		Status:            db.StatusCompleted,
		FullText:          &content.fullText,
		ShortText:         &content.shortText,
		SatisfactionScore: &content.score,
		UpdatedAt:         time.Now().UTC(),
	}, nil
}

func (s *SurveyService) run(ctx context.Context, surveyID uuid.UUID) (*surveyContent, error) {
	bundle, err := s.source.SurveyBundle(ctx, surveyID)
	if err != nil {
		return nil, &StorageError{Message: "failed to aggregate survey responses", Cause: err}
	}
	if len(bundle.Responses) == 0 {
		return nil, &NoRecordsError{Message: fmt.Sprintf("no responses found for survey %s", surveyID)}
	}

	fullText, err := s.generate(ctx, prompting.BuildSurveyFullPrompt(bundle), llm.TierStandard, "full summary")
	if err != nil {
		return nil, err
	}
	shortText, err := s.generate(ctx, prompting.BuildSurveyShortPrompt(bundle), llm.TierLite, "short summary")
	if err != nil {
		return nil, err
	}
	scoreText, err := s.generate(ctx, prompting.BuildSurveyScorePrompt(bundle), llm.TierLite, "satisfaction score")
	if err != nil {
		return nil, err
	}

	score, err := ParseScore(scoreText)
	if err != nil {
		return nil, &UpstreamError{Message: "invalid satisfaction score response", Cause: err}
	}

	return &surveyContent{fullText: fullText, shortText: shortText, score: score}, nil
}

// generate issues one model call and rejects empty responses.
func (s *SurveyService) generate(ctx context.Context, prompt string, tier llm.ModelTier, what string) (string, error) {
	text, err := s.generator.GenerateContent(ctx, prompt, tier)
	if err != nil {
		return "", &UpstreamError{Message: fmt.Sprintf("%s generation failed", what), Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &UpstreamError{Message: fmt.Sprintf("%s generation returned empty text", what)}
	}
	return text, nil
}

// Get reads the cached artifact without triggering generation. (nil, nil)
// means no generation was ever requested for the key.
func (s *SurveyService) Get(ctx context.Context, surveyID uuid.UUID) (*db.SurveySummary, error) {
	artifact, err := s.store.GetSurveySummary(ctx, surveyID)
	if err != nil {
		return nil, &StorageError{Message: "failed to read survey summary", Cause: err}
	}
	return artifact, nil
}

// List returns every survey artifact annotated with parent metadata, most
// recently closed survey first, optionally filtered by status.
func (s *SurveyService) List(ctx context.Context, filters db.SummaryFilters) ([]db.SurveySummaryListItem, error) {
	items, err := s.store.ListSurveySummaries(ctx, filters)
	if err != nil {
		return nil, &StorageError{Message: "failed to list survey summaries", Cause: err}
	}
	return items, nil
}
