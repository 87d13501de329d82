package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rmarinho/feedback-insights/internal/db"
)

// Store is the read side of the persistence layer the aggregator consumes.
// *db.DB satisfies it.
type Store interface {
	ListEvaluations(ctx context.Context, subjectID, cycleID int64) ([]db.EvaluationRow, error)
	ListSubmittedSurveyAnswers(ctx context.Context, surveyID uuid.UUID) ([]db.SurveyAnswerRow, error)
}

// Decryptor recovers protected justification fields. It must not fail:
// malformed input maps to "" or a sentinel (see cryptotext).
type Decryptor interface {
	Decrypt(cipherText string) string
}

// Aggregator fetches the records behind a summary key and decrypts their
// protected fields on the way out. Read-only.
type Aggregator struct {
	store Store
	codec Decryptor
}

// NewAggregator creates an aggregator over the given store and decryptor.
func NewAggregator(store Store, codec Decryptor) *Aggregator {
	return &Aggregator{store: store, codec: codec}
}

// EvaluationBundle fetches every evaluation record for a (subject, cycle) key
// grouped by source kind. Insertion order is preserved inside each kind.
func (a *Aggregator) EvaluationBundle(ctx context.Context, subjectID, cycleID int64) (*EvaluationBundle, error) {
	rows, err := a.store.ListEvaluations(ctx, subjectID, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate evaluations for subject %d cycle %d: %w", subjectID, cycleID, err)
	}

	bundle := &EvaluationBundle{
		SubjectID: subjectID,
		CycleID:   cycleID,
		ByKind:    make(map[SourceKind][]EvaluationRecord),
	}
	for _, row := range rows {
		rec := EvaluationRecord{
			ID:            row.ID,
			SubjectID:     row.SubjectID,
			CycleID:       row.CycleID,
			Kind:          SourceKind(row.Kind),
			Strengths:     a.codec.Decrypt(row.StrengthsEnc),
			Improvements:  a.codec.Decrypt(row.ImprovementsEnc),
			Justification: a.codec.Decrypt(row.JustificationEnc),
		}
		for _, item := range row.Items {
			rec.Items = append(rec.Items, EvaluationItem{
				CriterionID:   item.CriterionID,
				Score:         item.Score,
				Justification: a.codec.Decrypt(item.JustificationEnc),
			})
		}
		bundle.ByKind[rec.Kind] = append(bundle.ByKind[rec.Kind], rec)
	}

	return bundle, nil
}

// SurveyBundle fetches the submitted responses of a survey, grouping answers
// by response in the order the store returns them.
func (a *Aggregator) SurveyBundle(ctx context.Context, surveyID uuid.UUID) (*SurveyBundle, error) {
	rows, err := a.store.ListSubmittedSurveyAnswers(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate answers for survey %s: %w", surveyID, err)
	}

	bundle := &SurveyBundle{SurveyID: surveyID}
	index := make(map[uuid.UUID]int)
	for _, row := range rows {
		answer := SurveyAnswer{
			QuestionID:    row.QuestionID,
			QuestionText:  row.QuestionText,
			Agreement:     AgreementLevel(row.Agreement),
			Justification: a.codec.Decrypt(row.JustificationEnc),
		}
		i, ok := index[row.ResponseID]
		if !ok {
			i = len(bundle.Responses)
			index[row.ResponseID] = i
			bundle.Responses = append(bundle.Responses, SurveyResponse{ResponseID: row.ResponseID})
		}
		bundle.Responses[i].Answers = append(bundle.Responses[i].Answers, answer)
	}

	return bundle, nil
}
