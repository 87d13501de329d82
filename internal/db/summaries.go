package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClaimEvaluationSummary moves the (subject, cycle) artifact to PROCESSING
// with content cleared, creating it if absent. The WHERE predicate makes the
// claim a compare-and-swap: it returns false, without writing, when another
// generation already holds the slot.
func (db *DB) ClaimEvaluationSummary(ctx context.Context, subjectID, cycleID int64) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO evaluation_summaries (subject_id, cycle_id, status, full_text, updated_at)
		 VALUES ($1, $2, 'PROCESSING', NULL, NOW())
		 ON CONFLICT (subject_id, cycle_id) DO UPDATE
		 SET status = 'PROCESSING', full_text = NULL, updated_at = NOW()
		 WHERE evaluation_summaries.status <> 'PROCESSING'`,
		subjectID, cycleID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim evaluation summary: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteEvaluationSummary marks the artifact COMPLETED with its content.
func (db *DB) CompleteEvaluationSummary(ctx context.Context, subjectID, cycleID int64, fullText string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE evaluation_summaries
		 SET status = 'COMPLETED', full_text = $3, updated_at = NOW()
		 WHERE subject_id = $1 AND cycle_id = $2`,
		subjectID, cycleID, fullText,
	)
	if err != nil {
		return fmt.Errorf("failed to complete evaluation summary: %w", err)
	}
	return nil
}

// FailEvaluationSummary marks the artifact FAILED with content cleared.
func (db *DB) FailEvaluationSummary(ctx context.Context, subjectID, cycleID int64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE evaluation_summaries
		 SET status = 'FAILED', full_text = NULL, updated_at = NOW()
		 WHERE subject_id = $1 AND cycle_id = $2`,
		subjectID, cycleID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark evaluation summary failed: %w", err)
	}
	return nil
}

// GetEvaluationSummary reads the artifact for a key. Absence is not an error:
// it returns (nil, nil) so callers can report a pending state.
func (db *DB) GetEvaluationSummary(ctx context.Context, subjectID, cycleID int64) (*EvaluationSummary, error) {
	var s EvaluationSummary
	err := db.pool.QueryRow(ctx,
		`SELECT subject_id, cycle_id, status, full_text, updated_at
		 FROM evaluation_summaries
		 WHERE subject_id = $1 AND cycle_id = $2`,
		subjectID, cycleID,
	).Scan(&s.SubjectID, &s.CycleID, &s.Status, &s.FullText, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get evaluation summary: %w", err)
	}
	return &s, nil
}

// ClaimSurveySummary is the survey-keyed counterpart of ClaimEvaluationSummary.
func (db *DB) ClaimSurveySummary(ctx context.Context, surveyID uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO survey_summaries (survey_id, status, full_text, short_text, satisfaction_score, updated_at)
		 VALUES ($1, 'PROCESSING', NULL, NULL, NULL, NOW())
		 ON CONFLICT (survey_id) DO UPDATE
		 SET status = 'PROCESSING', full_text = NULL, short_text = NULL,
		     satisfaction_score = NULL, updated_at = NOW()
		 WHERE survey_summaries.status <> 'PROCESSING'`,
		surveyID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim survey summary: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteSurveySummary marks the artifact COMPLETED with all three contents.
func (db *DB) CompleteSurveySummary(ctx context.Context, surveyID uuid.UUID, fullText, shortText string, score int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE survey_summaries
		 SET status = 'COMPLETED', full_text = $2, short_text = $3,
		     satisfaction_score = $4, updated_at = NOW()
		 WHERE survey_id = $1`,
		surveyID, fullText, shortText, score,
	)
	if err != nil {
		return fmt.Errorf("failed to complete survey summary: %w", err)
	}
	return nil
}

// FailSurveySummary marks the artifact FAILED with content cleared.
func (db *DB) FailSurveySummary(ctx context.Context, surveyID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE survey_summaries
		 SET status = 'FAILED', full_text = NULL, short_text = NULL,
		     satisfaction_score = NULL, updated_at = NOW()
		 WHERE survey_id = $1`,
		surveyID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark survey summary failed: %w", err)
	}
	return nil
}

// GetSurveySummary reads the artifact for a survey. Returns (nil, nil) when
// no generation has ever run for the key.
func (db *DB) GetSurveySummary(ctx context.Context, surveyID uuid.UUID) (*SurveySummary, error) {
	var s SurveySummary
	err := db.pool.QueryRow(ctx,
		`SELECT survey_id, status, full_text, short_text, satisfaction_score, updated_at
		 FROM survey_summaries
		 WHERE survey_id = $1`,
		surveyID,
	).Scan(&s.SurveyID, &s.Status, &s.FullText, &s.ShortText, &s.SatisfactionScore, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get survey summary: %w", err)
	}
	return &s, nil
}

// SummaryFilters holds optional filters for listing survey summaries
type SummaryFilters struct {
	Status string
}

// ListSurveySummaries returns every survey artifact annotated with its parent
// survey title and closing date, most recently closed first.
func (db *DB) ListSurveySummaries(ctx context.Context, filters SummaryFilters) ([]SurveySummaryListItem, error) {
	query := `SELECT s.survey_id, s.status, s.full_text, s.short_text, s.satisfaction_score, s.updated_at,
		       sv.title, sv.closes_at
		FROM survey_summaries s
		JOIN surveys sv ON sv.id = s.survey_id`
	args := []any{}

	if filters.Status != "" {
		query += " WHERE s.status = $1"
		args = append(args, filters.Status)
	}
	query += " ORDER BY sv.closes_at DESC NULLS LAST"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list survey summaries: %w", err)
	}
	defer rows.Close()

	var items []SurveySummaryListItem
	for rows.Next() {
		var item SurveySummaryListItem
		if err := rows.Scan(&item.SurveyID, &item.Status, &item.FullText, &item.ShortText,
			&item.SatisfactionScore, &item.UpdatedAt, &item.SurveyTitle, &item.ClosesAt); err != nil {
			return nil, fmt.Errorf("failed to scan survey summary: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list survey summaries: %w", err)
	}

	return items, nil
}
