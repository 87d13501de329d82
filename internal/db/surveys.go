package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListSubmittedSurveyAnswers fetches every answer belonging to a submitted
// response of the survey, joined with its parent question text. Draft
// (unsubmitted) responses are excluded. Ordering keeps answers of the same
// response together, in insertion order.
func (db *DB) ListSubmittedSurveyAnswers(ctx context.Context, surveyID uuid.UUID) ([]SurveyAnswerRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.response_id, a.question_id, q.text, a.agreement_level, COALESCE(a.justification, '')
		 FROM survey_answers a
		 JOIN survey_responses r ON r.id = a.response_id
		 JOIN survey_questions q ON q.id = a.question_id
		 WHERE r.survey_id = $1 AND r.is_submitted = TRUE
		 ORDER BY r.id, a.id`,
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list survey answers: %w", err)
	}
	defer rows.Close()

	var answers []SurveyAnswerRow
	for rows.Next() {
		var a SurveyAnswerRow
		if err := rows.Scan(&a.ResponseID, &a.QuestionID, &a.QuestionText,
			&a.Agreement, &a.JustificationEnc); err != nil {
			return nil, fmt.Errorf("failed to scan survey answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list survey answers: %w", err)
	}

	return answers, nil
}
