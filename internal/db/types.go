package db

import (
	"time"

	"github.com/google/uuid"
)

// Summary artifact statuses as persisted. The API serializes them lower-case.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// EvaluationRow is an evaluation record as stored, with justification fields
// still encrypted. Items are attached by ListEvaluations.
type EvaluationRow struct {
	ID        int64
	SubjectID int64
	CycleID   int64
	Kind      string

	StrengthsEnc     string
	ImprovementsEnc  string
	JustificationEnc string

	Items []EvaluationItemRow
}

// EvaluationItemRow is one scored criterion of an evaluation record.
type EvaluationItemRow struct {
	ID               int64
	EvaluationID     int64
	CriterionID      int64
	Score            int
	JustificationEnc string
}

// SurveyAnswerRow is one answer of a submitted survey response, joined with
// its parent question text.
type SurveyAnswerRow struct {
	ResponseID       uuid.UUID
	QuestionID       uuid.UUID
	QuestionText     string
	Agreement        string
	JustificationEnc string
}

// EvaluationSummary is the cached artifact for a (subject, cycle) key.
type EvaluationSummary struct {
	SubjectID int64     `json:"subject_id"`
	CycleID   int64     `json:"cycle_id"`
	Status    string    `json:"status"`
	FullText  *string   `json:"full_text,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SurveySummary is the cached artifact for a survey key.
type SurveySummary struct {
	SurveyID          uuid.UUID `json:"survey_id"`
	Status            string    `json:"status"`
	FullText          *string   `json:"full_text,omitempty"`
	ShortText         *string   `json:"short_text,omitempty"`
	SatisfactionScore *int      `json:"satisfaction_score,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SurveySummaryListItem annotates a survey summary with parent survey metadata
// for list views.
type SurveySummaryListItem struct {
	SurveySummary
	SurveyTitle string     `json:"survey_title"`
	ClosesAt    *time.Time `json:"closes_at,omitempty"`
}
