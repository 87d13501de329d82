// Package records defines the evaluation and survey record shapes consumed by
// the summary pipeline and aggregates them from the persistence layer.
package records

import (
	"strings"

	"github.com/google/uuid"
)

// SourceKind identifies where an evaluation record came from.
type SourceKind string

// Evaluation source kinds, in the order they appear in prompts.
const (
	KindSelf      SourceKind = "self"
	KindPeer      SourceKind = "peer"
	KindMentor    SourceKind = "mentor"
	KindManager   SourceKind = "manager"
	KindReference SourceKind = "reference"
)

// SourceKinds lists every kind in prompt order.
var SourceKinds = []SourceKind{KindSelf, KindPeer, KindMentor, KindManager, KindReference}

// EvaluationItem is one scored criterion inside an evaluation record.
// Justification is already decrypted.
type EvaluationItem struct {
	CriterionID   int64
	Score         int
	Justification string
}

// EvaluationRecord is a single review of a subject within a cycle. Structured
// records carry Items; flat records (references) carry the three text fields.
type EvaluationRecord struct {
	ID        int64
	SubjectID int64
	CycleID   int64
	Kind      SourceKind

	Strengths     string
	Improvements  string
	Justification string

	Items []EvaluationItem
}

// EvaluationBundle holds every record fetched for one (subject, cycle) key,
// grouped by kind with insertion order preserved inside each group.
type EvaluationBundle struct {
	SubjectID int64
	CycleID   int64
	ByKind    map[SourceKind][]EvaluationRecord
}

// Total returns the number of records across all kinds.
func (b *EvaluationBundle) Total() int {
	n := 0
	for _, recs := range b.ByKind {
		n += len(recs)
	}
	return n
}

// AgreementLevel is the ordinal sentiment of a survey answer.
type AgreementLevel string

// Agreement levels from strongest agreement to strongest disagreement.
const (
	FullAgreement       AgreementLevel = "FULL_AGREEMENT"
	PartialAgreement    AgreementLevel = "PARTIAL_AGREEMENT"
	Neutral             AgreementLevel = "NEUTRAL"
	PartialDisagreement AgreementLevel = "PARTIAL_DISAGREEMENT"
	FullDisagreement    AgreementLevel = "FULL_DISAGREEMENT"
)

// AgreementPoints maps each agreement level to its satisfaction points value.
var AgreementPoints = map[AgreementLevel]int{
	FullAgreement:       100,
	PartialAgreement:    75,
	Neutral:             50,
	PartialDisagreement: 25,
	FullDisagreement:    0,
}

// Display renders the level for prompt text, with separators replaced by spaces.
func (l AgreementLevel) Display() string {
	return strings.ReplaceAll(string(l), "_", " ")
}

// criterionNames maps known evaluation criteria to their display names.
var criterionNames = map[int64]string{
	1: "Teamwork",
	2: "Communication",
	3: "Delivery",
	4: "Ownership",
	5: "Technical skill",
}

// CriterionName returns the display name for a criterion, or empty when the
// criterion is not in the catalog.
func CriterionName(id int64) string {
	return criterionNames[id]
}

// SurveyAnswer is one answered question inside a submitted survey response.
// Justification is already decrypted; QuestionText is denormalized from the
// parent question.
type SurveyAnswer struct {
	QuestionID    uuid.UUID
	QuestionText  string
	Agreement     AgreementLevel
	Justification string
}

// SurveyResponse groups the answers of one submitted response.
type SurveyResponse struct {
	ResponseID uuid.UUID
	Answers    []SurveyAnswer
}

// SurveyBundle holds every submitted response fetched for one survey.
type SurveyBundle struct {
	SurveyID  uuid.UUID
	Responses []SurveyResponse
}
