// Package prompting turns aggregated record bundles into the deterministic
// prompt strings sent to the generation model. All builders are pure.
package prompting

import (
	"fmt"
	"strings"

	"github.com/rmarinho/feedback-insights/internal/prompts"
	"github.com/rmarinho/feedback-insights/internal/records"
)

// kindHeaders maps each evaluation source kind to its prompt section header.
var kindHeaders = map[records.SourceKind]string{
	records.KindSelf:      "Self-assessment",
	records.KindPeer:      "Peer reviews",
	records.KindMentor:    "Mentor review",
	records.KindManager:   "Manager review",
	records.KindReference: "References",
}

// BuildEvaluationPrompt renders the single prompt of the evaluation pipeline:
// every record grouped by source kind, each scored item with its justification
// and score. Kinds with no records produce no section.
func BuildEvaluationPrompt(bundle *records.EvaluationBundle) string {
	template := prompts.MustGet("insights.json", "evaluation-summary")
	return prompts.Format(template, map[string]string{
		"Sections": evaluationSections(bundle),
	})
}

// BuildSurveyFullPrompt renders the survey prompt requesting the full summary.
func BuildSurveyFullPrompt(bundle *records.SurveyBundle) string {
	template := prompts.MustGet("insights.json", "survey-full-summary")
	return prompts.Format(template, map[string]string{
		"Sections": surveySections(bundle),
	})
}

// BuildSurveyShortPrompt renders the survey prompt requesting the
// single-sentence summary.
func BuildSurveyShortPrompt(bundle *records.SurveyBundle) string {
	template := prompts.MustGet("insights.json", "survey-short-summary")
	return prompts.Format(template, map[string]string{
		"Sections": surveySections(bundle),
	})
}

// agreementScale fixes the order the point mapping is listed in.
var agreementScale = []records.AgreementLevel{
	records.FullAgreement,
	records.PartialAgreement,
	records.Neutral,
	records.PartialDisagreement,
	records.FullDisagreement,
}

// BuildSurveyScorePrompt renders the survey prompt requesting the integer
// satisfaction score, including the agreement-to-points table.
func BuildSurveyScorePrompt(bundle *records.SurveyBundle) string {
	template := prompts.MustGet("insights.json", "survey-satisfaction-score")
	return prompts.Format(template, map[string]string{
		"Sections": surveySections(bundle),
		"Scale":    scaleSection(),
	})
}

func scaleSection() string {
	var sb strings.Builder
	for _, level := range agreementScale {
		sb.WriteString(fmt.Sprintf("- %s = %d points\n", level.Display(), records.AgreementPoints[level]))
	}
	return sb.String()
}

func evaluationSections(bundle *records.EvaluationBundle) string {
	var sb strings.Builder
	for _, kind := range records.SourceKinds {
		recs := bundle.ByKind[kind]
		if len(recs) == 0 {
			continue
		}
		sb.WriteString(kindHeaders[kind])
		sb.WriteString(":\n")
		for _, rec := range recs {
			writeEvaluationRecord(&sb, rec)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeEvaluationRecord(sb *strings.Builder, rec records.EvaluationRecord) {
	for _, item := range rec.Items {
		sb.WriteString(fmt.Sprintf("- %s: %q (Nota: %d)\n",
			criterionLabel(item.CriterionID), item.Justification, item.Score))
	}
	if rec.Strengths != "" {
		sb.WriteString(fmt.Sprintf("- Strengths: %s\n", rec.Strengths))
	}
	if rec.Improvements != "" {
		sb.WriteString(fmt.Sprintf("- Improvements: %s\n", rec.Improvements))
	}
	if rec.Justification != "" {
		sb.WriteString(fmt.Sprintf("- Justification: %s\n", rec.Justification))
	}
}

func criterionLabel(id int64) string {
	if name := records.CriterionName(id); name != "" {
		return name
	}
	return fmt.Sprintf("Criterion %d", id)
}

func surveySections(bundle *records.SurveyBundle) string {
	var sb strings.Builder
	for i, resp := range bundle.Responses {
		sb.WriteString(fmt.Sprintf("Response %d:\n", i+1))
		for _, answer := range resp.Answers {
			sb.WriteString(fmt.Sprintf("- Question: %s\n", answer.QuestionText))
			sb.WriteString(fmt.Sprintf("  Agreement: %s\n", answer.Agreement.Display()))
			if answer.Justification != "" {
				sb.WriteString(fmt.Sprintf("  Justification: %s\n", answer.Justification))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
