package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmarinho/feedback-insights/internal/db"
)

// GenerateEvaluationRequest is the request body for POST /evaluation-summaries
type GenerateEvaluationRequest struct {
	SubjectID int64 `json:"subject_id" validate:"required,gt=0"`
	CycleID   int64 `json:"cycle_id" validate:"required,gt=0"`
}

// GenerateSurveyRequest is the request body for POST /survey-summaries
type GenerateSurveyRequest struct {
	SurveyID string `json:"survey_id" validate:"required,uuid"`
}

// EvaluationSummaryResponse is the artifact shape returned for evaluation keys.
// Content fields are always present; null means not (yet) generated.
type EvaluationSummaryResponse struct {
	SubjectID int64      `json:"subject_id"`
	CycleID   int64      `json:"cycle_id"`
	Status    string     `json:"status"`
	FullText  *string    `json:"full_text"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SurveySummaryResponse is the artifact shape returned for survey keys.
type SurveySummaryResponse struct {
	SurveyID          string     `json:"survey_id"`
	Status            string     `json:"status"`
	FullText          *string    `json:"full_text"`
	ShortText         *string    `json:"short_text"`
	SatisfactionScore *int       `json:"satisfaction_score"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
	SurveyTitle       string     `json:"survey_title,omitempty"`
	ClosesAt          *time.Time `json:"closes_at,omitempty"`
}

// ErrorResponse is the error body shape
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusLabel lower-cases persisted statuses for the API surface.
func statusLabel(status string) string {
	return strings.ToLower(status)
}

func evaluationResponse(subjectID, cycleID int64, artifact *db.EvaluationSummary) EvaluationSummaryResponse {
	resp := EvaluationSummaryResponse{
		SubjectID: subjectID,
		CycleID:   cycleID,
		Status:    statusLabel(db.StatusPending),
	}
	if artifact != nil {
		resp.Status = statusLabel(artifact.Status)
		resp.FullText = artifact.FullText
		if !artifact.UpdatedAt.IsZero() {
			t := artifact.UpdatedAt
			resp.UpdatedAt = &t
		}
	}
	return resp
}

func surveyResponse(surveyID uuid.UUID, artifact *db.SurveySummary) SurveySummaryResponse {
	resp := SurveySummaryResponse{
		SurveyID: surveyID.String(),
		Status:   statusLabel(db.StatusPending),
	}
	if artifact != nil {
		resp.Status = statusLabel(artifact.Status)
		resp.FullText = artifact.FullText
		resp.ShortText = artifact.ShortText
		resp.SatisfactionScore = artifact.SatisfactionScore
		if !artifact.UpdatedAt.IsZero() {
			t := artifact.UpdatedAt
			resp.UpdatedAt = &t
		}
	}
	return resp
}

// handleGenerateEvaluation runs the evaluation pipeline for a key
func (s *Server) handleGenerateEvaluation(w http.ResponseWriter, r *http.Request) {
	var req GenerateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	artifact, err := s.evaluations.Generate(r.Context(), req.SubjectID, req.CycleID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, evaluationResponse(req.SubjectID, req.CycleID, artifact))
}

// handleGetEvaluation reads the cached artifact without triggering generation
func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	subjectID, err := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)
	if err != nil || subjectID <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "subject_id must be a positive integer")
		return
	}
	cycleID, err := strconv.ParseInt(r.URL.Query().Get("cycle_id"), 10, 64)
	if err != nil || cycleID <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "cycle_id must be a positive integer")
		return
	}

	artifact, err := s.evaluations.Get(r.Context(), subjectID, cycleID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, evaluationResponse(subjectID, cycleID, artifact))
}

// handleGenerateSurvey runs the survey pipeline for a key
func (s *Server) handleGenerateSurvey(w http.ResponseWriter, r *http.Request) {
	var req GenerateSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}
	surveyID := uuid.MustParse(req.SurveyID)

	artifact, err := s.surveys.Generate(r.Context(), surveyID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, surveyResponse(surveyID, artifact))
}

// handleGetSurvey reads the cached artifact without triggering generation
func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, err := uuid.Parse(r.PathValue("survey_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "survey_id must be a valid UUID")
		return
	}

	artifact, err := s.surveys.Get(r.Context(), surveyID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, surveyResponse(surveyID, artifact))
}

// handleListSurveys lists every survey artifact with parent survey metadata
func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	filters := db.SummaryFilters{
		Status: strings.ToUpper(r.URL.Query().Get("status")),
	}

	items, err := s.surveys.List(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	resp := make([]SurveySummaryResponse, 0, len(items))
	for _, item := range items {
		entry := surveyResponse(item.SurveyID, &item.SurveySummary)
		entry.SurveyTitle = item.SurveyTitle
		entry.ClosesAt = item.ClosesAt
		resp = append(resp, entry)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
