// Package server provides the HTTP REST API over the summary pipeline.
package server

import (
	"errors"
	"net/http"

	"github.com/rmarinho/feedback-insights/internal/summary"
)

// HTTPStatus returns the appropriate HTTP status code for a pipeline error
func HTTPStatus(err error) int {
	var (
		input     *summary.InputError
		conflict  *summary.ConflictError
		noRecords *summary.NoRecordsError
		upstream  *summary.UpstreamError
		storage   *summary.StorageError
	)
	switch {
	case errors.As(err, &input):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &noRecords):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &storage):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
