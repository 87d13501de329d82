// Package summary drives the generation state machine that turns aggregated
// records into persisted summary artifacts.
package summary

import "fmt"

// InputError indicates an invalid generation key. Surfaced before any state
// is touched.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: %s", e.Message)
}

// ConflictError indicates a generation is already in flight for the key.
// Surfaced without writes.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("generation already in progress for %s", e.Key)
}

// NoRecordsError indicates the key has no records to summarize. The artifact
// is transitioned to FAILED before it is surfaced.
type NoRecordsError struct {
	Message string
}

func (e *NoRecordsError) Error() string {
	return e.Message
}

// UpstreamError indicates the generation collaborator failed or returned
// unusable output. The artifact is transitioned to FAILED.
type UpstreamError struct {
	Message string
	Cause   error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// StorageError indicates aggregation or persistence failed. The FAILED
// transition is attempted best-effort; if that write fails too, the error
// carries both causes.
type StorageError struct {
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error: %s", e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
