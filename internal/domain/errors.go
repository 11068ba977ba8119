package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures reported by the enrichment orchestrator.
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeEnrichmentFailed  ErrorCode = "ENRICHMENT_FAILED"
	CodeAlreadyProcessing ErrorCode = "ALREADY_PROCESSING"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEnrichmentFailed  = errors.New("enrichment failed")
	ErrAlreadyProcessing = errors.New("enrichment already in progress")
	ErrProviderFailure   = errors.New("provider failure")
	ErrExtractionFailure = errors.New("extraction failure")
	ErrNotConfigured     = errors.New("provider not configured")
)

// EnrichError is the single failure shape returned to callers of the pipeline.
type EnrichError struct {
	IdeaID string
	Code   ErrorCode
	Err    error
}

func (e *EnrichError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] idea %s: %v", e.Code, e.IdeaID, e.Err)
	}
	return fmt.Sprintf("[%s] idea %s", e.Code, e.IdeaID)
}

func (e *EnrichError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel that corresponds to the code.
func (e *EnrichError) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == ErrNotFound
	case CodeEnrichmentFailed:
		return target == ErrEnrichmentFailed
	case CodeAlreadyProcessing:
		return target == ErrAlreadyProcessing
	}
	return false
}

// CodeOf extracts the orchestrator code from err, or "" when err is not an EnrichError.
func CodeOf(err error) ErrorCode {
	var ee *EnrichError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}
