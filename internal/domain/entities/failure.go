package entities

import (
	"fmt"
	"strings"
)

// FailureStage tells which step of an artifact check produced a failure
type FailureStage string

// Failure stages
const (
	StageExtraction FailureStage = "extraction"
	StageValidation FailureStage = "validation"
)

// ValidationFailure records one rule violation for one artifact.
// Artifact and Reason are never empty.
type ValidationFailure struct {
	Artifact string
	Reason   string
	Cause    error
	Stage    FailureStage
}

// NewExtractionFailure creates a failure raised while reading the descriptor out of an artifact
func NewExtractionFailure(artifact, reason string, cause error) *ValidationFailure {
	return newFailure(artifact, reason, cause, StageExtraction)
}

// NewValidationFailure creates a failure raised by a descriptor rule
func NewValidationFailure(artifact, reason string, cause error) *ValidationFailure {
	return newFailure(artifact, reason, cause, StageValidation)
}

func newFailure(artifact, reason string, cause error, stage FailureStage) *ValidationFailure {
	if artifact == "" {
		artifact = "<unnamed>"
	}
	if reason == "" {
		reason = "unknown failure"
	}
	return &ValidationFailure{
		Artifact: artifact,
		Reason:   reason,
		Cause:    cause,
		Stage:    stage,
	}
}

// Error returns "<artifact>: <reason>", followed by the cause when there is one
func (f *ValidationFailure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Artifact, f.Reason, f.Cause)
	}
	return f.Artifact + ": " + f.Reason
}

// Unwrap returns the underlying cause
func (f *ValidationFailure) Unwrap() error {
	return f.Cause
}

// Advisory is a non-fatal finding that does not affect the batch outcome
type Advisory struct {
	Artifact string
	Message  string
}

// RootPathError is returned when the scanned root cannot be listed at all
type RootPathError struct {
	Path  string
	Cause error
}

func (e *RootPathError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to find plugins path: %s: %v", e.Path, e.Cause)
	}
	return "failed to find plugins path: " + e.Path
}

// Unwrap returns the underlying cause
func (e *RootPathError) Unwrap() error {
	return e.Cause
}

// compareArtifactNames orders artifact names ignoring case
func compareArtifactNames(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
