package entities

import (
	"sort"

	"go.uber.org/multierr"
)

// Process exit codes derived from a batch outcome
const (
	ExitOK               = 0
	ExitUsage            = 1
	ExitValidationFailed = 2
)

// ArtifactResult is the per-artifact record of one scan
type ArtifactResult struct {
	Artifact     Artifact
	DisplayName  string
	Version      string
	VersionFound bool
	Advisories   []Advisory
	Failures     int
}

// Passed reports whether the artifact produced no failures
func (r *ArtifactResult) Passed() bool {
	return r.Failures == 0
}

// BatchResult collects every failure found during one scan of a root directory
type BatchResult struct {
	Root            string
	ExpectedVersion string
	Failures        []*ValidationFailure
	Artifacts       []*ArtifactResult
}

// NewBatchResult creates an empty result for a scan of root
func NewBatchResult(root, expectedVersion string) *BatchResult {
	return &BatchResult{
		Root:            root,
		ExpectedVersion: expectedVersion,
	}
}

// Scanned returns the number of artifacts that were checked
func (b *BatchResult) Scanned() int {
	return len(b.Artifacts)
}

// AddFailure appends a failure
func (b *BatchResult) AddFailure(f *ValidationFailure) {
	b.Failures = append(b.Failures, f)
}

// Passed returns true when no artifact failed
func (b *BatchResult) Passed() bool {
	return len(b.Failures) == 0
}

// ExitCode maps the outcome to the process exit status
func (b *BatchResult) ExitCode() int {
	if b.Passed() {
		return ExitOK
	}
	return ExitValidationFailed
}

// Sort orders failures by artifact name ignoring case. Failures of the same
// artifact keep the order they were found in.
func (b *BatchResult) Sort() {
	sort.SliceStable(b.Failures, func(i, j int) bool {
		return compareArtifactNames(b.Failures[i].Artifact, b.Failures[j].Artifact) < 0
	})
}

// Advisories returns all advisories in scan order
func (b *BatchResult) Advisories() []Advisory {
	var out []Advisory
	for _, a := range b.Artifacts {
		out = append(out, a.Advisories...)
	}
	return out
}

// Err combines all failures into a single error, or nil when the batch passed
func (b *BatchResult) Err() error {
	var err error
	for _, f := range b.Failures {
		err = multierr.Append(err, f)
	}
	return err
}
