package entities

import "time"

// BatchReport is the machine-readable summary of one scan
type BatchReport struct {
	RunID           string
	GeneratedAt     time.Time
	Tool            ToolInfo
	Root            string
	ExpectedVersion string
	Passed          bool
	Summary         ReportSummary
	Artifacts       []ReportArtifact
	Failures        []ReportFailure
}

// ToolInfo identifies the program that produced a report
type ToolInfo struct {
	Name    string
	Version string
}

// ReportSummary holds the batch counters
type ReportSummary struct {
	Scanned    int
	Failed     int
	Failures   int
	Advisories int
}

// ReportArtifact describes one scanned artifact
type ReportArtifact struct {
	Name       string
	Kind       ArtifactKind
	Digest     DigestSet // empty for directories
	Version    string
	Status     string // "passed" or "failed"
	Advisories []string
}

// DigestSet contains cryptographic digests of an artifact
type DigestSet struct {
	SHA256 string
}

// ReportFailure is one failure as it appears in the final error list
type ReportFailure struct {
	Artifact string
	Stage    FailureStage
	Reason   string
	Cause    string
	Message  string
}

// Report statuses
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)
