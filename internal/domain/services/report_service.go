package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/plugincheck/internal/domain/entities"
	"github.com/ochairo/plugincheck/internal/domain/interfaces"
	"github.com/ochairo/plugincheck/internal/domain/interfaces/gateways"
)

// ReportService turns a finished batch into a BatchReport
type ReportService struct {
	checksums gateways.ChecksumCalculator
	tool      entities.ToolInfo
	logger    interfaces.Logger
	now       func() time.Time
}

// NewReportService creates a new report service
func NewReportService(checksums gateways.ChecksumCalculator, tool entities.ToolInfo, logger interfaces.Logger) *ReportService {
	return &ReportService{
		checksums: checksums,
		tool:      tool,
		logger:    interfaces.OrNoOp(logger),
		now:       time.Now,
	}
}

// Build assembles the report. Failures keep the order of the result, which
// the scanner has already sorted.
func (s *ReportService) Build(result *entities.BatchResult) *entities.BatchReport {
	report := &entities.BatchReport{
		RunID:           uuid.NewString(),
		GeneratedAt:     s.now().UTC(),
		Tool:            s.tool,
		Root:            result.Root,
		ExpectedVersion: result.ExpectedVersion,
		Passed:          result.Passed(),
		Artifacts:       make([]entities.ReportArtifact, 0, len(result.Artifacts)),
		Failures:        make([]entities.ReportFailure, 0, len(result.Failures)),
	}

	for _, a := range result.Artifacts {
		report.Artifacts = append(report.Artifacts, s.artifactEntry(a))
		if !a.Passed() {
			report.Summary.Failed++
		}
	}

	for _, f := range result.Failures {
		entry := entities.ReportFailure{
			Artifact: f.Artifact,
			Stage:    f.Stage,
			Reason:   f.Reason,
			Message:  f.Error(),
		}
		if f.Cause != nil {
			entry.Cause = f.Cause.Error()
		}
		report.Failures = append(report.Failures, entry)
	}

	report.Summary.Scanned = result.Scanned()
	report.Summary.Failures = len(result.Failures)
	report.Summary.Advisories = len(result.Advisories())

	return report
}

func (s *ReportService) artifactEntry(a *entities.ArtifactResult) entities.ReportArtifact {
	entry := entities.ReportArtifact{
		Name:    a.Artifact.Name,
		Kind:    a.Artifact.Kind,
		Version: a.Version,
		Status:  entities.StatusPassed,
	}
	if !a.Passed() {
		entry.Status = entities.StatusFailed
	}
	for _, adv := range a.Advisories {
		entry.Advisories = append(entry.Advisories, adv.Message)
	}

	if a.Artifact.IsArchive() && s.checksums != nil {
		sum, err := s.checksums.CalculateChecksum(a.Artifact.Path)
		if err != nil {
			// the digest is informational; a missing one does not change the outcome
			s.logger.Warn("Failed to checksum artifact",
				interfaces.F("artifact", a.Artifact.Name),
				interfaces.F("error", err.Error()))
		} else {
			entry.Digest.SHA256 = sum
		}
	}

	return entry
}
