// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"

	"github.com/ochairo/plugincheck/internal/domain/entities"
	"github.com/ochairo/plugincheck/internal/domain/interfaces"
	"github.com/ochairo/plugincheck/internal/domain/interfaces/gateways"
	"github.com/ochairo/plugincheck/internal/domain/interfaces/reporters"
	"github.com/ochairo/plugincheck/internal/domain/interfaces/services"
)

// NameNormalizer turns an artifact name into its display form
type NameNormalizer func(name string) string

// IdentityName is the default NameNormalizer
func IdentityName(name string) string {
	return name
}

// Pairing binds a descriptor reader to the validator that checks what it reads
type Pairing struct {
	Reader    gateways.DescriptorReader
	Validator services.DescriptorValidator
}

// ScanOrchestrator runs every pairing against every artifact of a root directory
type ScanOrchestrator struct {
	finder    gateways.ArtifactFinder
	pairings  []Pairing
	reporter  reporters.Reporter
	logger    interfaces.Logger
	normalize NameNormalizer
}

// ScanOrchestratorConfig holds optional collaborators
type ScanOrchestratorConfig struct {
	Logger    interfaces.Logger
	Normalize NameNormalizer
}

// NewScanOrchestrator creates a new scan orchestrator. Pairings are tried in
// the order given.
func NewScanOrchestrator(
	finder gateways.ArtifactFinder,
	pairings []Pairing,
	reporter reporters.Reporter,
	config ScanOrchestratorConfig,
) *ScanOrchestrator {
	normalize := config.Normalize
	if normalize == nil {
		normalize = IdentityName
	}

	return &ScanOrchestrator{
		finder:    finder,
		pairings:  pairings,
		reporter:  reporter,
		logger:    interfaces.OrNoOp(config.Logger),
		normalize: normalize,
	}
}

// Scan checks every artifact under root against expectedVersion.
// Per-artifact problems end up in the returned result; an error is returned
// only when the root cannot be listed or ctx is cancelled.
func (o *ScanOrchestrator) Scan(ctx context.Context, root, expectedVersion string) (*entities.BatchResult, error) {
	artifacts, err := o.finder.Find(root)
	if err != nil {
		return nil, err
	}

	result := entities.NewBatchResult(root, expectedVersion)
	o.reporter.BatchStarted(root, expectedVersion)
	o.logger.Debug("Scanning plugins",
		interfaces.F("root", root),
		interfaces.F("artifacts", len(artifacts)),
		interfaces.F("version", expectedVersion))

	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted: %w", err)
		}
		result.Artifacts = append(result.Artifacts, o.scanArtifact(artifact, expectedVersion, result))
	}

	result.Sort()
	o.reporter.BatchFinished(result)

	o.logger.Info("Scan finished",
		interfaces.F("scanned", result.Scanned()),
		interfaces.F("failures", len(result.Failures)))

	return result, nil
}

func (o *ScanOrchestrator) scanArtifact(artifact *entities.Artifact, expectedVersion string, result *entities.BatchResult) *entities.ArtifactResult {
	name := o.normalize(artifact.Name)
	record := &entities.ArtifactResult{
		Artifact:    *artifact,
		DisplayName: name,
	}

	o.reporter.ScanStarted(name)
	defer o.reporter.ScanFinished(name)

	for _, p := range o.pairings {
		if !p.Reader.Supports(artifact) {
			continue
		}

		failure := o.check(p, artifact, expectedVersion, record)
		o.reporter.ScanOutcome(name, failure)
		if failure != nil {
			o.logger.Debug("Artifact failed",
				interfaces.F("artifact", artifact.Name),
				interfaces.F("stage", failure.Stage),
				interfaces.F("reason", failure.Reason))
			record.Failures++
			result.AddFailure(failure)
		}
	}

	return record
}

// check runs one pairing and converts any error into a failure for the artifact
func (o *ScanOrchestrator) check(p Pairing, artifact *entities.Artifact, expectedVersion string, record *entities.ArtifactResult) *entities.ValidationFailure {
	data, err := p.Reader.Read(artifact)
	if err != nil {
		return asFailure(artifact.Name, err, entities.StageExtraction)
	}

	check, err := p.Validator.Validate(artifact.Name, data, expectedVersion)
	if check != nil {
		if check.VersionFound {
			record.Version = check.Version
			record.VersionFound = true
			o.reporter.VersionDetected(record.DisplayName, check.Version)
		}
		for _, a := range check.Advisories {
			record.Advisories = append(record.Advisories, a)
			o.reporter.Advisory(record.DisplayName, a.Message)
		}
	}
	if err != nil {
		return asFailure(artifact.Name, err, entities.StageValidation)
	}

	return nil
}

func asFailure(name string, err error, stage entities.FailureStage) *entities.ValidationFailure {
	var failure *entities.ValidationFailure
	if errors.As(err, &failure) {
		return failure
	}
	if stage == entities.StageExtraction {
		return entities.NewExtractionFailure(name, "failed to read descriptor", err)
	}
	return entities.NewValidationFailure(name, "failed to validate descriptor", err)
}
