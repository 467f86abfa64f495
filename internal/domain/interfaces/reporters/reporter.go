// Package reporters defines the contract for rendering scan progress and results.
package reporters

import (
	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// Reporter receives the semantic events of a batch scan.
// Events for one artifact are always delivered between ScanStarted and
// ScanFinished for that artifact.
type Reporter interface {
	BatchStarted(root, expectedVersion string)
	ScanStarted(name string)
	VersionDetected(name, version string)
	Advisory(name, message string)

	// ScanOutcome is called once per attempted check; failure is nil on success
	ScanOutcome(name string, failure *entities.ValidationFailure)

	ScanFinished(name string)
	BatchFinished(result *entities.BatchResult)
}
