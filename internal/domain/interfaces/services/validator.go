// Package services defines interfaces for domain service contracts.
package services

import (
	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// DescriptorValidator applies the descriptor rule set to raw descriptor bytes
type DescriptorValidator interface {
	// Validate returns the check outcome. The error, when not nil, is a
	// *entities.ValidationFailure for the first rule that was violated; the
	// returned check still carries what was learned before that rule.
	Validate(artifactName string, data []byte, expectedVersion string) (*entities.DescriptorCheck, error)
}
