// Package gateways defines interfaces for filesystem and document adapters.
package gateways

import (
	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// DescriptorReader extracts the raw descriptor bytes from one kind of artifact.
// Supports is the explicit "not applicable" answer: a reader that does not
// support an artifact is skipped without a failure.
type DescriptorReader interface {
	// Supports reports whether this reader understands the artifact's kind
	Supports(artifact *entities.Artifact) bool

	// Read returns the descriptor bytes, or a *entities.ValidationFailure
	// with stage extraction
	Read(artifact *entities.Artifact) ([]byte, error)
}

// ArtifactFinder lists the candidate artifacts under a root directory
type ArtifactFinder interface {
	// Find returns the visible artifacts sorted by name, or a
	// *entities.RootPathError when root cannot be listed
	Find(root string) ([]*entities.Artifact, error)
}

// ChecksumCalculator computes file digests
type ChecksumCalculator interface {
	CalculateChecksum(filePath string) (string, error)
}
