// Package entities defines core domain models and data structures.
package entities

// ArtifactKind classifies how a plugin artifact is stored on disk
type ArtifactKind string

// Artifact kinds recognized by the scanner
const (
	KindArchive   ArtifactKind = "archive"
	KindDirectory ArtifactKind = "directory"
	KindOther     ArtifactKind = "other" // regular file no reader understands
)

// Artifact represents a plugin package found under the scanned root
type Artifact struct {
	Name string
	Kind ArtifactKind
	Path string
}

// IsArchive reports whether the artifact is a compressed archive
func (a *Artifact) IsArchive() bool {
	return a.Kind == KindArchive
}

// IsDirectory reports whether the artifact is an unpacked plugin directory
func (a *Artifact) IsDirectory() bool {
	return a.Kind == KindDirectory
}
