package gateways

import (
	"fmt"

	"github.com/klauspost/compress/zip"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// ArchiveDescriptorReader reads the descriptor entry out of a zipped plugin
type ArchiveDescriptorReader struct {
	fileName string
	maxSize  int64
}

// NewArchiveDescriptorReader creates a reader for the policy's descriptor file
func NewArchiveDescriptorReader(policy entities.DescriptorPolicy) *ArchiveDescriptorReader {
	return &ArchiveDescriptorReader{
		fileName: policy.FileName,
		maxSize:  policy.MaxSize,
	}
}

// Supports reports whether the artifact is an archive
func (r *ArchiveDescriptorReader) Supports(artifact *entities.Artifact) bool {
	return artifact.IsArchive()
}

// Read returns the bytes of the top-level descriptor entry
func (r *ArchiveDescriptorReader) Read(artifact *entities.Artifact) ([]byte, error) {
	archive, err := zip.OpenReader(artifact.Path)
	if err != nil {
		return nil, entities.NewExtractionFailure(artifact.Name, fmt.Sprintf(reasonUnpack, r.fileName), err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer archive.Close()

	var entry *zip.File
	for _, f := range archive.File {
		if f.Name == r.fileName {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, notContained(artifact, r.fileName)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, entities.NewExtractionFailure(artifact.Name, fmt.Sprintf(reasonUnpack, r.fileName), err)
	}
	//nolint:errcheck // Defer close on read-only entry
	defer rc.Close()

	data, exceeded, err := readLimited(rc, r.maxSize)
	if err != nil {
		return nil, entities.NewExtractionFailure(artifact.Name, fmt.Sprintf(reasonUnpack, r.fileName), err)
	}
	if exceeded {
		return nil, tooLarge(artifact, r.fileName, r.maxSize)
	}

	return data, nil
}
