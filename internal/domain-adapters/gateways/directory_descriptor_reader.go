package gateways

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// DirectoryDescriptorReader reads the descriptor of an unpacked plugin directory
type DirectoryDescriptorReader struct {
	fileName string
	maxSize  int64
}

// NewDirectoryDescriptorReader creates a reader for the policy's descriptor file
func NewDirectoryDescriptorReader(policy entities.DescriptorPolicy) *DirectoryDescriptorReader {
	return &DirectoryDescriptorReader{
		fileName: policy.FileName,
		maxSize:  policy.MaxSize,
	}
}

// Supports reports whether the artifact is a directory
func (r *DirectoryDescriptorReader) Supports(artifact *entities.Artifact) bool {
	return artifact.IsDirectory()
}

// Read returns the bytes of <artifact>/<descriptor file>
func (r *DirectoryDescriptorReader) Read(artifact *entities.Artifact) ([]byte, error) {
	path := filepath.Join(artifact.Path, r.fileName)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, notContained(artifact, r.fileName)
	}

	//nolint:gosec // G304: path is the descriptor inside a scanned plugin directory
	f, err := os.Open(path)
	if err != nil {
		return nil, entities.NewExtractionFailure(artifact.Name, fmt.Sprintf(reasonReadFile, r.fileName), err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	data, exceeded, err := readLimited(f, r.maxSize)
	if err != nil {
		return nil, entities.NewExtractionFailure(artifact.Name, fmt.Sprintf(reasonReadFile, r.fileName), err)
	}
	if exceeded {
		return nil, tooLarge(artifact, r.fileName, r.maxSize)
	}

	return data, nil
}
