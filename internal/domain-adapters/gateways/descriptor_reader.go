package gateways

import (
	"fmt"
	"io"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// Extraction failure reasons
const (
	reasonNotContained = "%s is not contained in .zip"
	reasonUnpack       = "failed to unpack %s from .zip"
	reasonReadFile     = "failed to read %s"
	reasonTooLarge     = "%s exceeds %d bytes"
)

// readLimited reads r into memory, failing when more than limit bytes are
// available. A limit of zero or less disables the check.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		return data, false, err
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return nil, true, nil
	}
	return data, false, nil
}

func notContained(artifact *entities.Artifact, fileName string) *entities.ValidationFailure {
	return entities.NewExtractionFailure(artifact.Name, fmt.Sprintf(reasonNotContained, fileName), nil)
}

func tooLarge(artifact *entities.Artifact, fileName string, limit int64) *entities.ValidationFailure {
	return entities.NewExtractionFailure(artifact.Name, fmt.Sprintf(reasonTooLarge, fileName, limit), nil)
}
