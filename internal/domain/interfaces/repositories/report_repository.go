// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// ReportRepository persists batch reports
type ReportRepository interface {
	// SaveReport writes the report and returns the path it was written to
	SaveReport(ctx context.Context, report *entities.BatchReport) (string, error)
}

// ReportSigner produces a detached signature for a stored report
type ReportSigner interface {
	// SignFile writes a signature next to filePath and returns its path
	SignFile(ctx context.Context, filePath string) (string, error)
}
