// Package report persists batch reports as JSON documents.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// SchemaVersion is bumped whenever a field changes meaning
const SchemaVersion = "1"

type jsonReport struct {
	Schema          string         `json:"schema"`
	RunID           string         `json:"run_id"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Tool            jsonTool       `json:"tool"`
	Root            string         `json:"root"`
	ExpectedVersion string         `json:"expected_version"`
	Passed          bool           `json:"passed"`
	Summary         jsonSummary    `json:"summary"`
	Artifacts       []jsonArtifact `json:"artifacts"`
	Failures        []jsonFailure  `json:"failures"`
}

type jsonTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type jsonSummary struct {
	Scanned    int `json:"scanned"`
	Failed     int `json:"failed"`
	Failures   int `json:"failures"`
	Advisories int `json:"advisories"`
}

type jsonArtifact struct {
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Digest     map[string]string `json:"digest,omitempty"`
	Version    string            `json:"version,omitempty"`
	Status     string            `json:"status"`
	Advisories []string          `json:"advisories,omitempty"`
}

type jsonFailure struct {
	Artifact string `json:"artifact"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
	Cause    string `json:"cause,omitempty"`
	Message  string `json:"message"`
}

// JSONWriter writes reports to a fixed path
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a writer for path
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// SaveReport writes the report as indented JSON and returns the path
func (w *JSONWriter) SaveReport(ctx context.Context, report *entities.BatchReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Marshal(report)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(w.path, data, 0o644); err != nil { //nolint:gosec // G306: reports are meant to be shared
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return w.path, nil
}

// Marshal encodes a report in the on-disk format
func Marshal(report *entities.BatchReport) ([]byte, error) {
	data, err := json.MarshalIndent(toJSON(report), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a report written by Marshal
func Unmarshal(data []byte) (*entities.BatchReport, error) {
	var raw jsonReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	if raw.Schema != SchemaVersion {
		return nil, fmt.Errorf("unsupported report schema %q", raw.Schema)
	}
	return fromJSON(&raw), nil
}

func toJSON(r *entities.BatchReport) *jsonReport {
	out := &jsonReport{
		Schema:          SchemaVersion,
		RunID:           r.RunID,
		GeneratedAt:     r.GeneratedAt,
		Tool:            jsonTool{Name: r.Tool.Name, Version: r.Tool.Version},
		Root:            r.Root,
		ExpectedVersion: r.ExpectedVersion,
		Passed:          r.Passed,
		Summary: jsonSummary{
			Scanned:    r.Summary.Scanned,
			Failed:     r.Summary.Failed,
			Failures:   r.Summary.Failures,
			Advisories: r.Summary.Advisories,
		},
		Artifacts: make([]jsonArtifact, 0, len(r.Artifacts)),
		Failures:  make([]jsonFailure, 0, len(r.Failures)),
	}

	for _, a := range r.Artifacts {
		entry := jsonArtifact{
			Name:       a.Name,
			Kind:       string(a.Kind),
			Version:    a.Version,
			Status:     a.Status,
			Advisories: a.Advisories,
		}
		if a.Digest.SHA256 != "" {
			entry.Digest = map[string]string{"sha256": a.Digest.SHA256}
		}
		out.Artifacts = append(out.Artifacts, entry)
	}

	for _, f := range r.Failures {
		out.Failures = append(out.Failures, jsonFailure{
			Artifact: f.Artifact,
			Stage:    string(f.Stage),
			Reason:   f.Reason,
			Cause:    f.Cause,
			Message:  f.Message,
		})
	}

	return out
}

func fromJSON(raw *jsonReport) *entities.BatchReport {
	r := &entities.BatchReport{
		RunID:           raw.RunID,
		GeneratedAt:     raw.GeneratedAt,
		Tool:            entities.ToolInfo{Name: raw.Tool.Name, Version: raw.Tool.Version},
		Root:            raw.Root,
		ExpectedVersion: raw.ExpectedVersion,
		Passed:          raw.Passed,
		Summary: entities.ReportSummary{
			Scanned:    raw.Summary.Scanned,
			Failed:     raw.Summary.Failed,
			Failures:   raw.Summary.Failures,
			Advisories: raw.Summary.Advisories,
		},
	}

	for _, a := range raw.Artifacts {
		r.Artifacts = append(r.Artifacts, entities.ReportArtifact{
			Name:       a.Name,
			Kind:       entities.ArtifactKind(a.Kind),
			Digest:     entities.DigestSet{SHA256: a.Digest["sha256"]},
			Version:    a.Version,
			Status:     a.Status,
			Advisories: a.Advisories,
		})
	}

	for _, f := range raw.Failures {
		r.Failures = append(r.Failures, entities.ReportFailure{
			Artifact: f.Artifact,
			Stage:    entities.FailureStage(f.Stage),
			Reason:   f.Reason,
			Cause:    f.Cause,
			Message:  f.Message,
		})
	}

	return r
}
