package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// ArtifactFinder lists the plugin artifacts directly under a root directory
type ArtifactFinder struct {
	archiveExtensions []string
	skip              []glob.Glob
}

// NewArtifactFinder creates a finder that classifies files with one of the
// given extensions as archives and ignores names matching a skip pattern
func NewArtifactFinder(archiveExtensions []string, skipPatterns []string) (*ArtifactFinder, error) {
	f := &ArtifactFinder{archiveExtensions: archiveExtensions}
	for _, pattern := range skipPatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", pattern, err)
		}
		f.skip = append(f.skip, g)
	}
	return f, nil
}

// Find returns the visible artifacts under root, sorted by name
func (f *ArtifactFinder) Find(root string) ([]*entities.Artifact, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &entities.RootPathError{Path: root, Cause: err}
	}
	if !info.IsDir() {
		return nil, &entities.RootPathError{Path: root}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &entities.RootPathError{Path: root, Cause: err}
	}

	artifacts := make([]*entities.Artifact, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if isHidden(path, entry.Name()) || f.skipped(entry.Name()) {
			continue
		}
		artifacts = append(artifacts, &entities.Artifact{
			Name: entry.Name(),
			Kind: f.classify(path, entry.Name()),
			Path: path,
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})

	return artifacts, nil
}

func (f *ArtifactFinder) skipped(name string) bool {
	for _, g := range f.skip {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// classify follows symlinks, so a link to a plugin directory is a directory
func (f *ArtifactFinder) classify(path, name string) entities.ArtifactKind {
	info, err := os.Stat(path)
	if err != nil {
		return entities.KindOther
	}
	if info.IsDir() {
		return entities.KindDirectory
	}
	if !info.Mode().IsRegular() {
		return entities.KindOther
	}
	for _, ext := range f.archiveExtensions {
		if strings.HasSuffix(name, ext) {
			return entities.KindArchive
		}
	}
	return entities.KindOther
}
