// Package yaml reads plugincheck configuration files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/plugincheck/internal/config"
	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// yamlConfig represents the raw YAML structure. Pointer fields distinguish
// "not set" from a zero value so the file only overrides what it names.
type yamlConfig struct {
	Policy  yamlPolicy  `yaml:"policy"`
	Scan    yamlScan    `yaml:"scan"`
	Report  yamlReport  `yaml:"report"`
	Logging yamlLogging `yaml:"logging"`
}

type yamlPolicy struct {
	DescriptorFile    *string  `yaml:"descriptor_file"`
	RootElement       *string  `yaml:"root_element"`
	VendorName        *string  `yaml:"vendor_name"`
	VendorURLSecure   *string  `yaml:"vendor_url_secure"`
	VendorURLInsecure *string  `yaml:"vendor_url_insecure"`
	ArchiveExtensions []string `yaml:"archive_extensions"`
	MaxDescriptorSize *int64   `yaml:"max_descriptor_size"`
}

type yamlScan struct {
	Skip []string `yaml:"skip"`
}

type yamlReport struct {
	Format  *string `yaml:"format"`
	Path    *string `yaml:"path"`
	SignKey *string `yaml:"sign_key"`
}

type yamlLogging struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

// ConfigParser parses YAML configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a YAML configuration file on top of the defaults
func (p *ConfigParser) ParseFile(filePath string) (*config.Config, error) {
	//nolint:gosec // G304: filePath is the user-provided configuration file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes on top of the defaults. Unknown keys are rejected.
func (p *ConfigParser) Parse(data []byte) (*config.Config, error) {
	var raw yamlConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := config.Default()
	applyPolicy(&cfg.Policy, raw.Policy)
	if raw.Scan.Skip != nil {
		cfg.Scan.Skip = raw.Scan.Skip
	}
	setString(&cfg.Report.Format, raw.Report.Format)
	setString(&cfg.Report.Path, raw.Report.Path)
	setString(&cfg.Report.SignKey, raw.Report.SignKey)
	setString(&cfg.Logging.Level, raw.Logging.Level)
	setString(&cfg.Logging.Format, raw.Logging.Format)

	return cfg, nil
}

func applyPolicy(dst *entities.DescriptorPolicy, yp yamlPolicy) {
	setString(&dst.FileName, yp.DescriptorFile)
	setString(&dst.RootElement, yp.RootElement)
	setString(&dst.VendorName, yp.VendorName)
	setString(&dst.VendorURLSecure, yp.VendorURLSecure)
	setString(&dst.VendorURLInsecure, yp.VendorURLInsecure)
	if yp.ArchiveExtensions != nil {
		dst.ArchiveExtensions = yp.ArchiveExtensions
	}
	if yp.MaxDescriptorSize != nil {
		dst.MaxSize = *yp.MaxDescriptorSize
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
