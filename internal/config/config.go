// Package config holds the settings of a plugincheck run.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"go.uber.org/multierr"

	"github.com/ochairo/plugincheck/internal/domain/entities"
	"github.com/ochairo/plugincheck/internal/external-adapters/zaplog"
)

// DefaultFile is read from the working directory when no --config is given
const DefaultFile = ".plugincheck.yaml"

// Output formats of the batch reporter
const (
	FormatTeamCity = "teamcity"
	FormatConsole  = "console"
)

// EnvSignPassphrase holds the passphrase of an encrypted signing key
const EnvSignPassphrase = "PLUGINCHECK_SIGN_PASSPHRASE"

// Config is the merged result of defaults, the config file and flags
type Config struct {
	Policy  entities.DescriptorPolicy
	Scan    ScanConfig
	Report  ReportConfig
	Logging LoggingConfig
}

// ScanConfig controls which root entries are considered
type ScanConfig struct {
	Skip []string
}

// ReportConfig controls trace output and the JSON report
type ReportConfig struct {
	Format  string
	Path    string
	SignKey string
}

// LoggingConfig controls diagnostic logging on stderr
type LoggingConfig struct {
	Level  string
	Format string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Policy: entities.DefaultDescriptorPolicy(),
		Report: ReportConfig{
			Format: FormatTeamCity,
		},
		Logging: LoggingConfig{
			Level:  "WARN",
			Format: "CONSOLE",
		},
	}
}

// ApplyEnv overrides logging settings from LOGGING_LEVEL and LOGGING_FORMAT
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(zaplog.EnvLevel); v != "" {
		c.Logging.Level = v
	}
	if v := getenv(zaplog.EnvFormat); v != "" {
		c.Logging.Format = v
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var err error

	p := c.Policy
	for name, value := range map[string]string{
		"descriptor_file":     p.FileName,
		"root_element":        p.RootElement,
		"vendor_name":         p.VendorName,
		"vendor_url_secure":   p.VendorURLSecure,
		"vendor_url_insecure": p.VendorURLInsecure,
	} {
		if value == "" {
			err = multierr.Append(err, fmt.Errorf("policy.%s must not be empty", name))
		}
	}
	if len(p.ArchiveExtensions) == 0 {
		err = multierr.Append(err, errors.New("policy.archive_extensions must not be empty"))
	}
	for _, ext := range p.ArchiveExtensions {
		if ext == "" {
			err = multierr.Append(err, errors.New("policy.archive_extensions must not contain empty values"))
		}
	}
	if p.MaxSize < 0 {
		err = multierr.Append(err, fmt.Errorf("policy.max_descriptor_size must not be negative, got %d", p.MaxSize))
	}

	for _, pattern := range c.Scan.Skip {
		if _, gerr := glob.Compile(pattern); gerr != nil {
			err = multierr.Append(err, fmt.Errorf("scan.skip: invalid pattern %q: %w", pattern, gerr))
		}
	}

	switch c.Report.Format {
	case FormatTeamCity, FormatConsole:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown format %q (want %s or %s)", c.Report.Format, FormatTeamCity, FormatConsole))
	}
	if c.Report.SignKey != "" && c.Report.Path == "" {
		err = multierr.Append(err, errors.New("a signing key needs a report path"))
	}

	if _, lerr := zaplog.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	if _, ferr := zaplog.ParseFormat(c.Logging.Format); ferr != nil {
		err = multierr.Append(err, ferr)
	}

	return err
}
