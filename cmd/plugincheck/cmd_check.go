package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ochairo/plugincheck/internal/config"
	"github.com/ochairo/plugincheck/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/plugincheck/internal/domain-orchestrators"
	"github.com/ochairo/plugincheck/internal/domain/entities"
	"github.com/ochairo/plugincheck/internal/domain/interfaces"
	"github.com/ochairo/plugincheck/internal/domain/interfaces/reporters"
	"github.com/ochairo/plugincheck/internal/domain/interfaces/repositories"
	"github.com/ochairo/plugincheck/internal/domain/services"
	"github.com/ochairo/plugincheck/internal/external-adapters/console"
	"github.com/ochairo/plugincheck/internal/external-adapters/gpg"
	"github.com/ochairo/plugincheck/internal/external-adapters/report"
	"github.com/ochairo/plugincheck/internal/external-adapters/teamcity"
	xmlparser "github.com/ochairo/plugincheck/internal/external-adapters/xml"
	"github.com/ochairo/plugincheck/internal/external-adapters/yaml"
	"github.com/ochairo/plugincheck/internal/external-adapters/zaplog"
)

// checkOptions are the flags of the main command
type checkOptions struct {
	configFile string
	format     string
	reportPath string
	signKey    string
	skip       []string
	logLevel   string
	logFormat  string
}

func (o *checkOptions) bind(f *pflag.FlagSet) {
	f.StringVar(&o.configFile, "config", "", "Configuration file (default "+config.DefaultFile+" when present)")
	f.StringVar(&o.format, "format", "", "Trace format: teamcity or console")
	f.StringVar(&o.reportPath, "report", "", "Write a JSON report to this file")
	f.StringVar(&o.signKey, "sign-key", "", "Armored private key used to sign the report")
	f.StringSliceVar(&o.skip, "skip", nil, "Glob patterns of root entries to ignore")
	f.StringVar(&o.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")
	f.StringVar(&o.logFormat, "log-format", "", "Log format: console or json")
}

// loadConfig layers defaults, the config file, the environment and flags
func (a *app) loadConfig(cmd *cobra.Command, o *checkOptions) (*config.Config, error) {
	parser := yaml.NewConfigParser()

	cfg := config.Default()
	switch {
	case o.configFile != "":
		parsed, err := parser.ParseFile(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = parsed
	default:
		parsed, err := parser.ParseFile(config.DefaultFile)
		switch {
		case err == nil:
			cfg = parsed
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyEnv(a.getenv)

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format = o.format
	}
	if flags.Changed("report") {
		cfg.Report.Path = o.reportPath
	}
	if flags.Changed("sign-key") {
		cfg.Report.SignKey = o.signKey
	}
	if flags.Changed("skip") {
		cfg.Scan.Skip = o.skip
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (a *app) newLogger(cfg *config.Config) *zaplog.Logger {
	// both values were checked by Validate
	level, _ := zaplog.ParseLevel(cfg.Logging.Level)
	format, _ := zaplog.ParseFormat(cfg.Logging.Format)
	return zaplog.NewWithWriter(level, format, a.stderr)
}

func (a *app) newReporter(format string) reporters.Reporter {
	if format == config.FormatConsole {
		return console.NewReporter(a.stdout)
	}
	return teamcity.NewReporter(a.stdout)
}

func (a *app) runCheck(cmd *cobra.Command, root, expectedVersion string, o *checkOptions) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig(cmd, o)
	if err != nil {
		return err
	}

	logger := a.newLogger(cfg)
	//nolint:errcheck // Best-effort flush of stderr logs
	defer logger.Sync()

	// Load the signing key before scanning so a bad key fails fast
	var signer *gpg.Signer
	if cfg.Report.SignKey != "" {
		signer, err = gpg.NewSigner(cfg.Report.SignKey, []byte(a.getenv(config.EnvSignPassphrase)))
		if err != nil {
			return fmt.Errorf("failed to load signing key: %w", err)
		}
	}

	finder, err := gateways.NewArtifactFinder(cfg.Policy.ArchiveExtensions, cfg.Scan.Skip)
	if err != nil {
		return err
	}

	validator := services.NewDescriptorValidator(xmlparser.NewDocumentParser(), cfg.Policy)
	scanner := orchestrators.NewScanOrchestrator(
		finder,
		[]orchestrators.Pairing{
			{Reader: gateways.NewArchiveDescriptorReader(cfg.Policy), Validator: validator},
			{Reader: gateways.NewDirectoryDescriptorReader(cfg.Policy), Validator: validator},
		},
		a.newReporter(cfg.Report.Format),
		orchestrators.ScanOrchestratorConfig{Logger: logger.Named("scan")},
	)

	result, err := scanner.Scan(ctx, root, expectedVersion)
	if err != nil {
		return err
	}

	if cfg.Report.Path != "" {
		var reportSigner repositories.ReportSigner
		if signer != nil {
			reportSigner = signer
		}
		if err := a.writeReport(ctx, report.NewJSONWriter(cfg.Report.Path), reportSigner, result, logger); err != nil {
			return err
		}
	}

	if !result.Passed() {
		return errValidationFailed
	}
	return nil
}

func (a *app) writeReport(
	ctx context.Context,
	repo repositories.ReportRepository,
	signer repositories.ReportSigner,
	result *entities.BatchResult,
	logger interfaces.Logger,
) error {
	reportSvc := services.NewReportService(
		gateways.NewChecksumCalculator(),
		entities.ToolInfo{Name: "plugincheck", Version: version},
		logger,
	)

	path, err := repo.SaveReport(ctx, reportSvc.Build(result))
	if err != nil {
		return err
	}
	logger.Info("Report written", interfaces.F("path", path))

	if signer == nil {
		return nil
	}

	sigPath, err := signer.SignFile(ctx, path)
	if err != nil {
		return err
	}
	logger.Info("Report signed", interfaces.F("signature", sigPath))

	return nil
}

// compile-time checks that the adapters satisfy the domain contracts
var (
	_ reporters.Reporter            = (*teamcity.Reporter)(nil)
	_ reporters.Reporter            = (*console.Reporter)(nil)
	_ interfaces.Logger             = (*zaplog.Logger)(nil)
	_ repositories.ReportRepository = (*report.JSONWriter)(nil)
	_ repositories.ReportSigner     = (*gpg.Signer)(nil)
)
