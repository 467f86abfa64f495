package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/plugincheck/internal/external-adapters/gpg"
	"github.com/ochairo/plugincheck/internal/external-adapters/report"
)

func (a *app) newVerifyReportCommand() *cobra.Command {
	var keyPath, sigPath string

	cmd := &cobra.Command{
		Use:   "verify-report <report>",
		Short: "Verify the signature of a JSON report",
		Long: `Verify that a report written with --report and --sign-key was signed by a key
in the given public keyring and has not been modified since.

Exit Codes:
  0  Signature valid
  1  Usage or setup error
  2  Signature invalid`,
		Args: exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if keyPath == "" {
				return &usageError{msg: "--key is required"}
			}
			return a.runVerifyReport(args[0], keyPath, sigPath)
		},
	}

	cmd.Flags().StringVar(&keyPath, "key", "", "Armored public keyring to verify against")
	cmd.Flags().StringVar(&sigPath, "signature", "", "Detached signature (default <report>"+gpg.SignatureExtension+")")

	return cmd
}

func (a *app) runVerifyReport(reportPath, keyPath, sigPath string) error {
	if sigPath == "" {
		sigPath = reportPath + gpg.SignatureExtension
	}

	verifier := gpg.NewVerifier()
	if err := verifier.ImportKeyFromFile(keyPath); err != nil {
		return err
	}
	if err := verifier.VerifySignatureFromFile(reportPath, sigPath); err != nil {
		return err
	}

	//nolint:gosec // G304: reportPath is the user-provided report
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	r, err := report.Unmarshal(data)
	if err != nil {
		return err
	}

	status := "passed"
	if !r.Passed {
		status = "failed"
	}
	fmt.Fprintf(a.stdout, "Signature OK: %s\n", reportPath)
	fmt.Fprintf(a.stdout, "Run %s checked %d plugins for version %s: %s (%d failures)\n",
		r.RunID, r.Summary.Scanned, r.ExpectedVersion, status, r.Summary.Failures)

	return nil
}
