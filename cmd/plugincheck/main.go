package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ochairo/plugincheck/internal/domain/entities"
	"github.com/ochairo/plugincheck/internal/external-adapters/gpg"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// app carries the process environment into the commands
type app struct {
	args   []string
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// usageError is returned for a wrong argument count or an unknown flag
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// errValidationFailed means the batch ran and at least one artifact failed.
// The failures have already been reported.
var errValidationFailed = errors.New("validation errors found")

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	a := &app{args: args, stdout: stdout, stderr: stderr, getenv: getenv}
	root := a.newRootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return a.exitCode(root, err)
}

// exitCode maps command errors to exit statuses in one place
func (a *app) exitCode(root *cobra.Command, err error) int {
	if err == nil {
		return entities.ExitOK
	}

	var usageErr *usageError
	var rootErr *entities.RootPathError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintf(a.stdout, "Error: %s\n\n", usageErr.msg)
		cmd, _, findErr := root.Find(a.args)
		if findErr != nil || cmd == nil {
			cmd = root
		}
		fmt.Fprint(a.stdout, cmd.UsageString())
		return entities.ExitUsage
	case errors.As(err, &rootErr):
		fmt.Fprintf(a.stderr, "Failed to find plugins path: %s\n", rootErr.Path)
		return entities.ExitValidationFailed
	case errors.Is(err, errValidationFailed):
		return entities.ExitValidationFailed
	case errors.Is(err, gpg.ErrSignatureInvalid):
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return entities.ExitValidationFailed
	default:
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return entities.ExitUsage
	}
}

func (a *app) newRootCommand() *cobra.Command {
	opts := &checkOptions{}

	rootCmd := &cobra.Command{
		Use:   "plugincheck <plugins-dir> <version>",
		Short: "Validate TeamCity plugin descriptors before release",
		Long: `plugincheck scans every .zip archive and unpacked plugin directory directly under
<plugins-dir>, checks its teamcity-plugin.xml against <version> and the vendor rules,
and reports every failure of the batch at the end.

Exit Codes:
  0  All plugins valid
  1  Usage or setup error
  2  Plugins path not found, or validation errors found`,
		Version: version,
		Args:    exactArgs(2),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args[0], args[1], opts)
		},
	}

	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	opts.bind(rootCmd.Flags())
	rootCmd.AddCommand(a.newVerifyReportCommand())

	return rootCmd
}

// exactArgs is cobra.ExactArgs returning a usageError
func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{msg: fmt.Sprintf("accepts %d arg(s), received %d", n, len(args))}
		}
		return nil
	}
}
