// Package teamcity renders scan events as TeamCity service messages.
package teamcity

import (
	"fmt"
	"io"
	"strings"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// SuiteName is the test suite all plugins are reported under
const SuiteName = "PluginVersions"

var escaper = strings.NewReplacer(
	"|", "||",
	"'", "|'",
	"\n", "|n",
	"\r", "|r",
	"[", "|[",
	"]", "|]",
)

// Escape applies TeamCity service message escaping to a value
func Escape(value string) string {
	return escaper.Replace(value)
}

// Reporter writes a build-log trace that TeamCity turns into one test per artifact
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) message(name string, attrs ...string) {
	var b strings.Builder
	b.WriteString("##teamcity[")
	b.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		fmt.Fprintf(&b, " %s='%s'", attrs[i], Escape(attrs[i+1]))
	}
	b.WriteString("]")
	fmt.Fprintln(r.out, b.String())
}

// BatchStarted opens the suite
func (r *Reporter) BatchStarted(root, expectedVersion string) {
	r.message("testSuiteStarted", "name", SuiteName)
	fmt.Fprintf(r.out, "Checking plugin versions in %s for version: %s\n", root, expectedVersion)
}

// ScanStarted opens a test for the artifact
func (r *Reporter) ScanStarted(name string) {
	fmt.Fprintf(r.out, "Scanning: %s\n", name)
	r.message("testStarted", "name", name, "captureStandardOutput", "true")
}

// VersionDetected prints the version found in the descriptor
func (r *Reporter) VersionDetected(name, version string) {
	fmt.Fprintf(r.out, "%s -> %s\n", name, version)
}

// Advisory prints a build-log warning
func (r *Reporter) Advisory(name, message string) {
	r.message("message", "text", name+": "+message, "status", "WARNING")
}

// ScanOutcome fails the artifact's test when failure is set
func (r *Reporter) ScanOutcome(name string, failure *entities.ValidationFailure) {
	if failure == nil {
		return
	}
	r.message("testFailed", "name", name, "message", failure.Reason, "details", failure.Error())
}

// ScanFinished closes the artifact's test
func (r *Reporter) ScanFinished(name string) {
	r.message("testFinished", "name", name)
	fmt.Fprintln(r.out)
}

// BatchFinished prints the sorted failure list and closes the suite
func (r *Reporter) BatchFinished(result *entities.BatchResult) {
	if !result.Passed() {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Errors:")
		for _, f := range result.Failures {
			fmt.Fprintln(r.out, f.Error())
		}
	}
	r.message("testSuiteFinished", "name", SuiteName)
}
