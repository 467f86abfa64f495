// Package console renders scan events as styled terminal output.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ochairo/plugincheck/internal/domain/entities"
)

// Reporter prints one line per artifact and a summary. Colors are dropped
// automatically when out is not a terminal.
type Reporter struct {
	out io.Writer

	pass   lipgloss.Style
	fail   lipgloss.Style
	warn   lipgloss.Style
	dim    lipgloss.Style
	header lipgloss.Style

	// state of the artifact being scanned
	version    string
	advisories []string
	reasons    []string
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	r := lipgloss.NewRenderer(out)
	badge := r.NewStyle().Bold(true).Padding(0, 1)

	return &Reporter{
		out:    out,
		pass:   badge.Foreground(lipgloss.Color("46")),
		fail:   badge.Foreground(lipgloss.Color("196")),
		warn:   badge.Foreground(lipgloss.Color("214")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("240")),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
	}
}

// BatchStarted prints the run header
func (r *Reporter) BatchStarted(root, expectedVersion string) {
	fmt.Fprintln(r.out, r.header.Render(fmt.Sprintf("Checking plugins in %s for version %s", root, expectedVersion)))
}

// ScanStarted resets the per-artifact state
func (r *Reporter) ScanStarted(_ string) {
	r.version = ""
	r.advisories = nil
	r.reasons = nil
}

// VersionDetected remembers the version for the artifact line
func (r *Reporter) VersionDetected(_ string, version string) {
	r.version = version
}

// Advisory remembers a warning for the artifact line
func (r *Reporter) Advisory(_ string, message string) {
	r.advisories = append(r.advisories, message)
}

// ScanOutcome remembers a failure reason
func (r *Reporter) ScanOutcome(_ string, failure *entities.ValidationFailure) {
	if failure != nil {
		r.reasons = append(r.reasons, failure.Reason)
	}
}

// ScanFinished prints the artifact line with its reasons and warnings
func (r *Reporter) ScanFinished(name string) {
	badge := r.pass.Render("PASS")
	if len(r.reasons) > 0 {
		badge = r.fail.Render("FAIL")
	}

	line := badge + " " + name
	if r.version != "" {
		line += " " + r.dim.Render(r.version)
	}
	fmt.Fprintln(r.out, line)

	for _, reason := range r.reasons {
		fmt.Fprintln(r.out, "       "+reason)
	}
	for _, advisory := range r.advisories {
		fmt.Fprintln(r.out, r.warn.Render("WARN")+" "+advisory)
	}
}

// BatchFinished prints the sorted failure list and a summary line
func (r *Reporter) BatchFinished(result *entities.BatchResult) {
	fmt.Fprintln(r.out)

	if !result.Passed() {
		fmt.Fprintln(r.out, r.header.Render("Errors:"))
		for _, f := range result.Failures {
			fmt.Fprintln(r.out, "  "+f.Error())
		}
		fmt.Fprintln(r.out)
	}

	summary := fmt.Sprintf("%d scanned, %d failures, %d advisories",
		result.Scanned(), len(result.Failures), len(result.Advisories()))
	if result.Passed() {
		fmt.Fprintln(r.out, r.pass.Render("PASS")+" "+summary)
	} else {
		fmt.Fprintln(r.out, r.fail.Render("FAIL")+" "+summary)
	}
}
