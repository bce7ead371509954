package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/vtprecheck/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with a status indicator per
// validator and multi-line messages indented under it.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether validators without a message are followed
	// by their description.
	showEmpty bool

	// verbose enables timing information in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to describe validators that have no message.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.PreconditionReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeResults(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with pair information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.PreconditionReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                 VERSION TRACKING PRECONDITIONS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Source:         %s%s\n", report.Source, digestSuffix(report.SourceDigest)))
	sb.WriteString(fmt.Sprintf("Destination:    %s%s\n", report.Destination, digestSuffix(report.DestinationDigest)))
	sb.WriteString(fmt.Sprintf("Checked:        %s\n", report.DateChecked.Format("2006-01-02 15:04:05 MST")))

	switch {
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.ErrorMessage))
	case report.Cancelled:
		sb.WriteString("Status:         CANCELLED (partial results)\n")
	default:
		sb.WriteString(fmt.Sprintf("Status:         %s\n", w.statusTitle(report.Status())))
	}

	sb.WriteString("\n")
}

func digestSuffix(digest string) string {
	if digest == "" {
		return ""
	}
	return " (" + shortDigest(digest) + ")"
}

// writeResults writes one block per validator in execution order.
func (w *SimpleWriter) writeResults(sb *strings.Builder, report *model.PreconditionReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Results) == 0 {
		sb.WriteString("  No validators ran\n\n")
		return
	}

	for _, result := range report.Results {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s", statusIndicator(result.Status), result.Validator, w.statusTitle(result.Status)))
		if w.verbose {
			sb.WriteString(fmt.Sprintf(" (%s)", result.Elapsed))
		}
		sb.WriteString("\n")

		switch {
		case result.Message != "":
			for _, line := range strings.Split(strings.TrimRight(result.Message, "\n"), "\n") {
				sb.WriteString("    ")
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		case w.showEmpty && result.Description != "":
			sb.WriteString("    ")
			sb.WriteString(result.Description)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

// statusIndicator returns a visual indicator for the status.
func statusIndicator(status model.ConditionStatus) string {
	switch status {
	case model.StatusPassed:
		return "+"
	case model.StatusWarning:
		return "!"
	case model.StatusError:
		return "x"
	case model.StatusCancelled:
		return "-"
	case model.StatusSkipped:
		return "~"
	default:
		return "?"
	}
}

// writeSummary writes per-status counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.PreconditionReport) {
	summary := report.Summary()

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  PASSED:    %s\n", w.count(summary.Passed)))
	sb.WriteString(fmt.Sprintf("  WARNING:   %s\n", w.count(summary.Warning)))
	sb.WriteString(fmt.Sprintf("  ERROR:     %s\n", w.count(summary.Error)))
	sb.WriteString(fmt.Sprintf("  CANCELLED: %s\n", w.count(summary.Cancelled)))
	sb.WriteString(fmt.Sprintf("  SKIPPED:   %s\n", w.count(summary.Skipped)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:     %s validators\n", w.count(summary.Total())))
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by vtprecheck\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
