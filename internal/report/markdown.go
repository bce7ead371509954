package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/vtprecheck/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, for example as a
// pull request comment when exports are versioned alongside code.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation with tables and GitHub-flavored markdown alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.PreconditionReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeResults(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with pair information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.PreconditionReport) {
	md.H1("Version Tracking Preconditions")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + report.Source + "`" + digestSuffix(report.SourceDigest)},
			{"Destination", "`" + report.Destination + "`" + digestSuffix(report.DestinationDigest)},
			{"Checked", report.DateChecked.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.PreconditionReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.Cancelled {
		return "⏹️ Cancelled (partial results)"
	}
	return statusEmoji(report.Status()) + " " + w.statusTitle(report.Status())
}

// statusEmoji returns the emoji shown next to a status.
func statusEmoji(status model.ConditionStatus) string {
	switch status {
	case model.StatusPassed:
		return "✅"
	case model.StatusWarning:
		return "⚠️"
	case model.StatusError:
		return "❌"
	case model.StatusCancelled:
		return "⏹️"
	case model.StatusSkipped:
		return "⏭️"
	default:
		return "❔"
	}
}

// writeSummary writes the status summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.PreconditionReport) {
	summary := report.Summary()

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"✅ Passed", w.count(summary.Passed)},
			{"⚠️ Warning", w.count(summary.Warning)},
			{"❌ Error", w.count(summary.Error)},
			{"⏹️ Cancelled", w.count(summary.Cancelled)},
			{"⏭️ Skipped", w.count(summary.Skipped)},
			{"**Total**", "**" + w.count(summary.Total()) + "**"},
		},
	})
	md.PlainText("")

	if summary.Total() > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, report, summary)
}

// writePieChart writes a mermaid pie chart of the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary model.ReportSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Validator Status Distribution"),
		piechart.WithShowData(true),
	)

	for _, status := range model.AllStatuses() {
		if n := summary.Count(status); n > 0 {
			chart.LabelAndIntValue(w.statusTitle(status), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the overall outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.PreconditionReport, summary model.ReportSummary) {
	switch {
	case report.ErrorMessage != "" || summary.Error > 0:
		md.Cautionf("The pair %s / %s could not be fully validated.", report.Source, report.Destination)
	case summary.Warning > 0:
		md.Warningf(
			"%s validator(s) reported a difference between the programs. Correlation results may be unreliable.",
			w.count(summary.Warning),
		)
	case report.Cancelled:
		md.Importantf(
			"Validation was cancelled. %s of %s validator(s) did not finish.",
			w.count(summary.Cancelled), w.count(summary.Total()),
		)
	case summary.Passed > 0:
		md.Tip("All preconditions passed.")
	default:
		md.Note("No validators ran.")
	}
	md.PlainText("")
}

// writeResults writes a table of validator results followed by message details.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.PreconditionReport) {
	md.H2("Results")
	md.PlainText("")

	if len(report.Results) == 0 {
		md.PlainText("No validators ran.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Results))
	for i, r := range report.Results {
		message := "-"
		if r.Message != "" {
			message = strings.ReplaceAll(strings.TrimRight(r.Message, "\n"), "\n", " ")
		}
		rows[i] = []string{
			r.Validator,
			statusEmoji(r.Status) + " " + w.statusTitle(r.Status),
			message,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Validator", "Status", "Message"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range report.Results {
		if r.Description != "" {
			md.Details(r.Validator, r.Description)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by vtprecheck*")
}
