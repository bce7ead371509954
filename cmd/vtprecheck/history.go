package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/vtprecheck/internal/config"
	"github.com/nao1215/vtprecheck/internal/database"
	"github.com/nao1215/vtprecheck/internal/model"
)

// NewHistoryCmd creates the history command.
// This command shows precondition reports stored by previous checks.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source] [destination]",
		Short: "Show stored precondition reports",
		Long: `History lists the precondition reports recorded by 'vtprecheck check'.

With no arguments every report is listed, newest first. A source narrows the
list to that source, and a source and destination to that pair.

Examples:
  # List all reports
  vtprecheck history

  # List reports for one pair
  vtprecheck history libfoo-1.0 libfoo-1.1

  # Show a stored report
  vtprecheck history --id 5

  # Show a stored report as Markdown
  vtprecheck history --id 5 --markdown

  # List every checked pair
  vtprecheck history --list-pairs`,
		Args: cobra.MaximumNArgs(2),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("id", "i", 0,
		"Show the report with this ID (use the list to see available IDs)")
	cmd.Flags().BoolP("list-pairs", "L", false,
		"List every checked pair")
	cmd.Flags().BoolP("json", "j", false,
		"Output the report selected with --id in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the report selected with --id in Markdown format")
	cmd.Flags().String("db-dir", "",
		"Directory of the report history (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .vtprecheck in current or home directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	listPairs, err := cmd.Flags().GetBool("list-pairs")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Validate before opening the database
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if id != 0 && (listPairs || len(args) > 0) {
		return errors.New("--id cannot be combined with --list-pairs or a pair")
	}

	dbDir, err := resolveDBDir(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case listPairs:
		return listCheckedPairs(ctx, out, db)
	case id != 0:
		cfg := config.NewConfig()
		cfg.JSONReport = jsonOutput
		cfg.MarkdownReport = markdownOutput
		cfg.Verbose = getVerboseFlag(cmd)
		return showReport(ctx, out, db, cfg, id)
	}

	var source, destination string
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		destination = args[1]
	}
	return listReportHistory(ctx, out, db, source, destination)
}

// showReport writes one stored report in the requested format.
func showReport(ctx context.Context, out io.Writer, db *database.ArtifactDB, cfg *config.Config, id int64) error {
	r, err := db.GetReportByID(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("report %d not found (use 'vtprecheck history' to list reports)", id)
	}
	_, err = newReportWriter(cfg, out, out, false).Write(r)
	return err
}

// listCheckedPairs prints every pair with stored reports.
func listCheckedPairs(ctx context.Context, out io.Writer, db *database.ArtifactDB) error {
	pairs, err := db.ListPairs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pairs: %w", err)
	}

	if len(pairs) == 0 {
		fmt.Fprintln(out, "No checked pairs found in the database.")
		fmt.Fprintln(out, "\nUse 'vtprecheck check <source> <destination>' to check a pair.")
		return nil
	}

	fmt.Fprintf(out, "Checked pairs (%d):\n\n", len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(out, "  • %s -> %s (%d reports, last %s)\n",
			p.Source, p.Destination, p.Reports, p.LastChecked.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, "\nUse 'vtprecheck history <source> <destination>' to see the reports for a pair.")
	return nil
}

// listReportHistory prints report metadata, newest first.
func listReportHistory(ctx context.Context, out io.Writer, db *database.ArtifactDB, source, destination string) error {
	history, err := db.GetReportHistory(ctx, source, destination)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	fmt.Fprintf(out, "Report history (%d reports):\n\n", len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-10s  %-40s  %s\n", "ID", "Date", "Status", "Pair", "Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-10s  %-40s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Status,
			meta.Source+" -> "+meta.Destination,
			formatSummary(meta.Summary),
		)
	}

	fmt.Fprintln(out, "\nUse 'vtprecheck history --id <id>' to show a report.")
	return nil
}

// formatSummary formats per-status counts into a short string such as "P:1 W:1".
func formatSummary(summary model.ReportSummary) string {
	var parts []string
	if summary.Passed > 0 {
		parts = append(parts, fmt.Sprintf("P:%d", summary.Passed))
	}
	if summary.Warning > 0 {
		parts = append(parts, fmt.Sprintf("W:%d", summary.Warning))
	}
	if summary.Error > 0 {
		parts = append(parts, fmt.Sprintf("E:%d", summary.Error))
	}
	if summary.Cancelled > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", summary.Cancelled))
	}
	if summary.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("S:%d", summary.Skipped))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
