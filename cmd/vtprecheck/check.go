package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/vtprecheck/internal/artifact"
	"github.com/nao1215/vtprecheck/internal/config"
	"github.com/nao1215/vtprecheck/internal/database"
	vtlog "github.com/nao1215/vtprecheck/internal/log"
	"github.com/nao1215/vtprecheck/internal/model"
	"github.com/nao1215/vtprecheck/internal/report"
	"github.com/nao1215/vtprecheck/internal/runner"
	"github.com/nao1215/vtprecheck/internal/validator"
)

// progressLogInterval is how many functions pass between progress log lines.
const progressLogInterval = 10000

var (
	// errWarningsFound is returned with --fail-on-warning when any
	// validator reported a warning.
	errWarningsFound = errors.New("precondition warnings found")

	// errCancelled is returned when the user interrupted validation.
	errCancelled = errors.New("validation cancelled")

	// errPairsWithArgs is returned when --pairs is combined with positional artifacts.
	errPairsWithArgs = errors.New("--pairs cannot be combined with source and destination arguments")
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [source] [destination]",
		Short: "Check that two programs can be version tracked",
		Long: `Check runs the precondition validators over a source and destination program.

The no-return validator counts the functions each program marks as
non-returning, ignoring functions with no decoded instruction at their entry.
If the counts differ by more than the threshold, a warning is reported. A
warning does not fail the command unless --fail-on-warning is given.

Examples:
  # Check two export files
  vtprecheck check libfoo-1.0.yaml libfoo-1.1.yaml

  # Tolerate a 5% difference
  vtprecheck check -t 0.05 libfoo-1.0.yaml libfoo-1.1.yaml

  # Check programs previously imported with 'vtprecheck import'
  vtprecheck check --db libfoo-1.0 libfoo-1.1

  # Check many pairs listed in a YAML file
  vtprecheck check --pairs pairs.yaml --batch 8

Pairs file example:
  - source: libfoo-1.0.yaml
    destination: libfoo-1.1.yaml
  - source: libbar-2.0.yaml
    destination: libbar-2.1.yaml`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCheckCmd,
	}

	// Validator flags
	cmd.Flags().Float64P("threshold", "t", config.DefaultThreshold,
		"Maximum tolerated difference in no-return functions, as a fraction (0-1)")
	cmd.Flags().Bool("fail-on-warning", false,
		"Exit with status 2 when any validator reports a warning")

	// Artifact source flags
	cmd.Flags().Bool("db", false,
		"Treat arguments as names of imported programs instead of file paths")
	cmd.Flags().StringP("pairs", "p", "",
		"YAML file listing source/destination pairs to check")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of pairs checked concurrently with --pairs")

	// Configuration and storage
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .vtprecheck in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"Directory of the program store and report history (default: XDG data directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not record reports in the history database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path; a plain-text copy is still printed")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := vtlog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Interrupts cancel the context, which validators observe between functions.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfigFile applies the configuration file to cfg.
// An explicitly given path must exist; otherwise a missing file is ignored.
func loadConfigFile(cfg *config.Config, explicitPath string) error {
	configPath := config.FindConfigFile(explicitPath)
	if configPath == "" {
		if explicitPath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.Apply(file)
	return nil
}

// buildConfig creates a Config from the config file and cobra command flags.
// Flags override the file only when given explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg, cfg.ConfigFilePath); err != nil {
		return nil, err
	}

	if flags.Changed("threshold") {
		if cfg.Threshold, err = flags.GetFloat64("threshold"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	if cfg.UseDB, err = flags.GetBool("db"); err != nil {
		return nil, err
	}
	if cfg.PairsFile, err = flags.GetString("pairs"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.FailOnWarning, err = flags.GetBool("fail-on-warning"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.PairsFile != "" && len(args) > 0 {
		return nil, errPairsWithArgs
	}
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	if len(args) > 1 {
		cfg.Destination = args[1]
	}

	return cfg, nil
}

// checkSession holds what one check invocation shares across pairs.
type checkSession struct {
	cfg    *config.Config
	db     *database.ArtifactDB
	runner *runner.Runner
	writer report.Writer
	logger *slog.Logger

	// mu serializes report output and storage.
	mu sync.Mutex
}

// runCheck validates the configured pair or pairs file and writes reports to out.
func runCheck(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	logger.Info("starting check",
		"source", cfg.Source,
		"destination", cfg.Destination,
		"pairs", cfg.PairsFile,
		"threshold", cfg.Threshold,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.ArtifactDB
	if cfg.SaveToDB || cfg.UseDB {
		opts := database.DefaultOptions()
		// Loading by name needs an existing store.
		opts.CreateIfNotExists = !cfg.UseDB || cfg.SaveToDB
		var err error
		db, err = database.Open(cfg.DBDir, opts)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	registry := validator.Default(validator.Options{
		NoReturnEnabled:   cfg.NoReturnEnabled,
		NoReturnThreshold: cfg.Threshold,
	})

	output, closeOutput, err := openOutput(cfg, out)
	if err != nil {
		return err
	}
	defer closeOutput()

	s := &checkSession{
		cfg: cfg,
		db:  db,
		runner: runner.New(registry,
			runner.WithLogger(logger),
			runner.WithProgressLogging(progressLogInterval),
		),
		writer: newReportWriter(cfg, output, out, cfg.PairsFile != ""),
		logger: logger,
	}

	var reports []*model.PreconditionReport
	if cfg.PairsFile != "" {
		reports, err = s.checkPairs(ctx)
	} else {
		var r *model.PreconditionReport
		r, err = s.checkPair(ctx)
		reports = []*model.PreconditionReport{r}
	}
	if err != nil {
		return err
	}

	return checkOutcome(cfg, reports)
}

// checkPair validates the single pair given on the command line.
// Load failures are returned as errors before any validator runs.
func (s *checkSession) checkPair(ctx context.Context) (*model.PreconditionReport, error) {
	load := newLoader(s.cfg, s.db)

	source, err := load(ctx, s.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to load source %s: %w", s.cfg.Source, err)
	}
	destination, err := load(ctx, s.cfg.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to load destination %s: %w", s.cfg.Destination, err)
	}

	startTime := time.Now()
	r := s.runner.Run(ctx, source, destination)
	s.logger.Info("check completed", "elapsed", time.Since(startTime).Round(time.Millisecond))

	s.emit(ctx, r)
	return r, nil
}

// checkPairs validates every pair of the pairs file concurrently.
func (s *checkSession) checkPairs(ctx context.Context) ([]*model.PreconditionReport, error) {
	pairs, err := loadPairs(s.cfg.PairsFile)
	if err != nil {
		return nil, err
	}

	br := runner.NewBatchRunner(s.runner, newLoader(s.cfg, s.db),
		runner.WithConcurrency(s.cfg.BatchSize),
		runner.WithBatchLogger(s.logger),
	)

	reports := make([]*model.PreconditionReport, len(pairs))
	err = br.RunBatchWithCallback(ctx, pairs, func(r *model.PreconditionReport, index int) {
		reports[index] = r
		s.emit(ctx, r)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, errCancelled
		}
		return nil, err
	}
	return reports, nil
}

// emit writes and stores one report. Output and storage failures are logged
// so that one bad pair does not hide the others.
func (s *checkSession) emit(ctx context.Context, r *model.PreconditionReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(r); err != nil {
		s.logger.Error("report failed", "source", r.Source, "destination", r.Destination, "error", err)
	}

	if s.db == nil || !s.cfg.SaveToDB {
		return
	}
	// Store the report even if the run was interrupted.
	id, err := s.db.SaveReport(context.WithoutCancel(ctx), r)
	if err != nil {
		s.logger.Error("failed to save report", "source", r.Source, "destination", r.Destination, "error", err)
		return
	}
	s.logger.Info("report saved to database", "id", id, "source", r.Source, "destination", r.Destination)
}

// checkOutcome turns the collected reports into the command's error.
func checkOutcome(cfg *config.Config, reports []*model.PreconditionReport) error {
	var failed, warned, cancelled int
	for _, r := range reports {
		if r == nil {
			continue
		}
		switch {
		case r.ErrorMessage != "":
			failed++
		case r.Cancelled:
			cancelled++
		case r.HasWarnings():
			warned++
		}
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d pair(s) could not be validated", failed, len(reports))
	case cancelled > 0:
		return errCancelled
	case warned > 0 && cfg.FailOnWarning:
		return fmt.Errorf("%w: %d pair(s)", errWarningsFound, warned)
	}
	return nil
}

// newLoader resolves artifact references to programs, either from export
// files or from the program store.
func newLoader(cfg *config.Config, db *database.ArtifactDB) runner.Loader {
	if cfg.UseDB {
		return func(ctx context.Context, name string) (model.Artifact, error) {
			p, err := db.LoadProgram(ctx, name)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
	}
	return func(_ context.Context, path string) (model.Artifact, error) {
		p, err := artifact.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// loadPairs reads a YAML list of source/destination pairs.
func loadPairs(path string) ([]runner.Pair, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided pairs path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read pairs file: %w", err)
	}

	var pairs []runner.Pair
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse pairs file %s: %w", path, err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: %s lists no pairs", config.ErrNoArtifacts, path)
	}
	for i, p := range pairs {
		if p.Source == "" || p.Destination == "" {
			return nil, fmt.Errorf("pair %d in %s: source and destination are required", i+1, path)
		}
	}
	return pairs, nil
}

// openOutput returns the destination for the formatted report.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter builds the writer for the requested format. When the
// report goes to a file, a plain-text copy is also written to stdout.
// Batches use compact JSON so that each report is one line.
func newReportWriter(cfg *config.Config, output, stdout io.Writer, batch bool) report.Writer {
	var w report.Writer
	switch {
	case cfg.JSONReport:
		var opts []report.JSONWriterOption
		if !batch {
			opts = append(opts, report.WithPrettyPrint())
		}
		w = report.NewFullJSONWriter(output, getVersion(), opts...)
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if cfg.ReportFile == "" {
		return w
	}
	return report.NewMultiWriter(w, report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)))
}
