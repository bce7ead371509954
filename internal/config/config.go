package config

import (
	"math"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultThreshold is the maximum fraction by which the no-return
	// function counts may differ before a warning is raised.
	// Zero means any difference is reported.
	DefaultThreshold = 0.0

	// DefaultBatchSize is the number of pairs validated concurrently
	// when a pairs file is given.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "vtprecheck"
)

// Config holds all configuration options for vtprecheck.
// It is populated from CLI flags and the optional config file and passed
// through the application rather than kept in global state.
//
// Design decision: We use a single flat struct. The number of options is
// small, and the config file's nested layout is mapped onto it by Apply.
type Config struct {
	// Threshold is the maximum allowed fraction of difference between the
	// no-return function counts of the two artifacts.
	Threshold float64

	// NoReturnEnabled controls whether the no-return validator runs.
	// A disabled validator is reported as skipped.
	NoReturnEnabled bool

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// BatchSize is the number of pairs validated concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .vtprecheck in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Source and Destination are the artifacts of a single check.
	Source      string
	Destination string

	// PairsFile is a YAML file listing many pairs to check.
	PairsFile string

	// UseDB resolves artifacts by program name in the store instead of
	// treating them as export file paths.
	UseDB bool

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output with tables, alerts and
	// a pie chart. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/vtprecheck on Linux).
	DBDir string

	// SaveToDB indicates whether to save reports to the database.
	SaveToDB bool

	// FailOnWarning makes a warning result produce a non-zero exit code.
	FailOnWarning bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Threshold:       DefaultThreshold,
		NoReturnEnabled: true,
		BatchSize:       DefaultBatchSize,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for vtprecheck.
// On Linux: ~/.local/share/vtprecheck
// On macOS: ~/Library/Application Support/vtprecheck
// On Windows: %LOCALAPPDATA%\vtprecheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for vtprecheck.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Apply copies values set in the config file onto c.
// Fields the file leaves unset keep their current values, so Apply must run
// before CLI flags that were explicitly given are applied.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	nr := f.Validators.NoReturnFunctions
	if nr.Enabled != nil {
		c.NoReturnEnabled = *nr.Enabled
	}
	if nr.MaxPercentDifference != nil {
		c.Threshold = *nr.MaxPercentDifference
	}
	if f.BatchSize > 0 {
		c.BatchSize = f.BatchSize
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
func (c *Config) Validate() error {
	if c.PairsFile == "" && (c.Source == "" || c.Destination == "") {
		return ErrNoArtifacts
	}

	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return ErrInvalidThreshold
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
