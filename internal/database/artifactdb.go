package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/vtprecheck/internal/model"
)

// DBFileName is the SQLite file created inside the database directory.
const DBFileName = "vtprecheck.db"

// ErrProgramNotFound is returned when no program with the requested name
// has been imported.
var ErrProgramNotFound = errors.New("program not found in database")

// ArtifactDB provides SQLite-based storage for imported programs and
// precondition reports.
type ArtifactDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ArtifactDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an ArtifactDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ArtifactDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &ArtifactDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *ArtifactDB) Close() error {
	return adb.db.Close()
}

// Path returns the database file path.
func (adb *ArtifactDB) Path() string {
	return adb.dbPath
}

// createTables creates the database schema if it doesn't exist.
// Addresses are stored as the two's-complement int64 of the uint64 value.
func (adb *ArtifactDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS programs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		digest TEXT,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS functions (
		program_id INTEGER NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
		entry INTEGER NOT NULL,
		name TEXT,
		no_return INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (program_id, entry)
	);

	CREATE TABLE IF NOT EXISTS instructions (
		program_id INTEGER NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
		address INTEGER NOT NULL,
		PRIMARY KEY (program_id, address)
	);

	-- Precondition reports store complete results as JSON
	CREATE TABLE IF NOT EXISTS precondition_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL,
		report_json TEXT NOT NULL,
		status_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_pair ON precondition_reports(source, destination);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON precondition_reports(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// ImportProgram stores a program, replacing any program with the same name.
// The function table and instruction addresses are written in one transaction.
func (adb *ArtifactDB) ImportProgram(ctx context.Context, p *model.Program) (err error) {
	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO programs (name, digest) VALUES (?, ?)
	ON CONFLICT(name) DO UPDATE SET
		digest = excluded.digest,
		imported_at = CURRENT_TIMESTAMP
	`, p.Name(), p.Digest())
	if err != nil {
		return fmt.Errorf("failed to upsert program: %w", err)
	}

	var programID int64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM programs WHERE name = ?", p.Name()).Scan(&programID); err != nil {
		return fmt.Errorf("failed to look up program id: %w", err)
	}

	for _, stmt := range []string{
		"DELETE FROM functions WHERE program_id = ?",
		"DELETE FROM instructions WHERE program_id = ?",
	} {
		if _, err = tx.ExecContext(ctx, stmt, programID); err != nil {
			return fmt.Errorf("failed to clear previous import: %w", err)
		}
	}

	fnStmt, err := tx.PrepareContext(ctx, "INSERT INTO functions (program_id, entry, name, no_return) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare function insert: %w", err)
	}
	defer fnStmt.Close()

	for fn := range p.Functions() {
		if _, err = fnStmt.ExecContext(ctx, programID, int64(fn.Entry), fn.Name, fn.NoReturn); err != nil {
			return fmt.Errorf("failed to insert function %s: %w", fn.Entry, err)
		}
	}

	insStmt, err := tx.PrepareContext(ctx, "INSERT INTO instructions (program_id, address) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare instruction insert: %w", err)
	}
	defer insStmt.Close()

	for _, addr := range p.InstructionAddresses() {
		if _, err = insStmt.ExecContext(ctx, programID, int64(addr)); err != nil {
			return fmt.Errorf("failed to insert instruction %s: %w", addr, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// LoadProgram rebuilds an imported program by name.
// It returns ErrProgramNotFound if no such program was imported.
func (adb *ArtifactDB) LoadProgram(ctx context.Context, name string) (*model.Program, error) {
	var programID int64
	var digest sql.NullString
	err := adb.db.QueryRowContext(ctx, "SELECT id, digest FROM programs WHERE name = ?", name).Scan(&programID, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	functions, err := adb.loadFunctions(ctx, programID)
	if err != nil {
		return nil, err
	}
	instructions, err := adb.loadInstructions(ctx, programID)
	if err != nil {
		return nil, err
	}

	p := model.NewProgram(name, functions, instructions)
	p.SetDigest(digest.String)
	return p, nil
}

// loadFunctions reads a program's function table ordered by entry.
func (adb *ArtifactDB) loadFunctions(ctx context.Context, programID int64) ([]model.Function, error) {
	rows, err := adb.db.QueryContext(ctx,
		"SELECT entry, name, no_return FROM functions WHERE program_id = ? ORDER BY entry", programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query functions: %w", err)
	}
	defer rows.Close()

	var functions []model.Function
	for rows.Next() {
		var entry int64
		var name sql.NullString
		var noReturn bool
		if err := rows.Scan(&entry, &name, &noReturn); err != nil {
			return nil, fmt.Errorf("failed to scan function: %w", err)
		}
		functions = append(functions, model.Function{
			Entry:    model.Address(uint64(entry)),
			Name:     name.String,
			NoReturn: noReturn,
		})
	}
	return functions, rows.Err()
}

// loadInstructions reads a program's decoded instruction addresses.
func (adb *ArtifactDB) loadInstructions(ctx context.Context, programID int64) ([]model.Address, error) {
	rows, err := adb.db.QueryContext(ctx,
		"SELECT address FROM instructions WHERE program_id = ?", programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query instructions: %w", err)
	}
	defer rows.Close()

	var addrs []model.Address
	for rows.Next() {
		var addr int64
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan instruction: %w", err)
		}
		addrs = append(addrs, model.Address(uint64(addr)))
	}
	return addrs, rows.Err()
}

// ProgramInfo summarizes an imported program.
type ProgramInfo struct {
	Name          string
	Digest        string
	FunctionCount int
	ImportedAt    time.Time
}

// ListPrograms returns every imported program ordered by name.
func (adb *ArtifactDB) ListPrograms(ctx context.Context) ([]ProgramInfo, error) {
	query := `
	SELECT p.name, p.digest, p.imported_at, COUNT(f.entry)
	FROM programs p
	LEFT JOIN functions f ON f.program_id = p.id
	GROUP BY p.id
	ORDER BY p.name
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var results []ProgramInfo
	for rows.Next() {
		var info ProgramInfo
		var digest sql.NullString
		var importedAt string
		if err := rows.Scan(&info.Name, &digest, &importedAt, &info.FunctionCount); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		info.Digest = digest.String
		info.ImportedAt = parseTimestamp(importedAt)
		results = append(results, info)
	}
	return results, rows.Err()
}

// SaveReport saves a precondition report and returns its ID.
func (adb *ArtifactDB) SaveReport(ctx context.Context, report *model.PreconditionReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	summaryJSON, _ := json.Marshal(report.Summary()) //nolint:errcheck,errchkjson // ReportSummary is a flat struct of ints; Marshal won't fail

	query := `
	INSERT INTO precondition_reports (source, destination, status, report_json, status_summary)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		report.Source,
		report.Destination,
		report.Status().String(),
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying history without loading the full report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// Source and Destination name the validated pair.
	Source      string
	Destination string

	// Timestamp is when the report was stored.
	Timestamp time.Time

	// Status is the report's overall status.
	Status model.ConditionStatus

	// Summary contains counts of results by status.
	Summary model.ReportSummary
}

// GetReportHistory returns report metadata, newest first. Empty source or
// destination arguments match any value.
func (adb *ArtifactDB) GetReportHistory(ctx context.Context, source, destination string) ([]ReportMetadata, error) {
	query := `
	SELECT id, source, destination, timestamp, status, status_summary
	FROM precondition_reports
	WHERE 1=1
	`
	args := make([]interface{}, 0)
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	if destination != "" {
		query += " AND destination = ?"
		args = append(args, destination)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp, status string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Source, &meta.Destination, &timestamp, &status, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		if parsed, err := model.ParseConditionStatus(status); err == nil {
			meta.Status = parsed
		}
		if summaryJSON.Valid && summaryJSON.String != "" {
			// A malformed summary leaves the zero value
			_ = json.Unmarshal([]byte(summaryJSON.String), &meta.Summary) //nolint:errcheck // best effort
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReportByID retrieves a report by its database ID.
// It returns nil without error if no such report exists.
func (adb *ArtifactDB) GetReportByID(ctx context.Context, id int64) (*model.PreconditionReport, error) {
	var reportJSON string
	err := adb.db.QueryRowContext(ctx, "SELECT report_json FROM precondition_reports WHERE id = ?", id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.PreconditionReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// PairInfo is a validated pair and how many reports exist for it.
type PairInfo struct {
	Source      string
	Destination string
	Reports     int
	LastChecked time.Time
}

// ListPairs returns every pair with stored reports ordered by source, destination.
func (adb *ArtifactDB) ListPairs(ctx context.Context) ([]PairInfo, error) {
	query := `
	SELECT source, destination, COUNT(*), MAX(timestamp)
	FROM precondition_reports
	GROUP BY source, destination
	ORDER BY source, destination
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	defer rows.Close()

	var results []PairInfo
	for rows.Next() {
		var info PairInfo
		var last string
		if err := rows.Scan(&info.Source, &info.Destination, &info.Reports, &last); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		info.LastChecked = parseTimestamp(last)
		results = append(results, info)
	}
	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
