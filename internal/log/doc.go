// Package log provides logger construction for vtprecheck, built on top of
// the standard slog package.
//
// This package extends slog to provide:
//   - Shortening of home-directory paths in attribute values to "~"
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// Artifact and database paths appear in most log records. Rewriting the
// home-directory prefix keeps user names out of logs that get pasted into
// bug reports.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Info("artifact loaded", "path", "/home/alice/bin/a.yaml")
//	// path=~/bin/a.yaml
package log
