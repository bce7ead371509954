// Package config provides configuration structures and utilities for vtprecheck.
// It defines the validator thresholds, artifact sources, storage location and
// report generation preferences, and loads the optional .vtprecheck file.
package config
