// Package model defines the core data structures used throughout vtprecheck.
//
// This package contains the following main types:
//   - Address and Function: the read-only view of an analyzed program
//   - Artifact: the capability a precondition validator consumes
//   - Program: an in-memory Artifact built by loaders and the store
//   - ValidationResult: the status and message produced by one validator
//   - PreconditionReport: the aggregated outcome of a validator run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The validator, runner, artifact, database and report packages
// all need these types, so centralizing them prevents import cycles.
//
// The report types are designed to be serializable to JSON for report output
// and database storage.
package model
