// Package database provides SQLite-based storage for vtprecheck.
//
// This package implements the ArtifactDB, which stores:
//   - Imported programs: the function table and decoded instruction addresses
//     of each analyzed program, so pairs can be re-checked without the exports
//   - Precondition reports for historical comparison
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
