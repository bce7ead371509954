// Package runner executes precondition validators over source/destination
// pairs and aggregates their outcomes into reports.
//
// Runner plays the host role: it walks the registered validators in order,
// hands each one a monitor derived from the caller's context, and records
// a ConditionResult per validator. Cancellation of the context is observed
// both between validators and, cooperatively, inside them.
//
// Design decision: validators run sequentially within a pair. The checks are
// cheap compared to loading the artifacts, and sequential execution keeps the
// report order deterministic. BatchRunner adds concurrency across
// independent pairs using errgroup.
package runner
