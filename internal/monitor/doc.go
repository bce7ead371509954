// Package monitor provides the progress and cancellation capability that
// long-running passes report to and poll.
//
// A TaskMonitor is injected into every validator rather than held as global
// state, so validators can be driven by a context in production and by a
// scripted fake in tests.
package monitor
