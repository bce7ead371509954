package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// TaskMonitor receives progress from a running task and tells it whether to stop.
// Cancellation is cooperative: tasks poll IsCancelled between units of work.
type TaskMonitor interface {
	// IsCancelled reports whether the task should stop.
	IsCancelled() bool

	// SetIndeterminate marks whether the total amount of work is unknown.
	SetIndeterminate(indeterminate bool)

	// IncrementProgress adds n units of completed work.
	IncrementProgress(n int64)
}

// ContextMonitor is a TaskMonitor backed by a context.Context.
// IsCancelled turns true once the context is done. Progress is kept in
// atomic counters so another goroutine can read it while the task runs.
type ContextMonitor struct {
	ctx           context.Context
	progress      atomic.Int64
	indeterminate atomic.Bool

	// logger receives progress at debug level every logEvery units.
	logger   *slog.Logger
	logEvery int64
	task     string
}

// Option configures a ContextMonitor.
type Option func(*ContextMonitor)

// WithProgressLogger logs progress at debug level every `every` units.
// Values of every below 1 disable progress logging.
func WithProgressLogger(logger *slog.Logger, task string, every int64) Option {
	return func(m *ContextMonitor) {
		if every < 1 {
			return
		}
		m.logger = logger
		m.task = task
		m.logEvery = every
	}
}

// FromContext creates a monitor that is cancelled when ctx is done.
func FromContext(ctx context.Context, opts ...Option) *ContextMonitor {
	m := &ContextMonitor{ctx: ctx}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsCancelled implements TaskMonitor.
func (m *ContextMonitor) IsCancelled() bool {
	return m.ctx.Err() != nil
}

// SetIndeterminate implements TaskMonitor.
func (m *ContextMonitor) SetIndeterminate(indeterminate bool) {
	m.indeterminate.Store(indeterminate)
}

// IncrementProgress implements TaskMonitor.
func (m *ContextMonitor) IncrementProgress(n int64) {
	total := m.progress.Add(n)
	if m.logger != nil && n > 0 && total/m.logEvery != (total-n)/m.logEvery {
		m.logger.Debug("task progress",
			"task", m.task,
			"progress", total,
			"indeterminate", m.indeterminate.Load(),
		)
	}
}

// Progress returns the units of work reported so far.
func (m *ContextMonitor) Progress() int64 {
	return m.progress.Load()
}

// Indeterminate reports the last value passed to SetIndeterminate.
func (m *ContextMonitor) Indeterminate() bool {
	return m.indeterminate.Load()
}

// Cause returns the context's cancellation error, or nil while it is live.
func (m *ContextMonitor) Cause() error {
	return m.ctx.Err()
}

// nop is a TaskMonitor that is never cancelled and discards progress.
type nop struct{}

// Nop returns a TaskMonitor that never cancels and ignores progress.
func Nop() TaskMonitor {
	return nop{}
}

func (nop) IsCancelled() bool       { return false }
func (nop) SetIndeterminate(bool)   {}
func (nop) IncrementProgress(int64) {}
