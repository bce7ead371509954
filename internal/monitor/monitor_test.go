package monitor

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestContextMonitor tests the context-backed monitor.
func TestContextMonitor(t *testing.T) {
	t.Parallel()

	t.Run("is not cancelled while the context is live", func(t *testing.T) {
		t.Parallel()
		m := FromContext(context.Background())
		if m.IsCancelled() {
			t.Error("expected monitor not to be cancelled")
		}
		if m.Cause() != nil {
			t.Errorf("expected nil cause, got %v", m.Cause())
		}
	})

	t.Run("is cancelled once the context is cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		m := FromContext(ctx)
		cancel()
		if !m.IsCancelled() {
			t.Error("expected monitor to be cancelled")
		}
		if m.Cause() != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", m.Cause())
		}
	})

	t.Run("accumulates progress", func(t *testing.T) {
		t.Parallel()
		m := FromContext(context.Background())
		m.IncrementProgress(1)
		m.IncrementProgress(4)
		if m.Progress() != 5 {
			t.Errorf("got progress %d, expected 5", m.Progress())
		}
	})

	t.Run("accumulates progress from many goroutines", func(t *testing.T) {
		t.Parallel()
		m := FromContext(context.Background())

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					m.IncrementProgress(1)
				}
			}()
		}
		wg.Wait()

		if m.Progress() != 1000 {
			t.Errorf("got progress %d, expected 1000", m.Progress())
		}
	})

	t.Run("records indeterminate flag", func(t *testing.T) {
		t.Parallel()
		m := FromContext(context.Background())
		m.SetIndeterminate(true)
		if !m.Indeterminate() {
			t.Error("expected indeterminate to be true")
		}
		m.SetIndeterminate(false)
		if m.Indeterminate() {
			t.Error("expected indeterminate to be false")
		}
	})

	t.Run("logs progress at the configured interval", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		m := FromContext(context.Background(), WithProgressLogger(logger, "count", 10))

		for range 25 {
			m.IncrementProgress(1)
		}

		if got := strings.Count(buf.String(), "task progress"); got != 2 {
			t.Errorf("got %d progress log lines, expected 2:\n%s", got, buf.String())
		}
		if !strings.Contains(buf.String(), "task=count") {
			t.Errorf("expected task name in log output, got:\n%s", buf.String())
		}
	})

	t.Run("ignores non-positive log interval", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		m := FromContext(context.Background(), WithProgressLogger(logger, "count", 0))
		m.IncrementProgress(100)
		if buf.Len() != 0 {
			t.Errorf("expected no log output, got:\n%s", buf.String())
		}
	})
}

// TestNop tests the no-op monitor.
func TestNop(t *testing.T) {
	t.Parallel()

	m := Nop()
	m.SetIndeterminate(true)
	m.IncrementProgress(10)
	if m.IsCancelled() {
		t.Error("expected Nop monitor never to be cancelled")
	}
}
