package main

import (
	"strings"
	"testing"
)

// TestImportAndHistory tests importing programs, checking them by name and
// reading the stored history back.
func TestImportAndHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbDir := dir + "/db"
	a := writeExport(t, dir, "libfoo-1.0", 6, 3)
	b := writeExport(t, dir, "libfoo-1.1", 6, 2)

	out, err := executeCommand(t, "import", "--db-dir", dbDir, a, b)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Imported libfoo-1.0: 6 functions, 3 no-return") {
		t.Errorf("unexpected import output:\n%s", out)
	}

	out, err = executeCommand(t, "import", "--db-dir", dbDir, "--list")
	if err != nil {
		t.Fatalf("import --list failed: %v", err)
	}
	if !strings.Contains(out, "Imported programs (2)") || !strings.Contains(out, "libfoo-1.1") {
		t.Errorf("unexpected program list:\n%s", out)
	}

	out, err = executeCommand(t, "check", "--db", "--db-dir", dbDir, "libfoo-1.0", "libfoo-1.1")
	if err != nil {
		t.Fatalf("check --db failed: %v", err)
	}
	if !strings.Contains(out, "libfoo-1.0 and libfoo-1.1 have 3 and 2 no-return functions respectively,") {
		t.Errorf("expected warning from stored programs, got:\n%s", out)
	}

	out, err = executeCommand(t, "history", "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "Report history (1 reports)") || !strings.Contains(out, "W:1") {
		t.Errorf("unexpected history output:\n%s", out)
	}

	out, err = executeCommand(t, "history", "--db-dir", dbDir, "--list-pairs")
	if err != nil {
		t.Fatalf("history --list-pairs failed: %v", err)
	}
	if !strings.Contains(out, "libfoo-1.0 -> libfoo-1.1 (1 reports") {
		t.Errorf("unexpected pairs output:\n%s", out)
	}

	out, err = executeCommand(t, "history", "--db-dir", dbDir, "--id", "1", "--markdown")
	if err != nil {
		t.Fatalf("history --id failed: %v", err)
	}
	if !strings.Contains(out, "[!WARNING]") {
		t.Errorf("expected stored report as markdown, got:\n%s", out)
	}
}

// TestImportCommandErrors tests argument validation of import.
func TestImportCommandErrors(t *testing.T) {
	t.Parallel()

	t.Run("requires a file", func(t *testing.T) {
		t.Parallel()

		_, err := executeCommand(t, "import", "--db-dir", t.TempDir())
		if err == nil {
			t.Error("expected error without files")
		}
	})

	t.Run("reports bad export", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := executeCommand(t, "import", "--db-dir", dir, dir+"/missing.yaml")
		if err == nil || !strings.Contains(err.Error(), "failed to load") {
			t.Errorf("expected load error, got %v", err)
		}
	})

	t.Run("check by unknown name", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		if _, err := executeCommand(t, "import", "--db-dir", dbDir, "--list"); err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		_, err := executeCommand(t, "check", "--db", "--no-save", "--db-dir", dbDir, "x", "y")
		if err == nil || !strings.Contains(err.Error(), "program not found") {
			t.Errorf("expected program not found, got %v", err)
		}
	})
}

// TestHistoryCommandErrors tests history argument validation.
func TestHistoryCommandErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		_, err := executeCommand(t, "history", "--db-dir", t.TempDir(), "--id", "99")
		if err == nil || !strings.Contains(err.Error(), "report 99 not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("id with pair", func(t *testing.T) {
		t.Parallel()

		_, err := executeCommand(t, "history", "--db-dir", t.TempDir(), "--id", "1", "a", "b")
		if err == nil {
			t.Error("expected error combining --id with a pair")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		out, err := executeCommand(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No reports found.") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}
