package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs the root command with args and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

// writeExport writes an export file with total functions, the first
// noReturn of which are non-returning. Every function has a decoded
// instruction at its entry.
func writeExport(t *testing.T, dir, name string, total, noReturn int) string {
	t.Helper()

	var sb strings.Builder
	fmt.Fprintf(&sb, "name: %s\nfunctions:\n", name)
	var instructions []string
	for i := range total {
		addr := 0x1000 + i*0x10
		fmt.Fprintf(&sb, "  - entry: 0x%x\n    name: fn_%d\n    noReturn: %t\n", addr, i, i < noReturn)
		instructions = append(instructions, fmt.Sprintf("0x%x", addr))
	}
	fmt.Fprintf(&sb, "instructions: [%s]\n", strings.Join(instructions, ", "))

	path := filepath.Join(dir, name+".yaml")
	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		t.Fatalf("failed to write export: %v", err)
	}
	return path
}

// writeConfig writes a .vtprecheck file and returns its path.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ".vtprecheck")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
