package artifact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/vtprecheck/internal/model"
)

const sampleYAML = `name: libfoo.so
functions:
  - entry: 0x401200
    name: fatal
    noReturn: true
  - entry: 0x401000
    name: main
  - entry: 0x500000
    name: __imp_exit
    noReturn: true
instructions: [0x401000, "0x401200"]
`

// writeFile writes content to a file in a temporary directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// TestLoadFile tests loading export files from disk.
func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("loads YAML export", func(t *testing.T) {
		t.Parallel()
		p, err := LoadFile(writeFile(t, "libfoo.yaml", sampleYAML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if p.Name() != "libfoo.so" {
			t.Errorf("got name %q, expected libfoo.so", p.Name())
		}
		if p.FunctionCount() != 3 {
			t.Errorf("got %d functions, expected 3", p.FunctionCount())
		}

		var entries []model.Address
		for fn := range p.Functions() {
			entries = append(entries, fn.Entry)
		}
		if entries[0] != 0x401000 || entries[1] != 0x401200 || entries[2] != 0x500000 {
			t.Errorf("functions not sorted by entry: %v", entries)
		}
		if !p.HasInstructionAt(0x401200) || p.HasInstructionAt(0x500000) {
			t.Error("unexpected instruction lookup results")
		}
		if p.Digest() == "" {
			t.Error("expected digest to be set")
		}
	})

	t.Run("loads JSON export", func(t *testing.T) {
		t.Parallel()
		content := `{"name": "app.exe", "functions": [{"entry": 4096, "noReturn": true}, {"entry": "0x2000"}], "instructions": [4096]}`
		p, err := LoadFile(writeFile(t, "app.json", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name() != "app.exe" || p.FunctionCount() != 2 || !p.HasInstructionAt(0x1000) {
			t.Errorf("unexpected program: %q %d", p.Name(), p.FunctionCount())
		}
	})

	t.Run("name defaults to file base name", func(t *testing.T) {
		t.Parallel()
		p, err := LoadFile(writeFile(t, "noname.yaml", "functions: []\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name() != "noname.yaml" {
			t.Errorf("got name %q, expected noname.yaml", p.Name())
		}
	})

	t.Run("empty file loads an empty program", func(t *testing.T) {
		t.Parallel()
		p, err := LoadFile(writeFile(t, "empty.yaml", "\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.FunctionCount() != 0 {
			t.Errorf("got %d functions, expected 0", p.FunctionCount())
		}
	})

	t.Run("empty path returns ErrEmptyPath", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadFile(""); !errors.Is(err, ErrEmptyPath) {
			t.Errorf("expected ErrEmptyPath, got %v", err)
		}
	})

	t.Run("missing file returns not-exist error", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("duplicate entries return ErrDuplicateFunction", func(t *testing.T) {
		t.Parallel()
		content := "functions:\n  - entry: 0x10\n  - entry: 16\n"
		_, err := LoadFile(writeFile(t, "dup.yaml", content))
		if !errors.Is(err, ErrDuplicateFunction) {
			t.Errorf("expected ErrDuplicateFunction, got %v", err)
		}
	})

	t.Run("bad address returns ErrInvalidAddress", func(t *testing.T) {
		t.Parallel()
		content := "functions:\n  - entry: nowhere\n"
		_, err := LoadFile(writeFile(t, "bad.yaml", content))
		if !errors.Is(err, model.ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got %v", err)
		}
	})
}

// TestDecode tests decoding from a reader.
func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("requires a name", func(t *testing.T) {
		t.Parallel()
		if _, err := Decode(strings.NewReader("functions: []\n")); !errors.Is(err, ErrNoName) {
			t.Errorf("expected ErrNoName, got %v", err)
		}
	})

	t.Run("round trips through Encode", func(t *testing.T) {
		t.Parallel()
		original, err := Decode(strings.NewReader(sampleYAML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var buf bytes.Buffer
		if err := Encode(&buf, original); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		decoded, err := Decode(&buf)
		if err != nil {
			t.Fatalf("failed to decode encoded output: %v\n%s", err, buf.String())
		}
		if decoded.Digest() != original.Digest() {
			t.Error("digest changed across encode/decode")
		}
	})
}

// TestDigest tests the content digest.
func TestDigest(t *testing.T) {
	t.Parallel()

	base := []model.Function{
		{Entry: 0x10, Name: "a"},
		{Entry: 0x20, Name: "b", NoReturn: true},
	}
	instructions := []model.Address{0x10, 0x20}

	digest := Digest(model.NewProgram("p", base, instructions))
	if len(digest) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(digest))
	}

	t.Run("ignores names and input order", func(t *testing.T) {
		t.Parallel()
		renamed := []model.Function{
			{Entry: 0x20, Name: "exit", NoReturn: true},
			{Entry: 0x10, Name: "main"},
		}
		if got := Digest(model.NewProgram("other", renamed, instructions)); got != digest {
			t.Error("renaming or reordering changed the digest")
		}
	})

	t.Run("changes with the no-return flag", func(t *testing.T) {
		t.Parallel()
		flipped := []model.Function{
			{Entry: 0x10, NoReturn: true},
			{Entry: 0x20, NoReturn: true},
		}
		if Digest(model.NewProgram("p", flipped, instructions)) == digest {
			t.Error("expected digest to change")
		}
	})

	t.Run("changes with decoded instructions", func(t *testing.T) {
		t.Parallel()
		if Digest(model.NewProgram("p", base, []model.Address{0x10})) == digest {
			t.Error("expected digest to change")
		}
	})
}
