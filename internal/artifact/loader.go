package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/vtprecheck/internal/model"
)

// Loader errors.
var (
	// ErrEmptyPath is returned when no path is given.
	ErrEmptyPath = errors.New("artifact path cannot be empty")

	// ErrDuplicateFunction is returned when two functions share an entry address.
	ErrDuplicateFunction = errors.New("duplicate function entry")

	// ErrNoName is returned by Decode when the export has no name and none
	// can be derived from a file path.
	ErrNoName = errors.New("artifact has no name")
)

// Export is the on-disk representation of an analyzed program.
type Export struct {
	// Name is the program name. LoadFile falls back to the file's base name.
	Name string `yaml:"name,omitempty"`

	// Functions is the program's function table in any order.
	Functions []model.Function `yaml:"functions"`

	// Instructions lists addresses holding a decoded instruction.
	Instructions []model.Address `yaml:"instructions"`
}

// LoadFile reads an export file and builds a program with its digest set.
func LoadFile(path string) (*model.Program, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	f, err := os.Open(path) //nolint:gosec // User-provided artifact path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	export, err := decodeExport(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if export.Name == "" {
		export.Name = filepath.Base(path)
	}

	return export.Program()
}

// Decode reads an export from r. The export must carry a name.
func Decode(r io.Reader) (*model.Program, error) {
	export, err := decodeExport(r)
	if err != nil {
		return nil, err
	}
	if export.Name == "" {
		return nil, ErrNoName
	}
	return export.Program()
}

// decodeExport decodes the YAML (or JSON) document in r.
func decodeExport(r io.Reader) (*Export, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var export Export
	if len(bytes.TrimSpace(data)) == 0 {
		return &export, nil
	}
	if err := yaml.Unmarshal(data, &export); err != nil {
		return nil, err
	}
	return &export, nil
}

// Program validates the export and converts it into a model.Program.
func (e *Export) Program() (*model.Program, error) {
	seen := make(map[model.Address]struct{}, len(e.Functions))
	for _, fn := range e.Functions {
		if _, dup := seen[fn.Entry]; dup {
			return nil, fmt.Errorf("%w at %s", ErrDuplicateFunction, fn.Entry)
		}
		seen[fn.Entry] = struct{}{}
	}

	p := model.NewProgram(e.Name, e.Functions, e.Instructions)
	p.SetDigest(Digest(p))
	return p, nil
}

// Encode writes a program in the export format.
func Encode(w io.Writer, p *model.Program) error {
	export := Export{
		Name:         p.Name(),
		Functions:    make([]model.Function, 0, p.FunctionCount()),
		Instructions: p.InstructionAddresses(),
	}
	for fn := range p.Functions() {
		export.Functions = append(export.Functions, fn)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&export); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return enc.Close()
}
