package model

import (
	"iter"
	"slices"
	"sort"
)

// Function is a function record of an analyzed program.
type Function struct {
	// Entry is the function's entry point address.
	Entry Address `json:"entry" yaml:"entry"`

	// Name is the function's symbol name. It is informational only.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// NoReturn is true when control never returns to the caller
	// (exit-like routines, unconditional trampolines).
	NoReturn bool `json:"no_return" yaml:"noReturn"`
}

// Artifact is a read-only view of an analyzed program.
// Validators never create, mutate or close artifacts; the lifecycle belongs
// to whoever loaded them.
type Artifact interface {
	// Name returns the artifact's display name, typically the file name.
	Name() string

	// Functions enumerates every function ascending by entry address.
	// The sequence is restartable: each call starts a fresh enumeration.
	Functions() iter.Seq[Function]

	// HasInstructionAt reports whether a decoded instruction starts at addr.
	// Functions without one are placeholders (import-table stubs and the like).
	HasInstructionAt(addr Address) bool
}

// Program is an in-memory Artifact.
// It is built by the artifact loader and the database, and is safe for
// concurrent reads once constructed.
type Program struct {
	name         string
	digest       string
	functions    []Function
	instructions map[Address]struct{}
}

// NewProgram creates a Program from a function table and the set of
// addresses holding decoded instructions. Functions are sorted by entry
// address; the input slice is not modified.
func NewProgram(name string, functions []Function, instructionAddrs []Address) *Program {
	fns := slices.Clone(functions)
	sort.SliceStable(fns, func(i, j int) bool {
		return fns[i].Entry < fns[j].Entry
	})

	instructions := make(map[Address]struct{}, len(instructionAddrs))
	for _, addr := range instructionAddrs {
		instructions[addr] = struct{}{}
	}

	return &Program{
		name:         name,
		functions:    fns,
		instructions: instructions,
	}
}

// Name implements Artifact.
func (p *Program) Name() string {
	return p.name
}

// Functions implements Artifact.
func (p *Program) Functions() iter.Seq[Function] {
	return func(yield func(Function) bool) {
		for _, fn := range p.functions {
			if !yield(fn) {
				return
			}
		}
	}
}

// HasInstructionAt implements Artifact.
func (p *Program) HasInstructionAt(addr Address) bool {
	_, ok := p.instructions[addr]
	return ok
}

// FunctionCount returns the number of function records, placeholders included.
func (p *Program) FunctionCount() int {
	return len(p.functions)
}

// InstructionAddresses returns the decoded instruction addresses in ascending order.
func (p *Program) InstructionAddresses() []Address {
	addrs := make([]Address, 0, len(p.instructions))
	for addr := range p.instructions {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

// Digest returns the content digest recorded for the program, if any.
func (p *Program) Digest() string {
	return p.digest
}

// SetDigest records the content digest of the program.
func (p *Program) SetDigest(digest string) {
	p.digest = digest
}
