package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Address errors.
var (
	// ErrEmptyAddress is returned when the address string is empty.
	ErrEmptyAddress = errors.New("address cannot be empty")
	// ErrInvalidAddress is returned when the address cannot be parsed.
	ErrInvalidAddress = errors.New("invalid address format")
)

// Address is a location in an analyzed program's address space.
// Only the numeric offset matters for precondition checks; address spaces
// and overlays are resolved by whatever produced the artifact.
type Address uint64

// ParseAddress parses an address written as "0x401000", "401000h" or a plain
// decimal number.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAddress
	}

	lower := strings.ToLower(s)
	base := 10
	switch {
	case strings.HasPrefix(lower, "0x"):
		lower = lower[2:]
		base = 16
	case strings.HasSuffix(lower, "h"):
		lower = strings.TrimSuffix(lower, "h")
		base = 16
	}

	v, err := strconv.ParseUint(lower, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return Address(v), nil
}

// String returns the address in 0x-prefixed hexadecimal form.
func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	v, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// UnmarshalYAML accepts both integer scalars (0x401000 is a YAML integer)
// and quoted strings. JSON numbers arrive here too because the artifact
// loader decodes JSON with the YAML decoder.
func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrInvalidAddress, node.Line)
	}
	return a.UnmarshalText([]byte(node.Value))
}
