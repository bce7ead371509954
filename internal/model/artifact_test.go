package model

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestParseAddress tests address parsing in the supported notations.
func TestParseAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Address
	}{
		{"0x401000", 0x401000},
		{"0X401000", 0x401000},
		{"401000h", 0x401000},
		{"4096", 4096},
		{"  0x10  ", 0x10},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAddress(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}

	t.Run("empty returns ErrEmptyAddress", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseAddress(" "); !errors.Is(err, ErrEmptyAddress) {
			t.Errorf("expected ErrEmptyAddress, got %v", err)
		}
	})

	t.Run("garbage returns ErrInvalidAddress", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseAddress("0xZZ"); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got %v", err)
		}
	})
}

// TestAddressYAML tests decoding addresses from YAML integers and strings.
func TestAddressYAML(t *testing.T) {
	t.Parallel()

	var v struct {
		A Address `yaml:"a"`
		B Address `yaml:"b"`
		C Address `yaml:"c"`
	}
	src := "a: 0x401000\nb: \"0x402000\"\nc: 16\n"
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A != 0x401000 || v.B != 0x402000 || v.C != 16 {
		t.Errorf("unexpected addresses: %v %v %v", v.A, v.B, v.C)
	}

	if v.A.String() != "0x401000" {
		t.Errorf("got %q, expected 0x401000", v.A.String())
	}
}

// TestProgram tests the in-memory Artifact implementation.
func TestProgram(t *testing.T) {
	t.Parallel()

	functions := []Function{
		{Entry: 0x3000, Name: "c"},
		{Entry: 0x1000, Name: "a", NoReturn: true},
		{Entry: 0x2000, Name: "b"},
	}

	t.Run("enumerates functions ascending by entry", func(t *testing.T) {
		t.Parallel()
		p := NewProgram("prog", functions, nil)

		var names []string
		for fn := range p.Functions() {
			names = append(names, fn.Name)
		}
		expected := []string{"a", "b", "c"}
		if len(names) != len(expected) {
			t.Fatalf("got %d functions, expected %d", len(names), len(expected))
		}
		for i := range expected {
			if names[i] != expected[i] {
				t.Errorf("position %d: got %q, expected %q", i, names[i], expected[i])
			}
		}
	})

	t.Run("does not modify the input slice", func(t *testing.T) {
		t.Parallel()
		input := []Function{{Entry: 2}, {Entry: 1}}
		_ = NewProgram("prog", input, nil)
		if input[0].Entry != 2 {
			t.Error("input slice was reordered")
		}
	})

	t.Run("enumeration is restartable", func(t *testing.T) {
		t.Parallel()
		p := NewProgram("prog", functions, nil)

		count := func() int {
			n := 0
			for range p.Functions() {
				n++
			}
			return n
		}
		if first, second := count(), count(); first != 3 || second != 3 {
			t.Errorf("got %d then %d, expected 3 both times", first, second)
		}
	})

	t.Run("stops when the consumer stops", func(t *testing.T) {
		t.Parallel()
		p := NewProgram("prog", functions, nil)

		n := 0
		for range p.Functions() {
			n++
			break
		}
		if n != 1 {
			t.Errorf("got %d iterations, expected 1", n)
		}
	})

	t.Run("looks up decoded instructions", func(t *testing.T) {
		t.Parallel()
		p := NewProgram("prog", functions, []Address{0x2000, 0x1000})

		if !p.HasInstructionAt(0x1000) {
			t.Error("expected instruction at 0x1000")
		}
		if p.HasInstructionAt(0x3000) {
			t.Error("expected no instruction at 0x3000")
		}
		addrs := p.InstructionAddresses()
		if len(addrs) != 2 || addrs[0] != 0x1000 || addrs[1] != 0x2000 {
			t.Errorf("unexpected instruction addresses: %v", addrs)
		}
	})

	t.Run("name and digest", func(t *testing.T) {
		t.Parallel()
		p := NewProgram("prog", functions, nil)
		p.SetDigest("abc")
		if p.Name() != "prog" || p.Digest() != "abc" || p.FunctionCount() != 3 {
			t.Errorf("unexpected program metadata: %q %q %d", p.Name(), p.Digest(), p.FunctionCount())
		}
	})
}

// TestPreconditionReport tests report aggregation.
func TestPreconditionReport(t *testing.T) {
	t.Parallel()

	t.Run("empty report has no status", func(t *testing.T) {
		t.Parallel()
		r := NewPreconditionReport("a", "b")
		if r.Status() != StatusNone {
			t.Errorf("got %v, expected none", r.Status())
		}
		if r.Summary().Total() != 0 {
			t.Error("expected empty summary")
		}
	})

	t.Run("overall status is the worst result", func(t *testing.T) {
		t.Parallel()
		r := NewPreconditionReport("a", "b")
		r.AddResult(ConditionResult{Validator: "one", ValidationResult: Passed()})
		r.AddResult(ConditionResult{Validator: "two", ValidationResult: Warning("w")})
		r.AddResult(ConditionResult{Validator: "three", ValidationResult: ValidationResult{Status: StatusSkipped}})

		if r.Status() != StatusWarning {
			t.Errorf("got %v, expected warning", r.Status())
		}
		if !r.HasWarnings() {
			t.Error("expected HasWarnings to be true")
		}
		summary := r.Summary()
		if summary.Passed != 1 || summary.Warning != 1 || summary.Skipped != 1 || summary.Total() != 3 {
			t.Errorf("unexpected summary: %+v", summary)
		}
		if summary.Count(StatusWarning) != 1 {
			t.Errorf("got %d warnings from Count", summary.Count(StatusWarning))
		}
	})

	t.Run("cancelled result flags the report", func(t *testing.T) {
		t.Parallel()
		r := NewPreconditionReport("a", "b")
		r.AddResult(ConditionResult{Validator: "one", ValidationResult: Cancelled()})
		if !r.Cancelled {
			t.Error("expected report to be flagged cancelled")
		}
	})

	t.Run("error message forces error status", func(t *testing.T) {
		t.Parallel()
		r := NewPreconditionReport("a", "b")
		r.AddResult(ConditionResult{Validator: "one", ValidationResult: Passed()})
		r.ErrorMessage = "load failed"
		if r.Status() != StatusError {
			t.Errorf("got %v, expected error", r.Status())
		}
	})
}
