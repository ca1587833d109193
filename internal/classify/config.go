package classify

import (
	"fmt"

	"github.com/inodb/vibe-eval/internal/variant"
)

// DefaultTolerance is the default positional slack in bases.
const DefaultTolerance = 10

// Config holds the matching tolerance and the call filters.
type Config struct {
	// Tolerance widens every truth interval on both sides before overlap tests.
	Tolerance int64
	// VarType restricts calls to one type. Unknown means no restriction.
	VarType variant.Type
	// Lengths restricts INDEL calls by indel length. SNVs are unaffected.
	Lengths variant.LengthRange
	// Workers bounds the number of chromosomes classified concurrently.
	// Zero uses runtime.NumCPU().
	Workers int
}

// DefaultConfig returns a Config with the default tolerance and no filters.
func DefaultConfig() Config {
	return Config{Tolerance: DefaultTolerance}
}

// Validate rejects negative tolerances and invalid length ranges.
func (c Config) Validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("invalid tolerance %d: must be >= 0", c.Tolerance)
	}
	return c.Lengths.Validate()
}

// Accepts reports whether a call takes part in matching: it must pass its
// caller's filters, match the type filter, and, for INDELs, fall inside the
// length range.
func (c Config) Accepts(call *variant.Call) bool {
	if !call.Pass {
		return false
	}
	if c.VarType != variant.Unknown && call.Type != c.VarType {
		return false
	}
	if call.Type == variant.INDEL && !c.Lengths.Contains(call.Length) {
		return false
	}
	return true
}
