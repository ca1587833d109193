// Package variant defines the truth-variant and call records shared by the
// normalizer, the truth index and the classifier.
package variant

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the variant class of a call or an annotated truth variant.
type Type int

const (
	Unknown Type = iota
	SNV
	INDEL
)

// ParseType parses "SNV" or "INDEL" case-insensitively. Anything else is Unknown.
func ParseType(s string) Type {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SNV":
		return SNV
	case "INDEL":
		return INDEL
	}
	return Unknown
}

func (t Type) String() string {
	switch t {
	case SNV:
		return "SNV"
	case INDEL:
		return "INDEL"
	}
	return "unknown"
}

// Interval is a 0-based half-open genomic interval.
type Interval struct {
	Chrom string
	Start int64
	End   int64
}

// String formats the interval as chrom:start-end.
func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", iv.Chrom, iv.Start, iv.End)
}

// NormalizeChrom strips a leading "chr" from a chromosome name, so "chr7"
// and "7" compare equal.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// Overlaps reports whether o intersects iv after iv is widened by slack bases
// on both sides. Only iv is widened.
func (iv Interval) Overlaps(o Interval, slack int64) bool {
	if iv.Chrom != o.Chrom {
		return false
	}
	return iv.Start-slack < o.End && o.Start < iv.End+slack
}

// TruthVariant is a known variant from the truth set. It is identified by
// its interval; Type and Length are optional annotations.
type TruthVariant struct {
	Interval
	Type   Type
	Length int // indel length, 0 when not annotated
}

// Call is a normalized variant call.
type Call struct {
	Interval
	Type     Type
	Pass     bool
	Length   int // |len(alt) - len(ref)| for INDELs
	Score    float64
	HasScore bool
	Ref      string
	Alt      string
}

// ErrInvalidLengthRange is returned when a minimum length exceeds the maximum.
var ErrInvalidLengthRange = errors.New("invalid length range")

// LengthRange is an inclusive indel length range. A nil bound is open.
type LengthRange struct {
	Min *int
	Max *int
}

// Bounded returns a LengthRange with both bounds set.
func Bounded(min, max int) LengthRange {
	return LengthRange{Min: &min, Max: &max}
}

// AtLeast returns a LengthRange with only a lower bound.
func AtLeast(min int) LengthRange {
	return LengthRange{Min: &min}
}

// IsSet reports whether either bound is set.
func (r LengthRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether n lies inside the range.
func (r LengthRange) Contains(n int) bool {
	if r.Min != nil && n < *r.Min {
		return false
	}
	if r.Max != nil && n > *r.Max {
		return false
	}
	return true
}

// Validate rejects negative bounds and ranges whose minimum exceeds the maximum.
func (r LengthRange) Validate() error {
	if r.Min != nil && *r.Min < 0 {
		return fmt.Errorf("%w: negative minimum length %d", ErrInvalidLengthRange, *r.Min)
	}
	if r.Max != nil && *r.Max < 0 {
		return fmt.Errorf("%w: negative maximum length %d", ErrInvalidLengthRange, *r.Max)
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%w: minimum %d > maximum %d", ErrInvalidLengthRange, *r.Min, *r.Max)
	}
	return nil
}

// Label renders the range for report rows: "all", "2-5", ">=2" or "<=5".
func (r LengthRange) Label() string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%d-%d", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf(">=%d", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("<=%d", *r.Max)
	}
	return "all"
}

// ParseLengthRange parses a Label-formatted range ("2-5", ">=2", "<=5", "all").
func ParseLengthRange(s string) (LengthRange, error) {
	s = strings.TrimSpace(s)
	var lo, hi int
	switch {
	case s == "" || s == "all":
		return LengthRange{}, nil
	case strings.HasPrefix(s, ">="):
		if _, err := fmt.Sscanf(s, ">=%d", &lo); err != nil {
			return LengthRange{}, fmt.Errorf("%w: %q", ErrInvalidLengthRange, s)
		}
		return AtLeast(lo), nil
	case strings.HasPrefix(s, "<="):
		if _, err := fmt.Sscanf(s, "<=%d", &hi); err != nil {
			return LengthRange{}, fmt.Errorf("%w: %q", ErrInvalidLengthRange, s)
		}
		return LengthRange{Max: &hi}, nil
	}
	if _, err := fmt.Sscanf(s, "%d-%d", &lo, &hi); err != nil {
		return LengthRange{}, fmt.Errorf("%w: %q", ErrInvalidLengthRange, s)
	}
	r := Bounded(lo, hi)
	return r, r.Validate()
}
