// Package report aggregates classification results into summary rows.
package report

import (
	"fmt"

	"github.com/inodb/vibe-eval/internal/classify"
	"github.com/inodb/vibe-eval/internal/variant"
)

// DefaultLengthBins are the INDEL length ranges reported under --do-all.
var DefaultLengthBins = []variant.LengthRange{
	variant.Bounded(1, 10),
	variant.Bounded(11, 100),
	variant.Bounded(101, 200),
	variant.Bounded(201, 300),
	variant.Bounded(301, 400),
	variant.AtLeast(401),
}

// Partition is one (variant type, length range) slice of the evaluation.
type Partition struct {
	VarType variant.Type
	Lengths variant.LengthRange
}

// VarTypeLabel is "All" when no type filter applies.
func (p Partition) VarTypeLabel() string {
	if p.VarType == variant.Unknown {
		return "All"
	}
	return p.VarType.String()
}

// Label combines type and length range, e.g. "INDEL(2-5)".
func (p Partition) Label() string {
	if !p.Lengths.IsSet() {
		return p.VarTypeLabel()
	}
	return fmt.Sprintf("%s(%s)", p.VarTypeLabel(), p.Lengths.Label())
}

// Apply returns base with the partition's call filters.
func (p Partition) Apply(base classify.Config) classify.Config {
	base.VarType = p.VarType
	base.Lengths = p.Lengths
	return base
}

// InScope reports whether a truth variant counts toward this partition's
// Missing total. Without a type filter every truth counts. With one, only
// truths annotated with that type count, and a length range additionally
// requires an annotated length inside it.
func (p Partition) InScope(t variant.TruthVariant) bool {
	if p.VarType == variant.Unknown {
		return true
	}
	if t.Type != p.VarType {
		return false
	}
	if p.VarType == variant.INDEL && p.Lengths.IsSet() {
		return t.Length > 0 && p.Lengths.Contains(t.Length)
	}
	return true
}

// FromConfig returns the single partition described by a classify config.
func FromConfig(cfg classify.Config) Partition {
	return Partition{VarType: cfg.VarType, Lengths: cfg.Lengths}
}

// Observed lists the typed partitions reported under --do-all after the
// unfiltered row: SNV, INDEL, and every INDEL length bin holding at least one
// passing call or annotated truth.
func Observed(calls []*variant.Call, truths []variant.TruthVariant, bins []variant.LengthRange) []Partition {
	parts := []Partition{{VarType: variant.SNV}, {VarType: variant.INDEL}}

	for _, bin := range bins {
		seen := false
		for _, c := range calls {
			if c.Pass && c.Type == variant.INDEL && bin.Contains(c.Length) {
				seen = true
				break
			}
		}
		for i := 0; !seen && i < len(truths); i++ {
			t := truths[i]
			seen = t.Type == variant.INDEL && t.Length > 0 && bin.Contains(t.Length)
		}
		if seen {
			parts = append(parts, Partition{VarType: variant.INDEL, Lengths: bin})
		}
	}
	return parts
}
