// Package normalize converts caller-specific VCF records into uniform calls.
package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the record conventions of the caller that produced the VCF.
type Mode int

const (
	// ModeKevlar reads kevlar calls: FILTER plus the INFO LIKESCORE.
	ModeKevlar Mode = iota + 1
	// ModeGATK reads GATK trio calls: INFO hiConfDeNovo/loConfDeNovo sample lists.
	ModeGATK
	// ModeTrioDenovo reads TrioDeNovo calls: per-sample DQ and trio genotypes.
	ModeTrioDenovo
)

// ErrUnsupportedMode is returned for unknown caller modes.
var ErrUnsupportedMode = errors.New("unsupported caller mode")

var modeNames = map[Mode]string{
	ModeKevlar:     "kevlar",
	ModeGATK:       "gatk",
	ModeTrioDenovo: "triodenovo",
}

// ParseMode parses a caller name case-insensitively.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (expected kevlar, gatk or triodenovo)", ErrUnsupportedMode, s)
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Caller returns the display name used in report rows.
func (m Mode) Caller() string {
	switch m {
	case ModeKevlar:
		return "Kevlar"
	case ModeGATK:
		return "GATK"
	case ModeTrioDenovo:
		return "TrioDenovo"
	}
	return m.String()
}

// DefaultMinScore returns the score threshold applied when none is configured.
// Kevlar has no default threshold.
func (m Mode) DefaultMinScore() (float64, bool) {
	switch m {
	case ModeGATK:
		return 0, true
	case ModeTrioDenovo:
		return 7, true
	}
	return 0, false
}
