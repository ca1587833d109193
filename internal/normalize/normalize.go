package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-eval/internal/variant"
	"github.com/inodb/vibe-eval/internal/vcf"
)

// ErrMalformedRecord marks records missing fields the active mode requires.
// Such records are skipped and counted.
var ErrMalformedRecord = errors.New("malformed record")

// Options configures a Normalizer.
type Options struct {
	Mode Mode
	// Proband names the child sample. Empty selects the first sample
	// (TrioDenovo) or any listed sample (GATK).
	Proband string
	// MinScore overrides the mode's default score threshold.
	MinScore *float64
	// AllowLowConfidence also accepts GATK loConfDeNovo calls.
	AllowLowConfidence bool
	// Workers sets the NormalizeAll pool size. Zero uses runtime.NumCPU().
	Workers int
	// StripChr removes a leading "chr" from call chromosome names.
	StripChr bool
}

// Normalizer turns VCF records into calls using one mode's conventions.
type Normalizer struct {
	opts     Options
	minScore float64
	hasMin   bool
	logger   *zap.Logger
}

// New creates a normalizer. Unknown modes yield ErrUnsupportedMode.
func New(opts Options) (*Normalizer, error) {
	if _, ok := modeNames[opts.Mode]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, opts.Mode)
	}
	n := &Normalizer{opts: opts, logger: zap.NewNop()}
	if opts.MinScore != nil {
		n.minScore, n.hasMin = *opts.MinScore, true
	} else {
		n.minScore, n.hasMin = opts.Mode.DefaultMinScore()
	}
	return n, nil
}

// SetLogger sets the logger for skipped-record diagnostics.
func (n *Normalizer) SetLogger(l *zap.Logger) {
	n.logger = l
}

// Mode returns the caller mode.
func (n *Normalizer) Mode() Mode {
	return n.opts.Mode
}

// Normalize converts one single-ALT record. It returns nil, nil for records
// that carry no call (kevlar no-calls, symbolic alleles) and an error wrapping
// ErrMalformedRecord for records missing required fields.
func (n *Normalizer) Normalize(v *vcf.Variant) (*variant.Call, error) {
	if v.Ref == "." || v.Alt == "." || v.Alt == "*" || strings.HasPrefix(v.Alt, "<") {
		return nil, nil
	}
	if v.Chrom == "" || v.Pos < 1 || v.Ref == "" || v.Alt == "" {
		return nil, malformed(v, "missing chromosome, position or alleles")
	}

	if n.opts.Mode == ModeKevlar {
		if _, nocall := v.InfoString("NC"); nocall {
			return nil, nil
		}
	}

	call := newCall(v)
	if n.opts.StripChr {
		call.Chrom = v.NormalizeChrom()
	}

	var err error
	switch n.opts.Mode {
	case ModeKevlar:
		err = n.kevlar(v, call)
	case ModeGATK:
		err = n.gatk(v, call)
	case ModeTrioDenovo:
		err = n.trioDenovo(v, call)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, n.opts.Mode)
	}
	if err != nil {
		return nil, err
	}
	return call, nil
}

// newCall fills the mode-independent fields: 0-based half-open span over the
// reference allele and the SNV/INDEL class.
func newCall(v *vcf.Variant) *variant.Call {
	start := v.Pos - 1
	call := &variant.Call{
		Interval: variant.Interval{Chrom: v.Chrom, Start: start, End: start + int64(len(v.Ref))},
		Ref:      v.Ref,
		Alt:      v.Alt,
	}
	if v.IsSNV() {
		call.Type = variant.SNV
	} else {
		call.Type = variant.INDEL
		call.Length = abs(len(v.Alt) - len(v.Ref))
	}
	return call
}

func (n *Normalizer) kevlar(v *vcf.Variant, call *variant.Call) error {
	call.Pass = filterPasses(v.Filter)
	if raw, ok := v.InfoString("LIKESCORE"); ok {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return malformed(v, fmt.Sprintf("invalid LIKESCORE %q", raw))
		}
		call.Score, call.HasScore = score, true
	} else if v.HasQual {
		call.Score, call.HasScore = v.Qual, true
	}

	if n.hasMin && call.HasScore && call.Score < n.minScore {
		call.Pass = false
	}
	return nil
}

func (n *Normalizer) gatk(v *vcf.Variant, call *variant.Call) error {
	if v.HasQual {
		call.Score, call.HasScore = v.Qual, true
	}

	denovo := n.listsProband(v, "hiConfDeNovo")
	if !denovo && n.opts.AllowLowConfidence {
		denovo = n.listsProband(v, "loConfDeNovo")
	}

	call.Pass = denovo && filterPasses(v.Filter)
	if n.hasMin && call.HasScore && call.Score < n.minScore {
		call.Pass = false
	}
	return nil
}

// listsProband reports whether the INFO key names the proband, or any
// sample when no proband is configured.
func (n *Normalizer) listsProband(v *vcf.Variant, key string) bool {
	raw, ok := v.InfoString(key)
	if !ok || raw == "" {
		return false
	}
	if n.opts.Proband == "" {
		return true
	}
	for _, s := range strings.Split(raw, ",") {
		if s == n.opts.Proband {
			return true
		}
	}
	return false
}

func (n *Normalizer) trioDenovo(v *vcf.Variant, call *variant.Call) error {
	names := v.SampleNames()
	proband := n.opts.Proband
	if proband == "" && len(names) > 0 {
		proband = names[0]
	}

	raw, ok := v.SampleValue(proband, "DQ")
	if !ok {
		return malformed(v, fmt.Sprintf("no DQ for sample %q", proband))
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return malformed(v, fmt.Sprintf("invalid DQ %q", raw))
	}
	call.Score, call.HasScore = score, true

	allele := strconv.Itoa(max(v.AltIdx, 1))
	gt, _ := v.SampleValue(proband, "GT")
	call.Pass = carriesAllele(gt, allele) && !inherited(v, names, proband, allele)
	if n.hasMin && call.Score < n.minScore {
		call.Pass = false
	}
	return nil
}

// inherited reports whether any sample other than the proband carries the
// allele.
func inherited(v *vcf.Variant, names []string, proband, allele string) bool {
	for _, name := range names {
		if name == proband {
			continue
		}
		if gt, ok := v.SampleValue(name, "GT"); ok && carriesAllele(gt, allele) {
			return true
		}
	}
	return false
}

// carriesAllele reports whether a genotype contains the given allele index.
func carriesAllele(gt, allele string) bool {
	for _, a := range strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' }) {
		if a == allele {
			return true
		}
	}
	return false
}

func filterPasses(filter string) bool {
	return filter == "PASS" || filter == "." || filter == ""
}

func malformed(v *vcf.Variant, reason string) error {
	return fmt.Errorf("%w: %s:%d: %s", ErrMalformedRecord, v.Chrom, v.Pos, reason)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
