// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"strings"

	"github.com/inodb/vibe-eval/internal/variant"
)

// Variant represents a single genomic variant record from a VCF file.
type Variant struct {
	Chrom   string                 // Chromosome name (e.g., "12", "chr12")
	Pos     int64                  // 1-based genomic position
	ID      string                 // Variant identifier (e.g., rs ID)
	Ref     string                 // Reference allele
	Alt     string                 // Alternate allele (single allele after splitting)
	AltIdx  int                    // 1-based index of Alt in the record's ALT column
	Qual    float64                // Quality score
	HasQual bool                   // false when the QUAL column is "."
	Filter  string                 // Filter status (PASS or filter name)
	Info    map[string]interface{} // INFO field key-value pairs
	Format  []string               // FORMAT keys, in column order
	Samples []map[string]string    // per-sample FORMAT values, in #CHROM sample order

	sampleNames []string
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return variant.NormalizeChrom(v.Chrom)
}

// InfoString returns the string value of an INFO key.
// Flag-type keys report ok with an empty value.
func (v *Variant) InfoString(key string) (string, bool) {
	raw, ok := v.Info[key]
	if !ok {
		return "", false
	}
	switch val := raw.(type) {
	case string:
		return val, true
	case bool:
		return "", val
	}
	return "", false
}

// SampleNames returns the sample names of the file this variant was read from.
func (v *Variant) SampleNames() []string {
	return v.sampleNames
}

// SampleValue returns the FORMAT value for key in the named sample.
// An empty sample name selects the first sample.
func (v *Variant) SampleValue(sample, key string) (string, bool) {
	idx := v.sampleIndex(sample)
	if idx < 0 || idx >= len(v.Samples) {
		return "", false
	}
	val, ok := v.Samples[idx][key]
	return val, ok
}

func (v *Variant) sampleIndex(sample string) int {
	if sample == "" {
		if len(v.Samples) > 0 {
			return 0
		}
		return -1
	}
	for i, name := range v.sampleNames {
		if name == sample {
			return i
		}
	}
	return -1
}

// parseSamples splits the FORMAT column and sample columns into per-sample maps.
func parseSamples(format string, columns []string) ([]string, []map[string]string) {
	if format == "" || format == "." {
		return nil, nil
	}
	keys := strings.Split(format, ":")
	samples := make([]map[string]string, len(columns))
	for i, col := range columns {
		values := strings.Split(col, ":")
		m := make(map[string]string, len(keys))
		for j, k := range keys {
			if j < len(values) {
				m[k] = values[j]
			}
		}
		samples[i] = m
	}
	return keys, samples
}
