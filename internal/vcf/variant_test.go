package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariant_IsSNV(t *testing.T) {
	tests := []struct {
		name     string
		ref, alt string
		snv      bool
	}{
		{"SNV", "A", "G", true},
		{"deletion", "AT", "A", false},
		{"insertion", "A", "ATGC", false},
		{"MNV same length", "AT", "GC", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			assert.Equal(t, tt.snv, v.IsSNV())
		})
	}
}

func TestVariant_NormalizeChrom(t *testing.T) {
	tests := []struct {
		chrom string
		want  string
	}{
		{"chr12", "12"},
		{"12", "12"},
		{"chrX", "X"},
		{"", ""},
		{"ch", "ch"},
	}

	for _, tt := range tests {
		v := &Variant{Chrom: tt.chrom}
		assert.Equal(t, tt.want, v.NormalizeChrom(), "chrom %q", tt.chrom)
	}
}

func TestVariant_InfoString(t *testing.T) {
	v := &Variant{Info: parseInfo("LIKESCORE=42.5;NC;DP=3")}

	s, ok := v.InfoString("LIKESCORE")
	assert.True(t, ok)
	assert.Equal(t, "42.5", s)

	s, ok = v.InfoString("NC")
	assert.True(t, ok, "flag keys are present")
	assert.Empty(t, s)

	_, ok = v.InfoString("missing")
	assert.False(t, ok)
}

func TestVariant_SampleValue(t *testing.T) {
	keys, samples := parseSamples("GT:DQ", []string{"0/1:9", "0/0"})
	v := &Variant{Format: keys, Samples: samples, sampleNames: []string{"kid", "mom"}}

	dq, ok := v.SampleValue("", "DQ")
	assert.True(t, ok, "empty sample name selects the first sample")
	assert.Equal(t, "9", dq)

	_, ok = v.SampleValue("mom", "DQ")
	assert.False(t, ok, "truncated sample column")

	_, ok = v.SampleValue("dad", "GT")
	assert.False(t, ok)
}
