package variant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	assert.Equal(t, SNV, ParseType("snv"))
	assert.Equal(t, INDEL, ParseType(" INDEL "))
	assert.Equal(t, Unknown, ParseType("SV"))
	assert.Equal(t, "INDEL", INDEL.String())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestInterval_Overlaps(t *testing.T) {
	truth := Interval{Chrom: "chr1", Start: 100, End: 110}

	tests := []struct {
		name  string
		call  Interval
		slack int64
		want  bool
	}{
		{"inside", Interval{"chr1", 105, 106}, 0, true},
		{"touching end is not overlap", Interval{"chr1", 110, 111}, 0, false},
		{"within slack after", Interval{"chr1", 119, 120}, 10, true},
		{"just outside slack after", Interval{"chr1", 120, 121}, 10, false},
		{"within slack before", Interval{"chr1", 89, 90}, 10, true},
		{"just outside slack before", Interval{"chr1", 88, 90}, 10, false},
		{"other chromosome", Interval{"chr2", 105, 106}, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truth.Overlaps(tt.call, tt.slack))
		})
	}
}

func TestInterval_String(t *testing.T) {
	assert.Equal(t, "chr1:100-110", Interval{"chr1", 100, 110}.String())
}

func TestLengthRange(t *testing.T) {
	r := Bounded(2, 5)
	assert.True(t, r.IsSet())
	assert.True(t, r.Contains(2))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(10))
	assert.Equal(t, "2-5", r.Label())

	assert.Equal(t, ">=3", AtLeast(3).Label())
	assert.True(t, AtLeast(3).Contains(1000))
	assert.Equal(t, "all", LengthRange{}.Label())
	assert.True(t, LengthRange{}.Contains(0))
}

func TestLengthRange_Validate(t *testing.T) {
	require.NoError(t, Bounded(3, 3).Validate())

	err := Bounded(6, 5).Validate()
	assert.True(t, errors.Is(err, ErrInvalidLengthRange))

	neg := -1
	err = LengthRange{Min: &neg}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidLengthRange))
}

func TestParseLengthRange(t *testing.T) {
	for _, label := range []string{"all", "1-10", ">=401", "<=5"} {
		r, err := ParseLengthRange(label)
		require.NoError(t, err, label)
		assert.Equal(t, label, r.Label())
	}

	_, err := ParseLengthRange("10-1")
	assert.True(t, errors.Is(err, ErrInvalidLengthRange))

	_, err = ParseLengthRange("lots")
	assert.True(t, errors.Is(err, ErrInvalidLengthRange))
}

func TestNormalizeChrom(t *testing.T) {
	assert.Equal(t, "12", NormalizeChrom("chr12"))
	assert.Equal(t, "12", NormalizeChrom("12"))
	assert.Equal(t, "X", NormalizeChrom("chrX"))
	assert.Equal(t, "ch", NormalizeChrom("ch"))
	assert.Equal(t, "", NormalizeChrom(""))
}
