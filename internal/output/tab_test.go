package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-eval/internal/variant"
)

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Equal(t, "Caller\tCoverage\tVarType\tCorrect\tFalse\tMissing\n", buf.String())
}

func TestTabWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	rows := []SummaryRow{
		{Caller: "Kevlar", Coverage: "30x", VarType: "INDEL", Label: "INDEL(2-5)", Correct: 12, False: 3, Missing: 1},
		{Caller: "GATK", VarType: "SNV", Correct: 7},
	}
	for _, r := range rows {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Kevlar\t30x\tINDEL(2-5)\t12\t3\t1", lines[0])
	assert.Equal(t, "GATK\t-\tSNV\t7\t0\t0", lines[1], "empty coverage and label fall back")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, []SummaryRow{
		{Label: "SNV", Correct: 3, False: 1, Missing: 1, Collision: 2},
		{Label: "INDEL"},
	})

	out := buf.String()
	assert.Contains(t, out, "Evaluation Summary:")
	assert.Contains(t, out, "collisions 2 (sensitivity 75.0%)")
	assert.Contains(t, out, "sensitivity 0.0%")
}

func TestIntervalWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewIntervalWriter(&buf)

	require.NoError(t, w.Write(variant.Interval{Chrom: "chr1", Start: 100, End: 110}))
	require.NoError(t, w.WriteWith(
		variant.Interval{Chrom: "chr1", Start: 5, End: 6},
		[]variant.Interval{{Chrom: "chr1", Start: 1, End: 2}, {Chrom: "chr1", Start: 9, End: 12}}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "chr1:100-110\nchr1:5-6\tchr1:1-2,chr1:9-12\n", buf.String())
}
