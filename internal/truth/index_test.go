package truth

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-eval/internal/bed"
	"github.com/inodb/vibe-eval/internal/variant"
)

func tv(chrom string, start, end int64) variant.TruthVariant {
	return variant.TruthVariant{Interval: variant.Interval{Chrom: chrom, Start: start, End: end}}
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil)
	assert.Empty(t, idx.FindOverlaps("chr1", 100, 101, 10))
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Chromosomes())
}

func TestIndex_ToleranceWidensTruthOnly(t *testing.T) {
	idx := Build([]variant.TruthVariant{tv("chr1", 100, 110)})

	assert.Len(t, idx.FindOverlaps("chr1", 105, 106, 0), 1)
	assert.Empty(t, idx.FindOverlaps("chr1", 110, 111, 0), "half-open end")
	assert.Empty(t, idx.FindOverlaps("chr1", 99, 100, 0), "half-open start")

	assert.Len(t, idx.FindOverlaps("chr1", 119, 120, 10), 1)
	assert.Empty(t, idx.FindOverlaps("chr1", 120, 121, 10))
	assert.Len(t, idx.FindOverlaps("chr1", 85, 91, 10), 1)
	assert.Empty(t, idx.FindOverlaps("chr1", 80, 90, 10))

	assert.Empty(t, idx.FindOverlaps("chr2", 105, 106, 10), "other chromosome")
}

func TestIndex_OverlappingSortedByStart(t *testing.T) {
	idx := Build([]variant.TruthVariant{
		tv("1", 200, 400),
		tv("1", 100, 300),
		tv("1", 150, 250),
	})

	results := idx.FindOverlaps("1", 210, 211, 0)
	require.Len(t, results, 3)
	assert.Equal(t, int64(100), results[0].Start)
	assert.Equal(t, int64(150), results[1].Start)
	assert.Equal(t, int64(200), results[2].Start)

	assert.Equal(t, []int{1}, idx.FindOverlapIDs("1", 120, 121, 0))
	assert.Equal(t, []int{1, 2, 0}, idx.IDsByChrom("1"))
}

func TestIndex_MaxEndPruning(t *testing.T) {
	// A long interval early in start order must still be found behind short ones.
	idx := Build([]variant.TruthVariant{
		tv("1", 100, 5000),
		tv("1", 200, 210),
		tv("1", 300, 310),
	})

	results := idx.FindOverlaps("1", 4000, 4001, 10)
	require.Len(t, results, 1)
	assert.Equal(t, int64(100), results[0].Start)
}

func TestIndex_MatchesLinearScan(t *testing.T) {
	truths := []variant.TruthVariant{
		tv("1", 1000, 5000),
		tv("1", 2000, 3000),
		tv("1", 4000, 8000),
		tv("1", 6000, 7000),
		tv("1", 9000, 10000),
		tv("2", 1000, 1001),
	}
	idx := Build(truths)

	for _, tol := range []int64{0, 10, 600} {
		for pos := int64(0); pos <= 11000; pos += 250 {
			call := variant.Interval{Chrom: "1", Start: pos, End: pos + 1}

			linear := map[int]bool{}
			for i, tr := range truths {
				if tr.Overlaps(call, tol) {
					linear[i] = true
				}
			}
			indexed := map[int]bool{}
			for _, id := range idx.FindOverlapIDs("1", call.Start, call.End, tol) {
				indexed[id] = true
			}

			assert.Equal(t, linear, indexed, "pos=%d tol=%d", pos, tol)
		}
	}
}

func TestIndex_ConcurrentQueries(t *testing.T) {
	var truths []variant.TruthVariant
	for i := int64(0); i < 1000; i++ {
		truths = append(truths, tv("1", i*100, i*100+5))
	}
	idx := Build(truths)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := int64(0); i < 1000; i++ {
				assert.Len(t, idx.FindOverlapIDs("1", i*100+2, i*100+3, 10), 1)
			}
		}()
	}
	wg.Wait()
}

func TestLoad_SkipsMalformed(t *testing.T) {
	input := "chr1\t100\t110\tSNV\n" +
		"chr1\tbad\t110\n" +
		"chr2\t5\t9\tINDEL\t4\n"

	truths, stats, err := Load(bed.NewReader(strings.NewReader(input)), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 2, Malformed: 1}, stats)
	require.Len(t, truths, 2)
	assert.Equal(t, variant.SNV, truths[0].Type)
	assert.Equal(t, 4, truths[1].Length)

	idx := Build(truths)
	assert.Equal(t, []string{"chr1", "chr2"}, idx.Chromosomes())
}

func TestLoad_StripChr(t *testing.T) {
	input := "chr1\t100\t110\n" +
		"2\t5\t9\n"

	truths, _, err := Load(bed.NewReader(strings.NewReader(input)), LoadOptions{StripChr: true})
	require.NoError(t, err)
	require.Len(t, truths, 2)
	assert.Equal(t, "1", truths[0].Chrom)
	assert.Equal(t, "2", truths[1].Chrom)
}

func TestLoad_KeepsIntervalWithUnparsedLength(t *testing.T) {
	input := "chr1\t100\t110\tSNV\tA>G\n" +
		"chr1\t200\t201\tsite1\t0\t+\n"

	truths, stats, err := Load(bed.NewReader(strings.NewReader(input)), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 2}, stats)
	assert.Len(t, truths, 2)
}
