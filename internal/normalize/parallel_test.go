package normalize

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-eval/internal/vcf"
)

func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := range n {
		ch <- WorkItem{
			Seq: i,
			Variant: &vcf.Variant{
				Chrom:  "1",
				Pos:    int64(100 + i),
				Ref:    "A",
				Alt:    "T",
				Filter: "PASS",
			},
		}
	}
	close(ch)
	return ch
}

func TestParallelNormalize_OrderPreservation(t *testing.T) {
	n := newNormalizer(t, Options{Mode: ModeKevlar})

	var collected []int
	err := OrderedCollect(n.ParallelNormalize(makeItems(200), 8), func(r WorkResult) error {
		require.NoError(t, r.Err)
		assert.Equal(t, int64(100+r.Seq-1), r.Call.Start)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	n := newNormalizer(t, Options{Mode: ModeKevlar})

	calls := 0
	err := OrderedCollect(n.ParallelNormalize(makeItems(100), 4), func(r WorkResult) error {
		calls++
		if r.Seq == 10 {
			return fmt.Errorf("stop at %d", r.Seq)
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 11, calls)
}

func TestNormalizeAll_CountsAndOrder(t *testing.T) {
	input := "##fileformat=VCFv4.2\n" +
		siteHeader + "\n" +
		"1\t106\t.\tA\tG\t.\tPASS\tLIKESCORE=10\n" +
		"1\tbad\t.\tA\tG\t.\tPASS\t.\n" +
		"1\t200\t.\tA\tC,AT\t.\tPASS\t.\n" +
		"1\t300\t.\t.\t.\t.\t.\tNC=perfectmatch\n" +
		"2\t400\t.\tA\tG\t.\tPASS\tLIKESCORE=x\n" +
		"2\t450\t.\tA\tG\t.\tPASS\tNC=inscrutablecigar\n" +
		"2\t500\t.\tAT\tA\t.\tFail\t.\n"

	p, err := vcf.NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	n := newNormalizer(t, Options{Mode: ModeKevlar, Workers: 3})
	calls, stats, err := n.NormalizeAll(p)
	require.NoError(t, err)

	assert.Equal(t, Stats{Records: 7, Calls: 4, Passing: 3, Malformed: 2, Dropped: 2}, stats)
	require.Len(t, calls, 4)
	assert.Equal(t, int64(105), calls[0].Start)
	assert.Equal(t, "C", calls[1].Alt)
	assert.Equal(t, "AT", calls[2].Alt)
	assert.False(t, calls[3].Pass)
}

type failingParser struct{ n int }

func (f *failingParser) Next() (*vcf.Variant, error) {
	f.n++
	if f.n > 2 {
		return nil, errors.New("disk on fire")
	}
	return &vcf.Variant{Chrom: "1", Pos: int64(f.n), Ref: "A", Alt: "G"}, nil
}
func (f *failingParser) Close() error    { return nil }
func (f *failingParser) LineNumber() int { return f.n }

func TestNormalizeAll_ReadErrorAborts(t *testing.T) {
	n := newNormalizer(t, Options{Mode: ModeKevlar})
	_, _, err := n.NormalizeAll(&failingParser{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestNormalizeAll_Empty(t *testing.T) {
	p, err := vcf.NewParserFromReader(strings.NewReader(siteHeader + "\n"))
	require.NoError(t, err)

	n := newNormalizer(t, Options{Mode: ModeGATK})
	calls, stats, err := n.NormalizeAll(p)
	require.NoError(t, err)
	assert.Empty(t, calls)
	assert.Equal(t, Stats{}, stats)
}
