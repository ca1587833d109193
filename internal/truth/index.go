// Package truth indexes truth-variant intervals for tolerance-widened
// overlap queries.
package truth

import (
	"slices"
	"sort"

	"github.com/inodb/vibe-eval/internal/variant"
)

// Index answers overlap queries against a static set of truth variants.
// One start-sorted slice per chromosome gives O(log n + k) queries.
// The index is never modified after Build and is safe for concurrent use.
type Index struct {
	truths []variant.TruthVariant
	chroms map[string]*chromTree
}

type chromTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(end) for intervals[:i+1]
}

type interval struct {
	start int64
	end   int64
	id    int
}

// Build creates an index over truths. IDs are positions in truths.
func Build(truths []variant.TruthVariant) *Index {
	idx := &Index{
		truths: truths,
		chroms: make(map[string]*chromTree),
	}

	byChrom := make(map[string][]interval)
	for i, t := range truths {
		byChrom[t.Chrom] = append(byChrom[t.Chrom], interval{start: t.Start, end: t.End, id: i})
	}

	for chrom, ivs := range byChrom {
		sort.SliceStable(ivs, func(i, j int) bool {
			return ivs[i].start < ivs[j].start
		})

		maxEnd := make([]int64, len(ivs))
		maxEnd[0] = ivs[0].end
		for i := 1; i < len(ivs); i++ {
			maxEnd[i] = max(maxEnd[i-1], ivs[i].end)
		}
		idx.chroms[chrom] = &chromTree{intervals: ivs, maxEnd: maxEnd}
	}

	return idx
}

// FindOverlapIDs returns the IDs of truth variants on chrom whose interval,
// widened by tolerance on both sides, intersects [start, end). IDs are
// returned in ascending start order.
func (x *Index) FindOverlapIDs(chrom string, start, end, tolerance int64) []int {
	tree, ok := x.chroms[chrom]
	if !ok {
		return nil
	}

	// Candidates need start-tolerance < end.
	hi := sort.Search(len(tree.intervals), func(i int) bool {
		return tree.intervals[i].start >= end+tolerance
	})

	var ids []int
	for i := hi - 1; i >= 0; i-- {
		// No interval in [0, i] reaches past start-tolerance.
		if tree.maxEnd[i]+tolerance <= start {
			break
		}
		if tree.intervals[i].end+tolerance > start {
			ids = append(ids, tree.intervals[i].id)
		}
	}
	slices.Reverse(ids)
	return ids
}

// FindOverlaps is FindOverlapIDs returning the truth variants themselves.
func (x *Index) FindOverlaps(chrom string, start, end, tolerance int64) []*variant.TruthVariant {
	ids := x.FindOverlapIDs(chrom, start, end, tolerance)
	if len(ids) == 0 {
		return nil
	}
	result := make([]*variant.TruthVariant, len(ids))
	for i, id := range ids {
		result[i] = &x.truths[id]
	}
	return result
}

// Truth returns the truth variant with the given ID.
func (x *Index) Truth(id int) *variant.TruthVariant {
	return &x.truths[id]
}

// Len returns the number of indexed truth variants.
func (x *Index) Len() int {
	return len(x.truths)
}

// All returns the truth variants in load order.
func (x *Index) All() []variant.TruthVariant {
	return x.truths
}

// Chromosomes returns a sorted list of chromosomes in the index.
func (x *Index) Chromosomes() []string {
	chroms := make([]string, 0, len(x.chroms))
	for chrom := range x.chroms {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// IDsByChrom returns the IDs of the truth variants on chrom in ascending start order.
func (x *Index) IDsByChrom(chrom string) []int {
	tree, ok := x.chroms[chrom]
	if !ok {
		return nil
	}
	ids := make([]int, len(tree.intervals))
	for i, iv := range tree.intervals {
		ids[i] = iv.id
	}
	return ids
}
