package classify

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-eval/internal/truth"
	"github.com/inodb/vibe-eval/internal/variant"
)

// Result holds the outcome of every truth variant and every accepted call.
type Result struct {
	// Truths is indexed by truth ID (see truth.Index).
	Truths []Outcome
	// Calls lists the accepted calls in input order; CallOutcomes and
	// Matches are parallel to it.
	Calls        []*variant.Call
	CallOutcomes []Outcome
	// Matches holds the truth IDs each call overlapped.
	Matches [][]int
}

// Counts tallies the result.
func (r *Result) Counts() Counts {
	var c Counts
	for _, o := range r.Truths {
		switch o {
		case Correct:
			c.TruthCorrect++
		case Missing:
			c.Missing++
		case Collision:
			c.TruthCollision++
		}
	}
	for _, o := range r.CallOutcomes {
		switch o {
		case Correct:
			c.CallCorrect++
		case False:
			c.False++
		case Collision:
			c.CallCollision++
		}
	}
	return c
}

// Classifier matches calls against a truth index.
type Classifier struct {
	index  *truth.Index
	cfg    Config
	logger *zap.Logger
}

// New creates a classifier. The config is validated here.
func New(index *truth.Index, cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{index: index, cfg: cfg, logger: zap.NewNop()}, nil
}

// SetLogger sets the logger for diagnostics.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Classify matches calls against index under cfg.
func Classify(ctx context.Context, calls []*variant.Call, index *truth.Index, cfg Config) (*Result, error) {
	c, err := New(index, cfg)
	if err != nil {
		return nil, err
	}
	return c.Classify(ctx, calls)
}

// Classify assigns outcomes. Calls rejected by the config are left out of the
// result entirely. Each chromosome is handled by one goroutine, in input
// order, so the outcome does not depend on scheduling.
func (c *Classifier) Classify(ctx context.Context, calls []*variant.Call) (*Result, error) {
	res := &Result{Truths: make([]Outcome, c.index.Len())}

	byChrom := make(map[string][]int)
	var chroms []string
	for _, call := range calls {
		if !c.cfg.Accepts(call) {
			continue
		}
		ci := len(res.Calls)
		res.Calls = append(res.Calls, call)
		if _, ok := byChrom[call.Chrom]; !ok {
			chroms = append(chroms, call.Chrom)
		}
		byChrom[call.Chrom] = append(byChrom[call.Chrom], ci)
	}
	res.CallOutcomes = make([]Outcome, len(res.Calls))
	res.Matches = make([][]int, len(res.Calls))

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Chromosomes touch disjoint truth IDs and call indices, so the
	// goroutines write disjoint elements of the shared slices.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chrom := range chroms {
		g.Go(func() error {
			return c.classifyChrom(gctx, res, byChrom[chrom])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify calls: %w", err)
	}

	for id, o := range res.Truths {
		if o == Unmatched {
			res.Truths[id] = Missing
		}
	}

	counts := res.Counts()
	c.logger.Debug("classified calls",
		zap.Int("truths", len(res.Truths)),
		zap.Int("calls", len(res.Calls)),
		zap.Int("correct", counts.CallCorrect),
		zap.Int("false", counts.False),
		zap.Int("missing", counts.Missing),
		zap.Int("truth_collisions", counts.TruthCollision),
		zap.Int("call_collisions", counts.CallCollision))

	return res, nil
}

// classifyChrom runs the per-truth state machine for one chromosome:
// Unmatched -> Correct on the first claim, Correct -> Collision on any
// further claim. A call overlapping several truths collides with all of them.
// When a truth collides, every call that claimed it collides too.
func (c *Classifier) classifyChrom(ctx context.Context, res *Result, callIdx []int) error {
	claimedBy := make(map[int][]int)

	collide := func(id, ci int) {
		if res.Truths[id] == Correct {
			for _, prev := range claimedBy[id] {
				res.CallOutcomes[prev] = Collision
			}
		}
		res.Truths[id] = Collision
		claimedBy[id] = append(claimedBy[id], ci)
	}

	for n, ci := range callIdx {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		call := res.Calls[ci]
		ids := c.index.FindOverlapIDs(call.Chrom, call.Start, call.End, c.cfg.Tolerance)
		res.Matches[ci] = ids

		switch {
		case len(ids) == 0:
			res.CallOutcomes[ci] = False
		case len(ids) == 1 && res.Truths[ids[0]] == Unmatched:
			res.Truths[ids[0]] = Correct
			claimedBy[ids[0]] = []int{ci}
			res.CallOutcomes[ci] = Correct
		default:
			res.CallOutcomes[ci] = Collision
			for _, id := range ids {
				collide(id, ci)
			}
		}
	}
	return nil
}
