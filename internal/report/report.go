package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-eval/internal/classify"
	"github.com/inodb/vibe-eval/internal/output"
	"github.com/inodb/vibe-eval/internal/truth"
	"github.com/inodb/vibe-eval/internal/variant"
)

// SummaryRow holds the counts of one partition.
type SummaryRow = output.SummaryRow

// Options configures an evaluation.
type Options struct {
	Caller   string
	Coverage string
	Classify classify.Config
	// DoAll reports every observed partition instead of the single one
	// described by Classify's filters.
	DoAll      bool
	LengthBins []variant.LengthRange
}

// Evaluation is the outcome of Evaluate.
type Evaluation struct {
	Rows []SummaryRow
	// Primary is the classification under the configured filters, or with
	// no filters under DoAll. Interval lists are written from it.
	Primary *classify.Result
	Index   *truth.Index
}

// Aggregator evaluates calls against a truth index.
type Aggregator struct {
	index  *truth.Index
	opts   Options
	logger *zap.Logger
}

// NewAggregator validates opts and returns an aggregator.
func NewAggregator(index *truth.Index, opts Options) (*Aggregator, error) {
	if err := opts.Classify.Validate(); err != nil {
		return nil, err
	}
	if opts.LengthBins == nil {
		opts.LengthBins = DefaultLengthBins
	}
	for _, bin := range opts.LengthBins {
		if err := bin.Validate(); err != nil {
			return nil, fmt.Errorf("length bin %s: %w", bin.Label(), err)
		}
	}
	return &Aggregator{index: index, opts: opts, logger: zap.NewNop()}, nil
}

// SetLogger sets the logger for diagnostics.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Evaluate classifies calls once per partition and tallies one row each.
func (a *Aggregator) Evaluate(ctx context.Context, calls []*variant.Call) (*Evaluation, error) {
	primaryPart := FromConfig(a.opts.Classify)
	if a.opts.DoAll {
		primaryPart = Partition{}
	}

	primary, err := a.classify(ctx, calls, primaryPart)
	if err != nil {
		return nil, err
	}
	ev := &Evaluation{Primary: primary, Index: a.index}

	ev.Rows = []SummaryRow{a.tally(primaryPart, primary)}
	if !a.opts.DoAll {
		return ev, nil
	}

	for _, p := range Observed(calls, a.index.All(), a.opts.LengthBins) {
		res, err := a.classify(ctx, calls, p)
		if err != nil {
			return nil, err
		}
		ev.Rows = append(ev.Rows, a.tally(p, res))
	}
	return ev, nil
}

func (a *Aggregator) classify(ctx context.Context, calls []*variant.Call, p Partition) (*classify.Result, error) {
	c, err := classify.New(a.index, p.Apply(a.opts.Classify))
	if err != nil {
		return nil, err
	}
	c.SetLogger(a.logger.With(zap.String("partition", p.Label())))
	res, err := c.Classify(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("partition %s: %w", p.Label(), err)
	}
	return res, nil
}

func (a *Aggregator) tally(p Partition, res *classify.Result) SummaryRow {
	counts := res.Counts()
	row := SummaryRow{
		Caller:      a.opts.Caller,
		Coverage:    a.opts.Coverage,
		VarType:     p.VarTypeLabel(),
		LengthRange: p.Lengths.Label(),
		Label:       p.Label(),
		Correct:     counts.CallCorrect,
		False:       counts.False,
		Collision:   counts.CallCollision,
	}
	truths := a.index.All()
	for id, o := range res.Truths {
		if o == classify.Missing && p.InScope(truths[id]) {
			row.Missing++
		}
	}
	return row
}

// Evaluate is a convenience wrapper around NewAggregator and Aggregator.Evaluate.
func Evaluate(ctx context.Context, calls []*variant.Call, index *truth.Index, opts Options) (*Evaluation, error) {
	a, err := NewAggregator(index, opts)
	if err != nil {
		return nil, err
	}
	return a.Evaluate(ctx, calls)
}
