package normalize

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-eval/internal/variant"
	"github.com/inodb/vibe-eval/internal/vcf"
)

// Stats counts what happened to the records read by NormalizeAll.
type Stats struct {
	Records   int // single-ALT records after splitting multi-allelic lines
	Calls     int // records that produced a call
	Passing   int // calls with Pass set
	Malformed int // unparseable lines and records missing required fields
	Dropped   int // records carrying no call
}

// WorkItem holds a parsed record ready for normalization.
type WorkItem struct {
	Seq     int
	Variant *vcf.Variant
}

// WorkResult holds the normalization output for a single record.
type WorkResult struct {
	Seq     int
	Variant *vcf.Variant
	Call    *variant.Call
	Err     error
}

// ParallelNormalize normalizes work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (n *Normalizer) ParallelNormalize(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				call, err := n.Normalize(item.Variant)
				results <- WorkResult{
					Seq:     item.Seq,
					Variant: item.Variant,
					Call:    call,
					Err:     err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// NormalizeAll reads every record from parser and returns the calls in input
// order. Malformed lines and records are skipped and counted; read errors abort.
func (n *Normalizer) NormalizeAll(parser vcf.VariantParser) ([]*variant.Call, Stats, error) {
	items := make(chan WorkItem, 2*runtime.NumCPU())
	var readErr error
	var stats Stats
	parseErrors := 0

	go func() {
		defer close(items)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				var pe *vcf.ParseError
				if errors.As(err, &pe) {
					parseErrors++
					n.logger.Debug("skipping malformed vcf line",
						zap.Int("line", pe.Line),
						zap.String("reason", pe.Message))
					continue
				}
				readErr = fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				return
			}

			// Split multi-allelic records, each gets its own sequence number.
			for _, split := range vcf.SplitMultiAllelic(v) {
				items <- WorkItem{Seq: seq, Variant: split}
				seq++
			}
		}
	}()

	var calls []*variant.Call
	err := OrderedCollect(n.ParallelNormalize(items, n.opts.Workers), func(r WorkResult) error {
		stats.Records++
		switch {
		case errors.Is(r.Err, ErrMalformedRecord):
			stats.Malformed++
			n.logger.Debug("skipping malformed record", zap.Error(r.Err))
			return nil
		case r.Err != nil:
			return r.Err
		case r.Call == nil:
			stats.Dropped++
			return nil
		}
		stats.Calls++
		if r.Call.Pass {
			stats.Passing++
		}
		calls = append(calls, r.Call)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	if readErr != nil {
		return nil, stats, readErr
	}
	stats.Malformed += parseErrors

	if stats.Records == 0 {
		n.logger.Info("0 variant records processed")
	}

	return calls, stats, nil
}
