package report

import (
	"io"

	"github.com/inodb/vibe-eval/internal/classify"
	"github.com/inodb/vibe-eval/internal/output"
	"github.com/inodb/vibe-eval/internal/variant"
)

// Sinks are the optional interval-list destinations. Nil sinks are skipped.
type Sinks struct {
	Correct    io.Writer // correct truth variants
	Missing    io.Writer // missing truth variants
	False      io.Writer // false calls
	Collisions io.Writer // colliding calls with the truth variants they overlapped
}

// WriteLists writes the primary classification's interval lists. Truth
// variants are written in load order, calls in input order.
func (ev *Evaluation) WriteLists(s Sinks) error {
	truths := ev.Index.All()
	res := ev.Primary

	writeTruths := func(w io.Writer, want classify.Outcome) error {
		if w == nil {
			return nil
		}
		iw := output.NewIntervalWriter(w)
		for id, o := range res.Truths {
			if o != want {
				continue
			}
			if err := iw.Write(truths[id].Interval); err != nil {
				return err
			}
		}
		return iw.Flush()
	}

	if err := writeTruths(s.Correct, classify.Correct); err != nil {
		return err
	}
	if err := writeTruths(s.Missing, classify.Missing); err != nil {
		return err
	}

	if s.False != nil {
		iw := output.NewIntervalWriter(s.False)
		for ci, o := range res.CallOutcomes {
			if o != classify.False {
				continue
			}
			if err := iw.Write(res.Calls[ci].Interval); err != nil {
				return err
			}
		}
		if err := iw.Flush(); err != nil {
			return err
		}
	}

	if s.Collisions != nil {
		iw := output.NewIntervalWriter(s.Collisions)
		for ci, o := range res.CallOutcomes {
			if o != classify.Collision {
				continue
			}
			matched := make([]variant.Interval, len(res.Matches[ci]))
			for i, id := range res.Matches[ci] {
				matched[i] = truths[id].Interval
			}
			if err := iw.WriteWith(res.Calls[ci].Interval, matched); err != nil {
				return err
			}
		}
		if err := iw.Flush(); err != nil {
			return err
		}
	}

	return nil
}
