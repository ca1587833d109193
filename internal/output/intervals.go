package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-eval/internal/variant"
)

// IntervalWriter writes one chrom:start-end interval per line.
type IntervalWriter struct {
	w *bufio.Writer
}

// NewIntervalWriter creates a new interval list writer.
func NewIntervalWriter(w io.Writer) *IntervalWriter {
	return &IntervalWriter{w: bufio.NewWriter(w)}
}

// Write writes a single interval.
func (iw *IntervalWriter) Write(iv variant.Interval) error {
	_, err := iw.w.WriteString(iv.String() + "\n")
	return err
}

// WriteWith writes an interval followed by a tab and the comma-separated
// related intervals.
func (iw *IntervalWriter) WriteWith(iv variant.Interval, related []variant.Interval) error {
	parts := make([]string, len(related))
	for i, r := range related {
		parts[i] = r.String()
	}
	_, err := iw.w.WriteString(iv.String() + "\t" + strings.Join(parts, ",") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (iw *IntervalWriter) Flush() error {
	return iw.w.Flush()
}
