// Package output provides evaluation output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SummaryRow holds the counts of one evaluated partition.
type SummaryRow struct {
	Caller      string
	Coverage    string
	VarType     string // "All", "SNV" or "INDEL"
	LengthRange string // length range label, "all" when unfiltered
	Label       string // VarType with the length range, e.g. "INDEL(2-5)"
	Correct     int    // correct calls
	False       int    // false calls
	Missing     int    // missing truths in the partition's scope
	Collision   int    // colliding calls
}

// TabWriter writes summary rows in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited summary writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"Caller",
			"Coverage",
			"VarType",
			"Correct",
			"False",
			"Missing",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single summary row.
func (tw *TabWriter) Write(row SummaryRow) error {
	coverage := row.Coverage
	if coverage == "" {
		coverage = "-"
	}
	label := row.Label
	if label == "" {
		label = row.VarType
	}

	values := []string{
		row.Caller,
		coverage,
		label,
		strconv.Itoa(row.Correct),
		strconv.Itoa(row.False),
		strconv.Itoa(row.Missing),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// WriteSummary writes a human-readable recap of rows, including collision
// counts which the table omits.
func WriteSummary(w io.Writer, rows []SummaryRow) {
	fmt.Fprintf(w, "\nEvaluation Summary:\n")
	for _, r := range rows {
		scored := r.Correct + r.Missing
		sensitivity := float64(0)
		if scored > 0 {
			sensitivity = float64(r.Correct) / float64(scored) * 100
		}
		fmt.Fprintf(w, "  %-14s correct %d, false %d, missing %d, collisions %d (sensitivity %.1f%%)\n",
			r.Label, r.Correct, r.False, r.Missing, r.Collision, sensitivity)
	}
}
