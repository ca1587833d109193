package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-eval/internal/output"
	"github.com/inodb/vibe-eval/internal/report"
)

// Run describes one evaluation invocation.
type Run struct {
	ID        string
	StartedAt time.Time
	Caller    string
	Coverage  string
	Tolerance int64
	Truth     FileFingerprint
	Calls     FileFingerprint
}

// NewRun returns a Run with a fresh ID.
func NewRun(caller, coverage string, tolerance int64, truthFile, callsFile FileFingerprint) Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Caller:    caller,
		Coverage:  coverage,
		Tolerance: tolerance,
		Truth:     truthFile,
		Calls:     callsFile,
	}
}

// WriteEvaluation records the run, its summary rows and the primary
// classification of every truth variant and accepted call.
func (s *Store) WriteEvaluation(run Run, ev *report.Evaluation) error {
	if _, err := s.db.Exec(`INSERT INTO eval_runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Caller, run.Coverage, run.Tolerance,
		run.Truth.Path, run.Truth.Size, run.Truth.ModTime,
		run.Calls.Path, run.Calls.Size, run.Calls.ModTime,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		if err := appendSummary(driverConn.(driver.Conn), run.ID, ev.Rows); err != nil {
			return err
		}
		return appendIntervals(driverConn.(driver.Conn), run.ID, ev)
	})
}

func appendSummary(conn driver.Conn, runID string, rows []output.SummaryRow) error {
	appender, err := goduckdb.NewAppenderFromConn(conn, "", "eval_summary")
	if err != nil {
		return fmt.Errorf("create summary appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		if err := appender.AppendRow(
			runID, r.Caller, r.Coverage, r.VarType, r.LengthRange,
			int64(r.Correct), int64(r.False), int64(r.Missing), int64(r.Collision),
		); err != nil {
			return fmt.Errorf("append summary row: %w", err)
		}
	}
	return appender.Flush()
}

func appendIntervals(conn driver.Conn, runID string, ev *report.Evaluation) error {
	appender, err := goduckdb.NewAppenderFromConn(conn, "", "eval_intervals")
	if err != nil {
		return fmt.Errorf("create interval appender: %w", err)
	}
	defer appender.Close()

	truths := ev.Index.All()
	for id, o := range ev.Primary.Truths {
		t := truths[id]
		if err := appender.AppendRow(runID, "truth", t.Chrom, t.Start, t.End, o.String()); err != nil {
			return fmt.Errorf("append truth interval: %w", err)
		}
	}
	for ci, o := range ev.Primary.CallOutcomes {
		c := ev.Primary.Calls[ci]
		if err := appender.AppendRow(runID, "call", c.Chrom, c.Start, c.End, o.String()); err != nil {
			return fmt.Errorf("append call interval: %w", err)
		}
	}
	return appender.Flush()
}

// SummaryRows returns the summary rows stored for a run, in insertion order.
func (s *Store) SummaryRows(runID string) ([]output.SummaryRow, error) {
	rows, err := s.db.Query(`SELECT
		caller, coverage, vartype, length_range,
		correct, false_calls, missing, collisions
		FROM eval_summary
		WHERE run_id=?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var result []output.SummaryRow
	for rows.Next() {
		var r output.SummaryRow
		var correct, falseCalls, missing, collisions int64
		if err := rows.Scan(&r.Caller, &r.Coverage, &r.VarType, &r.LengthRange,
			&correct, &falseCalls, &missing, &collisions); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		r.Correct, r.False, r.Missing, r.Collision = int(correct), int(falseCalls), int(missing), int(collisions)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return result, nil
}

// OutcomeCounts returns how many intervals of a run ended in each outcome,
// keyed by side ("truth" or "call") and outcome name.
func (s *Store) OutcomeCounts(runID string) (map[string]map[string]int, error) {
	rows, err := s.db.Query(`SELECT side, outcome, count(*)
		FROM eval_intervals
		WHERE run_id=?
		GROUP BY side, outcome`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	counts := map[string]map[string]int{}
	for rows.Next() {
		var side, outcome string
		var n int64
		if err := rows.Scan(&side, &outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		if counts[side] == nil {
			counts[side] = map[string]int{}
		}
		counts[side][outcome] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}
	return counts, nil
}
