package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/loomsim/loom/kernel"
)

// Reader queries a run-history database written by Store.
type Reader struct {
	*sql.DB

	filename string
}

// OpenReader opens a history database for querying. The connection is not
// read-only, and a missing file is not reported here.
func OpenReader(filename string) (*Reader, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening history database %q: %w", filename, err)
	}
	return &Reader{DB: db, filename: filename}, nil
}

// Query filters which runs ListRuns returns. A zero-valued field means "no
// filter on this column".
type Query struct {
	Status      string
	Since       time.Time
	Limit       int
}

func (r *Reader) prepareQueryStr(q Query) string {
	var where []string

	if q.Status != "" {
		where = append(where, fmt.Sprintf("status = '%s'", q.Status))
	}
	if !q.Since.IsZero() {
		where = append(where, fmt.Sprintf("started_at >= %d", q.Since.Unix()))
	}

	sqlStr := "SELECT id, started_at, wall_clock_seconds, final_virtual_time, status, deadlocked_actors, error_message FROM runs"
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	sqlStr += " ORDER BY started_at DESC"

	if q.Limit > 0 {
		sqlStr += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	return sqlStr
}

// ListRuns returns the runs matching q, most recently started first.
func (r *Reader) ListRuns(q Query) ([]Run, error) {
	sqlStr := r.prepareQueryStr(q)

	rows, err := r.Query(sqlStr)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  int64
			deadlocked string
			finalVT    float64
		)

		err := rows.Scan(
			&run.ID,
			&startedAt,
			&run.WallClockSeconds,
			&finalVT,
			&run.Status,
			&deadlocked,
			&run.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}

		run.StartedAt = time.Unix(startedAt, 0)
		run.FinalVirtualTime = kernel.VTime(finalVT)

		if err := json.Unmarshal([]byte(deadlocked), &run.DeadlockedActors); err != nil {
			return nil, fmt.Errorf("unmarshalling deadlocked actors for run %s: %w", run.ID, err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}
