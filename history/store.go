// Package history records the outcome of each simulation run to a SQLite
// database, so a batch of replays or parameter sweeps can be inspected after
// the fact without re-running the simulation.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/loomsim/loom/kernel"
)

// Run is one row of run history: the outcome of a single Engine.Run call.
type Run struct {
	ID               string
	StartedAt        time.Time
	WallClockSeconds float64
	FinalVirtualTime kernel.VTime
	Status           string // "completed", "deadlock", or "error"
	DeadlockedActors []string
	ErrorMessage     string
}

// Store is a batching SQLite-backed writer for Run records. A Store is safe
// to share between goroutines only insofar as database/sql itself is; loom
// never calls Record concurrently from more than one goroutine because
// Engine.Run completes on the caller's own goroutine.
type Store struct {
	*sql.DB

	statement *sql.Stmt

	dbName       string
	runsToWrite  []Run
	batchSize    int
}

// Open creates (or reopens) a SQLite database at path and prepares it to
// record run history. If path is empty a fresh file is created in the
// working directory, named with a random xid so repeated runs of the same
// program never collide.
func Open(path string) (*Store, error) {
	s := &Store{
		dbName:    path,
		batchSize: 50,
	}

	if err := s.createDatabase(); err != nil {
		return nil, err
	}
	if err := s.createTable(); err != nil {
		return nil, err
	}
	if err := s.prepareStatement(); err != nil {
		return nil, err
	}

	atexit.Register(func() { _ = s.Flush() })

	return s, nil
}

func (s *Store) createDatabase() error {
	if s.dbName == "" {
		s.dbName = "loom_history_" + xid.New().String() + ".sqlite3"
	}

	db, err := sql.Open("sqlite3", s.dbName)
	if err != nil {
		return fmt.Errorf("opening history database %q: %w", s.dbName, err)
	}

	s.DB = db
	return nil
}

func (s *Store) createTable() error {
	_, err := s.Exec(`
		create table if not exists runs
		(
			id                 varchar(20) not null primary key,
			started_at         integer     not null,
			wall_clock_seconds float       not null,
			final_virtual_time float       not null,
			status             varchar(20) not null,
			deadlocked_actors  text        not null default '[]',
			error_message      text        not null default ''
		);
	`)
	if err != nil {
		return fmt.Errorf("creating runs table: %w", err)
	}
	return nil
}

func (s *Store) prepareStatement() error {
	stmt, err := s.Prepare(`
		insert into runs
			(id, started_at, wall_clock_seconds, final_virtual_time, status, deadlocked_actors, error_message)
		values (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	s.statement = stmt
	return nil
}

// Record buffers run for writing, flushing immediately once the batch fills.
func (s *Store) Record(run Run) error {
	s.runsToWrite = append(s.runsToWrite, run)
	if len(s.runsToWrite) >= s.batchSize {
		return s.Flush()
	}
	return nil
}

// Flush writes every buffered run to the database in a single transaction.
func (s *Store) Flush() error {
	if len(s.runsToWrite) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("beginning history transaction: %w", err)
	}

	stmt := tx.Stmt(s.statement)
	for _, run := range s.runsToWrite {
		deadlocked, err := json.Marshal(run.DeadlockedActors)
		if err != nil {
			return fmt.Errorf("marshalling deadlocked actors for run %s: %w", run.ID, err)
		}

		_, err = stmt.Exec(
			run.ID,
			run.StartedAt.Unix(),
			run.WallClockSeconds,
			float64(run.FinalVirtualTime),
			run.Status,
			string(deadlocked),
			run.ErrorMessage,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting run %s: %w", run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history transaction: %w", err)
	}

	s.runsToWrite = s.runsToWrite[:0]
	return nil
}

// Close flushes any buffered runs and closes the underlying database handle.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.DB.Close()
}

// RemoveFile deletes the backing SQLite file. Intended for tests, which
// create a throwaway history file per example and clean up after themselves.
func (s *Store) RemoveFile() error {
	if s.dbName == "" {
		return nil
	}
	return os.Remove(s.dbName)
}

// RecordResult builds a Run from the outcome of engine.Run and records it.
// started is the wall-clock time at which the run began; runErr is whatever
// engine.Run returned (nil on success).
func RecordResult(store *Store, id string, started time.Time, engine kernel.Engine, runErr error) error {
	run := Run{
		ID:               id,
		StartedAt:        started,
		WallClockSeconds: time.Since(started).Seconds(),
		FinalVirtualTime: engine.CurrentTime(),
		Status:           "completed",
	}

	switch e := runErr.(type) {
	case nil:
	case kernel.DeadlockError:
		run.Status = "deadlock"
		run.DeadlockedActors = e.BlockedActors
	default:
		run.Status = "error"
		run.ErrorMessage = runErr.Error()
	}

	return store.Record(run)
}
