package monitor

import (
	"sync"
	"time"
)

// ProgressBar tracks the progress of a long-running piece of simulation
// setup or teardown work (e.g. loading a trace), for display by external
// tooling polling /api/progress.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds amount to the in-progress count.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()
	b.InProgress += amount
}

// IncrementFinished adds amount to the finished count.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()
	b.Finished += amount
}

// MoveInProgressToFinished reduces in-progress and increases finished by
// the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()
	b.InProgress -= amount
	b.Finished += amount
}
