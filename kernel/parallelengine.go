package kernel

import "runtime"

// ParallelEngine is the maestro variant that resumes a round's runnable
// actors across a fixed-size worker pool (spec §4.1, §4.3, §9). It is
// grounded on sim/parallelengine.go's waitGroup-barrier worker pool,
// generalized here to actor contexts instead of per-event temp workers.
//
// Only actor execution is parallelized: event dispatch, clock advancement,
// and ready-list draining all still happen on the single goroutine that
// calls Run, exactly as they do in SerialEngine. That is what keeps the
// two engines observationally identical to actor code (spec §9) — the
// worker pool is strictly a wall-clock optimization over how a round's
// RunAll step is carried out.
type ParallelEngine struct {
	*baseEngine
}

// NewParallelEngine creates a ParallelEngine with poolSize workers. A
// poolSize of 0 defaults to runtime.GOMAXPROCS(0).
func NewParallelEngine(poolSize int) *ParallelEngine {
	if poolSize <= 0 {
		poolSize = runtime.GOMAXPROCS(0)
	}

	e := &ParallelEngine{}
	e.baseEngine = newBaseEngine(NewParallelContextFactory(poolSize))
	return e
}

// Run implements Engine.
func (e *ParallelEngine) Run() error {
	return e.run()
}
