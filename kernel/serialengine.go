package kernel

// SerialEngine is the maestro variant that resumes actors one at a time on
// its own goroutine (spec §4.1, §4.3). It is grounded on
// sim/serialengine.go's single-threaded "pop, dispatch, repeat" loop,
// generalized here to actors and simcalls instead of events and
// components.
type SerialEngine struct {
	*baseEngine
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	e := &SerialEngine{}
	e.baseEngine = newBaseEngine(NewSerialContextFactory())
	return e
}

// Run implements Engine.
func (e *SerialEngine) Run() error {
	return e.run()
}
