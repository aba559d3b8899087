package kernel

// Named is satisfied by anything a Simulation can register by name: actors,
// and (via the simsync package) mutexes and condition variables.
type Named interface {
	Name() string
}

// Simulation is the top-level registry an application builds before
// calling Engine.Run: it is how actors, mutexes, and condition variables
// get looked up by name later, by the replay harness and the monitor
// server alike. Grounded on sim/simulation.go's name-indexed component/port
// registry, generalized from components/ports to actors/mutexes/conds.
type Simulation struct {
	Engine Engine

	actors     []*Actor
	actorIndex map[string]int

	mutexes    []Named
	mutexIndex map[string]int
	conds      []Named
	condIndex  map[string]int
}

// NewSimulation creates a Simulation driven by engine.
func NewSimulation(engine Engine) *Simulation {
	return &Simulation{
		Engine:     engine,
		actorIndex: make(map[string]int),
		mutexIndex: make(map[string]int),
		condIndex:  make(map[string]int),
	}
}

// Spawn creates an actor named name running proc, registers it with both
// the simulation and the engine, and returns it. cleanup, if non-nil, runs
// once after proc returns or is stopped, before the actor is marked
// terminated.
func (s *Simulation) Spawn(name string, proc ActorProc, cleanup func()) *Actor {
	if _, exists := s.actorIndex[name]; exists {
		panic(NoStateError{Kind: "duplicate actor name", Name: name})
	}

	a := NewActor(name, s.Engine, proc, cleanup)
	s.actorIndex[name] = len(s.actors)
	s.actors = append(s.actors, a)

	s.Engine.SpawnActor(a)
	return a
}

// SpawnPool spawns count actors named via BuildNameWithIndex(parentName,
// elementName, i) for i in [0, count), running makeProc(i) for the i-th
// member. It returns the spawned actors in index order. Grounded on the
// sim package's pattern of instantiating indexed component pools (e.g.
// "GPU.SM[3]") from a single factory call.
func (s *Simulation) SpawnPool(parentName, elementName string, count int, makeProc func(index int) ActorProc, cleanup func()) []*Actor {
	actors := make([]*Actor, count)
	for i := 0; i < count; i++ {
		name := BuildNameWithIndex(parentName, elementName, i)
		actors[i] = s.Spawn(name, makeProc(i), cleanup)
	}
	return actors
}

// Actor returns the actor registered under name, or an error satisfying
// NoStateError if none exists.
func (s *Simulation) Actor(name string) (*Actor, error) {
	i, ok := s.actorIndex[name]
	if !ok {
		return nil, NoStateError{Kind: "actor", Name: name}
	}
	return s.actors[i], nil
}

// Actors returns every actor registered with the simulation, in spawn
// order.
func (s *Simulation) Actors() []*Actor {
	out := make([]*Actor, len(s.actors))
	copy(out, s.actors)
	return out
}

// RegisterMutex records m under name so it can later be looked up by
// Mutex. Called by simsync.NewMutex.
func (s *Simulation) RegisterMutex(name string, m Named) {
	if _, exists := s.mutexIndex[name]; exists {
		panic(NoStateError{Kind: "duplicate mutex name", Name: name})
	}
	s.mutexIndex[name] = len(s.mutexes)
	s.mutexes = append(s.mutexes, m)
}

// Mutex returns the mutex registered under name.
func (s *Simulation) Mutex(name string) (Named, error) {
	i, ok := s.mutexIndex[name]
	if !ok {
		return nil, NoStateError{Kind: "mutex", Name: name}
	}
	return s.mutexes[i], nil
}

// RegisterCond records c under name so it can later be looked up by Cond.
// Called by simsync.NewCond.
func (s *Simulation) RegisterCond(name string, c Named) {
	if _, exists := s.condIndex[name]; exists {
		panic(NoStateError{Kind: "duplicate condition variable name", Name: name})
	}
	s.condIndex[name] = len(s.conds)
	s.conds = append(s.conds, c)
}

// Cond returns the condition variable registered under name.
func (s *Simulation) Cond(name string) (Named, error) {
	i, ok := s.condIndex[name]
	if !ok {
		return nil, NoStateError{Kind: "condition variable", Name: name}
	}
	return s.conds[i], nil
}
