// Package replay runs a simulation from a recorded text trace instead of
// live actor code, so a run can be reproduced deterministically for
// debugging without re-executing the application that produced it.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/loomsim/loom/kernel"
)

// Action is one parsed line of a trace: an actor name, the simcall it
// issued, and whatever arguments followed it on the line.
type Action struct {
	Line  int
	Actor string
	Verb  string
	Args  []string
}

// Handler reacts to a single Action, typically by issuing the
// corresponding simsync or afuture call against the actor it names.
type Handler func(a Action) error

// Player replays a trace by dispatching each Action it parses to a
// per-verb Handler.
type Player struct {
	handlers map[string]Handler
}

// NewPlayer creates an empty Player. Register verb handlers with Handle
// before calling Run.
func NewPlayer() *Player {
	return &Player{handlers: make(map[string]Handler)}
}

// Handle registers fn to run whenever a line's verb matches verb.
func (p *Player) Handle(verb string, fn Handler) {
	p.handlers[verb] = fn
}

// Run reads trace line by line and dispatches each non-blank,
// non-comment line to its registered handler. Lines are whitespace
// tokenized; the first token is the actor name, the second the verb, and
// the rest are passed through as Args. A line naming a verb with no
// registered handler aborts the replay with an error — a trace must be
// fully understood or not replayed at all, never partially applied.
func (p *Player) Run(trace io.Reader) error {
	scanner := bufio.NewScanner(trace)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return fmt.Errorf("replay: line %d: expected at least \"actor verb\", got %q", lineNo, line)
		}

		action := Action{
			Line:  lineNo,
			Actor: fields[0],
			Verb:  fields[1],
			Args:  fields[2:],
		}

		handler, ok := p.handlers[action.Verb]
		if !ok {
			return fmt.Errorf("replay: line %d: no handler registered for verb %q", lineNo, action.Verb)
		}

		if err := handler(action); err != nil {
			return fmt.Errorf("replay: line %d: %w", lineNo, err)
		}
	}

	return scanner.Err()
}

// ArgDuration parses Args[i] as a kernel.Duration, in seconds.
func ArgDuration(a Action, i int) (kernel.Duration, error) {
	if i >= len(a.Args) {
		return 0, fmt.Errorf("replay: line %d: expected an argument at position %d", a.Line, i)
	}
	f, err := strconv.ParseFloat(a.Args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("replay: line %d: %w", a.Line, err)
	}
	return kernel.Duration(f), nil
}
