package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/loomsim/loom/history"
	"github.com/loomsim/loom/kernel"
	"github.com/loomsim/loom/monitor"
	"github.com/loomsim/loom/replay"
	"github.com/loomsim/loom/simsync"
)

var (
	replayParallelism int
	replayMonitorPort int
	replayOpenBrowser bool
	replayHistoryDB   string
)

var replayCmd = &cobra.Command{
	Use:   "replay <trace-file>...",
	Short: "Replay a recorded action trace against a live simulation.",
	Long: `replay turns a plain-text trace of per-actor actions (sleep, lock,
unlock, wait, signal, broadcast, log) into a running simulation: one actor
is spawned per distinct actor name in the trace, and each actor's lines are
played back against the kernel in order.

If a single trace file is given, its lines are partitioned by the actor
identifier in their first column. If more than one is given, they are
concatenated first — the usual arrangement is one file per actor, but
lines from any file may name any actor.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().IntVar(&replayParallelism, "parallel", 0,
		"worker-pool size for the parallel engine; 0 uses the serial engine")
	replayCmd.Flags().IntVar(&replayMonitorPort, "monitor-port", 0,
		"start the introspection server on this port; 0 disables it")
	replayCmd.Flags().BoolVar(&replayOpenBrowser, "open", false,
		"open the monitor's status page in a browser once the server starts")
	replayCmd.Flags().StringVar(&replayHistoryDB, "history", "",
		"path to the run-history SQLite database; empty picks a fresh generated name")
}

func runReplay(_ *cobra.Command, args []string) {
	var lines []traceLine
	for _, path := range args {
		fileLines, err := readTraceLines(path)
		if err != nil {
			log.Fatalf("replay: %v", err)
		}
		lines = append(lines, fileLines...)
	}

	engine := buildEngine(replayParallelism)
	sim := kernel.NewSimulation(engine)

	mutexes, conds := provisionPrimitives(sim, lines)
	spawnActors(sim, lines, mutexes, conds)

	if replayMonitorPort > 0 {
		mon := monitor.New(sim).WithPortNumber(replayMonitorPort)
		mon.StartServer()

		if replayOpenBrowser {
			url := fmt.Sprintf("http://localhost:%d/api/now", replayMonitorPort)
			if err := browser.OpenURL(url); err != nil {
				log.Printf("replay: could not open browser: %v", err)
			}
		}
	}

	store, err := history.Open(replayHistoryDB)
	if err != nil {
		log.Fatalf("replay: opening history database: %v", err)
	}
	defer store.Close()

	started := time.Now()
	runErr := engine.Run()

	runID := xid.New().String()
	if err := history.RecordResult(store, runID, started, engine, runErr); err != nil {
		log.Printf("replay: recording run history: %v", err)
	}

	if runErr != nil {
		log.Printf("replay: simulation ended with an error (run %s): %v", runID, runErr)
		// atexit.Exit runs the history store's registered flush before
		// exiting; log.Fatalf would skip it and lose the run record.
		atexit.Exit(1)
	}

	fmt.Printf("replay: completed (run %s) at virtual time %v\n", runID, engine.CurrentTime())
}

func buildEngine(poolSize int) kernel.Engine {
	if poolSize > 0 {
		return kernel.NewParallelEngine(poolSize)
	}
	return kernel.NewSerialEngine()
}

// traceLine is one parsed line of the trace, kept around long enough to
// provision primitives and to rebuild each actor's own sub-trace.
type traceLine struct {
	actor string
	verb  string
	args  []string
	text  string
}

// readTraceLines parses one trace file. Every line still carries its own
// actor identifier in the first column regardless of which replay mode is
// in play: in single-file mode that column is how spawnActors partitions
// the one file across actors; in multi-file mode the lines from every file
// are concatenated before that same partitioning happens, so a file
// conventionally dedicated to one actor still works unchanged, and nothing
// stops a line from naming a different actor than the file it lives in.
func readTraceLines(path string) ([]traceLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace %q: %w", path, err)
	}
	defer f.Close()

	var lines []traceLine
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		fields := strings.Fields(raw)
		if len(fields) < 2 {
			return nil, fmt.Errorf("trace line %d: expected at least \"actor verb\", got %q", lineNo, raw)
		}

		lines = append(lines, traceLine{
			actor: fields[0],
			verb:  fields[1],
			args:  fields[2:],
			text:  raw,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace %q: %w", path, err)
	}

	return lines, nil
}

// provisionPrimitives creates every mutex and condition variable the trace
// references before any actor is spawned, so the actors that reference them
// concurrently during the run never race to create them.
func provisionPrimitives(sim *kernel.Simulation, lines []traceLine) (map[string]*simsync.Mutex, map[string]*simsync.Cond) {
	mutexes := make(map[string]*simsync.Mutex)
	conds := make(map[string]*simsync.Cond)

	for _, l := range lines {
		switch l.verb {
		case "lock", "unlock":
			if len(l.args) > 0 {
				ensureMutex(sim, mutexes, l.args[0])
			}
		case "wait":
			if len(l.args) > 0 {
				ensureCond(sim, conds, l.args[0])
			}
			if len(l.args) > 1 {
				ensureMutex(sim, mutexes, l.args[1])
			}
		case "signal", "broadcast":
			if len(l.args) > 0 {
				ensureCond(sim, conds, l.args[0])
			}
		}
	}

	return mutexes, conds
}

func ensureMutex(sim *kernel.Simulation, mutexes map[string]*simsync.Mutex, name string) {
	if _, ok := mutexes[name]; !ok {
		mutexes[name] = simsync.NewMutex(sim, name)
	}
}

func ensureCond(sim *kernel.Simulation, conds map[string]*simsync.Cond, name string) {
	if _, ok := conds[name]; !ok {
		conds[name] = simsync.NewCond(sim, name)
	}
}

// spawnActors groups lines by actor name, preserving trace order, and
// spawns one actor per group that replays its own lines in isolation.
func spawnActors(sim *kernel.Simulation, lines []traceLine, mutexes map[string]*simsync.Mutex, conds map[string]*simsync.Cond) {
	order := make([]string, 0)
	grouped := make(map[string][]traceLine)

	for _, l := range lines {
		if _, ok := grouped[l.actor]; !ok {
			order = append(order, l.actor)
		}
		grouped[l.actor] = append(grouped[l.actor], l)
	}

	for _, name := range order {
		actorLines := grouped[name]
		sim.Spawn(name, makeReplayProc(actorLines, mutexes, conds), nil)
	}
}

func makeReplayProc(lines []traceLine, mutexes map[string]*simsync.Mutex, conds map[string]*simsync.Cond) kernel.ActorProc {
	var text strings.Builder
	for _, l := range lines {
		text.WriteString(l.text)
		text.WriteByte('\n')
	}

	return func(self *kernel.Actor) {
		player := replay.NewPlayer()

		player.Handle("sleep", func(a replay.Action) error {
			d, err := replay.ArgDuration(a, 0)
			if err != nil {
				return err
			}
			return simsync.SleepFor(self, d)
		})

		player.Handle("lock", func(a replay.Action) error {
			m, err := lookupMutex(mutexes, a)
			if err != nil {
				return err
			}
			return m.Lock(self)
		})

		player.Handle("unlock", func(a replay.Action) error {
			m, err := lookupMutex(mutexes, a)
			if err != nil {
				return err
			}
			return m.Unlock(self)
		})

		player.Handle("wait", func(a replay.Action) error {
			if len(a.Args) < 2 {
				return fmt.Errorf("line %d: wait requires a cond and a mutex name", a.Line)
			}
			c, ok := conds[a.Args[0]]
			if !ok {
				return fmt.Errorf("line %d: unknown condition variable %q", a.Line, a.Args[0])
			}
			m, ok := mutexes[a.Args[1]]
			if !ok {
				return fmt.Errorf("line %d: unknown mutex %q", a.Line, a.Args[1])
			}
			var err error
			var timeout kernel.Duration
			if len(a.Args) > 2 {
				timeout, err = replay.ArgDuration(a, 2)
				if err != nil {
					return err
				}
			}
			return c.Wait(self, m, timeout)
		})

		player.Handle("signal", func(a replay.Action) error {
			c, err := lookupCond(conds, a)
			if err != nil {
				return err
			}
			return c.Signal(self)
		})

		player.Handle("broadcast", func(a replay.Action) error {
			c, err := lookupCond(conds, a)
			if err != nil {
				return err
			}
			return c.Broadcast(self)
		})

		player.Handle("log", func(a replay.Action) error {
			log.Printf("%s: %s", self.Name(), strings.Join(a.Args, " "))
			return nil
		})

		if err := player.Run(strings.NewReader(text.String())); err != nil {
			log.Panicf("replay: actor %s: %v", self.Name(), err)
		}
	}
}

func lookupMutex(mutexes map[string]*simsync.Mutex, a replay.Action) (*simsync.Mutex, error) {
	if len(a.Args) == 0 {
		return nil, fmt.Errorf("line %d: %s requires a mutex name", a.Line, a.Verb)
	}
	m, ok := mutexes[a.Args[0]]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown mutex %q", a.Line, a.Args[0])
	}
	return m, nil
}

func lookupCond(conds map[string]*simsync.Cond, a replay.Action) (*simsync.Cond, error) {
	if len(a.Args) == 0 {
		return nil, fmt.Errorf("line %d: %s requires a condition variable name", a.Line, a.Verb)
	}
	c, ok := conds[a.Args[0]]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown condition variable %q", a.Line, a.Args[0])
	}
	return c, nil
}
