// Package monitor turns a running simulation into an HTTP server that
// external tooling can inspect and control: pause/continue the maestro,
// read the current simulated time, list actors and their states, inspect mutex/condition-variable wait queues, capture a CPU
// profile, and read an actor's field values live.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/loomsim/loom/kernel"
	"github.com/loomsim/loom/simsync"
)

// Monitor exposes a *kernel.Simulation over HTTP.
type Monitor struct {
	sim        *kernel.Simulation
	portNumber int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// New creates a Monitor over sim.
func New(sim *kernel.Simulation) *Monitor {
	return &Monitor{sim: sim}
}

// WithPortNumber sets the port the monitor listens on. Ports below 1000
// are refused (they are reserved for the host OS) in favor of a random
// port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"port %d is not allowed for the monitoring server, using a random port instead\n",
			portNumber)
		portNumber = 0
	}
	m.portNumber = portNumber
	return m
}

// CreateProgressBar creates a new progress bar tracked by the monitor.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:    kernel.GetIDGenerator().Generate(),
		Name:  name,
		Total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()
	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes bar from the set the monitor reports.
func (m *Monitor) CompleteProgressBar(bar *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	kept := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != bar {
			kept = append(kept, b)
		}
	}
	m.progressBars = kept
}

// StartServer starts the monitor as a background HTTP server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/actors", m.listActors)
	r.HandleFunc("/api/actor/{name}/field/{path}", m.actorField)
	r.HandleFunc("/api/mutex/{name}", m.mutexStatus)
	r.HandleFunc("/api/cond/{name}", m.condStatus)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(os.Stderr, "monitoring simulation at http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		dieOnErr(http.Serve(listener, r))
	}()
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.sim.Engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.sim.Engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%.10f}", m.sim.Engine.CurrentTime())
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		if err := m.sim.Engine.Run(); err != nil {
			panic(err)
		}
	}()
}

type actorRsp struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

func (m *Monitor) listActors(w http.ResponseWriter, _ *http.Request) {
	actors := m.sim.Actors()
	rsp := make([]actorRsp, len(actors))
	for i, a := range actors {
		rsp[i] = actorRsp{Name: a.Name(), State: a.State().String()}
	}

	b, err := json.Marshal(rsp)
	dieOnErr(err)
	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) actorField(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	path := mux.Vars(r)["path"]

	actor, err := m.sim.Actor(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, err.Error())
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(actor)
	serializer.SetMaxDepth(1)

	if path != "" && path != "-" {
		err = serializer.SetEntryPoint(strings.Split(path, "."))
		dieOnErr(err)
	}

	dieOnErr(serializer.Serialize(w))
}

type mutexRsp struct {
	Name    string   `json:"name"`
	Locked  bool     `json:"locked"`
	Waiters []string `json:"waiters"`
}

func (m *Monitor) mutexStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	named, err := m.sim.Mutex(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, err.Error())
		return
	}

	mu := named.(*simsync.Mutex)
	rsp := mutexRsp{Name: name, Locked: mu.Locked(), Waiters: mu.WaiterNames()}

	b, err := json.Marshal(rsp)
	dieOnErr(err)
	_, err = w.Write(b)
	dieOnErr(err)
}

type condRsp struct {
	Name    string   `json:"name"`
	Waiters []string `json:"waiters"`
}

func (m *Monitor) condStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	named, err := m.sim.Cond(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, err.Error())
		return
	}

	cond := named.(*simsync.Cond)
	rsp := condRsp{Name: name, Waiters: cond.WaiterNames()}

	b, err := json.Marshal(rsp)
	dieOnErr(err)
	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	b, err := json.Marshal(m.progressBars)
	m.progressBarsLock.Unlock()
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	b, err := json.Marshal(resourceRsp{CPUPercent: cpuPercent, MemorySize: memInfo.RSS})
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	dieOnErr(pprof.StartCPUProfile(buf))
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	b, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
