package executables

import (
	"sync"

	"github.com/aurae-runtime/aurae/pkg/shutdown"
)

// Executables is a per-cell registry of running Executable instances,
// keyed by name. Start, Stop, and BroadcastStop are mutually exclusive.
type Executables struct {
	mu    sync.Mutex
	hub   *Hub
	procs map[Name]*Executable
	bcast *shutdown.Broadcaster
}

// New returns an empty Executables registry. bcast may be nil, in which
// case a spawned executable is only ever killed by an explicit Stop or
// BroadcastStop call; when non-nil, every executable this registry
// starts also subscribes to bcast, so a process-wide shutdown kills it
// even if nothing ever calls Stop on it directly.
func New(bcast *shutdown.Broadcaster) *Executables {
	return &Executables{hub: NewHub(), procs: make(map[Name]*Executable), bcast: bcast}
}

// Hub returns the registry's broadcast hub, so callers (e.g. an RPC
// stream handler) can subscribe to a running executable's output.
func (es *Executables) Hub() *Hub { return es.hub }

// Start validates spec, rejects a duplicate name, spawns the process, and
// registers it. On any spawn failure no entry is left in the registry.
func (es *Executables) Start(spec Spec) (*Executable, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if _, exists := es.procs[spec.Name]; exists {
		return nil, wrap(KindExists, string(spec.Name), nil)
	}

	exe := newExecutable(spec, es.hub)
	if err := exe.Start(); err != nil {
		return nil, wrap(KindFailedToStart, string(spec.Name), err)
	}

	es.procs[spec.Name] = exe

	if es.bcast != nil {
		ch, done := es.bcast.Subscribe()
		go func() {
			<-ch
			_, _ = exe.Kill()
			done()
		}()
	}

	return exe, nil
}

// Get returns the named executable, if present.
func (es *Executables) Get(name Name) (*Executable, bool) {
	es.mu.Lock()
	defer es.mu.Unlock()
	exe, ok := es.procs[name]
	return exe, ok
}

// List returns every currently registered executable. Order is
// unspecified but stable within a single call.
func (es *Executables) List() []*Executable {
	es.mu.Lock()
	defer es.mu.Unlock()
	out := make([]*Executable, 0, len(es.procs))
	for _, exe := range es.procs {
		out = append(out, exe)
	}
	return out
}

// Stop kills the named executable, awaits its exit, records the exit
// status, and removes it from the registry regardless of outcome. If the
// executable was never started (absent from the registry), Stop reports
// ExecutableNotFound.
func (es *Executables) Stop(name Name) (ExitStatus, error) {
	es.mu.Lock()
	exe, ok := es.procs[name]
	if ok {
		delete(es.procs, name)
	}
	es.mu.Unlock()

	if !ok {
		return ExitStatus{}, wrap(KindNotFound, string(name), nil)
	}

	return exe.Kill()
}

// BroadcastStop concurrently kills every registered executable and clears
// the registry, ignoring per-entry errors, for use during cell teardown.
func (es *Executables) BroadcastStop() {
	es.mu.Lock()
	procs := es.procs
	es.procs = make(map[Name]*Executable)
	es.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(procs))
	for _, exe := range procs {
		exe := exe
		go func() {
			defer wg.Done()
			_, _ = exe.Kill()
		}()
	}
	wg.Wait()
}
