// Package precompile implements the parallel dependency-graph
// precompilation scheduler: cycle detection up front, then one
// concurrent task per package that waits on its dependencies'
// completion latches before doing its own staleness check and
// (possibly) invoking an external compile routine.
package precompile

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ravelin-dev/depotctl/pkg/dag"
	"github.com/ravelin-dev/depotctl/pkg/dag/transform"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
	"github.com/ravelin-dev/depotctl/pkg/observability"
	"github.com/ravelin-dev/depotctl/pkg/pkgid"
	"golang.org/x/sync/semaphore"
)

// State is one of the per-package states named in the scheduler design.
// Terminal states are every value other than Unstarted, Started, and
// Compiling.
type State int

const (
	StateUnstarted State = iota
	StateStarted
	StateCompiling
	StateCompiled
	StateFailed
	StatePrecompErr
	StateSkipped
	StateCircular
)

// Terminal reports whether s is a terminal state.
func (s State) Terminal() bool {
	return s != StateUnstarted && s != StateStarted && s != StateCompiling
}

// CompileFunc invokes the external, opaque compile routine for id. A
// CodePrecompilableLater error (see pkg/errors) is treated as
// retryable and does not suspend the package; any other error suspends
// it.
type CompileFunc func(ctx context.Context, id pkgid.ID) error

// StaleFunc asks the build system whether id's cached artefact is
// stale and needs recompilation.
type StaleFunc func(ctx context.Context, id pkgid.ID) (bool, error)

// pkgState is the per-package mutable state protected by its own
// mutex; the one-shot processed latch is safe to wait on without
// holding it.
type pkgState struct {
	mu         sync.Mutex
	started    bool
	recompiled bool
	state      State

	processedOnce sync.Once
	processed     chan struct{}
}

func newPkgState() *pkgState {
	return &pkgState{processed: make(chan struct{})}
}

func (p *pkgState) notifyProcessed(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	p.processedOnce.Do(func() { close(p.processed) })
}

func (p *pkgState) waitProcessed(ctx context.Context) error {
	select {
	case <-p.processed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pkgState) isRecompiled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recompiled
}

func (p *pkgState) setRecompiled() {
	p.mu.Lock()
	p.recompiled = true
	p.mu.Unlock()
}

func (p *pkgState) setStarted() {
	p.mu.Lock()
	p.started = true
	p.state = StateStarted
	p.mu.Unlock()
}

// Scheduler runs the precompile algorithm over a dependency map.
type Scheduler struct {
	DepsMap     map[pkgid.ID][]pkgid.ID
	DirectDeps  map[pkgid.ID]bool
	Compile     CompileFunc
	IsStale     StaleFunc
	Concurrency int64

	// Suspended is the persistent set of package keys (pkgid.ID.Key())
	// that errored on a previous run. The scheduler reads it to decide
	// whether to skip, and returns an updated copy reflecting this run's
	// outcome; callers are responsible for persisting it via
	// SuspensionStore.
	Suspended map[string]bool
}

// Result summarises one scheduler run.
type Result struct {
	Compiled        []pkgid.ID
	Failed          map[pkgid.ID]string
	Skipped         []pkgid.ID
	PrecompErr      []pkgid.ID
	Circular        []pkgid.ID
	Suspended       map[string]bool
	NDone           int
	NAlreadyPrecomp int
}

// Run executes the scheduler to completion, or until ctx is cancelled.
// Cancellation is cooperative: tasks already compiling run to
// completion, but no new task acquires a permit once cancelled, and
// every task still reaches a terminal state.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}

	circular := DetectCircular(s.DepsMap)

	states := make(map[pkgid.ID]*pkgState, len(s.DepsMap))
	for id := range s.DepsMap {
		states[id] = newPkgState()
	}

	suspended := make(map[string]bool, len(s.Suspended))
	for k := range s.Suspended {
		suspended[k] = true
	}

	var mu sync.Mutex // guards the shared result fields below, mirroring the print-lock
	result := &Result{Failed: make(map[pkgid.ID]string)}

	for id := range circular {
		st := states[id]
		st.notifyProcessed(StateCircular)
		mu.Lock()
		result.Circular = append(result.Circular, id)
		mu.Unlock()
		suspended[id.Key()] = true
	}
	if len(circular) > 0 {
		names := make([]string, 0, len(circular))
		for id := range circular {
			names = append(names, id.Key())
		}
		sort.Strings(names)
		observability.Precompile().OnCircular(ctx, names)
	}

	sem := semaphore.NewWeighted(s.Concurrency)
	interruptedOrDone := make(chan struct{})
	var interruptOnce sync.Once
	closeInterrupted := func() { interruptOnce.Do(func() { close(interruptedOrDone) }) }

	go func() {
		select {
		case <-ctx.Done():
			closeInterrupted()
		case <-interruptedOrDone:
		}
	}()

	var live int64
	for id := range s.DepsMap {
		if !circular[id] {
			live++
		}
	}
	var liveCounter atomic.Int64
	liveCounter.Store(live)
	if live == 0 {
		closeInterrupted()
	}

	var wg sync.WaitGroup
	for id := range s.DepsMap {
		if circular[id] {
			continue
		}
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runPackage(ctx, id, states, sem, interruptedOrDone, suspended, &mu, result)
			if liveCounter.Add(-1) == 0 {
				closeInterrupted()
			}
		}()
	}
	wg.Wait()

	result.Suspended = suspended
	return result, nil
}

func (s *Scheduler) runPackage(
	ctx context.Context,
	id pkgid.ID,
	states map[pkgid.ID]*pkgState,
	sem *semaphore.Weighted,
	interruptedOrDone <-chan struct{},
	suspended map[string]bool,
	mu *sync.Mutex,
	result *Result,
) {
	st := states[id]

	// Step 1: wait on every dependency's processed latch. A cancelled
	// context during this wait still must terminate the package — it is
	// counted as skipped, not left dangling.
	depsRecompiled := false
	for _, dep := range s.DepsMap[id] {
		depState, ok := states[dep]
		if !ok {
			continue
		}
		if err := depState.waitProcessed(ctx); err != nil {
			st.notifyProcessed(StateSkipped)
			mu.Lock()
			result.Skipped = append(result.Skipped, id)
			mu.Unlock()
			return
		}
		if depState.isRecompiled() {
			depsRecompiled = true
		}
	}

	// Step 2: suspension check.
	mu.Lock()
	isSuspended := suspended[id.Key()]
	mu.Unlock()
	if isSuspended && !depsRecompiled {
		st.notifyProcessed(StateSkipped)
		mu.Lock()
		result.Skipped = append(result.Skipped, id)
		mu.Unlock()
		return
	}

	// Step 3: staleness check.
	stale := depsRecompiled
	if !stale && s.IsStale != nil {
		isStale, err := s.IsStale(ctx, id)
		if err != nil {
			stale = true
		} else {
			stale = isStale
		}
	}
	if !stale {
		st.notifyProcessed(StateCompiled)
		mu.Lock()
		result.NAlreadyPrecomp++
		delete(suspended, id.Key())
		mu.Unlock()
		return
	}

	// Step 4: acquire a permit, unless already interrupted.
	select {
	case <-interruptedOrDone:
		st.notifyProcessed(StateSkipped)
		mu.Lock()
		result.Skipped = append(result.Skipped, id)
		mu.Unlock()
		return
	default:
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		st.notifyProcessed(StateSkipped)
		mu.Lock()
		result.Skipped = append(result.Skipped, id)
		mu.Unlock()
		return
	}
	st.setStarted()
	defer sem.Release(1)

	// Step 5: invoke the external compile routine.
	observability.Precompile().OnPackageStart(ctx, id.Key())
	compileStart := time.Now()
	err := s.Compile(ctx, id)
	observability.Precompile().OnPackageComplete(ctx, id.Key(), time.Since(compileStart), err)
	mu.Lock()
	result.NDone++
	mu.Unlock()

	switch {
	case err == nil:
		st.setRecompiled()
		st.notifyProcessed(StateCompiled)
		mu.Lock()
		result.Compiled = append(result.Compiled, id)
		delete(suspended, id.Key())
		mu.Unlock()
	case deperrors.GetCode(err) == deperrors.CodePrecompilableLater:
		st.notifyProcessed(StatePrecompErr)
		mu.Lock()
		result.PrecompErr = append(result.PrecompErr, id)
		mu.Unlock()
	default:
		st.notifyProcessed(StateFailed)
		mu.Lock()
		suspended[id.Key()] = true
		if s.DirectDeps[id] {
			result.Failed[id] = err.Error()
		}
		mu.Unlock()
		observability.Precompile().OnSuspended(ctx, id.Key())
	}
}

// DetectCircular builds a *dag.DAG from depsMap, keyed by pkgid.ID.Key(),
// and runs the same DFS depotctl graph uses to highlight circular
// packages, mapping the result back to pkgid.ID.
func DetectCircular(depsMap map[pkgid.ID][]pkgid.ID) map[pkgid.ID]bool {
	byKey := make(map[string]pkgid.ID, len(depsMap))
	for id := range depsMap {
		byKey[id.Key()] = id
	}

	ids := make([]pkgid.ID, 0, len(depsMap))
	for id := range depsMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Key() < ids[j].Key() })

	g := dag.New(nil)
	for _, id := range ids {
		_ = g.AddNode(dag.Node{ID: id.Key(), Row: 0})
	}
	for _, id := range ids {
		for _, dep := range depsMap[id] {
			if _, ok := byKey[dep.Key()]; !ok {
				continue
			}
			_ = g.AddEdge(dag.Edge{From: id.Key(), To: dep.Key()})
		}
	}

	cyclicKeys := transform.DetectCycles(g)
	cyclic := make(map[pkgid.ID]bool, len(cyclicKeys))
	for key := range cyclicKeys {
		cyclic[byKey[key]] = true
	}
	return cyclic
}
