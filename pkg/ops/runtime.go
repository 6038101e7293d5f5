package ops

import (
	"context"
	"io"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/precompile"
	"github.com/ravelin-dev/depotctl/pkg/undo"
)

// envPrecompileAuto and envPrecompileTasks are the two environment
// variables spec.md §6 names. They are read once, at Runtime
// construction, and never again — nothing below this layer calls
// os.Getenv directly (design notes §9's "global mutable state" recast).
const (
	envPrecompileAuto  = "JULIA_PKG_PRECOMPILE_AUTO"
	envPrecompileTasks = "JULIA_NUM_PRECOMPILE_TASKS"
)

// Runtime is the process-wide mutable state design notes §9 calls out for
// recasting as an explicit value: the active project path, the
// persistent suspended-package list's storage, the undo history, and the
// default output sink. It is threaded explicitly through every
// Dispatcher call rather than held in package-level globals.
type Runtime struct {
	mu                sync.Mutex
	activeProjectPath string

	Codec           manifest.ProjectCodec
	UndoLog         *undo.Log
	SuspensionStore precompile.SuspensionStore
	RuntimeVersion  string

	// Depots is the search path of shared depots consulted for content
	// and usage-ledger writes, first entry primary. GC and instantiate
	// consult all of them; only the primary receives new writes.
	Depots []*depot.Depot

	PrecompileAuto        bool
	PrecompileConcurrency int64

	// Locker, when set, is used to acquire the distributed per-environment
	// lock (spec.md §5) around GC sweeps so two processes never sweep the
	// same environment concurrently. Nil means single-process use only;
	// GC then runs unlocked.
	Locker *redis.Client

	// Stdout is the default output sink for status/progress text that
	// the dispatcher itself emits (as opposed to the CLI's own styled
	// printers, which write directly to os.Stdout). Defaults to
	// os.Stdout when nil.
	Stdout io.Writer
}

// NewRuntime builds a Runtime with JULIA_PKG_PRECOMPILE_AUTO and
// JULIA_NUM_PRECOMPILE_TASKS read from the environment once, matching
// spec.md §6's stated defaults (auto-precompile on, concurrency
// CPU_THREADS+1).
func NewRuntime(codec manifest.ProjectCodec, depots []*depot.Depot, suspensionStore precompile.SuspensionStore, undoLog *undo.Log) *Runtime {
	return &Runtime{
		Codec:                 codec,
		Depots:                depots,
		SuspensionStore:       suspensionStore,
		UndoLog:               undoLog,
		PrecompileAuto:        readBoolEnv(envPrecompileAuto, true),
		PrecompileConcurrency: readIntEnv(envPrecompileTasks, int64(runtime.NumCPU()+1)),
	}
}

func readBoolEnv(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n != 0
}

func readIntEnv(name string, def int64) int64 {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// PrimaryDepot returns the depot new content is written into, or nil if
// Runtime has no configured depot.
func (r *Runtime) PrimaryDepot() *depot.Depot {
	if len(r.Depots) == 0 {
		return nil
	}
	return r.Depots[0]
}

// ActiveProject returns the currently active project file path.
func (r *Runtime) ActiveProject() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeProjectPath
}

// SetActiveProject sets the active project file path directly, used at
// process startup before any scoped Activate call.
func (r *Runtime) SetActiveProject(path string) {
	r.mu.Lock()
	r.activeProjectPath = path
	r.mu.Unlock()
}

// Activate scopes a project activation for the duration of fn: it swaps
// in path as the active project, runs fn, and restores the previous
// active project on every exit path (including panic), matching design
// notes §9's "restores the previous active project on every exit path".
// Activate never creates a project file, even when path does not exist
// on disk — that is instantiate's job, called out of the given fn by the
// caller if it wants one.
func (r *Runtime) Activate(ctx context.Context, path string, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	previous := r.activeProjectPath
	r.activeProjectPath = path
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.activeProjectPath = previous
		r.mu.Unlock()
	}()

	return fn(ctx)
}

func (r *Runtime) out() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}
