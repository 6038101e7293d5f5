package gc

import (
	"context"
	"time"

	"github.com/ravelin-dev/depotctl/pkg/lock"
	"github.com/redis/go-redis/v9"
)

// Runner wraps a Driver with the distributed lock guaranteeing a single
// GC sweep runs per environment at a time, even across processes.
// GC, Undo, and Environment Cache all rely on this "single task at a
// time per environment" promise; nothing in depotctl assumes
// cross-operation concurrency within one environment.
type Runner struct {
	Driver       *Driver
	Lock         *lock.Lock
	LockTTL      time.Duration
	PollInterval time.Duration
}

// NewRunner builds a Runner whose lock key namespaces by environment
// path, so GC sweeps for different environments never contend.
func NewRunner(driver *Driver, client *redis.Client, environmentPath string) *Runner {
	return &Runner{
		Driver:       driver,
		Lock:         lock.New(client, "depotctl:gc:"+environmentPath),
		LockTTL:      10 * time.Minute,
		PollInterval: 200 * time.Millisecond,
	}
}

// Run acquires the environment's lock, runs the sweep, and releases the
// lock before returning. If the lock cannot be acquired before ctx is
// cancelled, ctx.Err() is returned and the driver never runs.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report
	err := lock.WithLock(ctx, r.Lock, r.LockTTL, r.PollInterval, func(ctx context.Context) error {
		var runErr error
		report, runErr = r.Driver.Run(ctx)
		return runErr
	})
	return report, err
}
