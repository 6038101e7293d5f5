package gc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/redis/go-redis/v9"
)

func newRunnerTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping gc runner integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRunnerRunsDriverUnderLock(t *testing.T) {
	client := newRunnerTestClient(t)

	depotRoot := t.TempDir()
	dep := depot.New(depotRoot)
	manifestPath := writeManifestWithEntry(t, t.TempDir(), "Foo", "abc123")
	driver := newTestDriver(t, dep, manifestPath, 24*time.Hour)

	runner := NewRunner(driver, client, depotRoot)
	runner.PollInterval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
