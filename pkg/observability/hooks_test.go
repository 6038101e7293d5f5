package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	g := NoopGCHooks{}
	g.OnSweepStart(ctx, "/env/Project.toml")
	g.OnSweepComplete(ctx, "/env/Project.toml", 3, time.Second, nil)
	g.OnOrphaned(ctx, "artifacts", "abc123")

	p := NoopPrecompileHooks{}
	p.OnPackageStart(ctx, "Foo")
	p.OnPackageComplete(ctx, "Foo", time.Second, nil)
	p.OnCircular(ctx, []string{"Foo", "Bar"})
	p.OnSuspended(ctx, "Foo")

	d := NoopDispatcherHooks{}
	d.OnMutationStart(ctx, "add", "/env/Project.toml")
	d.OnMutationComplete(ctx, "add", "/env/Project.toml", time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := GC().(NoopGCHooks); !ok {
		t.Error("GC() should return NoopGCHooks by default")
	}
	if _, ok := Precompile().(NoopPrecompileHooks); !ok {
		t.Error("Precompile() should return NoopPrecompileHooks by default")
	}
	if _, ok := Dispatcher().(NoopDispatcherHooks); !ok {
		t.Error("Dispatcher() should return NoopDispatcherHooks by default")
	}

	customGC := &testGCHooks{}
	SetGCHooks(customGC)
	if GC() != customGC {
		t.Error("SetGCHooks should set custom hooks")
	}

	customPrecompile := &testPrecompileHooks{}
	SetPrecompileHooks(customPrecompile)
	if Precompile() != customPrecompile {
		t.Error("SetPrecompileHooks should set custom hooks")
	}

	customDispatcher := &testDispatcherHooks{}
	SetDispatcherHooks(customDispatcher)
	if Dispatcher() != customDispatcher {
		t.Error("SetDispatcherHooks should set custom hooks")
	}

	Reset()
	if _, ok := GC().(NoopGCHooks); !ok {
		t.Error("Reset() should restore NoopGCHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testGCHooks{}
	SetGCHooks(custom)

	SetGCHooks(nil)

	if GC() != custom {
		t.Error("SetGCHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testGCHooks struct{ NoopGCHooks }
type testPrecompileHooks struct{ NoopPrecompileHooks }
type testDispatcherHooks struct{ NoopDispatcherHooks }
