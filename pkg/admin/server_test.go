package admin

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/ops"
	"github.com/ravelin-dev/depotctl/pkg/undo"
)

func newTestDispatcher(t *testing.T) *ops.Dispatcher {
	t.Helper()
	dir := t.TempDir()
	dep := depot.New(t.TempDir())
	if err := dep.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	rt := ops.NewRuntime(manifest.TOMLCodec{}, []*depot.Depot{dep}, nil, undo.NewLog(nil))
	rt.SetActiveProject(filepath.Join(dir, "Project.toml"))
	return &ops.Dispatcher{Runtime: rt}
}

func TestServerStatus(t *testing.T) {
	d := newTestDispatcher(t)
	s := New(d, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServerGC(t *testing.T) {
	d := newTestDispatcher(t)
	s := New(d, nil)

	req := httptest.NewRequest(http.MethodPost, "/gc", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
