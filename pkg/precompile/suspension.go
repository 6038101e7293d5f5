package precompile

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
)

// SuspensionKey identifies one persisted suspension list: a given
// runtime version running against a given active project.
type SuspensionKey struct {
	ProjectPath    string
	RuntimeVersion string
}

func (k SuspensionKey) filename() string {
	sum := sha1.Sum([]byte(k.ProjectPath + "\x00" + k.RuntimeVersion))
	return hex.EncodeToString(sum[:]) + ".toml"
}

// SuspensionStore persists the set of package keys suspended for a
// given (active-project-path, runtime-version) pair across scheduler
// runs.
type SuspensionStore interface {
	Load(ctx context.Context, key SuspensionKey) (map[string]bool, error)
	Save(ctx context.Context, key SuspensionKey, suspended map[string]bool) error
	Clear(ctx context.Context, key SuspensionKey) error
}

// FileSuspensionStore persists suspension lists as TOML files under Dir,
// one per SuspensionKey.
type FileSuspensionStore struct {
	Dir string
}

var _ SuspensionStore = FileSuspensionStore{}

type onDiskSuspension struct {
	Suspended []string `toml:"suspended"`
}

func (s FileSuspensionStore) path(key SuspensionKey) string {
	return filepath.Join(s.Dir, key.filename())
}

// Load reads the suspension set for key. A missing file is treated as
// an empty set.
func (s FileSuspensionStore) Load(_ context.Context, key SuspensionKey) (map[string]bool, error) {
	var disk onDiskSuspension
	path := s.path(key)
	if _, err := toml.DecodeFile(path, &disk); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]bool), nil
		}
		return nil, deperrors.Wrap(deperrors.CodeParseFailure, err, "parse suspension list %s", path)
	}
	out := make(map[string]bool, len(disk.Suspended))
	for _, k := range disk.Suspended {
		out[k] = true
	}
	return out, nil
}

// Save persists suspended atomically, sorted for a stable diff.
func (s FileSuspensionStore) Save(_ context.Context, key SuspensionKey, suspended map[string]bool) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "create %s", s.Dir)
	}
	keys := make([]string, 0, len(suspended))
	for k := range suspended {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	path := s.path(key)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "create %s", tmp)
	}
	if err := toml.NewEncoder(f).Encode(onDiskSuspension{Suspended: keys}); err != nil {
		f.Close()
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "close %s", tmp)
	}
	return os.Rename(tmp, path)
}

// Clear removes the persisted suspension list for key, used when the
// user manually invokes precompile (as opposed to an auto-precompile
// following another operation), which always starts from a clean slate.
func (s FileSuspensionStore) Clear(_ context.Context, key SuspensionKey) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "remove %s", s.path(key))
	}
	return nil
}
