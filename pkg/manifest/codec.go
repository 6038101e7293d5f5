package manifest

import (
	"os"

	"github.com/BurntSushi/toml"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
)

// ProjectCodec reads and writes project and manifest files. The core
// consumes this only through the interface; the default implementation
// below is backed by github.com/BurntSushi/toml.
type ProjectCodec interface {
	ReadProject(path string) (*Project, error)
	WriteProject(path string, p *Project) error
	ReadManifest(path string) (*Manifest, error)
	WriteManifest(path string, m *Manifest) error
}

// TOMLCodec is the default ProjectCodec, reading and writing the
// documented on-disk TOML layout.
type TOMLCodec struct{}

var _ ProjectCodec = TOMLCodec{}

// onDiskManifest is the wire shape for Manifest.toml: a table of entries
// keyed by uuid.
type onDiskManifest struct {
	Entries map[string]Entry `toml:"deps"`
}

func (TOMLCodec) ReadProject(path string) (*Project, error) {
	var p Project
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if os.IsNotExist(err) {
			return nil, deperrors.Wrap(deperrors.CodeIOFailure, err, "read project %s", path)
		}
		return nil, deperrors.Wrap(deperrors.CodeParseFailure, err, "parse project %s", path)
	}
	return &p, nil
}

func (TOMLCodec) WriteProject(path string, p *Project) error {
	return atomicWriteTOML(path, p)
}

func (TOMLCodec) ReadManifest(path string) (*Manifest, error) {
	var disk onDiskManifest
	if _, err := toml.DecodeFile(path, &disk); err != nil {
		if os.IsNotExist(err) {
			return nil, deperrors.Wrap(deperrors.CodeIOFailure, err, "read manifest %s", path)
		}
		return nil, deperrors.Wrap(deperrors.CodeParseFailure, err, "parse manifest %s", path)
	}
	if disk.Entries == nil {
		disk.Entries = make(map[string]Entry)
	}
	return &Manifest{Entries: disk.Entries}, nil
}

func (TOMLCodec) WriteManifest(path string, m *Manifest) error {
	return atomicWriteTOML(path, onDiskManifest{Entries: m.Entries})
}

// atomicWriteTOML writes v to path via a temp file + rename so a crash
// mid-write never leaves a truncated project or manifest file.
func atomicWriteTOML(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "create %s", tmp)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "rename %s to %s", tmp, path)
	}
	return nil
}
