package manifest

import (
	"os"

	"github.com/BurntSushi/toml"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
)

// ArtifactIndexEntry is one platform-scoped artifact reference recorded
// in a package's own Artifacts.toml: a tree-hash into artifacts/,
// independent of the package's own source tree-hash.
type ArtifactIndexEntry struct {
	TreeHash string `toml:"git-tree-sha1"`
	Platform string `toml:"platform,omitempty"`
}

// ArtifactIndex is the on-disk shape of a package's Artifacts.toml.
type ArtifactIndex struct {
	Artifacts []ArtifactIndexEntry `toml:"artifact"`
}

// ReadArtifactIndex reads path as an ArtifactIndex. A package without any
// binary artifacts simply has no Artifacts.toml; that absence is an
// IOFailure the caller is expected to treat the same way reachability
// marking treats any unreadable index file: inactive, not an error.
func ReadArtifactIndex(path string) (*ArtifactIndex, error) {
	var idx ArtifactIndex
	if _, err := toml.DecodeFile(path, &idx); err != nil {
		if os.IsNotExist(err) {
			return nil, deperrors.Wrap(deperrors.CodeIOFailure, err, "read artifact index %s", path)
		}
		return nil, deperrors.Wrap(deperrors.CodeParseFailure, err, "parse artifact index %s", path)
	}
	return &idx, nil
}

// WriteArtifactIndex atomically writes idx to path.
func WriteArtifactIndex(path string, idx *ArtifactIndex) error {
	return atomicWriteTOML(path, idx)
}
