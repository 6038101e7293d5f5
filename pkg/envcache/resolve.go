package envcache

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/pkgid"
	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// ResolveProjectDeps fills in each spec's missing uuid from its name, or
// missing name from its uuid, by consulting the project's direct
// dependency map. Specs that already carry both fields pass through
// unchanged; the input slice is never mutated.
func (c *Cache) ResolveProjectDeps(specs []specvalidate.Spec) ([]specvalidate.Spec, error) {
	out := specvalidate.CloneAll(specs)
	for i := range out {
		if err := c.resolveAgainstProject(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Cache) resolveAgainstProject(s *specvalidate.Spec) error {
	switch {
	case s.HasName && !s.HasUUID:
		raw, ok := c.Project.Deps[s.Name]
		if !ok {
			return deperrors.New(deperrors.CodeUnresolvedSpec, "%s not found in project dependencies", s.Name)
		}
		u, err := pkgid.ParseUUID(raw)
		if err != nil {
			return deperrors.Wrap(deperrors.CodeUnresolvedSpec, err, "project dependency %s has an invalid uuid", s.Name)
		}
		s.UUID, s.HasUUID = u, true
	case !s.HasName && s.HasUUID:
		name, ambiguous := lookupNameByUUID(c.Project.Deps, s.UUID)
		if ambiguous {
			return deperrors.New(deperrors.CodeUnresolvedSpec, "%s is ambiguous: multiple names in project dependencies share this uuid", s.UUID)
		}
		if name == "" {
			return deperrors.New(deperrors.CodeUnresolvedSpec, "%s not found in project dependencies", s.UUID)
		}
		s.Name, s.HasName = name, true
	}
	return nil
}

// ResolveManifest is ResolveProjectDeps's counterpart scoped to the
// manifest rather than the project: uuids are manifest keys, so the
// uuid→name direction is a direct lookup and the name→uuid direction is
// the one that can turn up an ambiguous match.
func (c *Cache) ResolveManifest(specs []specvalidate.Spec) ([]specvalidate.Spec, error) {
	out := specvalidate.CloneAll(specs)
	for i := range out {
		if err := c.resolveAgainstManifest(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Cache) resolveAgainstManifest(s *specvalidate.Spec) error {
	switch {
	case s.HasUUID && !s.HasName:
		entry, ok := c.Manifest.Entries[s.UUID.String()]
		if !ok {
			return deperrors.New(deperrors.CodeUnresolvedSpec, "%s not found in manifest", s.UUID)
		}
		s.Name, s.HasName = entry.Name, true
	case s.HasName && !s.HasUUID:
		key, ambiguous := lookupUUIDByName(c.Manifest.Entries, s.Name)
		if ambiguous {
			return deperrors.New(deperrors.CodeUnresolvedSpec, "%s is ambiguous: multiple manifest entries share this name", s.Name)
		}
		if key == "" {
			return deperrors.New(deperrors.CodeUnresolvedSpec, "%s not found in manifest", s.Name)
		}
		u, err := pkgid.ParseUUID(key)
		if err != nil {
			return deperrors.Wrap(deperrors.CodeUnresolvedSpec, err, "manifest entry %s has an invalid uuid key", s.Name)
		}
		s.UUID, s.HasUUID = u, true
	}
	return nil
}

// EnsureResolved is the terminal check: every spec must now carry a
// uuid, or the call fails listing every offender by name (or as
// "<unnamed>", for a spec that has neither).
func EnsureResolved(specs []specvalidate.Spec) error {
	var offenders []string
	for _, s := range specs {
		if s.HasUUID {
			continue
		}
		switch {
		case s.HasName:
			offenders = append(offenders, s.Name)
		default:
			offenders = append(offenders, "<unnamed>")
		}
	}
	if len(offenders) == 0 {
		return nil
	}
	sort.Strings(offenders)
	return deperrors.New(deperrors.CodeUnresolvedSpec, "unresolved specs: %s", strings.Join(offenders, ", "))
}

func lookupNameByUUID(deps map[string]string, target uuid.UUID) (name string, ambiguous bool) {
	wanted := target.String()
	for n, raw := range deps {
		if raw == wanted {
			if name != "" {
				return name, true
			}
			name = n
		}
	}
	return name, false
}

func lookupUUIDByName(entries map[string]manifest.Entry, name string) (key string, ambiguous bool) {
	for k, e := range entries {
		if e.Name == name {
			if key != "" {
				return key, true
			}
			key = k
		}
	}
	return key, false
}
