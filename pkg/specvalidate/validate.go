package specvalidate

import (
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
)

// reservedName is never a valid package name: it collides with the
// runtime itself.
const reservedName = "julia"

// Options carries the caller context Validate needs beyond the spec list
// itself.
type Options struct {
	// ProjectSelfName is the active project's own name, if it is itself a
	// package. A spec naming the project itself is rejected.
	ProjectSelfName string
}

// Validate normalizes specs for op and rejects malformed input. It always
// returns a deep copy; the caller's slice and structs are never mutated.
func Validate(op Op, specs []Spec, opts Options) ([]Spec, error) {
	out := CloneAll(specs)

	switch op {
	case OpAdd:
		if err := validateAddOrDevelop(out, opts, false); err != nil {
			return nil, err
		}
	case OpDevelop:
		if err := validateAddOrDevelop(out, opts, true); err != nil {
			return nil, err
		}
	case OpRm, OpFree:
		if err := validateRmOrFree(out); err != nil {
			return nil, err
		}
	case OpPin:
		if err := validatePin(out); err != nil {
			return nil, err
		}
	case OpUp:
		// up accepts an empty spec list (meaning "all") or a name/uuid
		// filter list; no additional per-spec fields are disallowed.
	default:
		return nil, deperrors.New(deperrors.CodeInvalidSpec, "unknown operation %q", op)
	}

	return out, nil
}

func validateAddOrDevelop(specs []Spec, opts Options, develop bool) error {
	seenNames := make(map[string]bool, len(specs))
	seenUUIDs := make(map[string]bool, len(specs))

	for _, s := range specs {
		if s.HasName && s.Name == reservedName {
			return deperrors.New(deperrors.CodeInvalidSpec, "%s is not a valid package name", reservedName)
		}

		hasRepoSource := false
		if rt, ok := s.Tracking.(RepoTracking); ok {
			hasRepoSource = rt.Repo.Source != ""
			if develop && rt.Repo.Rev != "" {
				return deperrors.New(deperrors.CodeInvalidSpec, "rev argument not supported by develop")
			}
			if s.HasVersion {
				return deperrors.New(deperrors.CodeInvalidSpec, "version cannot be specified for a repo-tracked package")
			}
		}

		if !s.HasName && !s.HasUUID && !hasRepoSource {
			return deperrors.New(deperrors.CodeInvalidSpec, "a package spec must have a name, uuid, or repo source")
		}

		if s.HasName && opts.ProjectSelfName != "" && s.Name == opts.ProjectSelfName {
			return deperrors.New(deperrors.CodeInvalidSpec, "%s cannot depend on itself", s.Name)
		}

		if s.HasName {
			if seenNames[s.Name] {
				return deperrors.New(deperrors.CodeInvalidSpec, "duplicate package name %q in spec list", s.Name)
			}
			seenNames[s.Name] = true
		}
		if s.HasUUID {
			key := s.UUID.String()
			if seenUUIDs[key] {
				return deperrors.New(deperrors.CodeInvalidSpec, "duplicate package uuid %s in spec list", key)
			}
			seenUUIDs[key] = true
		}
	}
	return nil
}

func validateRmOrFree(specs []Spec) error {
	for _, s := range specs {
		if !s.HasName && !s.HasUUID {
			return deperrors.New(deperrors.CodeInvalidSpec, "packages may only be specified by name or UUID")
		}
		if s.HasVersion || s.Pinned || s.TreeHash != "" || s.Tracking != nil {
			return deperrors.New(deperrors.CodeInvalidSpec, "packages may only be specified by name or UUID")
		}
	}
	return nil
}

func validatePin(specs []Spec) error {
	for _, s := range specs {
		if _, ok := s.Tracking.(RepoTracking); ok {
			return deperrors.New(deperrors.CodeInvalidSpec, "pin does not accept repo fields")
		}
		if s.HasVersion && !s.Version.IsExact() {
			return deperrors.New(deperrors.CodeInvalidSpec, "pin requires an exact version, not a range")
		}
	}
	return nil
}
