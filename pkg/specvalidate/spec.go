// Package specvalidate normalizes and rejects malformed package
// specifications supplied by callers of the Operation Dispatcher.
package specvalidate

import "github.com/google/uuid"

// Op identifies which dispatcher operation a spec list is being validated
// for; validation rules differ per operation (see Validate).
type Op string

const (
	OpAdd     Op = "add"
	OpDevelop Op = "develop"
	OpRm      Op = "rm"
	OpUp      Op = "up"
	OpPin     Op = "pin"
	OpFree    Op = "free"
)

// Mode scopes an operation to the project file or the manifest file.
type Mode string

const (
	ModeProject  Mode = "project"
	ModeManifest Mode = "manifest"
)

// VersionConstraint is a half-open-or-closed version range. A pin requires
// Lower == Upper (a single exact version).
type VersionConstraint struct {
	Lower string
	Upper string
}

// IsExact reports whether the constraint names a single version.
func (v VersionConstraint) IsExact() bool {
	return v.Lower != "" && v.Lower == v.Upper
}

// Repo is the git track of a spec: a source URL plus optional revision and
// subdirectory.
type Repo struct {
	Source string
	Rev    string
	Subdir string
}

// Tracking is the tagged variant distinguishing how a spec resolves source
// content: by filesystem path, by git repository, or by registry lookup
// (the default when neither Path nor Repo is set).
type Tracking interface {
	trackingMarker()
}

// PathTracking is a path-tracked (developed) spec.
type PathTracking struct {
	Path string
}

func (PathTracking) trackingMarker() {}

// RepoTracking is a git-tracked spec.
type RepoTracking struct {
	Repo Repo
}

func (RepoTracking) trackingMarker() {}

// RegistryTracking is the default: resolve the package through the
// (externally supplied) registry client.
type RegistryTracking struct{}

func (RegistryTracking) trackingMarker() {}

// Spec is a normalized package specification. Name and UUID are both
// optional on input; HasName/HasUUID record which were actually supplied
// so validators can distinguish "empty string" from "not given".
type Spec struct {
	Name    string
	HasName bool

	UUID    uuid.UUID
	HasUUID bool

	Version    VersionConstraint
	HasVersion bool

	TreeHash string
	Pinned   bool
	Mode     Mode

	Tracking Tracking
}

// Clone returns a deep copy of the spec. Tracking values are immutable
// value types, so copying the interface value is sufficient.
func (s Spec) Clone() Spec {
	return s
}

// CloneAll deep-copies a spec list so callers retain ownership of the
// slice and structs they passed in.
func CloneAll(specs []Spec) []Spec {
	out := make([]Spec, len(specs))
	for i, s := range specs {
		out[i] = s.Clone()
	}
	return out
}
