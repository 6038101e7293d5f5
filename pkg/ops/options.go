package ops

import "time"

// Preserve controls solver strictness for already-installed packages
// during add/develop (spec.md §6).
type Preserve string

const (
	PreserveTiered Preserve = "tiered"
	PreserveAll    Preserve = "all"
	PreserveDirect Preserve = "direct"
	PreserveSemver Preserve = "semver"
	PreserveNone   Preserve = "none"
)

// Level bounds how far `up` is allowed to bump a version.
type Level string

const (
	LevelFixed Level = "fixed"
	LevelPatch Level = "patch"
	LevelMinor Level = "minor"
	LevelMajor Level = "major"
)

// Options carries every option named in spec.md §6's table. Not every
// field applies to every operation; each Dispatcher method documents
// which of its fields it reads.
type Options struct {
	Preserve       Preserve
	Platform       string
	Level          Level
	Mode           string // "project" or "manifest", mirrors specvalidate.Mode
	UpdateRegistry bool
	CollectDelay   time.Duration
	Verbose        bool
	Shared         bool
	Temp           bool
	Coverage       bool
	JuliaArgs      []string
	TestArgs       []string
}

// TestOptions is the subset of Options the external TestRunner needs,
// kept as its own type so pkg/ops/interfaces.go does not have to import
// the full Options struct's unrelated fields into the collaborator
// boundary.
type TestOptions struct {
	Coverage  bool
	ExtraArgs []string
	TestArgs  []string
}
