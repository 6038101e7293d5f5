// Package pkgid defines the package identifier used throughout depotctl:
// a (name, uuid) pair where uuid is a 128-bit identifier minted once per
// package and carried in every project, manifest, and usage-ledger entry
// that refers to it.
package pkgid

import "github.com/google/uuid"

// ID identifies a package by name and a stable 128-bit identifier.
// Either field may be zero in a user-supplied spec; internal
// representations require both to be set.
type ID struct {
	Name string
	UUID uuid.UUID
}

// New mints a fresh package identifier for name.
func New(name string) ID {
	return ID{Name: name, UUID: uuid.New()}
}

// String returns "name (uuid)", or just the uuid if name is empty.
func (id ID) String() string {
	if id.Name == "" {
		return id.UUID.String()
	}
	return id.Name + " (" + id.UUID.String() + ")"
}

// IsZero reports whether id carries neither a name nor a uuid.
func (id ID) IsZero() bool {
	return id.Name == "" && id.UUID == uuid.Nil
}

// Key returns the canonical map key for this identifier: the uuid string.
// Manifests and scheduler state are keyed by uuid, never by name, since
// names are not guaranteed unique across the dependency graph's history.
func (id ID) Key() string {
	return id.UUID.String()
}

// ParseUUID parses s as a uuid, returning uuid.Nil and an error if s is
// not a valid uuid string.
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
