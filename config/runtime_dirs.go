// Package config holds runtime configuration for bpfarray.
package config

import (
	"fmt"
	"path/filepath"
)

// RuntimeDirs holds all runtime directory paths for bpfarray:
//
//	{base}/          - runtime root
//	{base}/fs/       - bpffs mount
//	{base}/fs/maps/  - map pins
//	{base}/db/       - database directory
//
// RuntimeDirs is immutable after construction. Use NewRuntimeDirs to
// create; fields are unexported to prevent construction of invalid
// instances.
type RuntimeDirs struct {
	base   string // runtime root (e.g., /run/bpfarray)
	fs     string // bpffs mount point
	fsMaps string // map pins
	db     string // database directory
	lock   string // global writer lock file
}

// DefaultBase is the production runtime root.
const DefaultBase = "/run/bpfarray"

// DefaultRuntimeDirs returns RuntimeDirs with production defaults.
// Panics if the default path is somehow invalid (should never
// happen).
func DefaultRuntimeDirs() RuntimeDirs {
	dirs, err := NewRuntimeDirs(DefaultBase)
	if err != nil {
		panic(fmt.Sprintf("DefaultRuntimeDirs: %v", err))
	}
	return dirs
}

// NewRuntimeDirs creates RuntimeDirs rooted at the given base path.
// All subdirectories are derived from the base. Returns an error if
// base is empty or not an absolute path.
func NewRuntimeDirs(base string) (RuntimeDirs, error) {
	if base == "" {
		return RuntimeDirs{}, fmt.Errorf("base path cannot be empty")
	}
	if !filepath.IsAbs(base) {
		return RuntimeDirs{}, fmt.Errorf("base path must be absolute, got %q", base)
	}

	fs := filepath.Join(base, "fs")
	return RuntimeDirs{
		base:   base,
		fs:     fs,
		fsMaps: filepath.Join(fs, "maps"),
		db:     filepath.Join(base, "db"),
		lock:   filepath.Join(base, ".lock"),
	}, nil
}

// Base returns the runtime root path.
func (d RuntimeDirs) Base() string { return d.base }

// FS returns the bpffs mount point path.
func (d RuntimeDirs) FS() string { return d.fs }

// FSMaps returns the map pins directory.
func (d RuntimeDirs) FSMaps() string { return d.fsMaps }

// DB returns the database directory.
func (d RuntimeDirs) DB() string { return d.db }

// DBPath returns the default database file path.
func (d RuntimeDirs) DBPath() string { return filepath.Join(d.db, "state.db") }

// Lock returns the global writer lock file path.
func (d RuntimeDirs) Lock() string { return d.lock }

// MapPin returns the pin path for a map name.
func (d RuntimeDirs) MapPin(name string) string {
	return filepath.Join(d.fsMaps, name)
}
