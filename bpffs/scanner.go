package bpffs

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// ScannerDirs holds the directory paths needed by Scanner. This
// avoids importing the config package, preventing import cycles.
type ScannerDirs struct {
	// FS is the bpffs mount point (e.g. /run/bpfarray/fs).
	FS string
	// Maps is the map pins directory (e.g. /run/bpfarray/fs/maps).
	Maps string
}

// Scanner provides read-only access to bpfarray's filesystem layout.
// It encapsulates path conventions and provides streaming iterators
// for filesystem facts.
type Scanner struct {
	dirs ScannerDirs
}

// NewScanner creates a Scanner for the given directories.
func NewScanner(dirs ScannerDirs) *Scanner {
	return &Scanner{dirs: dirs}
}

// MapPin represents a pinned map: {dirs.Maps}/{name}. The file name
// is the user-facing map name, the registry key.
type MapPin struct {
	Path string
	Name string
}

// MapPins returns an iterator over map pins in {dirs.Maps}. Errors
// are yielded only for failures that prevent enumeration; a missing
// directory simply yields nothing.
func (s *Scanner) MapPins(ctx context.Context) iter.Seq2[MapPin, error] {
	return func(yield func(MapPin, error) bool) {
		entries, err := os.ReadDir(s.dirs.Maps)
		if err != nil {
			if os.IsNotExist(err) {
				return // directory doesn't exist: no pins
			}
			yield(MapPin{}, fmt.Errorf("read dir %s: %w", s.dirs.Maps, err))
			return
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				yield(MapPin{}, ctx.Err())
				return
			}

			if entry.IsDir() {
				continue
			}

			pin := MapPin{
				Path: filepath.Join(s.dirs.Maps, entry.Name()),
				Name: entry.Name(),
			}
			if !yield(pin, nil) {
				return
			}
		}
	}
}

// Scan materialises all map pins into a slice.
func (s *Scanner) Scan(ctx context.Context) ([]MapPin, error) {
	var pins []MapPin
	for pin, err := range s.MapPins(ctx) {
		if err != nil {
			return nil, err
		}
		pins = append(pins, pin)
	}
	return pins, nil
}
