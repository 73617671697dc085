// Package inspect provides a correlated view of bpfarray's state
// across the registry and the filesystem. It is the "state of the
// world" abstraction used by CLI diagnostics.
package inspect

import (
	"context"
	"sort"

	"github.com/frobware/go-bpfarray/bpffs"
	"github.com/frobware/go-bpfarray/interpreter/store"
)

// StoreLister is the subset of store.Store needed by Snapshot.
type StoreLister interface {
	ListMaps(ctx context.Context) ([]store.MapRecord, error)
}

// PinScanner is the subset of bpffs.Scanner needed by Snapshot.
type PinScanner interface {
	Scan(ctx context.Context) ([]bpffs.MapPin, error)
}

// MapState is the correlated state of one map name: what the registry
// claims and what actually sits on the filesystem.
type MapState struct {
	Name string

	// Record is the registry record, nil when the registry has no
	// row for this name.
	Record *store.MapRecord

	// PinPath is the pin found on disk, empty when none exists.
	PinPath string
}

// Orphaned reports whether a pin exists with no registry record.
// Orphans are left behind by crashes between pinning and persisting.
func (s MapState) Orphaned() bool {
	return s.Record == nil && s.PinPath != ""
}

// MissingPin reports whether the registry claims a pin that is not on
// disk.
func (s MapState) MissingPin() bool {
	return s.Record != nil && s.Record.PinPath != "" && s.PinPath == ""
}

// Snapshot is a point-in-time correlated view, sorted by name.
type Snapshot struct {
	Maps []MapState
}

// Orphans returns the states whose pin has no registry record.
func (s Snapshot) Orphans() []MapState {
	var out []MapState
	for _, m := range s.Maps {
		if m.Orphaned() {
			out = append(out, m)
		}
	}
	return out
}

// MissingPins returns the states whose registry record claims a pin
// that is absent from disk.
func (s Snapshot) MissingPins() []MapState {
	var out []MapState
	for _, m := range s.Maps {
		if m.MissingPin() {
			out = append(out, m)
		}
	}
	return out
}

// Take builds a Snapshot by joining registry records and filesystem
// pins on map name.
func Take(ctx context.Context, st StoreLister, sc PinScanner) (Snapshot, error) {
	recs, err := st.ListMaps(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	pins, err := sc.Scan(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	states := make(map[string]*MapState)
	for i := range recs {
		states[recs[i].Name] = &MapState{
			Name:   recs[i].Name,
			Record: &recs[i],
		}
	}
	for _, pin := range pins {
		if s, ok := states[pin.Name]; ok {
			s.PinPath = pin.Path
			continue
		}
		states[pin.Name] = &MapState{
			Name:    pin.Name,
			PinPath: pin.Path,
		}
	}

	snap := Snapshot{Maps: make([]MapState, 0, len(states))}
	for _, s := range states {
		snap.Maps = append(snap.Maps, *s)
	}
	sort.Slice(snap.Maps, func(i, j int) bool {
		return snap.Maps[i].Name < snap.Maps[j].Name
	})
	return snap, nil
}
