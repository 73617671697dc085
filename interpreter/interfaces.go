// Package interpreter contains the interfaces behind which all I/O
// happens. Adapters under interpreter/ are the only packages that
// touch the kernel or the filesystem; everything above them works
// with these interfaces and can be tested with fakes.
package interpreter

import (
	"context"

	"github.com/frobware/go-bpfarray"
	"github.com/frobware/go-bpfarray/kernel"
)

// BoundMap is a live kernel map: the raw lookup primitive plus the
// identity the kernel assigned at creation.
type BoundMap interface {
	bpfarray.MapHandle

	// Info returns the kernel's view of the map, captured when the
	// map was created or opened.
	Info() kernel.Map

	// Pin pins the map at path on a bpffs.
	Pin(path string) error

	// Close releases the map's file descriptor. The kernel frees the
	// map itself once the last reference (fd or pin) is gone.
	Close() error
}

// KernelMapOperations creates and reopens kernel maps. Implemented
// by interpreter/ebpf for the real kernel and by fakes in tests.
type KernelMapOperations interface {
	// CreateArray creates a kernel array map from def. The name is
	// advisory; the kernel truncates or rejects names it cannot
	// store.
	CreateArray(ctx context.Context, name string, def bpfarray.MapDef) (BoundMap, error)

	// LoadPinnedArray opens an existing array map pinned at pinPath.
	LoadPinnedArray(ctx context.Context, pinPath string) (BoundMap, error)

	// RemovePin removes a pin from the filesystem. Removing the last
	// reference frees the map.
	RemovePin(pinPath string) error
}
