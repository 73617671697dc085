package bpfarray

import "unsafe"

// MapHandle is the host side of a bound map: a single raw lookup
// primitive over kernel-owned storage. Implementations live in
// interpreter adapters; tests substitute fakes.
type MapHandle interface {
	// RawLookup returns a pointer to the value stored under key, or
	// nil if the slot cannot be served. key must point to KeySize
	// bytes (the native representation of a uint32 index for array
	// maps).
	//
	// The returned pointer aliases storage the host may overwrite on
	// the next lookup or out-of-band write; it is valid only until
	// the next call on the same handle. Its alignment is only as
	// strong as the host-side value storage, no stricter guarantee
	// is made.
	RawLookup(key unsafe.Pointer) unsafe.Pointer
}

// Definer is any map descriptor the loader can materialise: it
// exposes its loader-facing definition and accepts the handle and
// kernel ID the loader produces.
type Definer interface {
	Def() MapDef
	Bind(h MapHandle, id uint32)
}

// Array is a typed handle over a fixed-capacity kernel array map
// whose elements are of type T.
//
// The descriptor is fixed at construction; the loader populates the
// kernel ID and attaches the runtime handle via Bind before the
// first lookup. An unbound Array answers every Get with None.
//
// All entries are zero-initialised when the kernel creates the map.
type Array[T any] struct {
	def    MapDef
	handle MapHandle
}

// WithMaxEntries defines an array of T with capacity maxEntries.
// Construction is pure: no syscalls, no allocation beyond the
// descriptor itself, so descriptors can be package-level values the
// loader collects at startup.
func WithMaxEntries[T any](maxEntries, flags uint32) *Array[T] {
	return &Array[T]{
		def: MapDef{
			TypeTag:    MapTypeArray,
			KeySize:    ArrayKeySize,
			ValueSize:  uint32(unsafe.Sizeof(*new(T))),
			MaxEntries: maxEntries,
			MapFlags:   flags,
			ID:         0,
			Pinning:    uint32(PinNone),
		},
	}
}

// Pinned is WithMaxEntries with PinByName: the loader persists the
// map under the descriptor's declared name so it survives reloads of
// the program that created it.
func Pinned[T any](maxEntries, flags uint32) *Array[T] {
	a := WithMaxEntries[T](maxEntries, flags)
	a.def.Pinning = uint32(PinByName)
	return a
}

// Def returns the loader-facing descriptor.
func (a *Array[T]) Def() MapDef { return a.def }

// Bind attaches the runtime handle and records the kernel-assigned
// map ID. Bind is loader-owned: the loader calls it exactly once
// after creating (or reopening) the backing map, before the program
// starts issuing lookups. User code never calls Bind.
func (a *Array[T]) Bind(h MapHandle, id uint32) {
	a.def.ID = id
	a.handle = h
}

// Get returns the value stored at index, or None if the slot cannot
// be served.
//
// Get issues exactly one raw lookup and checks the result for nil
// exactly once, before anything touches the pointer. Out-of-range
// indices, unpopulated slots and host-side lookup failures all
// collapse to None; the distinction is not observable through this
// interface.
//
// A present reference aliases host-owned storage and is valid only
// for the current invocation: the host may mutate or reclaim the
// slot between calls. Callers must not retain it.
func (a *Array[T]) Get(index uint32) Option[*T] {
	if a.handle == nil {
		return None[*T]()
	}
	p := a.handle.RawLookup(unsafe.Pointer(&index))
	if p == nil {
		return None[*T]()
	}
	return Some((*T)(p))
}
