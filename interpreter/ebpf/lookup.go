package ebpf

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mapElemAttr mirrors the map-element subset of union bpf_attr
// (linux/bpf.h): map_fd, then the key and value pointers as aligned
// u64s, then flags. Field offsets are load-bearing; the kernel reads
// this by raw layout.
type mapElemAttr struct {
	mapFd uint32
	_     uint32
	key   uint64
	value uint64
	flags uint64
}

// RawLookup issues a single BPF_MAP_LOOKUP_ELEM syscall. key must
// point to the map's KeySize bytes. On success it returns a pointer
// to the handle's value buffer, which the next call overwrites; any
// errno collapses to nil.
//
// The returned pointer's alignment is that of the value buffer (8
// bytes from the Go allocator for values of at least that size), not
// the natural alignment of whatever type the caller reads through
// it. Callers needing stronger guarantees must size their element
// type accordingly.
func (b *boundMap) RawLookup(key unsafe.Pointer) unsafe.Pointer {
	attr := mapElemAttr{
		mapFd: uint32(b.m.FD()),
		key:   uint64(uintptr(key)),
		value: uint64(uintptr(unsafe.Pointer(&b.value[0]))),
	}

	_, _, errno := unix.Syscall(unix.SYS_BPF, unix.BPF_MAP_LOOKUP_ELEM,
		uintptr(unsafe.Pointer(&attr)), unsafe.Sizeof(attr))

	// The kernel has copied the key and value by now; keep both
	// allocations live across the syscall.
	runtime.KeepAlive(key)
	runtime.KeepAlive(&b.value)

	if errno != 0 {
		return nil
	}
	return unsafe.Pointer(&b.value[0])
}
