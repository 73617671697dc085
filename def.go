// Package bpfarray provides typed handles over fixed-capacity,
// kernel-resident BPF array maps: a descriptor record in the exact
// layout the loader consumes, and a lookup protocol that never hands
// out an unchecked pointer.
package bpfarray

import (
	"encoding/binary"
	"fmt"
)

// MapTypeArray is the kernel's numeric identifier for array maps
// (BPF_MAP_TYPE_ARRAY in linux/bpf.h). It is reproduced bit-for-bit
// in the descriptor's TypeTag field.
const MapTypeArray uint32 = 2

// ArrayKeySize is the key width of an array map. Array maps are
// indexed by a 32-bit unsigned integer; this never varies.
const ArrayKeySize uint32 = 4

// PinningType controls whether the loader persists a map under its
// declared name across program reloads.
type PinningType uint32

const (
	// PinNone means the map is not pinned; it lives only as long as
	// the program that created it.
	PinNone PinningType = 0

	// PinByName means the loader pins the map under the descriptor's
	// declared name, matching LIBBPF_PIN_BY_NAME semantics.
	PinByName PinningType = 1
)

// String returns the pinning type as a string.
func (p PinningType) String() string {
	switch p {
	case PinNone:
		return "none"
	case PinByName:
		return "by-name"
	default:
		return fmt.Sprintf("PinningType(%d)", uint32(p))
	}
}

// DefSize is the encoded size of a MapDef: seven uint32 fields.
const DefSize = 28

// MapDef is the loader-facing descriptor for one kernel map.
//
// Field order and widths are load-bearing: the loader parses the
// encoded record by raw memory layout, not by name. Do not reorder
// or resize fields.
//
// Every field except ID is fixed at construction. ID is zero until
// the loader populates it after map creation; user code never writes
// it.
type MapDef struct {
	TypeTag    uint32
	KeySize    uint32
	ValueSize  uint32
	MaxEntries uint32
	MapFlags   uint32
	ID         uint32
	Pinning    uint32
}

// MarshalBinary encodes the descriptor as the 28-byte native-endian
// record the loader scans.
func (d MapDef) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, DefSize)
	for _, f := range [7]uint32{d.TypeTag, d.KeySize, d.ValueSize, d.MaxEntries, d.MapFlags, d.ID, d.Pinning} {
		buf = binary.NativeEndian.AppendUint32(buf, f)
	}
	return buf, nil
}

// UnmarshalBinary decodes a 28-byte descriptor record.
func (d *MapDef) UnmarshalBinary(data []byte) error {
	if len(data) != DefSize {
		return fmt.Errorf("map def: want %d bytes, got %d", DefSize, len(data))
	}
	d.TypeTag = binary.NativeEndian.Uint32(data[0:])
	d.KeySize = binary.NativeEndian.Uint32(data[4:])
	d.ValueSize = binary.NativeEndian.Uint32(data[8:])
	d.MaxEntries = binary.NativeEndian.Uint32(data[12:])
	d.MapFlags = binary.NativeEndian.Uint32(data[16:])
	d.ID = binary.NativeEndian.Uint32(data[20:])
	d.Pinning = binary.NativeEndian.Uint32(data[24:])
	return nil
}

// Validate checks that the descriptor describes a well-formed array
// map. A mismatch here would otherwise surface as a loader-time
// contract violation.
func (d MapDef) Validate() error {
	if d.TypeTag != MapTypeArray {
		return ErrInvalidDef{Field: "type_tag", Reason: fmt.Sprintf("want %d (array), got %d", MapTypeArray, d.TypeTag)}
	}
	if d.KeySize != ArrayKeySize {
		return ErrInvalidDef{Field: "key_size", Reason: fmt.Sprintf("array maps are u32-indexed; want %d, got %d", ArrayKeySize, d.KeySize)}
	}
	if d.ValueSize == 0 {
		return ErrInvalidDef{Field: "value_size", Reason: "must be non-zero"}
	}
	if d.MaxEntries == 0 {
		return ErrInvalidDef{Field: "max_entries", Reason: "must be non-zero"}
	}
	if p := PinningType(d.Pinning); p != PinNone && p != PinByName {
		return ErrInvalidDef{Field: "pinning", Reason: fmt.Sprintf("unknown pinning type %d", d.Pinning)}
	}
	return nil
}

// NewDef builds an array map descriptor from raw sizes. Library code
// should prefer WithMaxEntries/Pinned, which derive ValueSize from
// the element type; NewDef exists for tooling that works with maps
// whose element type is not known at compile time.
func NewDef(valueSize, maxEntries, flags uint32, pinning PinningType) MapDef {
	return MapDef{
		TypeTag:    MapTypeArray,
		KeySize:    ArrayKeySize,
		ValueSize:  valueSize,
		MaxEntries: maxEntries,
		MapFlags:   flags,
		ID:         0,
		Pinning:    uint32(pinning),
	}
}
