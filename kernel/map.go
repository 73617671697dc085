// Package kernel contains pure data records describing BPF objects
// as the kernel reports them. No I/O happens here.
package kernel

// Map is a snapshot of a BPF map's kernel-side identity and shape.
type Map struct {
	ID         uint32 `json:"id"`
	Name       string `json:"name"`
	MapType    string `json:"map_type"`
	KeySize    uint32 `json:"key_size"`
	ValueSize  uint32 `json:"value_size"`
	MaxEntries uint32 `json:"max_entries"`
	Flags      uint32 `json:"flags,omitempty"`

	// BTF ID (available from kernel 4.18)
	BTFId    uint32 `json:"btf_id,omitempty"`
	HasBTFId bool   `json:"has_btf_id,omitempty"`

	// Memory and state
	Memlock    uint64 `json:"memlock,omitempty"`
	HasMemlock bool   `json:"has_memlock,omitempty"` // Whether Memlock is available (kernel 4.10+)
	Frozen     bool   `json:"frozen,omitempty"`      // Whether map was frozen (kernel 5.2+)
}
