package ebpf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cilium/ebpf"

	"github.com/frobware/go-bpfarray"
	"github.com/frobware/go-bpfarray/interpreter"
	"github.com/frobware/go-bpfarray/kernel"
)

// objNameLen is the kernel's limit for BPF object names
// (BPF_OBJ_NAME_LEN - 1).
const objNameLen = 15

// objName sanitises a user-facing map name into something the kernel
// accepts: alphanumerics, dot and underscore, truncated to
// objNameLen. The user-facing name remains the registry key; this
// only affects what bpftool and friends display.
func objName(name string) string {
	out := make([]byte, 0, objNameLen)
	for i := 0; i < len(name) && len(out) < objNameLen; i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// CreateArray creates a kernel array map from def.
func (k *kernelAdapter) CreateArray(ctx context.Context, name string, def bpfarray.MapDef) (interpreter.BoundMap, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	spec := &ebpf.MapSpec{
		Name:       objName(name),
		Type:       ebpf.Array,
		KeySize:    def.KeySize,
		ValueSize:  def.ValueSize,
		MaxEntries: def.MaxEntries,
		Flags:      def.MapFlags,
	}

	m, err := ebpf.NewMapWithOptions(spec, ebpf.MapOptions{})
	if err != nil {
		return nil, fmt.Errorf("create array map %q: %w", name, err)
	}

	bm, err := newBoundMap(m)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("bind array map %q: %w", name, err)
	}

	k.logger.Debug("created array map",
		"name", name,
		"kernel_id", bm.Info().ID,
		"value_size", def.ValueSize,
		"max_entries", def.MaxEntries)

	return bm, nil
}

// LoadPinnedArray opens an existing array map pinned at pinPath.
func (k *kernelAdapter) LoadPinnedArray(ctx context.Context, pinPath string) (interpreter.BoundMap, error) {
	m, err := ebpf.LoadPinnedMap(pinPath, nil)
	if err != nil {
		return nil, fmt.Errorf("load pinned map %s: %w", pinPath, err)
	}

	if m.Type() != ebpf.Array {
		m.Close()
		return nil, fmt.Errorf("pinned map %s: expected array, got %s", pinPath, m.Type())
	}

	bm, err := newBoundMap(m)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("bind pinned map %s: %w", pinPath, err)
	}

	k.logger.Debug("loaded pinned array map", "path", pinPath, "kernel_id", bm.Info().ID)
	return bm, nil
}

// RemovePin removes a pin from the filesystem. A missing pin is not
// an error.
func (k *kernelAdapter) RemovePin(pinPath string) error {
	if err := os.Remove(pinPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pin %s: %w", pinPath, err)
	}
	return nil
}

// boundMap couples an open cilium/ebpf map with a reusable lookup
// buffer. It implements interpreter.BoundMap.
type boundMap struct {
	m    *ebpf.Map
	info kernel.Map

	// value receives lookup results; RawLookup hands out pointers
	// into it. Sized to the map's value size at open.
	value []byte
}

func newBoundMap(m *ebpf.Map) (*boundMap, error) {
	info, err := m.Info()
	if err != nil {
		return nil, fmt.Errorf("get map info: %w", err)
	}

	id, ok := info.ID()
	if !ok {
		return nil, fmt.Errorf("kernel did not report a map ID")
	}

	return &boundMap{
		m:     m,
		info:  infoToMap(info, uint32(id)),
		value: make([]byte, m.ValueSize()),
	}, nil
}

// Info returns the kernel's view of the map, captured at open.
func (b *boundMap) Info() kernel.Map { return b.info }

// Pin pins the map at path, creating the parent directory if needed.
func (b *boundMap) Pin(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create pin directory: %w", err)
	}
	if err := b.m.Pin(path); err != nil {
		return fmt.Errorf("pin map to %s: %w", path, err)
	}
	return nil
}

// Close releases the map fd.
func (b *boundMap) Close() error {
	return b.m.Close()
}

func infoToMap(info *ebpf.MapInfo, id uint32) kernel.Map {
	km := kernel.Map{
		ID:         id,
		Name:       info.Name,
		MapType:    info.Type.String(),
		KeySize:    info.KeySize,
		ValueSize:  info.ValueSize,
		MaxEntries: info.MaxEntries,
		Flags:      info.Flags,
		Frozen:     info.Frozen(),
	}

	// BTF ID (available from kernel 4.18)
	if btfID, ok := info.BTFID(); ok {
		km.BTFId = uint32(btfID)
		km.HasBTFId = true
	}

	// Memlock (available from kernel 4.10)
	if memlock, ok := info.Memlock(); ok {
		km.Memlock = memlock
		km.HasMemlock = true
	}

	return km
}
