// Package manager orchestrates the lifecycle of managed array maps:
// creation, pin reuse, descriptor binding, registry persistence and
// teardown. It performs no I/O itself; the kernel and the registry
// sit behind interpreter interfaces.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/frobware/go-bpfarray"
	"github.com/frobware/go-bpfarray/config"
	"github.com/frobware/go-bpfarray/interpreter"
	"github.com/frobware/go-bpfarray/interpreter/store"
	"github.com/frobware/go-bpfarray/kernel"
)

// Manager owns the managed map registry and the kernel handles open
// in this process.
//
// Access is serialised with an RWMutex: lookups and listings can
// proceed concurrently, mutations get exclusive access. The
// descriptors themselves are read-only after Bind, so no further
// synchronisation is needed on the lookup path.
type Manager struct {
	mu     sync.RWMutex
	store  store.Store
	kernel interpreter.KernelMapOperations
	dirs   config.RuntimeDirs
	logger *slog.Logger

	// open tracks the kernel handles this process holds, keyed by
	// user-facing map name.
	open map[string]interpreter.BoundMap
}

// New creates a Manager.
func New(st store.Store, k interpreter.KernelMapOperations, dirs config.RuntimeDirs, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  st,
		kernel: k,
		dirs:   dirs,
		logger: logger.With("component", "manager"),
		open:   make(map[string]interpreter.BoundMap),
	}
}

// validateName rejects names that cannot serve as registry keys and
// pin file names.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("map name cannot be empty")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-', c == '.':
		default:
			return fmt.Errorf("map name %q contains invalid character %q", name, c)
		}
	}
	if name == "." || name == ".." {
		return fmt.Errorf("map name %q is reserved", name)
	}
	return nil
}

// Create creates a new managed map from def. It fails if the name is
// already managed; use Ensure for create-or-reuse semantics.
func (m *Manager) Create(ctx context.Context, name string, def bpfarray.MapDef) (kernel.Map, error) {
	if err := validateName(name); err != nil {
		return kernel.Map{}, err
	}
	if err := def.Validate(); err != nil {
		return kernel.Map{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.GetMap(ctx, name); err == nil {
		return kernel.Map{}, bpfarray.ErrMapExists{Name: name}
	} else if !errors.Is(err, store.ErrNotFound) {
		return kernel.Map{}, fmt.Errorf("check registry for %q: %w", name, err)
	}

	bm, err := m.materialise(ctx, name, def)
	if err != nil {
		return kernel.Map{}, err
	}

	if err := m.persist(ctx, name, def, bm); err != nil {
		m.discard(name, def, bm)
		return kernel.Map{}, err
	}

	m.open[name] = bm
	return bm.Info(), nil
}

// Ensure makes the descriptor's map exist and binds the descriptor
// to it: an existing pinned map is reopened and verified against the
// descriptor, anything else is created fresh. Ensure is the library
// entry point; it is safe to call on every program start.
func (m *Manager) Ensure(ctx context.Context, name string, d bpfarray.Definer) (kernel.Map, error) {
	if err := validateName(name); err != nil {
		return kernel.Map{}, err
	}
	def := d.Def()
	if err := def.Validate(); err != nil {
		return kernel.Map{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bm, ok := m.open[name]
	if !ok {
		var err error
		bm, err = m.reopenOrCreate(ctx, name, def)
		if err != nil {
			return kernel.Map{}, err
		}

		if err := m.persist(ctx, name, def, bm); err != nil {
			m.discard(name, def, bm)
			return kernel.Map{}, err
		}
		m.open[name] = bm
	}

	if err := verifyShape(name, def, bm.Info()); err != nil {
		return kernel.Map{}, err
	}

	d.Bind(bm, bm.Info().ID)
	m.logger.Debug("bound descriptor", "name", name, "kernel_id", bm.Info().ID)
	return bm.Info(), nil
}

// reopenOrCreate reopens the pin for a ByName descriptor when one
// exists, and creates a fresh map otherwise. A registry record whose
// unpinned map died with its creating process is recreated; the
// record is refreshed by the caller.
func (m *Manager) reopenOrCreate(ctx context.Context, name string, def bpfarray.MapDef) (interpreter.BoundMap, error) {
	if bpfarray.PinningType(def.Pinning) == bpfarray.PinByName {
		pinPath := m.dirs.MapPin(name)
		bm, err := m.kernel.LoadPinnedArray(ctx, pinPath)
		if err == nil {
			if err := verifyShape(name, def, bm.Info()); err != nil {
				bm.Close()
				return nil, err
			}
			m.logger.Info("reusing pinned map", "name", name, "pin", pinPath, "kernel_id", bm.Info().ID)
			return bm, nil
		}
		m.logger.Debug("no reusable pin", "name", name, "pin", pinPath, "reason", err)
	}
	return m.materialise(ctx, name, def)
}

// materialise creates the kernel map and pins it if the descriptor
// asks for pinning.
func (m *Manager) materialise(ctx context.Context, name string, def bpfarray.MapDef) (interpreter.BoundMap, error) {
	bm, err := m.kernel.CreateArray(ctx, name, def)
	if err != nil {
		return nil, err
	}

	if bpfarray.PinningType(def.Pinning) == bpfarray.PinByName {
		pinPath := m.dirs.MapPin(name)
		if err := bm.Pin(pinPath); err != nil {
			bm.Close()
			return nil, err
		}
	}

	m.logger.Info("created map", "name", name, "kernel_id", bm.Info().ID,
		"value_size", def.ValueSize, "max_entries", def.MaxEntries,
		"pinning", bpfarray.PinningType(def.Pinning).String())
	return bm, nil
}

// persist writes the registry record for a live map.
func (m *Manager) persist(ctx context.Context, name string, def bpfarray.MapDef, bm interpreter.BoundMap) error {
	rec := store.MapRecord{
		Name:       name,
		KernelID:   bm.Info().ID,
		TypeTag:    def.TypeTag,
		KeySize:    def.KeySize,
		ValueSize:  def.ValueSize,
		MaxEntries: def.MaxEntries,
		Flags:      def.MapFlags,
		Pinning:    def.Pinning,
		CreatedAt:  time.Now(),
	}
	if bpfarray.PinningType(def.Pinning) == bpfarray.PinByName {
		rec.PinPath = m.dirs.MapPin(name)
	}
	if err := m.store.SaveMap(ctx, rec); err != nil {
		return fmt.Errorf("save registry record for %q: %w", name, err)
	}
	return nil
}

// discard undoes materialise after a registry failure.
func (m *Manager) discard(name string, def bpfarray.MapDef, bm interpreter.BoundMap) {
	bm.Close()
	if bpfarray.PinningType(def.Pinning) == bpfarray.PinByName {
		if err := m.kernel.RemovePin(m.dirs.MapPin(name)); err != nil {
			m.logger.Warn("cleanup failed", "name", name, "error", err)
		}
	}
}

// verifyShape checks a live map against the descriptor that claims
// it. Key size, value size and capacity must match exactly; a
// mismatch means the descriptor's element type has diverged from the
// map and every lookup through it would misread kernel memory.
func verifyShape(name string, def bpfarray.MapDef, info kernel.Map) error {
	checks := []struct {
		field string
		want  uint32
		got   uint32
	}{
		{"key_size", def.KeySize, info.KeySize},
		{"value_size", def.ValueSize, info.ValueSize},
		{"max_entries", def.MaxEntries, info.MaxEntries},
	}
	for _, c := range checks {
		if c.want != c.got {
			return bpfarray.ErrPinMismatch{Name: name, Field: c.field, Want: c.want, Got: c.got}
		}
	}
	return nil
}

// Get returns the registry record for a managed map.
func (m *Manager) Get(ctx context.Context, name string) (store.MapRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, err := m.store.GetMap(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return store.MapRecord{}, bpfarray.ErrMapNotManaged{Name: name}
	}
	return rec, err
}

// List returns all registry records.
func (m *Manager) List(ctx context.Context) ([]store.MapRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.ListMaps(ctx)
}

// Lookup reads the raw value bytes at index in a managed map. The
// result is a copy; absent covers out-of-range indices and any
// host-side lookup failure, matching the typed Get contract.
//
// The map must be open in this process or pinned (pinned maps are
// reopened lazily).
func (m *Manager) Lookup(ctx context.Context, name string, index uint32) (bpfarray.Option[[]byte], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.GetMap(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return bpfarray.None[[]byte](), bpfarray.ErrMapNotManaged{Name: name}
	}
	if err != nil {
		return bpfarray.None[[]byte](), err
	}

	bm, ok := m.open[name]
	if !ok {
		if rec.PinPath == "" {
			return bpfarray.None[[]byte](), bpfarray.ErrMapNotOpen{Name: name}
		}
		bm, err = m.kernel.LoadPinnedArray(ctx, rec.PinPath)
		if err != nil {
			return bpfarray.None[[]byte](), err
		}
		m.open[name] = bm
	}

	p := bm.RawLookup(unsafe.Pointer(&index))
	if p == nil {
		return bpfarray.None[[]byte](), nil
	}

	value := make([]byte, rec.ValueSize)
	copy(value, unsafe.Slice((*byte)(p), rec.ValueSize))
	return bpfarray.Some(value), nil
}

// Delete removes a managed map: the open handle is closed, the pin
// (if any) removed, and the registry record deleted. The kernel
// frees the map once its last reference is gone.
func (m *Manager) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.GetMap(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return bpfarray.ErrMapNotManaged{Name: name}
	}
	if err != nil {
		return err
	}

	if bm, ok := m.open[name]; ok {
		bm.Close()
		delete(m.open, name)
	}

	if rec.PinPath != "" {
		if err := m.kernel.RemovePin(rec.PinPath); err != nil {
			return err
		}
	}

	if err := m.store.DeleteMap(ctx, name); err != nil {
		return err
	}

	m.logger.Info("deleted map", "name", name, "kernel_id", rec.KernelID)
	return nil
}

// Close releases every kernel handle this process holds. Pinned maps
// survive; unpinned maps are freed by the kernel.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, bm := range m.open {
		if err := bm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.open, name)
	}
	return firstErr
}
