// Package manager_test tests the map manager using a fake kernel
// and a real SQLite database in a temporary directory.
package manager_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/frobware/go-bpfarray"
	"github.com/frobware/go-bpfarray/config"
	"github.com/frobware/go-bpfarray/interpreter"
	"github.com/frobware/go-bpfarray/interpreter/store/sqlite"
	"github.com/frobware/go-bpfarray/kernel"
	"github.com/frobware/go-bpfarray/manager"
)

// testLogger returns a logger for tests. By default it discards all
// output. Set BPFARRAY_TEST_VERBOSE=1 to enable logging.
func testLogger() *slog.Logger {
	if os.Getenv("BPFARRAY_TEST_VERBOSE") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeKernel implements interpreter.KernelMapOperations for testing.
// It simulates kernel map operations without syscalls. Pins survive
// across Manager instances sharing the same fakeKernel, which is how
// the tests model process restarts.
type fakeKernel struct {
	nextID atomic.Uint32

	mu   sync.Mutex
	pins map[string]*fakeMap

	// Error injection.
	failCreate error
}

func newFakeKernel() *fakeKernel {
	fk := &fakeKernel{pins: make(map[string]*fakeMap)}
	fk.nextID.Store(100)
	return fk
}

// fakeMap simulates one kernel array map. Slots are nil until an
// external writer populates them, so lookups on unpopulated slots
// return absent.
type fakeMap struct {
	k    *fakeKernel
	id   uint32
	name string
	def  bpfarray.MapDef

	mu     sync.Mutex
	slots  [][]byte
	closed bool
}

// write simulates the out-of-band write capability this library
// deliberately does not expose.
func (f *fakeMap) write(index uint32, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, f.def.ValueSize)
	copy(buf, value)
	f.slots[index] = buf
}

func (f *fakeMap) RawLookup(key unsafe.Pointer) unsafe.Pointer {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := *(*uint32)(key)
	if idx >= f.def.MaxEntries {
		return nil
	}
	b := f.slots[idx]
	if b == nil {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func (f *fakeMap) Info() kernel.Map {
	return kernel.Map{
		ID:         f.id,
		Name:       f.name,
		MapType:    "array",
		KeySize:    f.def.KeySize,
		ValueSize:  f.def.ValueSize,
		MaxEntries: f.def.MaxEntries,
		Flags:      f.def.MapFlags,
	}
}

func (f *fakeMap) Pin(path string) error {
	f.k.mu.Lock()
	defer f.k.mu.Unlock()
	if _, exists := f.k.pins[path]; exists {
		return fmt.Errorf("pin %s: already exists", path)
	}
	f.k.pins[path] = f
	return nil
}

func (f *fakeMap) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (fk *fakeKernel) CreateArray(ctx context.Context, name string, def bpfarray.MapDef) (interpreter.BoundMap, error) {
	if fk.failCreate != nil {
		return nil, fk.failCreate
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &fakeMap{
		k:     fk,
		id:    fk.nextID.Add(1),
		name:  name,
		def:   def,
		slots: make([][]byte, def.MaxEntries),
	}, nil
}

func (fk *fakeKernel) LoadPinnedArray(ctx context.Context, pinPath string) (interpreter.BoundMap, error) {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	f, ok := fk.pins[pinPath]
	if !ok {
		return nil, fmt.Errorf("load pinned map %s: no such file", pinPath)
	}
	return f, nil
}

func (fk *fakeKernel) RemovePin(pinPath string) error {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	delete(fk.pins, pinPath)
	return nil
}

// pinned returns the fake map pinned at path, if any.
func (fk *fakeKernel) pinned(path string) *fakeMap {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	return fk.pins[path]
}

// fixture wires a Manager to a fake kernel and a SQLite store.
type fixture struct {
	kernel *fakeKernel
	dirs   config.RuntimeDirs
	mgr    *manager.Manager
	dbPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, newFakeKernel(), filepath.Join(t.TempDir(), "state.db"))
}

// newFixtureWith builds a fixture around an existing fake kernel and
// database path, modelling a process restart when reused.
func newFixtureWith(t *testing.T, fk *fakeKernel, dbPath string) *fixture {
	t.Helper()

	dirs, err := config.NewRuntimeDirs("/run/bpfarray-test")
	require.NoError(t, err)

	st, err := sqlite.New(context.Background(), dbPath, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mgr := manager.New(st, fk, dirs, testLogger())
	t.Cleanup(func() { mgr.Close() })

	return &fixture{kernel: fk, dirs: dirs, mgr: mgr, dbPath: dbPath}
}
