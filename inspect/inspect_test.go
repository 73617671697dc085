package inspect_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-bpfarray/bpffs"
	"github.com/frobware/go-bpfarray/inspect"
	"github.com/frobware/go-bpfarray/interpreter/store"
)

type fakeLister struct {
	recs []store.MapRecord
}

func (f *fakeLister) ListMaps(ctx context.Context) ([]store.MapRecord, error) {
	return f.recs, nil
}

type fakeScanner struct {
	pins []bpffs.MapPin
}

func (f *fakeScanner) Scan(ctx context.Context) ([]bpffs.MapPin, error) {
	return f.pins, nil
}

func rec(name, pinPath string) store.MapRecord {
	return store.MapRecord{
		Name:       name,
		KernelID:   7,
		TypeTag:    2,
		KeySize:    4,
		ValueSize:  8,
		MaxEntries: 16,
		Pinning:    1,
		PinPath:    pinPath,
		CreatedAt:  time.Now(),
	}
}

func TestTakeCorrelatesRecordsAndPins(t *testing.T) {
	st := &fakeLister{recs: []store.MapRecord{
		rec("healthy", "/run/x/fs/maps/healthy"),
		rec("gone", "/run/x/fs/maps/gone"),
	}}
	sc := &fakeScanner{pins: []bpffs.MapPin{
		{Name: "healthy", Path: "/run/x/fs/maps/healthy"},
		{Name: "stray", Path: "/run/x/fs/maps/stray"},
	}}

	snap, err := inspect.Take(context.Background(), st, sc)
	require.NoError(t, err)
	require.Len(t, snap.Maps, 3)

	// Sorted by name.
	assert.Equal(t, "gone", snap.Maps[0].Name)
	assert.Equal(t, "healthy", snap.Maps[1].Name)
	assert.Equal(t, "stray", snap.Maps[2].Name)

	orphans := snap.Orphans()
	require.Len(t, orphans, 1)
	assert.Equal(t, "stray", orphans[0].Name)

	missing := snap.MissingPins()
	require.Len(t, missing, 1)
	assert.Equal(t, "gone", missing[0].Name)
}

func TestTakeHealthyStateHasNoFindings(t *testing.T) {
	st := &fakeLister{recs: []store.MapRecord{rec("a", "/p/a")}}
	sc := &fakeScanner{pins: []bpffs.MapPin{{Name: "a", Path: "/p/a"}}}

	snap, err := inspect.Take(context.Background(), st, sc)
	require.NoError(t, err)
	assert.Empty(t, snap.Orphans())
	assert.Empty(t, snap.MissingPins())
	require.Len(t, snap.Maps, 1)
	assert.False(t, snap.Maps[0].Orphaned())
	assert.False(t, snap.Maps[0].MissingPin())
}

func TestTakeUnpinnedRecordIsNotMissing(t *testing.T) {
	r := rec("ephemeral", "")
	r.Pinning = 0
	st := &fakeLister{recs: []store.MapRecord{r}}
	sc := &fakeScanner{}

	snap, err := inspect.Take(context.Background(), st, sc)
	require.NoError(t, err)
	assert.Empty(t, snap.MissingPins())
}
