// Package store defines the persistence interface for the managed
// map registry.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// MapRecord is one managed map: the descriptor fields as declared,
// the kernel identity the loader observed, and where the pin lives
// (empty for unpinned maps).
type MapRecord struct {
	Name       string    `json:"name"`
	KernelID   uint32    `json:"kernel_id"`
	TypeTag    uint32    `json:"type_tag"`
	KeySize    uint32    `json:"key_size"`
	ValueSize  uint32    `json:"value_size"`
	MaxEntries uint32    `json:"max_entries"`
	Flags      uint32    `json:"flags"`
	Pinning    uint32    `json:"pinning"`
	PinPath    string    `json:"pin_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists the managed map registry.
type Store interface {
	// SaveMap creates or updates a record keyed by name.
	SaveMap(ctx context.Context, rec MapRecord) error

	// GetMap retrieves a record by name. Returns ErrNotFound if the
	// name is not managed.
	GetMap(ctx context.Context, name string) (MapRecord, error)

	// ListMaps returns all records ordered by name.
	ListMaps(ctx context.Context) ([]MapRecord, error)

	// DeleteMap removes a record by name. Returns ErrNotFound if the
	// name is not managed.
	DeleteMap(ctx context.Context, name string) error

	// Close releases the store's resources.
	Close() error
}
