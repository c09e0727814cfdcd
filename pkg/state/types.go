package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Record names for the three persisted collections.
const (
	RecordOptions      = "options"
	RecordPrices       = "prices"
	RecordAvailability = "availability"
)

// DefaultCatalog is the catalog name used when Ref.Catalog is empty.
const DefaultCatalog = "default"

// ErrUnknownRecord guards against typoed record names so adapters fail
// loudly instead of writing orphan keys.
var ErrUnknownRecord = errors.New("state: unknown record")

// Ref identifies one persisted record for one catalog.
type Ref struct {
	Catalog string
	Record  string
}

// Identifier returns the deterministic storage key for the record.
func (r Ref) Identifier() (string, error) {
	switch r.Record {
	case RecordOptions, RecordPrices, RecordAvailability:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRecord, r.Record)
	}
	catalog := r.Catalog
	if catalog == "" {
		catalog = DefaultCatalog
	}
	return fmt.Sprintf("%s/%s", catalog, r.Record), nil
}

// Meta is storage-owned metadata used for trace/audit.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one record for a single reference. ok == false on Load
// means the record has never been saved; callers substitute an empty default.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}
