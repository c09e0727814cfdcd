package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	variants "github.com/goliatone/go-variants"
	"github.com/goliatone/go-variants/pkg/activity"
)

// Keeper bundles the three typed record stores and orchestrates catalog
// load/save. Loading happens once before first use; saving happens after
// each settled mutation (see SaveHook). A missing record loads as its empty
// default, never as an error.
type Keeper struct {
	Options      Store[[]variants.Option]
	Prices       Store[map[string]string]
	Availability Store[map[string]int]
}

// NewMemoryKeeper wires a Keeper over in-memory stores, for tests and
// examples.
func NewMemoryKeeper() Keeper {
	return Keeper{
		Options:      NewMemoryStore[[]variants.Option](),
		Prices:       NewMemoryStore[map[string]string](),
		Availability: NewMemoryStore[map[string]int](),
	}
}

// NewFileKeeper wires a Keeper over file stores rooted at dir.
func NewFileKeeper(dir string) Keeper {
	return Keeper{
		Options:      NewFileStore[[]variants.Option](dir),
		Prices:       NewFileStore[map[string]string](dir),
		Availability: NewFileStore[map[string]int](dir),
	}
}

func (k Keeper) validate() error {
	if k.Options == nil || k.Prices == nil || k.Availability == nil {
		return fmt.Errorf("state: keeper requires options, prices, and availability stores")
	}
	return nil
}

// LoadCatalog loads the three records for catalog and rebuilds a
// variants.Catalog from them. Absent records are empty defaults.
func (k Keeper) LoadCatalog(ctx context.Context, catalog string, opts ...variants.CatalogOption) (*variants.Catalog, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}

	options, _, _, err := loadRecord(ctx, k.Options, Ref{Catalog: catalog, Record: RecordOptions})
	if err != nil {
		return nil, err
	}
	prices, _, _, err := loadRecord(ctx, k.Prices, Ref{Catalog: catalog, Record: RecordPrices})
	if err != nil {
		return nil, err
	}
	availability, _, _, err := loadRecord(ctx, k.Availability, Ref{Catalog: catalog, Record: RecordAvailability})
	if err != nil {
		return nil, err
	}

	return variants.Restore(options, prices, availability, opts...), nil
}

// SaveCatalog snapshots the catalog's three records, stamping each save with
// a fresh snapshot id and timestamp.
func (k Keeper) SaveCatalog(ctx context.Context, catalog string, c *variants.Catalog) error {
	if err := k.validate(); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("state: catalog is required")
	}

	meta := Meta{
		SnapshotID: uuid.NewString(),
		UpdatedAt:  time.Now(),
	}
	if _, err := k.Options.Save(ctx, Ref{Catalog: catalog, Record: RecordOptions}, c.Options(), meta); err != nil {
		return fmt.Errorf("state: save options: %w", err)
	}
	if _, err := k.Prices.Save(ctx, Ref{Catalog: catalog, Record: RecordPrices}, c.Ledger().Prices(), meta); err != nil {
		return fmt.Errorf("state: save prices: %w", err)
	}
	if _, err := k.Availability.Save(ctx, Ref{Catalog: catalog, Record: RecordAvailability}, c.Ledger().Availability(), meta); err != nil {
		return fmt.Errorf("state: save availability: %w", err)
	}
	return nil
}

// SaveHook returns an activity hook that persists the catalog after every
// settled mutation. Wire it via variants.WithActivityHooks so the core stays
// storage-agnostic while each transition still lands on disk:
//
//	var c *variants.Catalog
//	c = variants.New(variants.WithActivityHooks(activity.Hooks{
//		state.SaveHook(keeper, "default", func() *variants.Catalog { return c }),
//	}))
func SaveHook(keeper Keeper, catalog string, current func() *variants.Catalog) activity.HookFunc {
	return func(ctx context.Context, _ activity.Event) error {
		if current == nil {
			return nil
		}
		c := current()
		if c == nil {
			return nil
		}
		return keeper.SaveCatalog(ctx, catalog, c)
	}
}

func loadRecord[T any](ctx context.Context, store Store[T], ref Ref) (T, Meta, bool, error) {
	snapshot, meta, ok, err := store.Load(ctx, ref)
	if err != nil {
		var zero T
		return zero, Meta{}, false, fmt.Errorf("state: load %s: %w", ref.Record, err)
	}
	return snapshot, meta, ok, nil
}
