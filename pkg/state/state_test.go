package state_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	variants "github.com/goliatone/go-variants"
	"github.com/goliatone/go-variants/pkg/activity"
	"github.com/goliatone/go-variants/pkg/state"
)

func testOptions() []variants.Option {
	return []variants.Option{
		{ID: "opt-color", Name: "Color", Values: []string{"Black", "White"}},
		{ID: "opt-size", Name: "Size", Values: []string{"S", "M"}},
	}
}

func TestRefIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		ref     state.Ref
		want    string
		wantErr bool
	}{
		{name: "options", ref: state.Ref{Catalog: "shop", Record: state.RecordOptions}, want: "shop/options"},
		{name: "prices", ref: state.Ref{Catalog: "shop", Record: state.RecordPrices}, want: "shop/prices"},
		{name: "availability", ref: state.Ref{Catalog: "shop", Record: state.RecordAvailability}, want: "shop/availability"},
		{name: "default catalog", ref: state.Ref{Record: state.RecordOptions}, want: "default/options"},
		{name: "unknown record", ref: state.Ref{Catalog: "shop", Record: "variants"}, wantErr: true},
		{name: "empty record", ref: state.Ref{Catalog: "shop"}, wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if tc.wantErr {
				if !errors.Is(err, state.ErrUnknownRecord) {
					t.Fatalf("expected ErrUnknownRecord, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := state.NewMemoryStore[map[string]string]()
	ctx := context.Background()
	ref := state.Ref{Catalog: "shop", Record: state.RecordPrices}

	if _, _, ok, err := store.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected miss on empty store, got ok=%v err=%v", ok, err)
	}

	meta := state.Meta{SnapshotID: "snap-1", Extra: map[string]string{"source": "test"}}
	if _, err := store.Save(ctx, ref, map[string]string{"variant-0": "10.00"}, meta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, gotMeta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if snapshot["variant-0"] != "10.00" {
		t.Fatalf("unexpected snapshot: %v", snapshot)
	}
	if gotMeta.SnapshotID != "snap-1" {
		t.Fatalf("unexpected meta: %+v", gotMeta)
	}

	gotMeta.Extra["source"] = "mutated"
	_, again, _, _ := store.Load(ctx, ref)
	if again.Extra["source"] != "test" {
		t.Fatalf("expected stored meta to be detached from callers")
	}

	if _, _, _, err := store.Load(ctx, state.Ref{Catalog: "shop", Record: "bogus"}); !errors.Is(err, state.ErrUnknownRecord) {
		t.Fatalf("expected ErrUnknownRecord, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := state.NewFileStore[[]variants.Option](dir)
	ctx := context.Background()
	ref := state.Ref{Catalog: "shop", Record: state.RecordOptions}

	if _, _, ok, err := store.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected miss before first save, got ok=%v err=%v", ok, err)
	}

	meta := state.Meta{SnapshotID: "snap-1"}
	if _, err := store.Save(ctx, ref, testOptions(), meta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "shop", "options.json")); err != nil {
		t.Fatalf("expected record file on disk: %v", err)
	}

	snapshot, gotMeta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(snapshot) != 2 || snapshot[0].Name != "Color" || snapshot[1].Values[1] != "M" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if gotMeta.SnapshotID != "snap-1" {
		t.Fatalf("unexpected meta: %+v", gotMeta)
	}
}

func TestFileStoreLegacyPayloads(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Bare object: a prices record saved without an envelope.
	pricesPath := filepath.Join(dir, "shop", "prices.json")
	if err := os.MkdirAll(filepath.Dir(pricesPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(pricesPath, []byte(`{"variant-0": "10.00"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	prices := state.NewFileStore[map[string]string](dir)
	snapshot, meta, ok, err := prices.Load(ctx, state.Ref{Catalog: "shop", Record: state.RecordPrices})
	if err != nil || !ok {
		t.Fatalf("expected legacy object to load, got ok=%v err=%v", ok, err)
	}
	if snapshot["variant-0"] != "10.00" {
		t.Fatalf("unexpected snapshot: %v", snapshot)
	}
	if meta.SnapshotID != "" {
		t.Fatalf("expected empty meta for legacy payload, got %+v", meta)
	}

	// Bare array: an options record saved without an envelope.
	optionsPath := filepath.Join(dir, "shop", "options.json")
	if err := os.WriteFile(optionsPath, []byte(`[{"id":"opt-color","name":"Color","values":["Black"]}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	options := state.NewFileStore[[]variants.Option](dir)
	restored, _, ok, err := options.Load(ctx, state.Ref{Catalog: "shop", Record: state.RecordOptions})
	if err != nil || !ok {
		t.Fatalf("expected legacy array to load, got ok=%v err=%v", ok, err)
	}
	if len(restored) != 1 || restored[0].Name != "Color" {
		t.Fatalf("unexpected snapshot: %+v", restored)
	}
}

func TestFileStoreCorruptPayload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default", "prices.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"snapshot": `), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := state.NewFileStore[map[string]string](dir)
	if _, _, _, err := store.Load(context.Background(), state.Ref{Record: state.RecordPrices}); err == nil {
		t.Fatalf("expected decode error for corrupt payload")
	}
}

func TestKeeperRoundTrip(t *testing.T) {
	keeper := state.NewMemoryKeeper()
	ctx := context.Background()

	c := variants.Restore(testOptions(), map[string]string{"variant-0": "10.00"}, map[string]int{"variant-3": 4})
	if err := keeper.SaveCatalog(ctx, "shop", c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := keeper.LoadCatalog(ctx, "shop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Variants()) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(loaded.Variants()))
	}
	if got := loaded.Ledger().Price("variant-0"); got != "10.00" {
		t.Fatalf("expected persisted price, got %q", got)
	}
	if got := loaded.Ledger().Available("variant-3"); got != 4 {
		t.Fatalf("expected persisted availability, got %d", got)
	}
}

func TestKeeperLoadAbsentCatalog(t *testing.T) {
	keeper := state.NewMemoryKeeper()

	loaded, err := keeper.LoadCatalog(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("expected absent records to load as defaults, got %v", err)
	}
	if len(loaded.Options()) != 0 || len(loaded.Variants()) != 0 {
		t.Fatalf("expected empty catalog, got %d options", len(loaded.Options()))
	}
}

func TestKeeperValidates(t *testing.T) {
	var keeper state.Keeper
	if _, err := keeper.LoadCatalog(context.Background(), "shop"); err == nil {
		t.Fatalf("expected incomplete keeper to be rejected")
	}
	if err := keeper.SaveCatalog(context.Background(), "shop", variants.New()); err == nil {
		t.Fatalf("expected incomplete keeper to be rejected")
	}
	if err := state.NewMemoryKeeper().SaveCatalog(context.Background(), "shop", nil); err == nil {
		t.Fatalf("expected nil catalog to be rejected")
	}
}

func TestSaveHookPersistsEveryMutation(t *testing.T) {
	keeper := state.NewFileKeeper(t.TempDir())
	ctx := context.Background()

	var c *variants.Catalog
	c = variants.New(variants.WithActivityHooks(activity.Hooks{
		state.SaveHook(keeper, "shop", func() *variants.Catalog { return c }),
	}))

	if _, err := c.SaveOption("", "Color", []string{"Black", "White"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.SetPrice("variant-0", "10.00")

	loaded, err := keeper.LoadCatalog(ctx, "shop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Variants()) != 2 {
		t.Fatalf("expected persisted catalog to derive 2 variants, got %d", len(loaded.Variants()))
	}
	if got := loaded.Ledger().Price("variant-0"); got != "10.00" {
		t.Fatalf("expected persisted price, got %q", got)
	}
}

func TestSaveHookToleratesMissingCatalog(t *testing.T) {
	keeper := state.NewMemoryKeeper()
	hook := state.SaveHook(keeper, "shop", nil)
	if err := hook.Notify(context.Background(), activity.Event{Verb: activity.VerbPriceSet}); err != nil {
		t.Fatalf("expected nil provider to be a no-op, got %v", err)
	}

	hook = state.SaveHook(keeper, "shop", func() *variants.Catalog { return nil })
	if err := hook.Notify(context.Background(), activity.Event{Verb: activity.VerbPriceSet}); err != nil {
		t.Fatalf("expected nil catalog to be a no-op, got %v", err)
	}
}
