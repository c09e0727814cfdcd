package variants

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/goliatone/go-variants/pkg/activity"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("option-%d", n)
	}
}

func newColorSizeCatalog(t *testing.T, opts ...CatalogOption) *Catalog {
	t.Helper()
	opts = append([]CatalogOption{WithIDGenerator(sequentialIDs())}, opts...)
	c := New(opts...)
	if _, err := c.SaveOption("", "Color", []string{"Black", "White"}); err != nil {
		t.Fatalf("save Color: %v", err)
	}
	if _, err := c.SaveOption("", "Size", []string{"S", "M"}); err != nil {
		t.Fatalf("save Size: %v", err)
	}
	return c
}

func TestCatalogDerivesOnSave(t *testing.T) {
	c := newColorSizeCatalog(t)

	list := c.Variants()
	if len(list) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(list))
	}
	if c.Ledger().Len() != 4 {
		t.Fatalf("expected reconciled ledger, got %d entries", c.Ledger().Len())
	}
	if list[0].Title != "Black / S" || list[3].Title != "White / M" {
		t.Fatalf("unexpected variant order: %v", list)
	}
}

func TestCatalogAddOptionCapacity(t *testing.T) {
	c := newColorSizeCatalog(t)
	if _, err := c.SaveOption("", "Material", []string{"Cotton"}); err != nil {
		t.Fatalf("save Material: %v", err)
	}
	if _, ok := c.AddOption(); ok {
		t.Fatalf("expected fourth option to be rejected")
	}
	if len(c.Options()) != MaxOptions {
		t.Fatalf("expected option count unchanged, got %d", len(c.Options()))
	}
}

func TestCatalogGroupedPricingScenario(t *testing.T) {
	c := newColorSizeCatalog(t)
	if !c.SetGroupBy("Color") {
		t.Fatalf("expected Color to be a valid grouping option")
	}

	groups := c.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	representative, _ := groups[0].Representative()

	// A representative edit fans out to the whole group.
	if err := c.SetGroupPrice(representative.ID, "10.00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Ledger().Price("variant-1"); got != "10.00" {
		t.Fatalf("expected Black / M to follow the representative, got %q", got)
	}
	if got := c.Groups()[0].PriceDisplay(c.Ledger()); got != "10.00" {
		t.Fatalf("expected converged display, got %q", got)
	}

	// A direct sibling edit diverges the group and locks the representative.
	c.SetPrice("variant-1", "12.00")
	black := c.Groups()[0]
	if got := black.PriceDisplay(c.Ledger()); got != "10.00 - 12.00" {
		t.Fatalf("expected range display, got %q", got)
	}
	if black.RepresentativeEditable(c.Ledger()) {
		t.Fatalf("expected representative to be read-only while diverged")
	}

	// Clicking the range seeds the representative from the minimum and
	// reconverges.
	raw, ok := c.SeedGroupFromMinimum("Black")
	if !ok || raw != "10.00" {
		t.Fatalf("expected seed 10.00, got %q (%v)", raw, ok)
	}
	black = c.Groups()[0]
	if got := black.PriceDisplay(c.Ledger()); got != "10.00" {
		t.Fatalf("expected reconverged display, got %q", got)
	}
	if !black.RepresentativeEditable(c.Ledger()) {
		t.Fatalf("expected representative to be editable again")
	}
}

func TestCatalogSetGroupPriceRejectsInvalid(t *testing.T) {
	c := newColorSizeCatalog(t)
	c.SetGroupBy("Color")
	representative, _ := c.Groups()[0].Representative()

	if err := c.SetGroupPrice(representative.ID, "-2"); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if err := c.SetGroupPrice("variant-1", "10.00"); err == nil {
		t.Fatalf("expected non-representative id to be rejected")
	}
}

func TestCatalogDeleteResetsGrouping(t *testing.T) {
	t.Run("one option remains", func(t *testing.T) {
		c := newColorSizeCatalog(t)
		c.SetGroupBy("Color")

		options := c.Options()
		if !c.DeleteOption(options[0].ID) {
			t.Fatalf("expected delete to succeed")
		}
		if got := c.GroupBySelection(); got != "Size" {
			t.Fatalf("expected grouping to fall back to the sole remaining option, got %q", got)
		}
	})

	t.Run("two options remain", func(t *testing.T) {
		c := newColorSizeCatalog(t)
		if _, err := c.SaveOption("", "Material", []string{"Cotton"}); err != nil {
			t.Fatalf("save Material: %v", err)
		}
		c.SetGroupBy("Color")

		if !c.DeleteOption(c.Options()[0].ID) {
			t.Fatalf("expected delete to succeed")
		}
		if got := c.GroupBySelection(); got != GroupByNone {
			t.Fatalf("expected grouping reset to none, got %q", got)
		}
	})

	t.Run("unrelated option", func(t *testing.T) {
		c := newColorSizeCatalog(t)
		c.SetGroupBy("Color")

		if !c.DeleteOption(c.Options()[1].ID) {
			t.Fatalf("expected delete to succeed")
		}
		if got := c.GroupBySelection(); got != "Color" {
			t.Fatalf("expected grouping selection to survive, got %q", got)
		}
	})
}

func TestCatalogSaveRetargetsGrouping(t *testing.T) {
	c := newColorSizeCatalog(t)
	c.SetGroupBy("Color")

	colorID := c.Options()[0].ID
	if _, err := c.SaveOption(colorID, "Colour", []string{"Black", "White"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.GroupBySelection(); got != "Colour" {
		t.Fatalf("expected grouping to follow the rename, got %q", got)
	}
}

func TestCatalogUnrelatedEditKeepsLedger(t *testing.T) {
	c := newColorSizeCatalog(t)
	c.SetPrice("variant-0", "10.00")
	c.SetAvailable("variant-3", "7")

	// Re-saving an option with identical content recomputes the same ids,
	// so user-entered state survives.
	colorID := c.Options()[0].ID
	if _, err := c.SaveOption(colorID, "Color", []string{"Black", "White"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Ledger().Price("variant-0"); got != "10.00" {
		t.Fatalf("expected price to survive unrelated edit, got %q", got)
	}
	if got := c.Ledger().Available("variant-3"); got != 7 {
		t.Fatalf("expected availability to survive unrelated edit, got %d", got)
	}
}

func TestCatalogReorderRealignsLedger(t *testing.T) {
	c := newColorSizeCatalog(t)
	c.SetPrice("variant-0", "10.00")

	options := c.Options()
	if err := c.ReorderOptions([]string{options[1].ID, options[0].ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Positional identity: variant-0 now describes S / Black but keeps the
	// price entered while it was Black / S.
	if got := c.Variants()[0].Title; got != "S / Black" {
		t.Fatalf("expected S / Black at position 0, got %q", got)
	}
	if got := c.Ledger().Price("variant-0"); got != "10.00" {
		t.Fatalf("expected entry to stay with the positional id, got %q", got)
	}
}

func TestCatalogSetGroupByValidation(t *testing.T) {
	c := newColorSizeCatalog(t)

	if c.SetGroupBy("Material") {
		t.Fatalf("expected unknown option name to be rejected")
	}
	if !c.SetGroupBy(GroupByNone) {
		t.Fatalf("expected none to always be accepted")
	}
}

func TestCatalogEmitsActivity(t *testing.T) {
	recorder := &activity.Recorder{}
	c := newColorSizeCatalog(t, WithActivityHooks(activity.Hooks{recorder}))

	c.SetGroupBy("Color")
	representative, _ := c.Groups()[0].Representative()
	if err := c.SetGroupPrice(representative.ID, "10.00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.SetPrice("variant-1", "12.00")
	c.SeedGroupFromMinimum("Black")

	want := []string{
		activity.VerbOptionSaved,
		activity.VerbOptionSaved,
		activity.VerbGroupByChanged,
		activity.VerbGroupPricePropagated,
		activity.VerbPriceSet,
		activity.VerbGroupPriceSeeded,
	}
	if !reflect.DeepEqual(recorder.Verbs(), want) {
		t.Fatalf("expected verbs %v, got %v", want, recorder.Verbs())
	}
	for _, event := range recorder.Events {
		if event.ID == "" {
			t.Fatalf("expected emitter to stamp event ids")
		}
		if event.Channel != "variants" {
			t.Fatalf("expected default channel, got %q", event.Channel)
		}
		if event.OccurredAt.IsZero() {
			t.Fatalf("expected emitter to stamp timestamps")
		}
	}
}

func TestCatalogRestore(t *testing.T) {
	restored := Restore(
		colorSizeOptions(),
		map[string]string{"variant-0": "10.00", "variant-9": "99.00"},
		map[string]int{"variant-1": 5},
		WithIDGenerator(sequentialIDs()),
	)

	if len(restored.Variants()) != 4 {
		t.Fatalf("expected restored catalog to derive 4 variants, got %d", len(restored.Variants()))
	}
	if got := restored.Ledger().Price("variant-0"); got != "10.00" {
		t.Fatalf("expected restored price, got %q", got)
	}
	if got := restored.Ledger().Available("variant-1"); got != 5 {
		t.Fatalf("expected restored availability, got %d", got)
	}
	// Records for ids the options no longer derive are pruned on restore.
	if _, ok := restored.Ledger().Entry("variant-9"); ok {
		t.Fatalf("expected stale persisted entry to be pruned")
	}

	empty := Restore(nil, nil, nil)
	if len(empty.Options()) != 0 || len(empty.Variants()) != 0 || empty.Ledger().Len() != 0 {
		t.Fatalf("expected absent records to restore an empty catalog")
	}
	if got := empty.GroupBySelection(); got != GroupByNone {
		t.Fatalf("expected none grouping on restore, got %q", got)
	}
}

func TestCatalogTotalAvailable(t *testing.T) {
	c := newColorSizeCatalog(t)
	c.SetAvailable("variant-0", "3")
	c.SetAvailable("variant-2", "4")
	if got := c.TotalAvailable(); got != 7 {
		t.Fatalf("expected total 7, got %d", got)
	}
}
