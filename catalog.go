package variants

import (
	"context"
	"fmt"

	"github.com/goliatone/go-variants/pkg/activity"
)

// Catalog owns the option set, the derived variant list, the ledger, and the
// group-by selection, funneling every mutation through one synchronous
// transition: mutate, re-derive, reconcile, emit. It is single-threaded by
// contract: one owner mutates it, and it carries no internal locking.
type Catalog struct {
	cfg      catalogConfig
	options  *OptionSet
	ledger   *Ledger
	variants []Variant
	groupBy  string
	emitter  *activity.Emitter
}

// New constructs an empty catalog.
func New(opts ...CatalogOption) *Catalog {
	cfg := applyCatalogOptions(opts)
	return &Catalog{
		cfg:     cfg,
		options: newOptionSet(cfg.newID),
		ledger:  NewLedger(),
		groupBy: GroupByNone,
		emitter: activity.NewEmitter(cfg.hooks, cfg.activity),
	}
}

// Restore rebuilds a catalog from persisted records. Absent records load as
// empty defaults, never as errors: nil options, prices, and availability are
// all valid. One derive+reconcile pass runs before the catalog is returned,
// so ledger entries for ids the restored options no longer produce are
// pruned, and new ids gain defaults.
func Restore(options []Option, prices map[string]string, availability map[string]int, opts ...CatalogOption) *Catalog {
	c := New(opts...)
	c.options.replace(options)
	c.ledger.restore(prices, availability)
	c.refresh()
	return c
}

// Options returns the ordered option list.
func (c *Catalog) Options() []Option {
	return c.options.Options()
}

// OptionNames returns the option names in order.
func (c *Catalog) OptionNames() []string {
	return c.options.Names()
}

// Variants returns the current derived variant list.
func (c *Catalog) Variants() []Variant {
	out := make([]Variant, 0, len(c.variants))
	for _, variant := range c.variants {
		out = append(out, variant.clone())
	}
	return out
}

// Ledger exposes the variant state for reads (price display, availability).
// Mutations should go through the catalog operations so events fire.
func (c *Catalog) Ledger() *Ledger {
	return c.ledger
}

// GroupBySelection returns the active grouping option name, or GroupByNone.
func (c *Catalog) GroupBySelection() string {
	return c.groupBy
}

// TotalAvailable sums stock across all variants.
func (c *Catalog) TotalAvailable() int {
	return c.ledger.TotalAvailable()
}

// AddOption appends a blank option ready for editing. Returns false without
// mutating anything when the catalog already holds MaxOptions options.
func (c *Catalog) AddOption() (Option, bool) {
	option, ok := c.options.Add()
	if !ok {
		return Option{}, false
	}
	c.refresh()
	c.emit(activity.VerbOptionAdded, "option", option.ID, nil)
	return option, true
}

// SaveOption validates and upserts an option, then recomputes the variant
// list and reconciles the ledger. When the edited option is the grouping
// target and its name changes, the selection follows the new name.
func (c *Catalog) SaveOption(id, name string, values []string) (Option, error) {
	oldName := ""
	if id != "" {
		if existing, ok := c.options.Get(id); ok {
			oldName = existing.Name
		}
	}

	option, err := c.options.Save(id, name, values)
	if err != nil {
		return Option{}, err
	}

	if oldName != "" && c.groupBy == oldName && option.Name != oldName {
		c.groupBy = option.Name
	}

	c.refresh()
	c.emit(activity.VerbOptionSaved, "option", option.ID, map[string]any{
		"name":   option.Name,
		"values": append([]string(nil), option.Values...),
	})
	return option, nil
}

// DeleteOption removes an option. When the removed option was the grouping
// target, the selection resets: to the sole remaining option's name when
// exactly one option is left, otherwise to GroupByNone.
func (c *Catalog) DeleteOption(id string) bool {
	removed, ok := c.options.Delete(id)
	if !ok {
		return false
	}

	if c.groupBy == removed.Name {
		if c.options.Len() == 1 {
			c.groupBy = c.options.Names()[0]
		} else {
			c.groupBy = GroupByNone
		}
	}

	c.refresh()
	c.emit(activity.VerbOptionDeleted, "option", removed.ID, map[string]any{
		"name": removed.Name,
	})
	return true
}

// ReorderOptions replaces the option order; ids must be a permutation of the
// current option ids. Reordering re-derives the variant list, realigning
// positional ids to different combinations.
func (c *Catalog) ReorderOptions(ids []string) error {
	if err := c.options.Reorder(ids); err != nil {
		return err
	}
	c.refresh()
	c.emit(activity.VerbOptionsReordered, "options", "order", map[string]any{
		"ids": append([]string(nil), ids...),
	})
	return nil
}

// ReorderOptionValues replaces one option's value order; values must be a
// permutation of the option's current values.
func (c *Catalog) ReorderOptionValues(id string, values []string) error {
	if err := c.options.ReorderValues(id, values); err != nil {
		return err
	}
	c.refresh()
	c.emit(activity.VerbOptionValuesReordered, "option", id, map[string]any{
		"values": append([]string(nil), values...),
	})
	return nil
}

// SetGroupBy selects the grouping option by name, or GroupByNone for the
// flat view. Unknown names are rejected.
func (c *Catalog) SetGroupBy(name string) bool {
	if name != GroupByNone {
		found := false
		for _, optionName := range c.options.Names() {
			if optionName == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.groupBy == name {
		return true
	}
	c.groupBy = name
	c.emit(activity.VerbGroupByChanged, "groupby", name, nil)
	return true
}

// Groups partitions the current variants by the active grouping selection.
// Returns nil when grouping is disabled.
func (c *Catalog) Groups() []Group {
	return GroupBy(c.options.Options(), c.variants, c.groupBy)
}

// SetPrice stores raw price text for one variant. A direct single-variant
// edit never propagates to siblings; it is how a converged group diverges.
func (c *Catalog) SetPrice(variantID, raw string) bool {
	if !c.ledger.SetPrice(variantID, raw) {
		return false
	}
	c.emit(activity.VerbPriceSet, "variant", variantID, map[string]any{
		"price": raw,
	})
	return true
}

// SetAvailable coerces and stores a stock count for one variant.
func (c *Catalog) SetAvailable(variantID, raw string) bool {
	if !c.ledger.SetAvailable(variantID, raw) {
		return false
	}
	c.emit(activity.VerbAvailableSet, "variant", variantID, map[string]any{
		"available": c.ledger.Available(variantID),
	})
	return true
}

// SetGroupPrice applies a representative price edit: raw must parse to a
// finite number >= 0 and representativeID must be the representative of one of
// the current groups. On success every member of that group carries the same
// raw price.
func (c *Catalog) SetGroupPrice(representativeID, raw string) error {
	group, ok := c.groupForRepresentative(representativeID)
	if !ok {
		return fmt.Errorf("variants: %q is not a group representative", representativeID)
	}
	if err := group.PropagatePrice(c.ledger, raw); err != nil {
		return err
	}
	c.emit(activity.VerbGroupPricePropagated, "group", group.Value, map[string]any{
		"price":   raw,
		"members": VariantIDs(group.Variants),
	})
	return nil
}

// SeedGroupFromMinimum reconverges a diverged group by re-seeding its
// representative from the group's minimum parseable price, which is the
// behavior behind clicking a read-only range display. Returns the seeded
// price.
func (c *Catalog) SeedGroupFromMinimum(groupValue string) (string, bool) {
	for _, group := range c.Groups() {
		if group.Value != groupValue {
			continue
		}
		raw, ok := group.SeedFromMinimum(c.ledger)
		if !ok {
			return "", false
		}
		c.emit(activity.VerbGroupPriceSeeded, "group", group.Value, map[string]any{
			"price":   raw,
			"members": VariantIDs(group.Variants),
		})
		return raw, true
	}
	return "", false
}

func (c *Catalog) groupForRepresentative(variantID string) (Group, bool) {
	for _, group := range c.Groups() {
		representative, ok := group.Representative()
		if ok && representative.ID == variantID {
			return group, true
		}
	}
	return Group{}, false
}

// refresh runs the derive and reconcile half of every transition. The variant
// list is replaced, never patched.
func (c *Catalog) refresh() {
	c.variants = Derive(c.options.Options())
	c.ledger.Reconcile(VariantIDs(c.variants))
}

func (c *Catalog) emit(verb, objectType, objectID string, metadata map[string]any) {
	_ = c.emitter.Emit(context.Background(), activity.Event{
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
	})
}
