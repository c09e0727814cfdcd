package variants

import (
	"math"
	"strconv"
	"strings"
)

// GroupByNone disables grouping; callers treat the variant list as one flat
// sequence.
const GroupByNone = "none"

// Group is the subsequence of variants sharing one value of the grouping
// option. Groups are recomputed on demand and never stored.
type Group struct {
	// Value is the grouping option's value shared by every member.
	Value string
	// Variants keeps the relative order of the overall variant list.
	Variants []Variant
}

// GroupBy partitions variants by the value each one holds for the named
// option, preserving cartesian order within and across groups. Group order
// follows first appearance. optionName GroupByNone, an unknown name, or an
// empty variant list yield nil.
func GroupBy(options []Option, variants []Variant, optionName string) []Group {
	if optionName == GroupByNone {
		return nil
	}
	index := -1
	for i, option := range options {
		if option.Name == optionName {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	var groups []Group
	positions := map[string]int{}
	for _, variant := range variants {
		if index >= len(variant.Values) {
			continue
		}
		value := variant.Values[index]
		at, ok := positions[value]
		if !ok {
			positions[value] = len(groups)
			groups = append(groups, Group{Value: value})
			at = len(groups) - 1
		}
		groups[at].Variants = append(groups[at].Variants, variant.clone())
	}
	return groups
}

// Representative returns the group's first member in cartesian order, the
// variant whose price edits fan out to the rest of the group.
func (g Group) Representative() (Variant, bool) {
	if len(g.Variants) == 0 {
		return Variant{}, false
	}
	return g.Variants[0].clone(), true
}

// PriceDisplay renders the group's aggregate price: "" when no member has a
// parseable price, a single two-decimal amount when all parseable prices
// agree, and "<min> - <max>" when they diverge.
func (g Group) PriceDisplay(ledger *Ledger) string {
	min, max, ok := g.priceBounds(ledger)
	if !ok {
		return ""
	}
	if min == max {
		return formatPrice(min)
	}
	return formatPrice(min) + " - " + formatPrice(max)
}

// RepresentativeEditable reports whether the group row edits the
// representative directly: true when every sibling's price equals the
// representative's (converged, including all unset), or when no member has a
// price at all. A diverged group with a priced representative renders as a
// read-only range until SeedFromMinimum reconverges it.
func (g Group) RepresentativeEditable(ledger *Ledger) bool {
	if len(g.Variants) == 0 {
		return false
	}
	anySet := false
	for _, variant := range g.Variants {
		if strings.TrimSpace(ledger.Price(variant.ID)) != "" {
			anySet = true
			break
		}
	}
	if !anySet {
		return true
	}
	representative := ledger.Price(g.Variants[0].ID)
	for _, variant := range g.Variants[1:] {
		if ledger.Price(variant.ID) != representative {
			return false
		}
	}
	return true
}

// PropagatePrice applies a representative price edit to the whole group: raw
// must parse to a finite number >= 0, and on success every member stores the
// same raw string, so the group reports one equal, parseable price until a
// sibling is edited directly again. On rejection the ledger is unchanged.
func (g Group) PropagatePrice(ledger *Ledger, raw string) error {
	value, ok := parsePrice(raw)
	if !ok || value < 0 {
		return &ValidationError{
			Field:   "price",
			Message: strconv.Quote(raw) + " is not a valid price",
			Err:     ErrInvalidPrice,
		}
	}
	for _, variant := range g.Variants {
		ledger.SetPrice(variant.ID, raw)
	}
	return nil
}

// SeedFromMinimum re-seeds the representative from the group's current
// minimum parseable price and propagates it, reconverging a diverged group
// (the "click the range" behavior). Returns the seeded raw price, or false
// when no member has a parseable price.
func (g Group) SeedFromMinimum(ledger *Ledger) (string, bool) {
	raw := ""
	best := math.Inf(1)
	for _, variant := range g.Variants {
		price := ledger.Price(variant.ID)
		value, ok := parsePrice(price)
		if !ok {
			continue
		}
		if value < best {
			best = value
			raw = price
		}
	}
	if math.IsInf(best, 1) {
		return "", false
	}
	if err := g.PropagatePrice(ledger, raw); err != nil {
		return "", false
	}
	return raw, true
}

func (g Group) priceBounds(ledger *Ledger) (min, max float64, ok bool) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, variant := range g.Variants {
		value, parsed := parsePrice(ledger.Price(variant.ID))
		if !parsed {
			continue
		}
		ok = true
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}
	return min, max, ok
}

func parsePrice(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func formatPrice(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
