package variants

import (
	"fmt"
	"strings"
)

// TitleSeparator joins a combination's values into a variant title.
const TitleSeparator = " / "

// Derive expands options into the full ordered variant list: the cartesian
// product of the option values, in option order, with the last option varying
// fastest. Variant ids are positional ("variant-<index>" in output order), so
// two calls with equal option content produce identical output, while
// reordering options or values reassigns ids to different combinations.
//
// Zero options derive zero variants. Derive always returns a fresh slice;
// variant lists are replaced on every option change, never patched.
func Derive(options []Option) []Variant {
	if len(options) == 0 {
		return nil
	}

	total := 1
	for _, option := range options {
		total *= len(option.Values)
	}
	if total == 0 {
		return nil
	}

	out := make([]Variant, 0, total)
	combination := make([]string, len(options))

	var expand func(depth int)
	expand = func(depth int) {
		if depth == len(options) {
			values := append([]string(nil), combination...)
			out = append(out, Variant{
				ID:     fmt.Sprintf("variant-%d", len(out)),
				Title:  strings.Join(values, TitleSeparator),
				Values: values,
			})
			return
		}
		for _, value := range options[depth].Values {
			combination[depth] = value
			expand(depth + 1)
		}
	}
	expand(0)

	return out
}

// VariantIDs projects the ids of a derived variant list, preserving order.
func VariantIDs(list []Variant) []string {
	ids := make([]string, 0, len(list))
	for _, variant := range list {
		ids = append(ids, variant.ID)
	}
	return ids
}
