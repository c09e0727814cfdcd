package variants

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxOptions caps how many options a catalog can hold concurrently.
const MaxOptions = 3

// OptionSet owns the ordered option list and its uniqueness invariants:
// option names are case-insensitively unique across the set, values are
// case-sensitively unique within an option, and at most MaxOptions options
// exist at a time.
type OptionSet struct {
	options []Option
	newID   func() string
}

// NewOptionSet constructs an empty set. Option ids are uuid strings unless a
// generator is injected via newOptionSet.
func NewOptionSet() *OptionSet {
	return newOptionSet(nil)
}

func newOptionSet(newID func() string) *OptionSet {
	if newID == nil {
		newID = func() string { return "option-" + uuid.NewString() }
	}
	return &OptionSet{newID: newID}
}

// Add appends a blank option (empty name, one empty value slot) and returns
// it. The second return is false when the set is already at capacity; the set
// is left unchanged in that case.
func (s *OptionSet) Add() (Option, bool) {
	if len(s.options) >= MaxOptions {
		return Option{}, false
	}
	option := Option{
		ID:     s.newID(),
		Name:   "",
		Values: []string{""},
	}
	s.options = append(s.options, option)
	return option.clone(), true
}

// Save validates and upserts an option. An empty id creates a new option
// (subject to capacity); otherwise id must name an existing option. The name
// is trimmed and must be non-empty and unique among the other options
// (case-insensitive). Values are trimmed, empties dropped, and the remainder
// must be non-empty and unique (case-sensitive). On any validation failure
// the set is left untouched and a *ValidationError identifies the field.
func (s *OptionSet) Save(id, name string, values []string) (Option, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return Option{}, newValidationError("name", "option name is required")
	}
	if !IsOptionNameUnique(trimmedName, s.options, id) {
		return Option{}, newValidationError("name", fmt.Sprintf("option name %q is already in use", trimmedName))
	}

	trimmedValues := normalizeValues(values)
	if len(trimmedValues) == 0 {
		return Option{}, newValidationError("values", "at least one value is required")
	}
	if !AreValuesUnique(values) {
		return Option{}, newValidationError("values", "values must be unique")
	}

	if id == "" {
		if len(s.options) >= MaxOptions {
			return Option{}, ErrMaxOptions
		}
		option := Option{ID: s.newID(), Name: trimmedName, Values: trimmedValues}
		s.options = append(s.options, option)
		return option.clone(), nil
	}

	for i := range s.options {
		if s.options[i].ID != id {
			continue
		}
		s.options[i].Name = trimmedName
		s.options[i].Values = trimmedValues
		return s.options[i].clone(), nil
	}
	return Option{}, fmt.Errorf("%w: %s", ErrUnknownOption, id)
}

// Delete removes the option and returns it. The second return is false when
// id is not present.
func (s *OptionSet) Delete(id string) (Option, bool) {
	for i := range s.options {
		if s.options[i].ID != id {
			continue
		}
		removed := s.options[i]
		s.options = append(s.options[:i], s.options[i+1:]...)
		return removed, true
	}
	return Option{}, false
}

// Reorder replaces the option order. ids must be a permutation of the current
// option ids; reordering never needs re-validation because uniqueness is
// order-independent.
func (s *OptionSet) Reorder(ids []string) error {
	if len(ids) != len(s.options) {
		return fmt.Errorf("variants: reorder expects %d option ids, got %d", len(s.options), len(ids))
	}
	byID := make(map[string]Option, len(s.options))
	for _, option := range s.options {
		byID[option.ID] = option
	}
	reordered := make([]Option, 0, len(ids))
	for _, id := range ids {
		option, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownOption, id)
		}
		delete(byID, id)
		reordered = append(reordered, option)
	}
	s.options = reordered
	return nil
}

// ReorderValues replaces one option's value order. values must be a
// permutation of the option's current values.
func (s *OptionSet) ReorderValues(id string, values []string) error {
	for i := range s.options {
		if s.options[i].ID != id {
			continue
		}
		current := s.options[i].Values
		if len(values) != len(current) {
			return fmt.Errorf("variants: reorder expects %d values, got %d", len(current), len(values))
		}
		remaining := make(map[string]int, len(current))
		for _, value := range current {
			remaining[value]++
		}
		for _, value := range values {
			if remaining[value] == 0 {
				return fmt.Errorf("variants: value %q is not part of option %s", value, id)
			}
			remaining[value]--
		}
		s.options[i].Values = append([]string(nil), values...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownOption, id)
}

// Get returns the option with id.
func (s *OptionSet) Get(id string) (Option, bool) {
	for _, option := range s.options {
		if option.ID == id {
			return option.clone(), true
		}
	}
	return Option{}, false
}

// Options returns a detached copy of the ordered option list.
func (s *OptionSet) Options() []Option {
	out := make([]Option, 0, len(s.options))
	for _, option := range s.options {
		out = append(out, option.clone())
	}
	return out
}

// Names returns the option names in order.
func (s *OptionSet) Names() []string {
	names := make([]string, 0, len(s.options))
	for _, option := range s.options {
		names = append(names, option.Name)
	}
	return names
}

// Len reports how many options exist.
func (s *OptionSet) Len() int {
	return len(s.options)
}

func (s *OptionSet) replace(options []Option) {
	s.options = make([]Option, 0, len(options))
	for _, option := range options {
		s.options = append(s.options, option.clone())
	}
}

// IsOptionNameUnique reports whether name collides with no option in options
// other than excludeID. Comparison is case-insensitive.
func IsOptionNameUnique(name string, options []Option, excludeID string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for _, option := range options {
		if excludeID != "" && option.ID == excludeID {
			continue
		}
		if strings.ToLower(option.Name) == lowered {
			return false
		}
	}
	return true
}

// AreValuesUnique reports whether the trimmed, non-empty values are pairwise
// distinct. Comparison is case-sensitive; uniqueness is judged only over the
// non-empty trimmed set.
func AreValuesUnique(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			return false
		}
		seen[trimmed] = struct{}{}
	}
	return true
}

func normalizeValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
