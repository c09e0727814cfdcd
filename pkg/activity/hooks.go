// Package activity fans catalog mutation events out to subscriber hooks.
// Every settled catalog transition (option save/delete/reorder, price or
// availability edit, group propagation, grouping change) produces exactly one
// event; persistence adapters subscribe to save after each settled state.
package activity

import (
	"context"
	"errors"
	"time"
)

// Event describes one settled catalog mutation.
type Event struct {
	// ID is a unique event identifier, stamped by the emitter when empty.
	ID string
	// Verb names the mutation, e.g. VerbOptionSaved.
	Verb string
	// ObjectType identifies the mutated entity kind (option, variant, group).
	ObjectType string
	// ObjectID identifies the mutated entity (option id, variant id, group value).
	ObjectID string
	// Channel routes the event; defaults to the emitter's channel.
	Channel string
	// Metadata carries mutation details (old/new values, member ids).
	Metadata map[string]any
	// OccurredAt is when the mutation settled.
	OccurredAt time.Time
}

// Verbs emitted by a catalog.
const (
	VerbOptionAdded          = "option.added"
	VerbOptionSaved          = "option.saved"
	VerbOptionDeleted        = "option.deleted"
	VerbOptionsReordered     = "options.reordered"
	VerbOptionValuesReordered = "option.values.reordered"
	VerbPriceSet             = "variant.price.set"
	VerbAvailableSet         = "variant.available.set"
	VerbGroupPricePropagated = "group.price.propagated"
	VerbGroupPriceSeeded     = "group.price.seeded"
	VerbGroupByChanged       = "groupby.changed"
)

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to all hooks, returning a joined error if any
// fail. It normalizes the event and short-circuits when required fields are
// missing.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
