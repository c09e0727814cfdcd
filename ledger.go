package variants

import (
	"strconv"
	"strings"
)

// Entry is the editable state tracked per variant id.
type Entry struct {
	// Price is kept as entered text so partial numeric input ("12.") can
	// round-trip; it is semantically a non-negative decimal when parseable.
	Price string `json:"price"`
	// Available is a non-negative stock count.
	Available int `json:"available"`
}

// Ledger maps variant ids to their price/availability state. Membership is
// owned by Reconcile: entries appear when a derived variant id first shows up
// and disappear when it no longer does, while surviving ids keep their edits
// untouched. Because variant identity is positional, an entry may describe a
// different combination after options are reordered; the ledger knowingly
// inherits that from Derive.
type Ledger struct {
	entries map[string]Entry
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: map[string]Entry{}}
}

// Reconcile aligns the ledger with the current variant id set: missing ids
// gain a default entry (empty price, zero available), stale ids are pruned,
// and ids present on both sides are left alone. Calling it twice with the
// same ids is a no-op the second time.
func (l *Ledger) Reconcile(ids []string) {
	if l.entries == nil {
		l.entries = map[string]Entry{}
	}
	current := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		current[id] = struct{}{}
		if _, ok := l.entries[id]; !ok {
			l.entries[id] = Entry{}
		}
	}
	for id := range l.entries {
		if _, ok := current[id]; !ok {
			delete(l.entries, id)
		}
	}
}

// SetPrice stores raw verbatim for id. No validation happens at this layer;
// parseability only matters when a group propagates or displays prices.
// Returns false when id has no entry.
func (l *Ledger) SetPrice(id, raw string) bool {
	entry, ok := l.entries[id]
	if !ok {
		return false
	}
	entry.Price = raw
	l.entries[id] = entry
	return true
}

// SetAvailable coerces raw to a non-negative count. Non-numeric or negative
// input becomes 0 rather than an error. Returns false when id has no entry.
func (l *Ledger) SetAvailable(id, raw string) bool {
	entry, ok := l.entries[id]
	if !ok {
		return false
	}
	entry.Available = coerceAvailable(raw)
	l.entries[id] = entry
	return true
}

// Entry returns the state tracked for id.
func (l *Ledger) Entry(id string) (Entry, bool) {
	entry, ok := l.entries[id]
	return entry, ok
}

// Price returns the raw price text for id, or "" when untracked.
func (l *Ledger) Price(id string) string {
	return l.entries[id].Price
}

// Available returns the stock count for id, or 0 when untracked.
func (l *Ledger) Available(id string) int {
	return l.entries[id].Available
}

// Len reports how many variant ids are tracked.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// TotalAvailable sums the stock count across every tracked variant.
func (l *Ledger) TotalAvailable() int {
	total := 0
	for _, entry := range l.entries {
		total += entry.Available
	}
	return total
}

// Prices returns a detached id-to-raw-price map, suitable for persistence.
func (l *Ledger) Prices() map[string]string {
	out := make(map[string]string, len(l.entries))
	for id, entry := range l.entries {
		out[id] = entry.Price
	}
	return out
}

// Availability returns a detached id-to-count map, suitable for persistence.
func (l *Ledger) Availability() map[string]int {
	out := make(map[string]int, len(l.entries))
	for id, entry := range l.entries {
		out[id] = entry.Available
	}
	return out
}

func (l *Ledger) restore(prices map[string]string, availability map[string]int) {
	l.entries = map[string]Entry{}
	for id, price := range prices {
		entry := l.entries[id]
		entry.Price = price
		l.entries[id] = entry
	}
	for id, available := range availability {
		entry := l.entries[id]
		if available < 0 {
			available = 0
		}
		entry.Available = available
		l.entries[id] = entry
	}
}

func coerceAvailable(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
