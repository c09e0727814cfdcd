package variants

// ProgramCache stores compiled expression programs keyed by expression
// strings. Implementations decide eviction; evaluators only Get and Set.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapCache is the trivial ProgramCache: an unbounded map. Good enough for
// the handful of distinct predicates a variant editor sees.
type MapCache map[string]any

// NewMapCache returns an empty MapCache ready for use.
func NewMapCache() MapCache {
	return MapCache{}
}

// Get implements ProgramCache.
func (c MapCache) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// Set implements ProgramCache.
func (c MapCache) Set(key string, value any) {
	c[key] = value
}
