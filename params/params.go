package params

import (
	"net/url"
	"sort"
)

// Params is a read-only view of request parameters.
// Implementations must be safe for concurrent reads.
type Params interface {
	// Get returns the value for key and whether the key is present.
	Get(key string) (string, bool)

	// Keys returns all present keys, sorted.
	Keys() []string
}

// MapParams is a Params backed by a plain map.
type MapParams map[string]string

// Get returns the value for key.
func (m MapParams) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys returns all keys, sorted.
func (m MapParams) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// URLParams adapts url.Values; the first value wins for repeated keys.
type URLParams url.Values

// Get returns the first value for key.
func (u URLParams) Get(key string) (string, bool) {
	vs, ok := u[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Keys returns all keys, sorted.
func (u URLParams) Keys() []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
