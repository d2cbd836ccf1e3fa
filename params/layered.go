package params

import "sort"

// Layered resolves keys against an ordered list of sources; the first
// source that has the key wins. Later sources act as defaults.
type Layered struct {
	sources []Params
}

// Layer combines sources into a single Params, earlier sources taking
// precedence. Nil sources are skipped.
func Layer(sources ...Params) Params {
	kept := make([]Params, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	switch len(kept) {
	case 0:
		return MapParams{}
	case 1:
		return kept[0]
	}
	return &Layered{sources: kept}
}

// WrapDefaults returns a Params where defaults are consulted only for
// keys the primary does not have.
func WrapDefaults(primary, defaults Params) Params {
	return Layer(primary, defaults)
}

// Get returns the value from the first source that has the key.
func (l *Layered) Get(key string) (string, bool) {
	for _, s := range l.sources {
		if v, ok := s.Get(key); ok {
			return v, true
		}
	}
	return "", false
}

// Keys returns the union of all source keys, sorted and deduplicated.
func (l *Layered) Keys() []string {
	seen := make(map[string]struct{})
	for _, s := range l.sources {
		for _, k := range s.Keys() {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
