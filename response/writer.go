package response

import (
	"io"
	"sort"
)

// Built-in writer names, matching the values accepted by the wt
// request parameter.
const (
	TypeJSON = "json"
	TypeXML  = "xml"
	TypeCSV  = "csv"
	TypeCBOR = "cbor"
)

// Writer serializes a response body.
type Writer interface {
	// ContentType returns the media type the writer produces.
	ContentType() string

	// Write serializes rsp to w.
	Write(w io.Writer, rsp *Response) error
}

// Registration pairs a writer name with its implementation, for
// registries extended at construction time.
type Registration struct {
	Name   string
	Writer Writer
}

// Registry maps writer names to writers. It is populated at
// construction and never mutated afterwards, so lookups are safe
// without synchronization.
type Registry struct {
	writers     map[string]Writer
	defaultName string
}

// NewRegistry creates a registry with the built-in writers plus any
// extra registrations. Extras may replace built-ins by name.
func NewRegistry(extra ...Registration) *Registry {
	r := &Registry{
		writers: map[string]Writer{
			TypeJSON: &JSONWriter{},
			TypeXML:  &XMLWriter{},
			TypeCSV:  &CSVWriter{},
			TypeCBOR: &CBORWriter{},
		},
		defaultName: TypeJSON,
	}
	for _, reg := range extra {
		if reg.Name == "" || reg.Writer == nil {
			continue
		}
		r.writers[reg.Name] = reg.Writer
	}
	return r
}

// WithDefault changes the default writer and returns the registry for
// construction-time chaining. Names without a registered writer keep
// the current default.
func (r *Registry) WithDefault(name string) *Registry {
	if _, ok := r.writers[name]; ok {
		r.defaultName = name
	}
	return r
}

// Lookup returns the writer registered under name.
func (r *Registry) Lookup(name string) (Writer, bool) {
	w, ok := r.writers[name]
	return w, ok
}

// Has reports whether a writer is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.writers[name]
	return ok
}

// Default returns the writer used when no wt parameter is present.
func (r *Registry) Default() Writer {
	return r.writers[r.defaultName]
}

// DefaultName returns the name of the default writer.
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Names returns all registered writer names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
