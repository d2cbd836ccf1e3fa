package ingest

import (
	"context"
	"sort"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/update"
)

// Media types the built-in loaders register under.
const (
	TypeXML     = "application/xml"
	TypeJSON    = "application/json"
	TypeCSV     = "application/csv"
	TypeJavabin = "application/javabin"

	// Textual aliases resolving to the same loader instances.
	TypeTextXML  = "text/xml"
	TypeTextJSON = "text/json"
	TypeTextCSV  = "text/csv"
)

// Loader parses one content stream and feeds the resulting commands to
// a processor chain. Implementations own their wire format; the
// dispatcher treats them as opaque and never interprets their errors.
type Loader interface {
	// Load parses stream and applies its commands through proc.
	// Results and diagnostics may be added to rsp.
	Load(ctx context.Context, req *Request, rsp *response.Response, stream ContentStream, proc update.Processor) error

	// DefaultWriterType names the response writer this loader prefers
	// when the request does not select one, or "" for no preference.
	DefaultWriterType() string
}

// Registration pairs a media type with a loader, for registries
// extended at construction time.
type Registration struct {
	ContentType string
	Loader      Loader
}

// Registry maps media types to loaders. It is populated once by
// NewRegistry and never mutated, so concurrent lookups need no
// synchronization.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry builds the loader registry. Every built-in loader is
// constructed once from cfg and registered under its canonical
// application/* type; the text/* aliases point at the same instances.
// Extra registrations are applied last and may replace built-ins.
func NewRegistry(cfg params.Params, extra ...Registration) *Registry {
	if cfg == nil {
		cfg = params.MapParams{}
	}
	xml := NewXMLLoader(cfg)
	json := NewJSONLoader(cfg)
	csv := NewCSVLoader(cfg)
	bin := NewBinaryLoader(cfg)

	r := &Registry{loaders: map[string]Loader{
		TypeXML:     xml,
		TypeJSON:    json,
		TypeCSV:     csv,
		TypeJavabin: bin,

		TypeTextXML:  xml,
		TypeTextJSON: json,
		TypeTextCSV:  csv,
	}}
	for _, reg := range extra {
		if reg.ContentType == "" || reg.Loader == nil {
			continue
		}
		r.loaders[reg.ContentType] = reg.Loader
	}
	return r
}

// Lookup returns the loader registered under the exact media type.
func (r *Registry) Lookup(contentType string) (Loader, bool) {
	l, ok := r.loaders[contentType]
	return l, ok
}

// Types returns all registered media types, sorted.
func (r *Registry) Types() []string {
	ts := make([]string, 0, len(r.loaders))
	for t := range r.loaders {
		ts = append(ts, t)
	}
	sort.Strings(ts)
	return ts
}
