package response

import (
	"bytes"
	"encoding/json"
)

// Response accumulates named values in insertion order. Values may be
// scalars, []any, map[string]any, or nested *Response.
type Response struct {
	entries []Entry
}

// Entry is a single named value.
type Entry struct {
	Key   string
	Value any
}

// New creates an empty response.
func New() *Response {
	return &Response{}
}

// Add appends a named value, preserving insertion order.
func (r *Response) Add(key string, value any) {
	r.entries = append(r.entries, Entry{Key: key, Value: value})
}

// Get returns the first value added under key.
func (r *Response) Get(key string) (any, bool) {
	for _, e := range r.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries returns the entries in insertion order.
func (r *Response) Entries() []Entry {
	return r.entries
}

// Len returns the number of entries.
func (r *Response) Len() int {
	return len(r.entries)
}

// Header builds the standard response header section.
func Header(status int, qtimeMillis int64) *Response {
	h := New()
	h.Add("status", status)
	h.Add("QTime", qtimeMillis)
	return h
}

// MarshalJSON writes the response as a JSON object with keys in
// insertion order.
func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// plain converts nested responses into plain maps for encoders that do
// not understand the Response type.
func plain(v any) any {
	switch t := v.(type) {
	case *Response:
		m := make(map[string]any, len(t.entries))
		for _, e := range t.entries {
			m[e.Key] = plain(e.Value)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	default:
		return v
	}
}
