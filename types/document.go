package types

// Document is a single indexable unit: an identifier plus named field values.
// A field value may be a scalar or a []any for multi-valued fields.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// NewDocument creates an empty document with the given ID.
func NewDocument(id string) *Document {
	return &Document{ID: id, Fields: make(map[string]any)}
}

// SetField sets a field value, replacing any existing value.
// Setting the reserved "id" field also updates the document ID.
func (d *Document) SetField(name string, value any) {
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	if name == "id" {
		if s, ok := value.(string); ok {
			d.ID = s
		}
	}
	d.Fields[name] = value
}

// AddField appends a value to a field, promoting it to multi-valued
// when a value is already present.
func (d *Document) AddField(name string, value any) {
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	existing, ok := d.Fields[name]
	if !ok {
		d.SetField(name, value)
		return
	}
	if vs, ok := existing.([]any); ok {
		d.Fields[name] = append(vs, value)
		return
	}
	d.Fields[name] = []any{existing, value}
}

// GetField returns the value of a field.
func (d *Document) GetField(name string) (any, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// Clone returns a shallow copy with its own field map.
func (d *Document) Clone() *Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return &Document{ID: d.ID, Fields: fields}
}
