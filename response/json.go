package response

import (
	"encoding/json"
	"io"
)

// JSONWriter serializes responses as a JSON object with keys in
// insertion order.
type JSONWriter struct {
	Indent bool
}

// ContentType returns the JSON media type.
func (w *JSONWriter) ContentType() string {
	return "application/json"
}

// Write serializes rsp to out.
func (w *JSONWriter) Write(out io.Writer, rsp *Response) error {
	enc := json.NewEncoder(out)
	if w.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rsp)
}
