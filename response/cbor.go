package response

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// CBORWriter serializes responses as a CBOR map.
type CBORWriter struct{}

// ContentType returns the CBOR media type.
func (w *CBORWriter) ContentType() string {
	return "application/cbor"
}

// Write serializes rsp to out.
func (w *CBORWriter) Write(out io.Writer, rsp *Response) error {
	return cbor.NewEncoder(out).Encode(plain(rsp))
}
