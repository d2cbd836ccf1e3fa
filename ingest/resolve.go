package ingest

import (
	"strings"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/types"
)

// ResolveContentType determines the media type used to pick a loader.
// The update.contentType request parameter wins over the stream's own
// Content-Type; when neither is set the request cannot be routed.
// Writer parameters after the first ";" (charset, boundary) are
// stripped. No other normalization happens, so registry keys are
// matched with the casing the client sent.
func ResolveContentType(p params.Params, stream ContentStream) (string, error) {
	ct, ok := p.Get(params.AssumeContentType)
	if !ok {
		ct = stream.ContentType()
	}
	if ct == "" {
		return "", types.NewError(types.ErrUnsupportedMediaType, "missing content type")
	}
	if idx := strings.Index(ct, ";"); idx > 0 {
		ct = ct[:idx]
	}
	return ct, nil
}
