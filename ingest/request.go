package ingest

import "github.com/seekframe/indexd/params"

// Request carries the effective parameters of one update request
// through dispatch and loading. Parameters are layered: explicit
// request parameters sit above endpoint presets, which sit above any
// loader-preferred defaults injected during dispatch.
type Request struct {
	p params.Params
}

// NewRequest creates a request with the given effective parameters.
// A nil value behaves as an empty parameter set.
func NewRequest(p params.Params) *Request {
	if p == nil {
		p = params.MapParams{}
	}
	return &Request{p: p}
}

// Params returns the current effective parameters.
func (r *Request) Params() params.Params {
	return r.p
}

// SetParams replaces the effective parameters. The dispatcher uses
// this to layer loader-preferred defaults below what is already set.
func (r *Request) SetParams(p params.Params) {
	if p == nil {
		p = params.MapParams{}
	}
	r.p = p
}
