package ingest

import (
	"bytes"
	"io"

	"github.com/seekframe/indexd/types"
)

// ContentStream is one payload of an update request. A request may
// carry several streams (raw body, stream.body parameter, multipart
// parts), each with its own content type.
type ContentStream interface {
	// Name identifies the stream origin for logs and errors.
	Name() string

	// ContentType returns the stream's self-reported media type,
	// possibly with parameters ("application/json; charset=utf-8"),
	// or "" when unknown.
	ContentType() string

	// Size returns the payload size in bytes, or -1 when unknown.
	Size() int64

	// Open returns a reader over the payload. Callers close it.
	Open() (io.ReadCloser, error)
}

// ByteStream is an in-memory ContentStream. It may be opened any
// number of times.
type ByteStream struct {
	name        string
	contentType string
	data        []byte
}

// NewByteStream creates a stream over data.
func NewByteStream(name, contentType string, data []byte) *ByteStream {
	return &ByteStream{name: name, contentType: contentType, data: data}
}

// Name identifies the stream origin.
func (s *ByteStream) Name() string { return s.name }

// ContentType returns the stream's media type.
func (s *ByteStream) ContentType() string { return s.contentType }

// Size returns the payload size.
func (s *ByteStream) Size() int64 { return int64(len(s.data)) }

// Open returns a fresh reader over the payload.
func (s *ByteStream) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// ReaderStream wraps a streaming payload, typically a request body.
// It can be opened exactly once.
type ReaderStream struct {
	name        string
	contentType string
	size        int64
	r           io.Reader
	opened      bool
}

// NewReaderStream creates a stream over r. Pass size -1 when the
// payload length is unknown.
func NewReaderStream(name, contentType string, size int64, r io.Reader) *ReaderStream {
	return &ReaderStream{name: name, contentType: contentType, size: size, r: r}
}

// Name identifies the stream origin.
func (s *ReaderStream) Name() string { return s.name }

// ContentType returns the stream's media type.
func (s *ReaderStream) ContentType() string { return s.contentType }

// Size returns the declared payload size, or -1 when unknown.
func (s *ReaderStream) Size() int64 { return s.size }

// Open returns the underlying reader. A second Open fails because the
// reader has already been handed out.
func (s *ReaderStream) Open() (io.ReadCloser, error) {
	if s.opened {
		return nil, types.NewError(types.ErrInternalError,
			"stream "+s.name+" already consumed")
	}
	s.opened = true
	if rc, ok := s.r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(s.r), nil
}
