package handlers

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seekframe/indexd/core"
	"github.com/seekframe/indexd/ingest"
	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

// =============================================================================
// 📥 Update endpoint handler
// =============================================================================

// multipartMemoryLimit caps how much of a multipart body is buffered
// in memory; larger parts spill to temp files.
const multipartMemoryLimit = 32 << 20

// UpdateHandler serves one update endpoint. Each registered path gets
// its own instance carrying that path's preset parameters; presets sit
// below the request's own parameters, so an explicit query or form
// value always wins.
type UpdateHandler struct {
	core    *core.Core
	presets params.MapParams
	logger  *zap.Logger
}

// NewUpdateHandler creates an update handler bound to a core. presets
// may be nil for endpoints without fixed defaults.
func NewUpdateHandler(c *core.Core, presets params.MapParams, logger *zap.Logger) *UpdateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateHandler{
		core:    c,
		presets: presets,
		logger:  logger.With(zap.String("component", "update_handler")),
	}
}

// ServeHTTP implements http.Handler.
func (h *UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest,
			"method not allowed", h.logger)
		return
	}

	start := time.Now()
	ctx := r.Context()

	reqParams, streams, err := h.parseRequest(r)
	if err != nil {
		WriteError(w, coerce(err), h.logger)
		return
	}

	req := ingest.NewRequest(params.Layer(reqParams, h.presets))
	rsp := response.New()
	proc := h.core.CreateProcessor()

	err = h.handleUpdate(ctx, req, rsp, streams, proc)
	if finishErr := proc.Finish(ctx); err == nil {
		err = finishErr
	}
	if err != nil {
		WriteError(w, coerce(err), h.logger)
		return
	}

	h.writeResponse(w, req.Params(), rsp, time.Since(start))

	h.logger.Debug("update request complete",
		zap.Int("streams", len(streams)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// handleUpdate dispatches every stream and then executes the commit,
// optimize, and rollback directives. A request with neither streams
// nor directives is rejected.
func (h *UpdateHandler) handleUpdate(ctx context.Context, req *ingest.Request, rsp *response.Response, streams []ingest.ContentStream, proc update.Processor) error {
	if len(streams) == 0 {
		applied, err := h.applyDirectives(ctx, req.Params(), proc)
		if err != nil {
			return err
		}
		if !applied {
			return types.NewError(types.ErrInvalidRequest, "missing content stream")
		}
		return nil
	}

	for _, stream := range streams {
		if err := h.core.Dispatcher().Dispatch(ctx, req, rsp, stream, proc); err != nil {
			return err
		}
	}

	_, err := h.applyDirectives(ctx, req.Params(), proc)
	return err
}

// applyDirectives executes the commit, optimize, and rollback request
// parameters after all streams have loaded. It reports whether any
// directive ran.
func (h *UpdateHandler) applyDirectives(ctx context.Context, p params.Params, proc update.Processor) (bool, error) {
	applied := false

	optimize := params.GetBool(p, params.Optimize, false)
	if optimize || params.GetBool(p, params.Commit, false) {
		cmd := &update.CommitCommand{
			Optimize:     optimize,
			WaitSearcher: params.GetBool(p, params.WaitSearcher, true),
			SoftCommit:   params.GetBool(p, params.SoftCommit, false),
		}
		if err := proc.ProcessCommit(ctx, cmd); err != nil {
			return true, err
		}
		applied = true
	}

	if params.GetBool(p, params.Rollback, false) {
		if err := proc.ProcessRollback(ctx, &update.RollbackCommand{}); err != nil {
			return true, err
		}
		applied = true
	}

	return applied, nil
}

// parseRequest derives the request parameters and content streams.
// Form-encoded bodies contribute parameters, not streams; multipart
// file parts and the stream.body parameter become streams alongside a
// raw body.
func (h *UpdateHandler) parseRequest(r *http.Request) (params.Params, []ingest.ContentStream, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	var p params.Params
	var streams []ingest.ContentStream

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, types.NewError(types.ErrInvalidRequest, "malformed form body").WithCause(err)
		}
		p = params.URLParams(r.Form)

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			return nil, nil, types.NewError(types.ErrInvalidRequest, "malformed multipart body").WithCause(err)
		}
		p = params.URLParams(r.Form)
		for _, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				streams = append(streams, &multipartStream{header: fh})
			}
		}

	default:
		p = params.URLParams(r.URL.Query())
		if hasBody(r) {
			streams = append(streams, ingest.NewReaderStream("body", contentType, r.ContentLength, r.Body))
		}
	}

	if body, ok := p.Get(params.StreamBody); ok {
		ct, _ := p.Get(params.StreamContentType)
		streams = append(streams, ingest.NewByteStream("stream.body", ct, []byte(body)))
	}

	return p, streams, nil
}

// hasBody reports whether the request carries a payload to stream.
// A chunked body has ContentLength -1 and still counts.
func hasBody(r *http.Request) bool {
	if r.Method == http.MethodGet {
		return false
	}
	return r.ContentLength != 0
}

// writeResponse serializes the update response with the effective
// writer. The wt parameter was layered during dispatch, so a loader's
// preferred writer is already visible here.
func (h *UpdateHandler) writeResponse(w http.ResponseWriter, p params.Params, body *response.Response, elapsed time.Duration) {
	writer := effectiveWriter(h.core.Writers(), p)

	rsp := response.New()
	rsp.Add("responseHeader", response.Header(0, elapsed.Milliseconds()))
	for _, e := range body.Entries() {
		rsp.Add(e.Key, e.Value)
	}

	w.Header().Set("Content-Type", writer.ContentType())
	w.WriteHeader(http.StatusOK)
	if err := writer.Write(w, rsp); err != nil {
		h.logger.Error("response serialization failed", zap.Error(err))
	}
}

// effectiveWriter picks the response writer named by the wt parameter,
// falling back to the registry default for absent or unknown names.
func effectiveWriter(reg *response.Registry, p params.Params) response.Writer {
	if name, ok := p.Get(params.WriterType); ok {
		if w, found := reg.Lookup(name); found {
			return w
		}
	}
	return reg.Default()
}

// multipartStream adapts one uploaded file part. Open returns a fresh
// reader each call, so a part survives repeated reads.
type multipartStream struct {
	header *multipart.FileHeader
}

func (s *multipartStream) Name() string        { return s.header.Filename }
func (s *multipartStream) ContentType() string { return s.header.Header.Get("Content-Type") }
func (s *multipartStream) Size() int64         { return s.header.Size }

func (s *multipartStream) Open() (io.ReadCloser, error) {
	f, err := s.header.Open()
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "open multipart part "+s.header.Filename).WithCause(err)
	}
	return f, nil
}
