package handlers

import (
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/seekframe/indexd/core"
	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
)

// =============================================================================
// 🔎 Realtime get handler
// =============================================================================

// GetHandler serves realtime document lookups by id. Staged documents
// are visible before they are committed.
type GetHandler struct {
	core   *core.Core
	logger *zap.Logger
}

// NewGetHandler creates a get handler bound to a core.
func NewGetHandler(c *core.Core, logger *zap.Logger) *GetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GetHandler{
		core:   c,
		logger: logger.With(zap.String("component", "get_handler")),
	}
}

// ServeHTTP implements http.Handler.
func (h *GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest,
			"method not allowed", h.logger)
		return
	}

	start := time.Now()
	query := params.URLParams(r.URL.Query())

	id, ok := query.Get("id")
	if !ok || id == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"missing id parameter", h.logger)
		return
	}

	doc, err := h.core.Store().Get(r.Context(), id)
	if err != nil {
		WriteError(w, coerce(err), h.logger)
		return
	}

	writer := effectiveWriter(h.core.Writers(), query)

	rsp := response.New()
	rsp.Add("responseHeader", response.Header(0, time.Since(start).Milliseconds()))
	rsp.Add("doc", documentSection(doc))

	w.Header().Set("Content-Type", writer.ContentType())
	w.WriteHeader(http.StatusOK)
	if err := writer.Write(w, rsp); err != nil {
		h.logger.Error("response serialization failed", zap.Error(err))
	}
}

// documentSection renders a document as an ordered section, id first,
// remaining fields sorted by name.
func documentSection(doc *types.Document) *response.Response {
	section := response.New()
	section.Add("id", doc.ID)

	keys := make([]string, 0, len(doc.Fields))
	for k := range doc.Fields {
		if k == "id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		section.Add(k, doc.Fields[k])
	}
	return section
}
