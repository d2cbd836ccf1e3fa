package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/seekframe/indexd/index"
	"github.com/seekframe/indexd/types"
)

// =============================================================================
// 🧪 GetHandler tests
// =============================================================================

func seedDocument(t *testing.T, store index.Store, doc *types.Document, commit bool) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, doc, true))
	if commit {
		require.NoError(t, store.Commit(ctx, index.CommitOptions{}))
	}
}

func doGet(t *testing.T, h *GetHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestGetHandler_FetchesCommittedDocument(t *testing.T) {
	c := newHandlerCore(t)
	h := NewGetHandler(c, zaptest.NewLogger(t))

	doc := types.NewDocument("1")
	doc.SetField("title", "intro")
	seedDocument(t, c.Store(), doc, true)

	w := doGet(t, h, "/get?id=1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var rsp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rsp))

	fetched, ok := rsp["doc"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", fetched["id"])
	assert.Equal(t, "intro", fetched["title"])

	header, ok := rsp["responseHeader"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, header["status"])
}

func TestGetHandler_RealtimeSeesStagedDocument(t *testing.T) {
	c := newHandlerCore(t)
	h := NewGetHandler(c, zaptest.NewLogger(t))

	doc := types.NewDocument("2")
	doc.SetField("state", "staged")
	seedDocument(t, c.Store(), doc, false)

	w := doGet(t, h, "/get?id=2")

	assert.Equal(t, http.StatusOK, w.Code)

	var rsp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rsp))
	fetched, ok := rsp["doc"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "staged", fetched["state"])
}

func TestGetHandler_NotFound(t *testing.T) {
	c := newHandlerCore(t)
	h := NewGetHandler(c, zaptest.NewLogger(t))

	w := doGet(t, h, "/get?id=missing")

	assert.Equal(t, http.StatusNotFound, w.Code)

	errInfo := decodeErrorBody(t, w)
	assert.Equal(t, string(types.ErrNotFound), errInfo.Code)
}

func TestGetHandler_MissingID(t *testing.T) {
	c := newHandlerCore(t)
	h := NewGetHandler(c, zaptest.NewLogger(t))

	w := doGet(t, h, "/get")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	errInfo := decodeErrorBody(t, w)
	assert.Equal(t, string(types.ErrInvalidRequest), errInfo.Code)
}

func TestGetHandler_WriterParam(t *testing.T) {
	c := newHandlerCore(t)
	h := NewGetHandler(c, zaptest.NewLogger(t))

	doc := types.NewDocument("3")
	doc.SetField("format", "xml please")
	seedDocument(t, c.Store(), doc, true)

	w := doGet(t, h, "/get?id=3&wt=xml")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<response>")
}

func TestGetHandler_MethodNotAllowed(t *testing.T) {
	c := newHandlerCore(t)
	h := NewGetHandler(c, zaptest.NewLogger(t))

	r := httptest.NewRequest(http.MethodPost, "/get?id=1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
