package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
)

// =============================================================================
// 🧪 Dispatcher Tests
// =============================================================================

// writerSet is a WriterRegistry over a fixed set of names.
type writerSet map[string]bool

func (w writerSet) Has(name string) bool { return w[name] }

// recordingObserver collects dispatch outcomes.
type recordingObserver struct {
	seen []string
}

func (o *recordingObserver) ObserveDispatch(contentType, outcome string, elapsed time.Duration) {
	o.seen = append(o.seen, contentType+"/"+outcome)
}

func TestDispatcher_RoutesToLoader(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, writerSet{}, zaptest.NewLogger(t))

	req := NewRequest(params.MapParams{})
	err := d.Dispatch(context.Background(), req, response.New(),
		NewByteStream("body", "application/x-test", nil), &captureProcessor{})

	require.NoError(t, err)
	assert.Equal(t, 1, loader.loads)
}

func TestDispatcher_OverrideParamPicksLoader(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, writerSet{}, zaptest.NewLogger(t))

	// The stream claims a type the registry knows, but the override
	// redirects to the stub.
	req := NewRequest(params.MapParams{params.AssumeContentType: "application/x-test"})
	err := d.Dispatch(context.Background(), req, response.New(),
		NewByteStream("body", TypeJSON, []byte(`{}`)), &captureProcessor{})

	require.NoError(t, err)
	assert.Equal(t, 1, loader.loads)
}

func TestDispatcher_UnsupportedTypeListsRegistered(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	d := NewDispatcher(r, writerSet{}, zaptest.NewLogger(t))

	err := d.Dispatch(context.Background(), NewRequest(nil), response.New(),
		NewByteStream("body", "application/pdf", nil), &captureProcessor{})

	require.Error(t, err)
	assert.Equal(t, types.ErrUnsupportedMediaType, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), `"application/pdf"`)
	for _, ct := range r.Types() {
		assert.Contains(t, err.Error(), ct)
	}
}

func TestDispatcher_MissingContentType(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(NewRegistry(nil), writerSet{}, zaptest.NewLogger(t))

	err := d.Dispatch(context.Background(), NewRequest(nil), response.New(),
		NewByteStream("body", "", nil), &captureProcessor{})

	require.Error(t, err)
	assert.Equal(t, types.ErrUnsupportedMediaType, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "missing content type")
}

func TestDispatcher_InjectsPreferredWriter(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{wt: "xml"}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, writerSet{"xml": true}, zaptest.NewLogger(t))

	req := NewRequest(params.MapParams{})
	require.NoError(t, d.Dispatch(context.Background(), req, response.New(),
		NewByteStream("body", "application/x-test", nil), &captureProcessor{}))

	wt, ok := req.Params().Get(params.WriterType)
	require.True(t, ok)
	assert.Equal(t, "xml", wt)
}

func TestDispatcher_ExplicitWriterWins(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{wt: "xml"}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, writerSet{"xml": true}, zaptest.NewLogger(t))

	req := NewRequest(params.MapParams{params.WriterType: "json"})
	require.NoError(t, d.Dispatch(context.Background(), req, response.New(),
		NewByteStream("body", "application/x-test", nil), &captureProcessor{}))

	wt, _ := req.Params().Get(params.WriterType)
	assert.Equal(t, "json", wt)
}

func TestDispatcher_UnregisteredPreferenceSkipped(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{wt: "velocity"}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, writerSet{"json": true}, zaptest.NewLogger(t))

	req := NewRequest(params.MapParams{})
	require.NoError(t, d.Dispatch(context.Background(), req, response.New(),
		NewByteStream("body", "application/x-test", nil), &captureProcessor{}))

	_, ok := req.Params().Get(params.WriterType)
	assert.False(t, ok)
	assert.Equal(t, 1, loader.loads)
}

func TestDispatcher_NilWriterRegistry(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{wt: "xml"}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, nil, zaptest.NewLogger(t))

	req := NewRequest(params.MapParams{})
	require.NoError(t, d.Dispatch(context.Background(), req, response.New(),
		NewByteStream("body", "application/x-test", nil), &captureProcessor{}))

	_, ok := req.Params().Get(params.WriterType)
	assert.False(t, ok)
}

func TestDispatcher_LoaderErrorsPropagateUnchanged(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("loader exploded")
	loader := &stubLoader{err: sentinel}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, writerSet{}, zaptest.NewLogger(t))

	err := d.Dispatch(context.Background(), NewRequest(nil), response.New(),
		NewByteStream("body", "application/x-test", nil), &captureProcessor{})

	require.Same(t, sentinel, err)
}

func TestDispatcher_ObserverSeesOutcomes(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	loader := &stubLoader{}
	r := NewRegistry(nil, Registration{ContentType: "application/x-test", Loader: loader})
	d := NewDispatcher(r, writerSet{}, zaptest.NewLogger(t), WithObserver(obs))

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, NewRequest(nil), response.New(),
		NewByteStream("body", "application/x-test", nil), &captureProcessor{}))
	require.Error(t, d.Dispatch(ctx, NewRequest(nil), response.New(),
		NewByteStream("body", "application/pdf", nil), &captureProcessor{}))
	require.Error(t, d.Dispatch(ctx, NewRequest(nil), response.New(),
		NewByteStream("body", "", nil), &captureProcessor{}))

	assert.Equal(t, []string{
		"application/x-test/" + OutcomeOK,
		"application/pdf/" + OutcomeUnsupported,
		"/" + OutcomeUnresolved,
	}, obs.seen)
}

func TestDispatcher_EndToEndXML(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(NewRegistry(nil), writerSet{"xml": true}, zaptest.NewLogger(t))
	proc := &captureProcessor{}
	req := NewRequest(params.MapParams{})

	// A text/xml alias with a charset parameter exercises stripping,
	// alias lookup, and writer injection in one pass.
	payload := `<add><doc><field name="id">1</field></doc></add>`
	err := d.Dispatch(context.Background(), req, response.New(),
		NewByteStream("body", "text/xml; charset=utf-8", []byte(payload)), proc)

	require.NoError(t, err)
	require.Len(t, proc.adds, 1)
	assert.Equal(t, "1", proc.adds[0].Doc.ID)

	wt, ok := req.Params().Get(params.WriterType)
	require.True(t, ok)
	assert.Equal(t, "xml", wt)
}
