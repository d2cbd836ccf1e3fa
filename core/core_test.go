package core

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/seekframe/indexd/config"
	"github.com/seekframe/indexd/index"
	"github.com/seekframe/indexd/ingest"
	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

// =============================================================================
// 🧪 Core Assembly Tests
// =============================================================================

func newTestCore(t *testing.T, opts ...Option) *Core {
	t.Helper()

	c, err := New(nil, index.NewMemoryStore(nil), zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// newAnonymousDoc builds a document without an ID.
func newAnonymousDoc(field string, value any) *types.Document {
	doc := types.NewDocument("")
	doc.SetField(field, value)
	return doc
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := newTestCore(t)

	assert.Equal(t, "default", c.Name())
	assert.Equal(t, "memory", c.Store().Name())
	assert.Equal(t, response.TypeJSON, c.Writers().DefaultName())
	assert.True(t, c.HasWriter("json"))
	assert.False(t, c.HasWriter("velocity"))
	assert.Len(t, c.Loaders().Types(), 7)
	assert.NotNil(t, c.Dispatcher())
}

func TestNew_RequiresStore(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil, nil)
	require.Error(t, err)
}

func TestNew_ConfiguredDefaultWriter(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultUpdateConfig()
	cfg.DefaultWriter = "xml"

	c, err := New(&cfg, index.NewMemoryStore(nil), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, response.TypeXML, c.Writers().DefaultName())
}

func TestNew_LoaderDefaultsReachLoaders(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultUpdateConfig()
	cfg.LoaderDefaults = map[string]string{ingest.ParamSeparator: "|"}

	c, err := New(&cfg, index.NewMemoryStore(nil), zaptest.NewLogger(t))
	require.NoError(t, err)

	// The pipe separator configured at registry construction governs
	// CSV parsing without any request parameter.
	req := ingest.NewRequest(params.MapParams{})
	proc := c.CreateProcessor()
	err = c.Dispatcher().Dispatch(context.Background(), req, response.New(),
		ingest.NewByteStream("body", "application/csv", []byte("id|title\n1|pipe\n")), proc)
	require.NoError(t, err)

	got, err := c.Store().Get(context.Background(), "1")
	require.NoError(t, err)
	title, _ := got.GetField("title")
	assert.Equal(t, "pipe", title)
}

func TestCore_CreateProcessorAssignsIDs(t *testing.T) {
	t.Parallel()

	c := newTestCore(t)
	ctx := context.Background()

	proc := c.CreateProcessor()
	doc := update.AddCommand{Doc: newAnonymousDoc("title", "gophers"), Overwrite: true}
	require.NoError(t, proc.ProcessAdd(ctx, &doc))
	require.NoError(t, proc.ProcessCommit(ctx, &update.CommitCommand{}))
	require.NoError(t, proc.Finish(ctx))

	// The UUID link named the anonymous document.
	require.NotEmpty(t, doc.Doc.ID)
	got, err := c.Store().Get(ctx, doc.Doc.ID)
	require.NoError(t, err)
	title, _ := got.GetField("title")
	assert.Equal(t, "gophers", title)
}

func TestCore_DispatchEndToEnd(t *testing.T) {
	t.Parallel()

	c := newTestCore(t)
	ctx := context.Background()

	req := ingest.NewRequest(params.MapParams{})
	proc := c.CreateProcessor()
	payload := `{"add": {"doc": {"id": "1", "title": "gophers"}}, "commit": {}}`
	err := c.Dispatcher().Dispatch(ctx, req, response.New(),
		ingest.NewByteStream("body", "application/json", []byte(payload)), proc)
	require.NoError(t, err)
	require.NoError(t, proc.Finish(ctx))

	n, err := c.Store().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// The JSON loader's writer preference became the effective wt.
	wt, ok := req.Params().Get(params.WriterType)
	require.True(t, ok)
	assert.Equal(t, "json", wt)
}

func TestCore_Options(t *testing.T) {
	t.Parallel()

	extraLoader := &noopLoader{}
	extraWriter := &staticWriter{ct: "text/x-flat"}

	c := newTestCore(t,
		WithName("replica"),
		WithLoaders(ingest.Registration{ContentType: "application/x-flat", Loader: extraLoader}),
		WithWriters(response.Registration{Name: "flat", Writer: extraWriter}),
		WithChain(update.Chain{}),
	)

	assert.Equal(t, "replica", c.Name())

	_, ok := c.Loaders().Lookup("application/x-flat")
	assert.True(t, ok)
	assert.True(t, c.HasWriter("flat"))

	// An empty chain leaves the terminal processor bare: anonymous
	// documents keep their empty ID and are rejected by the store.
	proc := c.CreateProcessor()
	err := proc.ProcessAdd(context.Background(),
		&update.AddCommand{Doc: newAnonymousDoc("k", "v"), Overwrite: true})
	require.Error(t, err)
}

// noopLoader satisfies ingest.Loader for registration tests.
type noopLoader struct{}

func (l *noopLoader) Load(ctx context.Context, req *ingest.Request, rsp *response.Response, stream ingest.ContentStream, proc update.Processor) error {
	return nil
}

func (l *noopLoader) DefaultWriterType() string { return "" }

// staticWriter satisfies response.Writer for registration tests.
type staticWriter struct{ ct string }

func (w *staticWriter) ContentType() string { return w.ct }

func (w *staticWriter) Write(out io.Writer, rsp *response.Response) error {
	return nil
}
