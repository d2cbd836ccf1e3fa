package response

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Response
// ============================================================

func TestResponse_OrderAndGet(t *testing.T) {
	t.Parallel()

	rsp := New()
	rsp.Add("z", 1)
	rsp.Add("a", "x")
	rsp.Add("z", 2)

	require.Equal(t, 3, rsp.Len())
	assert.Equal(t, "z", rsp.Entries()[0].Key)
	assert.Equal(t, "a", rsp.Entries()[1].Key)

	v, ok := rsp.Get("z")
	require.True(t, ok)
	assert.Equal(t, 1, v, "Get returns the first value added")

	_, ok = rsp.Get("missing")
	assert.False(t, ok)
}

func TestResponse_MarshalJSON_PreservesOrder(t *testing.T) {
	t.Parallel()

	rsp := New()
	rsp.Add("responseHeader", Header(0, 5))
	rsp.Add("adds", []any{"doc-1", "doc-2"})

	data, err := json.Marshal(rsp)
	require.NoError(t, err)
	assert.Equal(t, `{"responseHeader":{"status":0,"QTime":5},"adds":["doc-1","doc-2"]}`, string(data))
}

// ============================================================
// Writers
// ============================================================

func TestJSONWriter_Write(t *testing.T) {
	t.Parallel()

	rsp := New()
	rsp.Add("responseHeader", Header(0, 12))

	var buf bytes.Buffer
	w := &JSONWriter{}
	require.NoError(t, w.Write(&buf, rsp))

	assert.Equal(t, "application/json", w.ContentType())
	assert.JSONEq(t, `{"responseHeader":{"status":0,"QTime":12}}`, buf.String())
}

func TestXMLWriter_Write(t *testing.T) {
	t.Parallel()

	rsp := New()
	rsp.Add("responseHeader", Header(0, 7))
	rsp.Add("msg", `<hello & "world">`)
	rsp.Add("ids", []any{"a", "b"})

	var buf bytes.Buffer
	w := &XMLWriter{}
	require.NoError(t, w.Write(&buf, rsp))

	out := buf.String()
	assert.Equal(t, "application/xml", w.ContentType())
	assert.True(t, strings.HasPrefix(out, "<?xml"), "expected XML declaration, got %q", out)
	assert.Contains(t, out, `<lst name="responseHeader">`)
	assert.Contains(t, out, `<int name="status">0</int>`)
	assert.Contains(t, out, `<long name="QTime">7</long>`)
	assert.Contains(t, out, `&lt;hello &amp;`)
	assert.Contains(t, out, `<arr name="ids">`)
	assert.Contains(t, out, `<str>a</str>`)
	assert.Contains(t, out, "</response>")
}

func TestCSVWriter_Write(t *testing.T) {
	t.Parallel()

	rsp := New()
	rsp.Add("responseHeader", Header(0, 3))
	rsp.Add("ids", []any{"a", "b"})

	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, rsp))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "text/csv", w.ContentType())
	require.Len(t, lines, 4)
	assert.Equal(t, "key,value", lines[0])
	assert.Equal(t, "responseHeader.status,0", lines[1])
	assert.Equal(t, "responseHeader.QTime,3", lines[2])
	assert.Equal(t, "ids,a;b", lines[3])
}

func TestCBORWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	rsp := New()
	rsp.Add("responseHeader", Header(0, 9))
	rsp.Add("msg", "ok")

	var buf bytes.Buffer
	w := &CBORWriter{}
	require.NoError(t, w.Write(&buf, rsp))
	assert.Equal(t, "application/cbor", w.ContentType())

	var decoded map[string]any
	require.NoError(t, cbor.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ok", decoded["msg"])

	hdr, ok := decoded["responseHeader"].(map[any]any)
	require.True(t, ok, "expected nested map, got %T", decoded["responseHeader"])
	assert.EqualValues(t, 0, hdr["status"])
	assert.EqualValues(t, 9, hdr["QTime"])
}

// ============================================================
// Registry
// ============================================================

type fakeWriter struct{ ct string }

func (f *fakeWriter) ContentType() string                  { return f.ct }
func (f *fakeWriter) Write(_ io.Writer, _ *Response) error { return nil }

func TestRegistry_LookupHasNames(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	for _, name := range []string{TypeJSON, TypeXML, TypeCSV, TypeCBOR} {
		w, ok := reg.Lookup(name)
		require.True(t, ok, "builtin %q missing", name)
		assert.NotEmpty(t, w.ContentType())
		assert.True(t, reg.Has(name))
	}

	assert.False(t, reg.Has("yaml"))
	assert.Equal(t, []string{TypeCBOR, TypeCSV, TypeJSON, TypeXML}, reg.Names())
	assert.Equal(t, TypeJSON, reg.DefaultName())
	require.NotNil(t, reg.Default())
}

func TestRegistry_ExtraRegistrations(t *testing.T) {
	t.Parallel()

	custom := &fakeWriter{ct: "application/x-custom"}
	reg := NewRegistry(
		Registration{Name: "custom", Writer: custom},
		Registration{Name: "", Writer: custom},
		Registration{Name: "nil", Writer: nil},
	)

	w, ok := reg.Lookup("custom")
	require.True(t, ok)
	assert.Equal(t, "application/x-custom", w.ContentType())

	assert.False(t, reg.Has(""))
	assert.False(t, reg.Has("nil"))
}

func TestRegistry_WithDefault(t *testing.T) {
	t.Parallel()

	reg := NewRegistry().WithDefault(TypeXML)
	assert.Equal(t, TypeXML, reg.DefaultName())

	// Unknown names keep the current default.
	reg = reg.WithDefault("yaml")
	assert.Equal(t, TypeXML, reg.DefaultName())
}
