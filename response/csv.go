package response

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
)

// CSVWriter flattens the response into key,value rows. Nested section
// keys are joined with dots; list values are joined with semicolons.
type CSVWriter struct {
	Separator rune
}

// ContentType returns the CSV media type.
func (w *CSVWriter) ContentType() string {
	return "text/csv"
}

// Write serializes rsp to out.
func (w *CSVWriter) Write(out io.Writer, rsp *Response) error {
	cw := csv.NewWriter(out)
	if w.Separator != 0 {
		cw.Comma = w.Separator
	}
	if err := cw.Write([]string{"key", "value"}); err != nil {
		return err
	}
	for _, e := range rsp.Entries() {
		if err := writeRows(cw, e.Key, e.Value); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeRows(cw *csv.Writer, path string, v any) error {
	switch t := v.(type) {
	case *Response:
		for _, e := range t.Entries() {
			if err := writeRows(cw, path+"."+e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := writeRows(cw, path+"."+k, t[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return cw.Write([]string{path, printValue(v)})
	}
}

func printValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = printValue(item)
		}
		return strings.Join(parts, ";")
	default:
		return fmt.Sprint(t)
	}
}
