package response

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// XMLWriter serializes responses as a typed XML element tree:
// <lst> for nested sections, <arr> for lists, and <str>/<bool>/<int>/
// <long>/<double> for scalars, each carrying a name attribute.
type XMLWriter struct{}

// ContentType returns the XML media type.
func (w *XMLWriter) ContentType() string {
	return "application/xml"
}

// Write serializes rsp to out.
func (w *XMLWriter) Write(out io.Writer, rsp *Response) error {
	if _, err := io.WriteString(out, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(out, "<response>\n"); err != nil {
		return err
	}
	for _, e := range rsp.Entries() {
		if err := writeElem(out, e.Key, e.Value, 1); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, "</response>\n")
	return err
}

func writeElem(out io.Writer, name string, v any, depth int) error {
	indent := strings.Repeat("  ", depth)

	switch t := v.(type) {
	case *Response:
		if err := openTag(out, indent, "lst", name, false); err != nil {
			return err
		}
		for _, e := range t.Entries() {
			if err := writeElem(out, e.Key, e.Value, depth+1); err != nil {
				return err
			}
		}
		return closeTag(out, indent, "lst")
	case map[string]any:
		if err := openTag(out, indent, "lst", name, false); err != nil {
			return err
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := writeElem(out, k, t[k], depth+1); err != nil {
				return err
			}
		}
		return closeTag(out, indent, "lst")
	case []any:
		if err := openTag(out, indent, "arr", name, false); err != nil {
			return err
		}
		for _, item := range t {
			if err := writeElem(out, "", item, depth+1); err != nil {
				return err
			}
		}
		return closeTag(out, indent, "arr")
	case nil:
		return openTag(out, indent, "null", name, true)
	case string:
		return scalarElem(out, indent, "str", name, t)
	case bool:
		return scalarElem(out, indent, "bool", name, strconv.FormatBool(t))
	case int:
		return scalarElem(out, indent, "int", name, strconv.Itoa(t))
	case int32:
		return scalarElem(out, indent, "int", name, strconv.FormatInt(int64(t), 10))
	case int64:
		return scalarElem(out, indent, "long", name, strconv.FormatInt(t, 10))
	case float32:
		return scalarElem(out, indent, "double", name, strconv.FormatFloat(float64(t), 'g', -1, 32))
	case float64:
		return scalarElem(out, indent, "double", name, strconv.FormatFloat(t, 'g', -1, 64))
	default:
		return scalarElem(out, indent, "str", name, fmt.Sprint(t))
	}
}

func openTag(out io.Writer, indent, tag, name string, selfClose bool) error {
	if _, err := io.WriteString(out, indent+"<"+tag); err != nil {
		return err
	}
	if name != "" {
		if _, err := io.WriteString(out, ` name="`); err != nil {
			return err
		}
		if err := xml.EscapeText(out, []byte(name)); err != nil {
			return err
		}
		if _, err := io.WriteString(out, `"`); err != nil {
			return err
		}
	}
	if selfClose {
		_, err := io.WriteString(out, "/>\n")
		return err
	}
	_, err := io.WriteString(out, ">\n")
	return err
}

func closeTag(out io.Writer, indent, tag string) error {
	_, err := io.WriteString(out, indent+"</"+tag+">\n")
	return err
}

func scalarElem(out io.Writer, indent, tag, name, text string) error {
	if _, err := io.WriteString(out, indent+"<"+tag); err != nil {
		return err
	}
	if name != "" {
		if _, err := io.WriteString(out, ` name="`); err != nil {
			return err
		}
		if err := xml.EscapeText(out, []byte(name)); err != nil {
			return err
		}
		if _, err := io.WriteString(out, `"`); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(out, ">"); err != nil {
		return err
	}
	if err := xml.EscapeText(out, []byte(text)); err != nil {
		return err
	}
	_, err := io.WriteString(out, "</"+tag+">\n")
	return err
}
