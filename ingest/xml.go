package ingest

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

// XMLLoader parses the XML update format:
//
//	<add overwrite="true" commitWithin="5000">
//	  <doc><field name="id">1</field><field name="title">...</field></doc>
//	</add>
//	<delete><id>1</id><query>author:gone</query></delete>
//	<commit waitSearcher="false" softCommit="true"/>
//	<optimize/>
//	<rollback/>
//
// Repeated field names within a doc build a multi-valued field.
type XMLLoader struct {
	cfg params.Params
}

// NewXMLLoader creates an XML loader with the given construction
// defaults.
func NewXMLLoader(cfg params.Params) *XMLLoader {
	if cfg == nil {
		cfg = params.MapParams{}
	}
	return &XMLLoader{cfg: cfg}
}

// DefaultWriterType prefers the xml response writer.
func (l *XMLLoader) DefaultWriterType() string {
	return response.TypeXML
}

// Load decodes the stream token by token and feeds each command to proc.
func (l *XMLLoader) Load(ctx context.Context, req *Request, rsp *response.Response, stream ContentStream, proc update.Processor) error {
	rc, err := stream.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	p := params.WrapDefaults(req.Params(), l.cfg)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed("xml", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case update.CmdAdd:
			err = l.readAdd(ctx, dec, start, p, proc)
		case update.CmdDelete:
			err = l.readDelete(ctx, dec, proc)
		case update.CmdCommit, update.CmdOptimize:
			cmd := &update.CommitCommand{
				Optimize:     start.Name.Local == update.CmdOptimize,
				WaitSearcher: boolAttr(start, update.AttrWaitSearcher, true),
				SoftCommit:   boolAttr(start, update.AttrSoftCommit, false),
			}
			if err = dec.Skip(); err != nil {
				return malformed("xml", err)
			}
			err = proc.ProcessCommit(ctx, cmd)
		case update.CmdRollback:
			if err = dec.Skip(); err != nil {
				return malformed("xml", err)
			}
			err = proc.ProcessRollback(ctx, &update.RollbackCommand{})
		default:
			return types.NewError(types.ErrMalformedPayload,
				fmt.Sprintf("unexpected element <%s>", start.Name.Local))
		}
		if err != nil {
			return err
		}
	}
}

// readAdd consumes an <add> element, emitting one AddCommand per <doc>.
func (l *XMLLoader) readAdd(ctx context.Context, dec *xml.Decoder, start xml.StartElement, p params.Params, proc update.Processor) error {
	overwrite := boolAttr(start, update.AttrOverwrite, params.GetBool(p, params.Overwrite, true))
	commitWithin := intAttr(start, update.AttrCommitWithin, params.GetInt(p, params.CommitWithin, 0))

	for {
		tok, err := dec.Token()
		if err != nil {
			return malformed("xml", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "doc" {
				return types.NewError(types.ErrMalformedPayload,
					fmt.Sprintf("unexpected element <%s> inside <add>", t.Name.Local))
			}
			doc, err := readXMLDoc(dec)
			if err != nil {
				return err
			}
			cmd := &update.AddCommand{Doc: doc, Overwrite: overwrite, CommitWithin: commitWithin}
			if err := proc.ProcessAdd(ctx, cmd); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// readXMLDoc consumes a <doc> element through its end tag and builds
// the document from its <field> children.
func readXMLDoc(dec *xml.Decoder) (*types.Document, error) {
	doc := types.NewDocument("")
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed("xml", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "field" {
				return nil, types.NewError(types.ErrMalformedPayload,
					fmt.Sprintf("unexpected element <%s> inside <doc>", t.Name.Local))
			}
			name := attr(t, "name")
			if name == "" {
				return nil, types.NewError(types.ErrMalformedPayload,
					"<field> element missing name attribute")
			}
			var value string
			if err := dec.DecodeElement(&value, &t); err != nil {
				return nil, malformed("xml", err)
			}
			doc.AddField(name, value)
		case xml.EndElement:
			return doc, nil
		}
	}
}

// readDelete consumes a <delete> element, emitting one DeleteCommand
// per <id> or <query> child.
func (l *XMLLoader) readDelete(ctx context.Context, dec *xml.Decoder, proc update.Processor) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return malformed("xml", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var text string
			switch t.Name.Local {
			case "id":
				if err := dec.DecodeElement(&text, &t); err != nil {
					return malformed("xml", err)
				}
				if err := proc.ProcessDelete(ctx, &update.DeleteCommand{ID: text}); err != nil {
					return err
				}
			case "query":
				if err := dec.DecodeElement(&text, &t); err != nil {
					return malformed("xml", err)
				}
				if err := proc.ProcessDelete(ctx, &update.DeleteCommand{Query: text}); err != nil {
					return err
				}
			default:
				return types.NewError(types.ErrMalformedPayload,
					fmt.Sprintf("unexpected element <%s> inside <delete>", t.Name.Local))
			}
		case xml.EndElement:
			return nil
		}
	}
}

// attr returns the value of the named attribute, or "".
func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// boolAttr parses a boolean attribute, falling back to def when the
// attribute is absent or unparseable.
func boolAttr(e xml.StartElement, name string, def bool) bool {
	v := attr(e, name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// intAttr parses an integer attribute, falling back to def when the
// attribute is absent or unparseable.
func intAttr(e xml.StartElement, name string, def int) int {
	v := attr(e, name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// malformed wraps a decode failure as a payload error.
func malformed(format string, err error) error {
	return types.NewError(types.ErrMalformedPayload, "malformed "+format+" payload").WithCause(err)
}
