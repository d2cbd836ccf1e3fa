package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

// JSONLoader parses the JSON update format. Three payload shapes are
// accepted:
//
//	{"add": {"doc": {...}}, "delete": {"id": "1"}, "commit": {}}
//	{"id": "1", "title": "..."}
//	[{...}, {...}]
//
// A top-level object whose first key is not a command name is read as
// a bare document. With json.command=false every object is a bare
// document, even when its keys collide with command names.
type JSONLoader struct {
	cfg params.Params
}

// addDefaults are the add-command options taken from request
// parameters when the payload does not carry its own.
type addDefaults struct {
	overwrite    bool
	commitWithin int
}

// NewJSONLoader creates a JSON loader with the given construction
// defaults.
func NewJSONLoader(cfg params.Params) *JSONLoader {
	if cfg == nil {
		cfg = params.MapParams{}
	}
	return &JSONLoader{cfg: cfg}
}

// DefaultWriterType prefers the json response writer.
func (l *JSONLoader) DefaultWriterType() string {
	return response.TypeJSON
}

// Load decodes the stream as a sequence of top-level JSON values and
// feeds the resulting commands to proc.
func (l *JSONLoader) Load(ctx context.Context, req *Request, rsp *response.Response, stream ContentStream, proc update.Processor) error {
	rc, err := stream.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	p := params.WrapDefaults(req.Params(), l.cfg)
	commandMode := params.GetBool(p, params.JSONCommand, true)
	d := addDefaults{
		overwrite:    params.GetBool(p, params.Overwrite, true),
		commitWithin: params.GetInt(p, params.CommitWithin, 0),
	}

	dec := json.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed("json", err)
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			return types.NewError(types.ErrMalformedPayload,
				fmt.Sprintf("unexpected top-level json token %v", tok))
		}
		switch delim {
		case '[':
			err = l.readDocArray(ctx, dec, d, proc)
		case '{':
			if commandMode {
				err = l.readCommandObject(ctx, dec, d, proc)
			} else {
				err = l.readDocObject(ctx, dec, d, proc)
			}
		default:
			return types.NewError(types.ErrMalformedPayload,
				fmt.Sprintf("unexpected top-level json delimiter %v", delim))
		}
		if err != nil {
			return err
		}
	}
}

// readDocArray reads documents until the closing bracket, one
// AddCommand each.
func (l *JSONLoader) readDocArray(ctx context.Context, dec *json.Decoder, d addDefaults, proc update.Processor) error {
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			return malformed("json", err)
		}
		if err := proc.ProcessAdd(ctx, addFromMap(m, d)); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return malformed("json", err)
	}
	return nil
}

// readCommandObject reads one top-level object in command mode. The
// first key decides the shape: a command name starts a command
// sequence, anything else turns the whole object into a document.
func (l *JSONLoader) readCommandObject(ctx context.Context, dec *json.Decoder, d addDefaults, proc update.Processor) error {
	first := true
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		if first && !isCommandKey(key) {
			return l.readDocRemainder(ctx, dec, key, d, proc)
		}
		first = false
		if err := l.readCommand(ctx, dec, key, d, proc); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return malformed("json", err)
	}
	return nil
}

// readCommand decodes and applies the value of one command key.
func (l *JSONLoader) readCommand(ctx context.Context, dec *json.Decoder, key string, d addDefaults, proc update.Processor) error {
	switch key {
	case update.CmdAdd:
		var body struct {
			Doc          map[string]any `json:"doc"`
			Overwrite    *bool          `json:"overwrite"`
			CommitWithin *int           `json:"commitWithin"`
		}
		if err := dec.Decode(&body); err != nil {
			return malformed("json", err)
		}
		if body.Doc == nil {
			return types.NewError(types.ErrMalformedPayload, "add command missing doc")
		}
		cmd := addFromMap(body.Doc, d)
		if body.Overwrite != nil {
			cmd.Overwrite = *body.Overwrite
		}
		if body.CommitWithin != nil {
			cmd.CommitWithin = *body.CommitWithin
		}
		return proc.ProcessAdd(ctx, cmd)

	case update.CmdDelete:
		var v any
		if err := dec.Decode(&v); err != nil {
			return malformed("json", err)
		}
		return l.processDeletes(ctx, v, proc)

	case update.CmdCommit, update.CmdOptimize:
		var body struct {
			WaitSearcher *bool `json:"waitSearcher"`
			SoftCommit   *bool `json:"softCommit"`
		}
		if err := dec.Decode(&body); err != nil {
			return malformed("json", err)
		}
		cmd := &update.CommitCommand{
			Optimize:     key == update.CmdOptimize,
			WaitSearcher: true,
		}
		if body.WaitSearcher != nil {
			cmd.WaitSearcher = *body.WaitSearcher
		}
		if body.SoftCommit != nil {
			cmd.SoftCommit = *body.SoftCommit
		}
		return proc.ProcessCommit(ctx, cmd)

	case update.CmdRollback:
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return malformed("json", err)
		}
		return proc.ProcessRollback(ctx, &update.RollbackCommand{})

	default:
		return types.NewError(types.ErrMalformedPayload,
			fmt.Sprintf("unknown command %q", key))
	}
}

// processDeletes handles the delete value forms: a bare id string, an
// {"id": ...} or {"query": ...} object, or an array of either.
func (l *JSONLoader) processDeletes(ctx context.Context, v any, proc update.Processor) error {
	switch t := v.(type) {
	case string:
		return proc.ProcessDelete(ctx, &update.DeleteCommand{ID: t})
	case float64:
		return proc.ProcessDelete(ctx, &update.DeleteCommand{ID: jsonString(t)})
	case map[string]any:
		if id, ok := t["id"]; ok {
			return proc.ProcessDelete(ctx, &update.DeleteCommand{ID: jsonString(id)})
		}
		if q, ok := t["query"]; ok {
			return proc.ProcessDelete(ctx, &update.DeleteCommand{Query: jsonString(q)})
		}
		return types.NewError(types.ErrMalformedPayload, "delete command missing id or query")
	case []any:
		for _, item := range t {
			if err := l.processDeletes(ctx, item, proc); err != nil {
				return err
			}
		}
		return nil
	default:
		return types.NewError(types.ErrMalformedPayload,
			fmt.Sprintf("unexpected delete value %v", v))
	}
}

// readDocRemainder finishes an object already identified as a bare
// document, starting from its first key.
func (l *JSONLoader) readDocRemainder(ctx context.Context, dec *json.Decoder, firstKey string, d addDefaults, proc update.Processor) error {
	m := make(map[string]any)
	key := firstKey
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			return malformed("json", err)
		}
		m[key] = v
		if !dec.More() {
			break
		}
		next, err := readKey(dec)
		if err != nil {
			return err
		}
		key = next
	}
	if _, err := dec.Token(); err != nil {
		return malformed("json", err)
	}
	return proc.ProcessAdd(ctx, addFromMap(m, d))
}

// readDocObject reads a whole object as one document, used when
// json.command=false disables command detection.
func (l *JSONLoader) readDocObject(ctx context.Context, dec *json.Decoder, d addDefaults, proc update.Processor) error {
	m := make(map[string]any)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return malformed("json", err)
		}
		m[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return malformed("json", err)
	}
	return proc.ProcessAdd(ctx, addFromMap(m, d))
}

// readKey reads the next object key token.
func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed("json", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", types.NewError(types.ErrMalformedPayload,
			fmt.Sprintf("expected object key, got %v", tok))
	}
	return key, nil
}

// isCommandKey reports whether key names an update command.
func isCommandKey(key string) bool {
	switch key {
	case update.CmdAdd, update.CmdDelete, update.CmdCommit, update.CmdOptimize, update.CmdRollback:
		return true
	}
	return false
}

// addFromMap builds an AddCommand from decoded document fields. The id
// field is normalized to its string form.
func addFromMap(m map[string]any, d addDefaults) *update.AddCommand {
	doc := types.NewDocument("")
	for k, v := range m {
		if k == "id" {
			doc.SetField("id", jsonString(v))
			continue
		}
		doc.SetField(k, v)
	}
	return &update.AddCommand{Doc: doc, Overwrite: d.overwrite, CommitWithin: d.commitWithin}
}

// jsonString renders a decoded JSON scalar as a string.
func jsonString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
