package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

// CSV parameter names, read from request parameters layered over the
// construction defaults.
const (
	// ParamSeparator is the single-rune field separator.
	ParamSeparator = "separator"
	// ParamTrim strips surrounding whitespace from field values.
	ParamTrim = "trim"
	// ParamHeader marks the first record as field names. With explicit
	// fieldnames it instead marks the first record as skippable.
	ParamHeader = "header"
	// ParamFieldNames supplies field names as a comma-separated list.
	ParamFieldNames = "fieldnames"
)

// CSVLoader parses delimiter-separated records, one document per row.
// Field names come from the first record unless the fieldnames
// parameter supplies them. Empty field values are skipped rather than
// indexed as empty strings.
type CSVLoader struct {
	cfg params.Params
}

// NewCSVLoader creates a CSV loader with the given construction
// defaults.
func NewCSVLoader(cfg params.Params) *CSVLoader {
	if cfg == nil {
		cfg = params.MapParams{}
	}
	return &CSVLoader{cfg: cfg}
}

// DefaultWriterType returns "": rows carry no writer preference.
func (l *CSVLoader) DefaultWriterType() string {
	return ""
}

// Load reads records and emits one AddCommand per data row.
func (l *CSVLoader) Load(ctx context.Context, req *Request, rsp *response.Response, stream ContentStream, proc update.Processor) error {
	rc, err := stream.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	p := params.WrapDefaults(req.Params(), l.cfg)

	sep := params.GetString(p, ParamSeparator, ",")
	runes := []rune(sep)
	if len(runes) != 1 {
		return types.NewError(types.ErrInvalidRequest,
			fmt.Sprintf("invalid csv separator %q", sep))
	}
	trim := params.GetBool(p, ParamTrim, false)

	r := csv.NewReader(rc)
	r.Comma = runes[0]

	fields, err := l.fieldNames(p, r)
	if err != nil || fields == nil {
		return err
	}
	r.FieldsPerRecord = len(fields)

	overwrite := params.GetBool(p, params.Overwrite, true)
	commitWithin := params.GetInt(p, params.CommitWithin, 0)

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed("csv", err)
		}
		doc := types.NewDocument("")
		for i, v := range rec {
			if trim {
				v = strings.TrimSpace(v)
			}
			if fields[i] == "" || v == "" {
				continue
			}
			doc.SetField(fields[i], v)
		}
		cmd := &update.AddCommand{Doc: doc, Overwrite: overwrite, CommitWithin: commitWithin}
		if err := proc.ProcessAdd(ctx, cmd); err != nil {
			return err
		}
	}
}

// fieldNames resolves the per-row field names. With the fieldnames
// parameter the names are explicit and header=true skips the first
// record; without it the first record is the header. A nil, nil return
// means the input was empty.
func (l *CSVLoader) fieldNames(p params.Params, r *csv.Reader) ([]string, error) {
	if names := params.GetString(p, ParamFieldNames, ""); names != "" {
		parts := strings.Split(names, ",")
		fields := make([]string, 0, len(parts))
		for _, f := range parts {
			fields = append(fields, strings.TrimSpace(f))
		}
		if params.GetBool(p, ParamHeader, false) {
			if _, err := r.Read(); err != nil && !errors.Is(err, io.EOF) {
				return nil, malformed("csv", err)
			}
		}
		return fields, nil
	}

	if !params.GetBool(p, ParamHeader, true) {
		return nil, types.NewError(types.ErrInvalidRequest,
			"csv input needs a header record or explicit fieldnames")
	}
	rec, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, malformed("csv", err)
	}
	fields := make([]string, len(rec))
	copy(fields, rec)
	return fields, nil
}
