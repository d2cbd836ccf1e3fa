package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

// binDecMode decodes untyped CBOR maps into map[string]any so document
// fields look the same as their JSON counterparts.
var binDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// binEnvelope is one command on the binary wire: an op tag plus the
// fields that op consumes.
type binEnvelope struct {
	Op           string         `cbor:"op"`
	Doc          map[string]any `cbor:"doc,omitempty"`
	ID           string         `cbor:"id,omitempty"`
	Query        string         `cbor:"query,omitempty"`
	Overwrite    *bool          `cbor:"overwrite,omitempty"`
	CommitWithin int            `cbor:"commitWithin,omitempty"`
	WaitSearcher *bool          `cbor:"waitSearcher,omitempty"`
	SoftCommit   bool           `cbor:"softCommit,omitempty"`
}

// BinaryLoader parses the compact binary update format: a CBOR
// sequence of command envelopes. Registered under application/javabin.
type BinaryLoader struct {
	cfg params.Params
}

// NewBinaryLoader creates a binary loader with the given construction
// defaults.
func NewBinaryLoader(cfg params.Params) *BinaryLoader {
	if cfg == nil {
		cfg = params.MapParams{}
	}
	return &BinaryLoader{cfg: cfg}
}

// DefaultWriterType prefers the cbor response writer.
func (l *BinaryLoader) DefaultWriterType() string {
	return response.TypeCBOR
}

// Load decodes envelopes until EOF and feeds each command to proc.
func (l *BinaryLoader) Load(ctx context.Context, req *Request, rsp *response.Response, stream ContentStream, proc update.Processor) error {
	rc, err := stream.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	p := params.WrapDefaults(req.Params(), l.cfg)
	d := addDefaults{
		overwrite:    params.GetBool(p, params.Overwrite, true),
		commitWithin: params.GetInt(p, params.CommitWithin, 0),
	}

	dec := binDecMode.NewDecoder(rc)
	for {
		var env binEnvelope
		err := dec.Decode(&env)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed("cbor", err)
		}
		if err := l.apply(ctx, env, d, proc); err != nil {
			return err
		}
	}
}

// apply turns one envelope into the matching processor call.
func (l *BinaryLoader) apply(ctx context.Context, env binEnvelope, d addDefaults, proc update.Processor) error {
	switch env.Op {
	case update.CmdAdd:
		if env.Doc == nil {
			return types.NewError(types.ErrMalformedPayload, "add envelope missing doc")
		}
		cmd := addFromMap(env.Doc, d)
		if env.Overwrite != nil {
			cmd.Overwrite = *env.Overwrite
		}
		if env.CommitWithin != 0 {
			cmd.CommitWithin = env.CommitWithin
		}
		return proc.ProcessAdd(ctx, cmd)

	case update.CmdDelete:
		if env.ID == "" && env.Query == "" {
			return types.NewError(types.ErrMalformedPayload, "delete envelope missing id or query")
		}
		return proc.ProcessDelete(ctx, &update.DeleteCommand{ID: env.ID, Query: env.Query})

	case update.CmdCommit, update.CmdOptimize:
		cmd := &update.CommitCommand{
			Optimize:     env.Op == update.CmdOptimize,
			WaitSearcher: true,
			SoftCommit:   env.SoftCommit,
		}
		if env.WaitSearcher != nil {
			cmd.WaitSearcher = *env.WaitSearcher
		}
		return proc.ProcessCommit(ctx, cmd)

	case update.CmdRollback:
		return proc.ProcessRollback(ctx, &update.RollbackCommand{})

	default:
		return types.NewError(types.ErrMalformedPayload,
			fmt.Sprintf("unknown envelope op %q", env.Op))
	}
}
