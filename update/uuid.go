package update

import (
	"context"

	"github.com/google/uuid"
)

// UUIDFactory returns a factory producing UUIDProcessor links.
func UUIDFactory() Factory {
	return func(next Processor) Processor {
		return &UUIDProcessor{Forward: Forward{Next: next}}
	}
}

// UUIDProcessor assigns a random UUID to documents that arrive
// without an ID, so every loader can stay ID-agnostic.
type UUIDProcessor struct {
	Forward
}

func (p *UUIDProcessor) ProcessAdd(ctx context.Context, cmd *AddCommand) error {
	if cmd.Doc != nil && cmd.Doc.ID == "" {
		cmd.Doc.SetField("id", uuid.NewString())
	}
	return p.Forward.ProcessAdd(ctx, cmd)
}
