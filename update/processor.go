package update

import "context"

// Processor consumes a stream of update commands. Implementations
// usually decorate the next processor in a chain and forward whatever
// they do not handle themselves.
type Processor interface {
	ProcessAdd(ctx context.Context, cmd *AddCommand) error
	ProcessDelete(ctx context.Context, cmd *DeleteCommand) error
	ProcessCommit(ctx context.Context, cmd *CommitCommand) error
	ProcessRollback(ctx context.Context, cmd *RollbackCommand) error

	// Finish signals that the request has no more commands, letting
	// processors flush whatever they buffered.
	Finish(ctx context.Context) error
}

// Factory builds one chain link around the next processor.
type Factory func(next Processor) Processor

// Chain is an ordered list of factories. The first factory produces
// the outermost processor.
type Chain []Factory

// Create builds the per-request processor chain around a terminal
// processor.
func (c Chain) Create(terminal Processor) Processor {
	p := terminal
	for i := len(c) - 1; i >= 0; i-- {
		p = c[i](p)
	}
	return p
}

// Forward is an embeddable pass-through processor. A nil Next makes
// every method a no-op, which keeps short chains in tests simple.
type Forward struct {
	Next Processor
}

func (f Forward) ProcessAdd(ctx context.Context, cmd *AddCommand) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.ProcessAdd(ctx, cmd)
}

func (f Forward) ProcessDelete(ctx context.Context, cmd *DeleteCommand) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.ProcessDelete(ctx, cmd)
}

func (f Forward) ProcessCommit(ctx context.Context, cmd *CommitCommand) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.ProcessCommit(ctx, cmd)
}

func (f Forward) ProcessRollback(ctx context.Context, cmd *RollbackCommand) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.ProcessRollback(ctx, cmd)
}

func (f Forward) Finish(ctx context.Context) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.Finish(ctx)
}
