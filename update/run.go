package update

import (
	"context"

	"go.uber.org/zap"

	"github.com/seekframe/indexd/index"
	"github.com/seekframe/indexd/types"
)

// RunProcessor is the terminal chain link: it applies commands to the
// document store.
type RunProcessor struct {
	store  index.Store
	logger *zap.Logger
}

// NewRunProcessor builds the terminal processor over store.
func NewRunProcessor(store index.Store, logger *zap.Logger) *RunProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunProcessor{
		store:  store,
		logger: logger.With(zap.String("component", "update_run")),
	}
}

func (p *RunProcessor) ProcessAdd(ctx context.Context, cmd *AddCommand) error {
	if cmd.Doc == nil {
		return types.NewError(types.ErrInvalidRequest, "add command without document")
	}
	if cmd.CommitWithin > 0 {
		// Advisory only: the store commits when asked, it does not
		// schedule its own commits.
		p.logger.Debug("commitWithin requested",
			zap.String("id", cmd.Doc.ID),
			zap.Int("millis", cmd.CommitWithin),
		)
	}
	return p.store.Put(ctx, cmd.Doc, cmd.Overwrite)
}

func (p *RunProcessor) ProcessDelete(ctx context.Context, cmd *DeleteCommand) error {
	switch {
	case cmd.ID != "":
		return p.store.Delete(ctx, cmd.ID)
	case cmd.Query != "":
		return p.store.DeleteQuery(ctx, cmd.Query)
	default:
		return types.NewError(types.ErrInvalidRequest, "delete command without id or query")
	}
}

func (p *RunProcessor) ProcessCommit(ctx context.Context, cmd *CommitCommand) error {
	return p.store.Commit(ctx, index.CommitOptions{
		Optimize:     cmd.Optimize,
		WaitSearcher: cmd.WaitSearcher,
		SoftCommit:   cmd.SoftCommit,
	})
}

func (p *RunProcessor) ProcessRollback(ctx context.Context, _ *RollbackCommand) error {
	return p.store.Rollback(ctx)
}

func (p *RunProcessor) Finish(_ context.Context) error {
	return nil
}
