package update

import (
	"context"

	"go.uber.org/zap"
)

// logIDSample caps how many document IDs the finish line carries.
const logIDSample = 8

// DefaultChain is the stock pipeline: request logging, then ID
// assignment for documents that arrive without one. The terminal
// processor is supplied by the caller at Create time.
func DefaultChain(logger *zap.Logger) Chain {
	return Chain{LogFactory(logger), UUIDFactory()}
}

// LogFactory returns a factory producing LogProcessor links.
func LogFactory(logger *zap.Logger) Factory {
	return func(next Processor) Processor {
		return NewLogProcessor(logger, next)
	}
}

// LogProcessor counts the commands that pass through it and writes
// one summary line when the request finishes. Commands are counted
// only after the rest of the chain accepted them.
type LogProcessor struct {
	Forward
	logger *zap.Logger

	adds      int
	deletes   int
	commits   int
	rollbacks int
	ids       []string
}

// NewLogProcessor wraps next with command accounting.
func NewLogProcessor(logger *zap.Logger, next Processor) *LogProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogProcessor{
		Forward: Forward{Next: next},
		logger:  logger.With(zap.String("component", "update_log")),
	}
}

func (p *LogProcessor) ProcessAdd(ctx context.Context, cmd *AddCommand) error {
	if err := p.Forward.ProcessAdd(ctx, cmd); err != nil {
		return err
	}
	p.adds++
	if cmd.Doc != nil && len(p.ids) < logIDSample {
		p.ids = append(p.ids, cmd.Doc.ID)
	}
	return nil
}

func (p *LogProcessor) ProcessDelete(ctx context.Context, cmd *DeleteCommand) error {
	if err := p.Forward.ProcessDelete(ctx, cmd); err != nil {
		return err
	}
	p.deletes++
	return nil
}

func (p *LogProcessor) ProcessCommit(ctx context.Context, cmd *CommitCommand) error {
	if err := p.Forward.ProcessCommit(ctx, cmd); err != nil {
		return err
	}
	p.commits++
	return nil
}

func (p *LogProcessor) ProcessRollback(ctx context.Context, cmd *RollbackCommand) error {
	if err := p.Forward.ProcessRollback(ctx, cmd); err != nil {
		return err
	}
	p.rollbacks++
	return nil
}

func (p *LogProcessor) Finish(ctx context.Context) error {
	err := p.Forward.Finish(ctx)

	p.logger.Info("update request finished",
		zap.Int("adds", p.adds),
		zap.Int("deletes", p.deletes),
		zap.Int("commits", p.commits),
		zap.Int("rollbacks", p.rollbacks),
		zap.Strings("ids", p.ids),
	)
	return err
}
