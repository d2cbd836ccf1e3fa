package metrics

import (
	"context"

	"github.com/seekframe/indexd/update"
)

// Command statuses used as metric label values.
const (
	statusOK    = "ok"
	statusError = "error"
)

// ProcessorFactory returns a chain link counting every update command
// that flows through the processor chain.
func ProcessorFactory(c *Collector) update.Factory {
	return func(next update.Processor) update.Processor {
		return &commandProcessor{next: next, collector: c}
	}
}

// commandProcessor counts commands by kind and forwards them.
type commandProcessor struct {
	next      update.Processor
	collector *Collector
}

func (p *commandProcessor) ProcessAdd(ctx context.Context, cmd *update.AddCommand) error {
	return p.record(update.CmdAdd, p.next.ProcessAdd(ctx, cmd))
}

func (p *commandProcessor) ProcessDelete(ctx context.Context, cmd *update.DeleteCommand) error {
	return p.record(update.CmdDelete, p.next.ProcessDelete(ctx, cmd))
}

func (p *commandProcessor) ProcessCommit(ctx context.Context, cmd *update.CommitCommand) error {
	kind := update.CmdCommit
	if cmd.Optimize {
		kind = update.CmdOptimize
	}
	return p.record(kind, p.next.ProcessCommit(ctx, cmd))
}

func (p *commandProcessor) ProcessRollback(ctx context.Context, cmd *update.RollbackCommand) error {
	return p.record(update.CmdRollback, p.next.ProcessRollback(ctx, cmd))
}

func (p *commandProcessor) Finish(ctx context.Context) error {
	return p.next.Finish(ctx)
}

func (p *commandProcessor) record(kind string, err error) error {
	status := statusOK
	if err != nil {
		status = statusError
	}
	p.collector.RecordUpdateCommand(kind, status)
	return err
}
