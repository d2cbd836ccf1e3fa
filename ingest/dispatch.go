package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

const instrumentationName = "github.com/seekframe/indexd/ingest"

// Dispatch outcomes reported to observers.
const (
	OutcomeOK          = "ok"
	OutcomeUnresolved  = "unresolved"
	OutcomeUnsupported = "unsupported"
	OutcomeLoaderError = "loader_error"
)

// WriterRegistry is the narrow view of the response-writer registry
// the dispatcher needs to decide whether a loader preference can be
// honored.
type WriterRegistry interface {
	// Has reports whether a writer is registered under name.
	Has(name string) bool
}

// Observer receives the outcome of every dispatch, keyed by the
// resolved content type. Used to feed metrics without coupling the
// dispatcher to a collector.
type Observer interface {
	ObserveDispatch(contentType, outcome string, elapsed time.Duration)
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithObserver wires an outcome observer into the dispatcher.
func WithObserver(obs Observer) DispatcherOption {
	return func(d *Dispatcher) {
		d.observer = obs
	}
}

// Dispatcher routes one content stream to the loader registered for
// its resolved media type.
type Dispatcher struct {
	registry *Registry
	writers  WriterRegistry
	logger   *zap.Logger
	tracer   trace.Tracer
	observer Observer
}

// NewDispatcher creates a dispatcher over the given loader registry.
// writers may be nil when no response-writer registry exists; loader
// writer preferences are then never injected.
func NewDispatcher(registry *Registry, writers WriterRegistry, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		registry: registry,
		writers:  writers,
		logger:   logger.With(zap.String("component", "dispatcher")),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch resolves the stream's content type, looks up the matching
// loader, injects the loader's preferred response writer as a default
// when applicable, and delegates parsing to the loader. Loader errors
// are returned unchanged: the dispatcher neither wraps nor retries
// them. The stream and processor are never mutated here.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, rsp *response.Response, stream ContentStream, proc update.Processor) error {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "ingest.dispatch",
		trace.WithAttributes(attribute.String("ingest.stream", stream.Name())))
	defer span.End()

	ct, err := ResolveContentType(req.Params(), stream)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unresolved content type")
		d.observe("", OutcomeUnresolved, start)
		return err
	}
	span.SetAttributes(attribute.String("ingest.content_type", ct))

	loader, ok := d.registry.Lookup(ct)
	if !ok {
		err := types.NewError(types.ErrUnsupportedMediaType,
			fmt.Sprintf("unsupported content type %q, registered: %s",
				ct, strings.Join(d.registry.Types(), ", ")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "unsupported content type")
		d.logger.Warn("no loader for content type",
			zap.String("content_type", ct),
			zap.String("stream", stream.Name()))
		d.observe(ct, OutcomeUnsupported, start)
		return err
	}

	d.maybeSetDefaultWriter(req, loader)

	if err := loader.Load(ctx, req, rsp, stream, proc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "loader failed")
		d.observe(ct, OutcomeLoaderError, start)
		return err
	}
	d.observe(ct, OutcomeOK, start)
	return nil
}

// maybeSetDefaultWriter layers the loader's preferred response writer
// below the request's current parameters. Nothing happens when the
// request already names a writer, when the loader has no preference,
// or when the preferred writer is not registered.
func (d *Dispatcher) maybeSetDefaultWriter(req *Request, loader Loader) {
	if _, ok := req.Params().Get(params.WriterType); ok {
		return
	}
	preferred := loader.DefaultWriterType()
	if preferred == "" {
		return
	}
	if d.writers == nil || !d.writers.Has(preferred) {
		return
	}
	req.SetParams(params.WrapDefaults(req.Params(),
		params.MapParams{params.WriterType: preferred}))
}

func (d *Dispatcher) observe(contentType, outcome string, start time.Time) {
	if d.observer == nil {
		return
	}
	d.observer.ObserveDispatch(contentType, outcome, time.Since(start))
}
