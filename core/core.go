package core

import (
	"go.uber.org/zap"

	"github.com/seekframe/indexd/config"
	"github.com/seekframe/indexd/index"
	"github.com/seekframe/indexd/ingest"
	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/response"
	"github.com/seekframe/indexd/types"
	"github.com/seekframe/indexd/update"
)

// Core bundles what an update endpoint works against: the document
// store, the response-writer registry, the loader registry with its
// dispatcher, and the processor chain built per request. A Core is
// assembled once at startup and read-only afterwards.
type Core struct {
	name     string
	store    index.Store
	writers  *response.Registry
	loaders  *ingest.Registry
	dispatch *ingest.Dispatcher
	chain    update.Chain
	logger   *zap.Logger
}

// Option customizes core assembly.
type Option func(*options)

type options struct {
	name         string
	extraLoaders []ingest.Registration
	extraWriters []response.Registration
	chain        update.Chain
	observer     ingest.Observer
}

// WithName sets the core name used in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLoaders registers extra loaders alongside the built-ins.
func WithLoaders(regs ...ingest.Registration) Option {
	return func(o *options) { o.extraLoaders = append(o.extraLoaders, regs...) }
}

// WithWriters registers extra response writers alongside the built-ins.
func WithWriters(regs ...response.Registration) Option {
	return func(o *options) { o.extraWriters = append(o.extraWriters, regs...) }
}

// WithChain replaces the default Log -> UUID processor chain.
func WithChain(chain update.Chain) Option {
	return func(o *options) { o.chain = chain }
}

// WithObserver wires a dispatch outcome observer, typically the
// metrics collector.
func WithObserver(obs ingest.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New assembles a core over an already-opened store. cfg supplies the
// loader construction defaults and the fallback response writer; nil
// falls back to config defaults.
func New(cfg *config.UpdateConfig, store index.Store, logger *zap.Logger, opts ...Option) (*Core, error) {
	if store == nil {
		return nil, types.NewError(types.ErrInternalError, "core requires a store")
	}
	if cfg == nil {
		def := config.DefaultUpdateConfig()
		cfg = &def
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := options{name: "default", chain: update.DefaultChain(logger)}
	for _, opt := range opts {
		opt(&o)
	}

	writers := response.NewRegistry(o.extraWriters...).WithDefault(cfg.DefaultWriter)

	loaderCfg := make(params.MapParams, len(cfg.LoaderDefaults))
	for k, v := range cfg.LoaderDefaults {
		loaderCfg[k] = v
	}
	loaders := ingest.NewRegistry(loaderCfg, o.extraLoaders...)

	var dopts []ingest.DispatcherOption
	if o.observer != nil {
		dopts = append(dopts, ingest.WithObserver(o.observer))
	}

	c := &Core{
		name:    o.name,
		store:   store,
		writers: writers,
		loaders: loaders,
		chain:   o.chain,
		logger:  logger.With(zap.String("component", "core"), zap.String("core", o.name)),
	}
	c.dispatch = ingest.NewDispatcher(loaders, writers, logger, dopts...)

	c.logger.Info("core assembled",
		zap.String("store", store.Name()),
		zap.Strings("content_types", loaders.Types()),
		zap.String("default_writer", writers.DefaultName()),
	)
	return c, nil
}

// Name returns the core name.
func (c *Core) Name() string { return c.name }

// Store returns the document store.
func (c *Core) Store() index.Store { return c.store }

// Writers returns the response-writer registry.
func (c *Core) Writers() *response.Registry { return c.writers }

// Loaders returns the loader registry.
func (c *Core) Loaders() *ingest.Registry { return c.loaders }

// Dispatcher returns the content-type dispatcher.
func (c *Core) Dispatcher() *ingest.Dispatcher { return c.dispatch }

// HasWriter reports whether a response writer is registered under name.
func (c *Core) HasWriter(name string) bool {
	return c.writers.Has(name)
}

// CreateProcessor builds a fresh processor chain for one request,
// terminated by the store-applying processor.
func (c *Core) CreateProcessor() update.Processor {
	return c.chain.Create(update.NewRunProcessor(c.store, c.logger))
}

// Close releases the store.
func (c *Core) Close() error {
	return c.store.Close()
}
