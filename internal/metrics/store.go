package metrics

import (
	"context"
	"time"

	"github.com/seekframe/indexd/index"
	"github.com/seekframe/indexd/types"
)

// InstrumentedStore decorates a document store with operation timing.
// Successful commits also refresh the committed-document gauge.
type InstrumentedStore struct {
	store     index.Store
	collector *Collector
}

// NewInstrumentedStore wraps store with operation metrics.
func NewInstrumentedStore(store index.Store, collector *Collector) *InstrumentedStore {
	return &InstrumentedStore{store: store, collector: collector}
}

func (s *InstrumentedStore) observe(op string, start time.Time) {
	s.collector.RecordStoreOperation(s.store.Name(), op, time.Since(start))
}

// Put stages a document.
func (s *InstrumentedStore) Put(ctx context.Context, doc *types.Document, overwrite bool) error {
	defer s.observe("put", time.Now())
	return s.store.Put(ctx, doc, overwrite)
}

// Delete stages removal by ID.
func (s *InstrumentedStore) Delete(ctx context.Context, id string) error {
	defer s.observe("delete", time.Now())
	return s.store.Delete(ctx, id)
}

// DeleteQuery stages removal by query.
func (s *InstrumentedStore) DeleteQuery(ctx context.Context, query string) error {
	defer s.observe("delete_query", time.Now())
	return s.store.DeleteQuery(ctx, query)
}

// Get returns the document with the given ID.
func (s *InstrumentedStore) Get(ctx context.Context, id string) (*types.Document, error) {
	defer s.observe("get", time.Now())
	return s.store.Get(ctx, id)
}

// Commit publishes staged changes and refreshes the document gauge.
func (s *InstrumentedStore) Commit(ctx context.Context, opts index.CommitOptions) error {
	defer s.observe("commit", time.Now())
	err := s.store.Commit(ctx, opts)
	if err == nil {
		if count, countErr := s.store.Count(ctx); countErr == nil {
			s.collector.SetStoreDocuments(s.store.Name(), count)
		}
	}
	return err
}

// Rollback discards staged changes.
func (s *InstrumentedStore) Rollback(ctx context.Context) error {
	defer s.observe("rollback", time.Now())
	return s.store.Rollback(ctx)
}

// Count returns the committed document count.
func (s *InstrumentedStore) Count(ctx context.Context) (int64, error) {
	defer s.observe("count", time.Now())
	return s.store.Count(ctx)
}

// Ping checks backend connectivity.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close releases the underlying store.
func (s *InstrumentedStore) Close() error {
	return s.store.Close()
}

// Name returns the underlying backend name.
func (s *InstrumentedStore) Name() string {
	return s.store.Name()
}
