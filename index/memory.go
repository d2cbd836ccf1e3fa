package index

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/seekframe/indexd/types"
)

// MemoryStore keeps documents in process memory. It is the default
// backend and the reference implementation of the staged-commit
// semantics the other backends follow.
type MemoryStore struct {
	logger *zap.Logger

	mu      sync.RWMutex
	visible map[string]*types.Document
	// pending maps IDs to staged documents; a nil value marks a
	// staged delete.
	pending   map[string]*types.Document
	deleteAll bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		logger:  logger.With(zap.String("component", "memory_store")),
		visible: make(map[string]*types.Document),
		pending: make(map[string]*types.Document),
	}
}

// Put stages a document.
func (s *MemoryStore) Put(_ context.Context, doc *types.Document, overwrite bool) error {
	if doc == nil || doc.ID == "" {
		return types.NewError(types.ErrInvalidRequest, "document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !overwrite && s.existsLocked(doc.ID) {
		s.logger.Debug("keeping existing document", zap.String("id", doc.ID))
		return nil
	}
	s.pending[doc.ID] = doc.Clone()
	return nil
}

// Delete stages removal of a document by ID.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return types.NewError(types.ErrInvalidRequest, "document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = nil
	return nil
}

// DeleteQuery stages removal of every matching document.
func (s *MemoryStore) DeleteQuery(_ context.Context, query string) error {
	field, value, all, err := parseQuery(query)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if all {
		// Wipes committed documents and everything staged so far;
		// documents staged after this survive.
		s.deleteAll = true
		s.pending = make(map[string]*types.Document)
		return nil
	}

	for id, d := range s.pending {
		if d != nil && matchField(d, field, value) {
			s.pending[id] = nil
		}
	}
	if !s.deleteAll {
		for id, d := range s.visible {
			if _, staged := s.pending[id]; staged {
				continue
			}
			if matchField(d, field, value) {
				s.pending[id] = nil
			}
		}
	}
	return nil
}

// Get returns a document, consulting staged changes first.
func (s *MemoryStore) Get(_ context.Context, id string) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.pending[id]; ok {
		if d == nil {
			return nil, notFound(id)
		}
		return d.Clone(), nil
	}
	if s.deleteAll {
		return nil, notFound(id)
	}
	if d, ok := s.visible[id]; ok {
		return d.Clone(), nil
	}
	return nil, notFound(id)
}

// Commit publishes all staged changes.
func (s *MemoryStore) Commit(_ context.Context, opts CommitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteAll {
		s.visible = make(map[string]*types.Document)
	}

	var puts, deletes int
	for id, d := range s.pending {
		if d == nil {
			delete(s.visible, id)
			deletes++
		} else {
			s.visible[id] = d
			puts++
		}
	}

	s.pending = make(map[string]*types.Document)
	s.deleteAll = false

	s.logger.Info("commit",
		zap.Int("puts", puts),
		zap.Int("deletes", deletes),
		zap.Int("visible", len(s.visible)),
		zap.Bool("optimize", opts.Optimize),
		zap.Bool("soft", opts.SoftCommit),
	)
	return nil
}

// Rollback discards all staged changes.
func (s *MemoryStore) Rollback(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded := len(s.pending)
	s.pending = make(map[string]*types.Document)
	s.deleteAll = false

	s.logger.Info("rollback", zap.Int("discarded", discarded))
	return nil
}

// Count returns the number of committed documents.
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.visible)), nil
}

// Ping always succeeds for the in-memory backend.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

// Name returns the backend name.
func (s *MemoryStore) Name() string {
	return "memory"
}

// existsLocked reports whether a document is present in the effective
// (staged over committed) view. Callers must hold the lock.
func (s *MemoryStore) existsLocked(id string) bool {
	if d, ok := s.pending[id]; ok {
		return d != nil
	}
	if s.deleteAll {
		return false
	}
	_, ok := s.visible[id]
	return ok
}
