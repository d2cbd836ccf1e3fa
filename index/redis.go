package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seekframe/indexd/config"
	"github.com/seekframe/indexd/types"
)

// docKeyPrefix namespaces document keys so the store can share a
// database with other users.
const docKeyPrefix = "doc:"

// RedisStore persists documents as JSON values under doc:<id> keys.
// Staged changes live in memory and are flushed with a transactional
// pipeline at commit.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger

	mu        sync.Mutex
	pending   map[string]*types.Document
	deleteAll bool
}

// OpenRedis connects to the configured Redis server and verifies the
// connection before returning.
func OpenRedis(cfg *config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "failed to connect to redis").
			WithBackend("redis").
			WithCause(err).
			WithRetryable(true)
	}

	return NewRedisStore(client, logger), nil
}

// NewRedisStore wraps an existing client. Tests inject miniredis
// connections here.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:  client,
		logger:  logger.With(zap.String("component", "redis_store")),
		pending: make(map[string]*types.Document),
	}
}

// Put stages a document.
func (s *RedisStore) Put(ctx context.Context, doc *types.Document, overwrite bool) error {
	if doc == nil || doc.ID == "" {
		return types.NewError(types.ErrInvalidRequest, "document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !overwrite {
		exists, err := s.existsLocked(ctx, doc.ID)
		if err != nil {
			return err
		}
		if exists {
			s.logger.Debug("keeping existing document", zap.String("id", doc.ID))
			return nil
		}
	}
	s.pending[doc.ID] = doc.Clone()
	return nil
}

// Delete stages removal of a document by ID.
func (s *RedisStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return types.NewError(types.ErrInvalidRequest, "document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = nil
	return nil
}

// DeleteQuery stages removal of every matching document. Field
// queries are evaluated against committed keys plus the staged view
// at call time.
func (s *RedisStore) DeleteQuery(ctx context.Context, query string) error {
	field, value, all, err := parseQuery(query)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if all {
		s.deleteAll = true
		s.pending = make(map[string]*types.Document)
		return nil
	}

	for id, d := range s.pending {
		if d != nil && matchField(d, field, value) {
			s.pending[id] = nil
		}
	}
	if s.deleteAll {
		return nil
	}

	keys, err := s.scanKeys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		id := strings.TrimPrefix(key, docKeyPrefix)
		if _, staged := s.pending[id]; staged {
			continue
		}
		doc, err := s.fetch(ctx, id)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return err
		}
		if matchField(doc, field, value) {
			s.pending[id] = nil
		}
	}
	return nil
}

// Get returns a document, consulting staged changes first.
func (s *RedisStore) Get(ctx context.Context, id string) (*types.Document, error) {
	s.mu.Lock()
	if d, ok := s.pending[id]; ok {
		s.mu.Unlock()
		if d == nil {
			return nil, notFound(id)
		}
		return d.Clone(), nil
	}
	deleteAll := s.deleteAll
	s.mu.Unlock()

	if deleteAll {
		return nil, notFound(id)
	}

	doc, err := s.fetch(ctx, id)
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Commit flushes all staged changes with a transactional pipeline.
func (s *RedisStore) Commit(ctx context.Context, opts CommitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []string
	if s.deleteAll {
		keys, err := s.scanKeys(ctx)
		if err != nil {
			return err
		}
		stale = keys
	}

	puts, deletes := 0, 0
	pipe := s.client.TxPipeline()
	if len(stale) > 0 {
		pipe.Del(ctx, stale...)
	}
	for id, d := range s.pending {
		if d == nil {
			pipe.Del(ctx, docKeyPrefix+id)
			deletes++
			continue
		}
		data, err := json.Marshal(d.Fields)
		if err != nil {
			return fmt.Errorf("encode fields for %q: %w", id, err)
		}
		pipe.Set(ctx, docKeyPrefix+id, data, 0)
		puts++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return s.wrap("commit failed", err)
	}

	s.pending = make(map[string]*types.Document)
	s.deleteAll = false

	s.logger.Info("commit",
		zap.Int("puts", puts),
		zap.Int("deletes", deletes),
		zap.Bool("optimize", opts.Optimize),
	)
	return nil
}

// Rollback discards all staged changes.
func (s *RedisStore) Rollback(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded := len(s.pending)
	s.pending = make(map[string]*types.Document)
	s.deleteAll = false

	s.logger.Info("rollback", zap.Int("discarded", discarded))
	return nil
}

// Count returns the number of committed documents.
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// Ping checks server connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return s.wrap("ping failed", err)
	}
	return nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Name returns the backend name.
func (s *RedisStore) Name() string {
	return "redis"
}

// existsLocked reports whether a document is present in the effective
// view. Callers must hold the lock.
func (s *RedisStore) existsLocked(ctx context.Context, id string) (bool, error) {
	if d, ok := s.pending[id]; ok {
		return d != nil, nil
	}
	if s.deleteAll {
		return false, nil
	}
	n, err := s.client.Exists(ctx, docKeyPrefix+id).Result()
	if err != nil {
		return false, s.wrap("existence check failed", err)
	}
	return n > 0, nil
}

// fetch loads and decodes a committed document. Returns redis.Nil
// when the key does not exist.
func (s *RedisStore) fetch(ctx context.Context, id string) (*types.Document, error) {
	data, err := s.client.Get(ctx, docKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, redis.Nil
	}
	if err != nil {
		return nil, s.wrap("get failed", err)
	}

	fields := make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("decode fields for %q: %w", id, err)
		}
	}
	return &types.Document{ID: id, Fields: fields}, nil
}

// scanKeys iterates every document key.
func (s *RedisStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, docKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, s.wrap("key scan failed", err)
	}
	return keys, nil
}

func (s *RedisStore) wrap(msg string, err error) error {
	return types.NewError(types.ErrStoreUnavailable, msg).
		WithBackend("redis").
		WithCause(err)
}
