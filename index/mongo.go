package index

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/seekframe/indexd/config"
	"github.com/seekframe/indexd/types"
)

// mongoRow is the BSON projection of a document.
type mongoRow struct {
	ID        string    `bson:"_id"`
	Fields    bson.M    `bson:"fields"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore persists documents in a MongoDB collection. Staged
// changes live in memory and are flushed with a bulk write at commit.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *zap.Logger

	mu        sync.Mutex
	pending   map[string]*types.Document
	deleteAll bool
}

// OpenMongo connects to the configured MongoDB deployment and
// verifies the connection before returning.
func OpenMongo(cfg *config.MongoConfig, logger *zap.Logger) (*MongoStore, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts = opts.SetTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "failed to connect to mongodb").
			WithBackend("mongo").
			WithCause(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, types.NewError(types.ErrStoreUnavailable, "failed to reach mongodb").
			WithBackend("mongo").
			WithCause(err).
			WithRetryable(true)
	}

	return NewMongoStore(client, cfg.Database, cfg.Collection, logger), nil
}

// NewMongoStore wraps an already-connected client.
func NewMongoStore(client *mongo.Client, database, collection string, logger *zap.Logger) *MongoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoStore{
		client:  client,
		coll:    client.Database(database).Collection(collection),
		logger:  logger.With(zap.String("component", "mongo_store")),
		pending: make(map[string]*types.Document),
	}
}

// Put stages a document.
func (s *MongoStore) Put(ctx context.Context, doc *types.Document, overwrite bool) error {
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
func (s *MongoStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return types.NewError(types.ErrInvalidRequest, "document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = nil
	return nil
}

// DeleteQuery stages removal of every matching document. Field
// queries are evaluated against the committed collection plus the
// staged view at call time.
func (s *MongoStore) DeleteQuery(ctx context.Context, query string) error {
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

	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return s.wrap("delete query scan failed", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row mongoRow
		if err := cur.Decode(&row); err != nil {
			s.logger.Warn("skipping undecodable document", zap.Error(err))
			continue
		}
		if _, staged := s.pending[row.ID]; staged {
			continue
		}
		if matchField(row.document(), field, value) {
			s.pending[row.ID] = nil
		}
	}
	if err := cur.Err(); err != nil {
		return s.wrap("delete query scan failed", err)
	}
	return nil
}

// Get returns a document, consulting staged changes first.
func (s *MongoStore) Get(ctx context.Context, id string) (*types.Document, error) {
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

	var row mongoRow
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, s.wrap("get failed", err)
	}
	return row.document(), nil
}

// Commit flushes all staged changes with a bulk write.
func (s *MongoStore) Commit(ctx context.Context, opts CommitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteAll {
		if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
			return s.wrap("commit failed", err)
		}
	}

	puts, deletes := 0, 0
	var models []mongo.WriteModel
	for id, d := range s.pending {
		if d == nil {
			models = append(models, mongo.NewDeleteOneModel().
				SetFilter(bson.M{"_id": id}))
			deletes++
			continue
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(newMongoRow(d)).
			SetUpsert(true))
		puts++
	}
	if len(models) > 0 {
		if _, err := s.coll.BulkWrite(ctx, models); err != nil {
			return s.wrap("commit failed", err)
		}
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
func (s *MongoStore) Rollback(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded := len(s.pending)
	s.pending = make(map[string]*types.Document)
	s.deleteAll = false

	s.logger.Info("rollback", zap.Int("discarded", discarded))
	return nil
}

// Count returns the number of committed documents.
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, s.wrap("count failed", err)
	}
	return n, nil
}

// Ping checks deployment connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return s.wrap("ping failed", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Name returns the backend name.
func (s *MongoStore) Name() string {
	return "mongo"
}

// existsLocked reports whether a document is present in the effective
// view. Callers must hold the lock.
func (s *MongoStore) existsLocked(ctx context.Context, id string) (bool, error) {
	if d, ok := s.pending[id]; ok {
		return d != nil, nil
	}
	if s.deleteAll {
		return false, nil
	}
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, s.wrap("existence check failed", err)
	}
	return n > 0, nil
}

func (s *MongoStore) wrap(msg string, err error) error {
	return types.NewError(types.ErrStoreUnavailable, msg).
		WithBackend("mongo").
		WithCause(err)
}

func newMongoRow(doc *types.Document) mongoRow {
	return mongoRow{
		ID:        doc.ID,
		Fields:    bson.M(doc.Fields),
		UpdatedAt: time.Now().UTC(),
	}
}

// document converts the row back to a plain document. BSON decodes
// nested values as bson.M and bson.A, which are normalized to plain
// maps and slices so field matching sees one shape.
func (r mongoRow) document() *types.Document {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = normalizeBSON(v)
	}
	return &types.Document{ID: r.ID, Fields: fields}
}

func normalizeBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalizeBSON(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case bson.A:
		a := make([]any, len(t))
		for i, e := range t {
			a[i] = normalizeBSON(e)
		}
		return a
	case bson.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
