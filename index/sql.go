package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/seekframe/indexd/config"
	"github.com/seekframe/indexd/internal/database"
	"github.com/seekframe/indexd/types"
)

// documentRow is the SQL projection of a document; field values are
// stored as a JSON blob.
type documentRow struct {
	ID        string    `gorm:"column:id;primaryKey;size:255"`
	Fields    string    `gorm:"column:fields;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName maps rows to the documents table.
func (documentRow) TableName() string {
	return "documents"
}

// SQLStore persists documents through GORM. The sqlite, mysql, and
// postgres dialects are supported. Staged changes live in memory and
// are flushed in a single transaction at commit.
type SQLStore struct {
	pool    *database.PoolManager
	db      *gorm.DB
	dialect string
	logger  *zap.Logger

	mu        sync.Mutex
	pending   map[string]*types.Document
	deleteAll bool
}

// OpenSQL opens the configured SQL backend and wraps it in a store.
func OpenSQL(cfg *config.StoreConfig, logger *zap.Logger) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch cfg.Backend {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported SQL backend %q", cfg.Backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "failed to open database").
			WithBackend(cfg.Backend).
			WithCause(err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(&documentRow{}); err != nil {
			return nil, fmt.Errorf("auto-migrate failed: %w", err)
		}
	}

	return NewSQLStore(db, database.PoolConfig{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
}

// NewSQLStore wraps an already-open GORM handle. Tests inject mock
// connections here.
func NewSQLStore(db *gorm.DB, poolCfg database.PoolConfig, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := database.NewPoolManager(db, poolCfg, logger)
	if err != nil {
		return nil, err
	}
	return &SQLStore{
		pool:    pool,
		db:      db,
		dialect: db.Dialector.Name(),
		logger:  logger.With(zap.String("component", "sql_store")),
		pending: make(map[string]*types.Document),
	}, nil
}

// Put stages a document.
func (s *SQLStore) Put(ctx context.Context, doc *types.Document, overwrite bool) error {
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
func (s *SQLStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return types.NewError(types.ErrInvalidRequest, "document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = nil
	return nil
}

// DeleteQuery stages removal of every matching document. Field
// queries are evaluated against the committed table plus the staged
// view at call time.
func (s *SQLStore) DeleteQuery(ctx context.Context, query string) error {
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

	var rows []documentRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return s.wrap("delete query scan failed", err)
	}
	for _, row := range rows {
		if _, staged := s.pending[row.ID]; staged {
			continue
		}
		doc, err := decodeRow(row)
		if err != nil {
			s.logger.Warn("skipping undecodable row", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		if matchField(doc, field, value) {
			s.pending[row.ID] = nil
		}
	}
	return nil
}

// Get returns a document, consulting staged changes first.
func (s *SQLStore) Get(ctx context.Context, id string) (*types.Document, error) {
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

	var row documentRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, s.wrap("get failed", err)
	}
	return decodeRow(row)
}

// Commit flushes all staged changes in a single transaction.
func (s *SQLStore) Commit(ctx context.Context, opts CommitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var puts, deletes int
	for _, d := range s.pending {
		if d == nil {
			deletes++
		} else {
			puts++
		}
	}

	err := s.pool.WithTransactionRetry(ctx, 3, func(tx *gorm.DB) error {
		if s.deleteAll {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Delete(&documentRow{}).Error; err != nil {
				return err
			}
		}
		for id, d := range s.pending {
			if d == nil {
				if err := tx.Where("id = ?", id).Delete(&documentRow{}).Error; err != nil {
					return err
				}
				continue
			}
			row, err := encodeRow(d)
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.wrap("commit failed", err)
	}

	s.pending = make(map[string]*types.Document)
	s.deleteAll = false

	if opts.Optimize {
		s.optimize(ctx)
	}

	s.logger.Info("commit",
		zap.Int("puts", puts),
		zap.Int("deletes", deletes),
		zap.Bool("optimize", opts.Optimize),
	)
	return nil
}

// Rollback discards all staged changes.
func (s *SQLStore) Rollback(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded := len(s.pending)
	s.pending = make(map[string]*types.Document)
	s.deleteAll = false

	s.logger.Info("rollback", zap.Int("discarded", discarded))
	return nil
}

// Count returns the number of committed documents.
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&documentRow{}).Count(&n).Error; err != nil {
		return 0, s.wrap("count failed", err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.pool.Close()
}

// Name returns the SQL dialect name.
func (s *SQLStore) Name() string {
	return s.dialect
}

// existsLocked reports whether a document is present in the effective
// view. Callers must hold the lock.
func (s *SQLStore) existsLocked(ctx context.Context, id string) (bool, error) {
	if d, ok := s.pending[id]; ok {
		return d != nil, nil
	}
	if s.deleteAll {
		return false, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&documentRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, s.wrap("existence check failed", err)
	}
	return n > 0, nil
}

// optimize issues the dialect's compaction statement outside the
// commit transaction; failures are logged, not returned.
func (s *SQLStore) optimize(ctx context.Context) {
	var stmt string
	switch s.dialect {
	case "sqlite":
		stmt = "VACUUM"
	case "postgres":
		stmt = "VACUUM ANALYZE documents"
	case "mysql":
		stmt = "OPTIMIZE TABLE documents"
	default:
		return
	}
	if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		s.logger.Warn("optimize failed", zap.String("stmt", stmt), zap.Error(err))
	}
}

func (s *SQLStore) wrap(msg string, err error) error {
	return types.NewError(types.ErrStoreUnavailable, msg).
		WithBackend(s.dialect).
		WithCause(err)
}

func encodeRow(doc *types.Document) (documentRow, error) {
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return documentRow{}, fmt.Errorf("encode fields: %w", err)
	}
	return documentRow{ID: doc.ID, Fields: string(data), UpdatedAt: time.Now().UTC()}, nil
}

func decodeRow(row documentRow) (*types.Document, error) {
	fields := make(map[string]any)
	if row.Fields != "" {
		if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
			return nil, fmt.Errorf("decode fields for %q: %w", row.ID, err)
		}
	}
	return &types.Document{ID: row.ID, Fields: fields}, nil
}
