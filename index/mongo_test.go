package index

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap/zaptest"

	"github.com/seekframe/indexd/config"
)

// =============================================================================
// 🧪 MongoStore Tests
// =============================================================================

func TestNormalizeBSON(t *testing.T) {
	t.Parallel()

	ts := bson.NewDateTimeFromTime(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	got := normalizeBSON(bson.M{
		"title": "gophers",
		"tags":  bson.A{"go", int32(7)},
		"meta": bson.D{
			{Key: "author", Value: "pat"},
			{Key: "stamped", Value: ts},
		},
	})

	want := map[string]any{
		"title": "gophers",
		"tags":  []any{"go", int32(7)},
		"meta": map[string]any{
			"author":  "pat",
			"stamped": time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	assert.Equal(t, want, got)
}

func TestMongoRow_Document(t *testing.T) {
	t.Parallel()

	row := mongoRow{
		ID: "doc-1",
		Fields: bson.M{
			"category": "books",
			"tags":     bson.A{"go", "index"},
		},
	}

	doc := row.document()
	assert.Equal(t, "doc-1", doc.ID)

	// Normalized slices must be visible to field matching.
	assert.True(t, matchField(doc, "tags", "index"))
	assert.True(t, matchField(doc, "category", "books"))
	assert.False(t, matchField(doc, "category", "films"))
}

// =============================================================================
// 🧪 MongoStore Integration (requires a running deployment)
// =============================================================================

func setupMongoStore(t *testing.T) *MongoStore {
	uri := os.Getenv("INDEXD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("INDEXD_TEST_MONGO_URI not set; skipping mongo integration test")
	}

	cfg := config.DefaultStoreConfig().Mongo
	cfg.URI = uri
	cfg.Database = "indexd_test"
	cfg.Collection = fmt.Sprintf("documents_%d", time.Now().UnixNano())

	store, err := OpenMongo(&cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.coll.DeleteMany(context.Background(), bson.D{})
		_ = store.Close()
	})

	return store
}

func TestMongoStore_RoundTrip(t *testing.T) {
	store := setupMongoStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDoc("doc-1", "category", "books"), true))
	require.NoError(t, store.Put(ctx, newDoc("doc-2", "category", "films"), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	category, _ := got.GetField("category")
	assert.Equal(t, "books", category)

	require.NoError(t, store.DeleteQuery(ctx, "category:books"))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, "mongo", store.Name())
}
