package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/seekframe/indexd/types"
)

// =============================================================================
// 🧪 MemoryStore Tests
// =============================================================================

func newDoc(id, field string, value any) *types.Document {
	doc := types.NewDocument(id)
	doc.SetField(field, value)
	return doc
}

func TestMemoryStore_PutCommitGet(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDoc("doc-1", "title", "gophers"), true))

	// Staged documents are readable immediately but not counted.
	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	got, err = store.Get(ctx, "doc-1")
	require.NoError(t, err)
	title, _ := got.GetField("title")
	assert.Equal(t, "gophers", title)

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestMemoryStore_PutValidation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	err := store.Put(ctx, nil, true)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	err = store.Put(ctx, types.NewDocument(""), true)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	err = store.Delete(ctx, "")
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}

func TestMemoryStore_OverwriteFalseKeepsExisting(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDoc("doc-1", "rev", "one"), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	// overwrite=false drops the new revision silently.
	require.NoError(t, store.Put(ctx, newDoc("doc-1", "rev", "two"), false))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	rev, _ := got.GetField("rev")
	assert.Equal(t, "one", rev)

	// overwrite=true replaces it.
	require.NoError(t, store.Put(ctx, newDoc("doc-1", "rev", "three"), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	got, err = store.Get(ctx, "doc-1")
	require.NoError(t, err)
	rev, _ = got.GetField("rev")
	assert.Equal(t, "three", rev)
}

func TestMemoryStore_DeleteStagedUntilCommit(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDoc("doc-1", "title", "gophers"), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	require.NoError(t, store.Delete(ctx, "doc-1"))

	// The tombstone hides the document from realtime reads while the
	// committed count is unchanged.
	_, err := store.Get(ctx, "doc-1")
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_Rollback(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDoc("keep", "title", "kept"), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	require.NoError(t, store.Put(ctx, newDoc("drop", "title", "dropped"), true))
	require.NoError(t, store.Delete(ctx, "keep"))
	require.NoError(t, store.Rollback(ctx))

	// The staged put and the staged delete are both gone.
	_, err := store.Get(ctx, "drop")
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

	got, err := store.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "keep", got.ID)
}

func TestMemoryStore_DeleteQueryAll(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDoc("a", "n", 1), true))
	require.NoError(t, store.Put(ctx, newDoc("b", "n", 2), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	require.NoError(t, store.Put(ctx, newDoc("c", "n", 3), true))
	require.NoError(t, store.DeleteQuery(ctx, "*:*"))

	// Documents staged after the wipe survive it.
	require.NoError(t, store.Put(ctx, newDoc("d", "n", 4), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "a")
	assert.Error(t, err)
	_, err = store.Get(ctx, "c")
	assert.Error(t, err)

	got, err := store.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "d", got.ID)
}

func TestMemoryStore_DeleteQueryField(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDoc("b1", "category", "books"), true))
	require.NoError(t, store.Put(ctx, newDoc("f1", "category", "films"), true))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	// A staged document matching the query is removed too.
	require.NoError(t, store.Put(ctx, newDoc("b2", "category", "books"), true))
	require.NoError(t, store.DeleteQuery(ctx, "category:books"))
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", got.ID)
}

func TestMemoryStore_DeleteQueryInvalid(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)

	err := store.DeleteQuery(context.Background(), "no-colon-here")
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}

func TestMemoryStore_CloneIsolation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	doc := newDoc("doc-1", "title", "original")
	require.NoError(t, store.Put(ctx, doc, true))

	// Mutating the caller's document after Put must not leak in.
	doc.SetField("title", "mutated")

	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	title, _ := got.GetField("title")
	assert.Equal(t, "original", title)

	// Mutating a returned document must not leak back.
	got.SetField("title", "poked")

	again, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	title, _ = again.GetField("title")
	assert.Equal(t, "original", title)
}

func TestMemoryStore_ConcurrentPuts(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		i := i
		g.Go(func() error {
			return store.Put(ctx, newDoc(fmt.Sprintf("doc-%d", i), "n", i), true)
		})
	}
	require.NoError(t, g.Wait())
	require.NoError(t, store.Commit(ctx, CommitOptions{}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)

	assert.Equal(t, "memory", store.Name())
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}
