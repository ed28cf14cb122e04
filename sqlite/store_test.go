package sqlite_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velmie/mutationq"
	"github.com/velmie/mutationq/sqlite"
)

func openStore(t *testing.T, path, table string) *sqlite.Store {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := sqlite.NewStore(ctx, db, sqlite.WithTable(table), sqlite.WithCreateSchema(true))
	require.NoError(t, err)

	return store
}

func TestStoreKVContract(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "queue.db"), sqlite.DefaultEntryTable)

	require.NoError(t, store.Put(ctx, "a", []byte("1")))
	require.NoError(t, store.Put(ctx, "a", []byte("2")))
	require.NoError(t, store.Put(ctx, "b", []byte("3")))

	value, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)

	count, err := store.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, store.Scan(ctx, func(key string, _ []byte) error {
		return store.Delete(ctx, key)
	}))
	require.NoError(t, store.Delete(ctx, "missing"))

	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, mutationq.ErrNotFound)
}

func TestQueueSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "queue.db")

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	store, err := sqlite.NewStore(ctx, db, sqlite.WithCreateSchema(true))
	require.NoError(t, err)

	q := mutationq.MustNewQueue(store)
	for _, table := range []string{"a", "b", "c"} {
		_, err := q.Enqueue(ctx, mutationq.Insert{Table: table, Payload: json.RawMessage(`{}`)})
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	reopened := openStore(t, path, sqlite.DefaultEntryTable)
	q = mutationq.MustNewQueue(reopened)

	entries, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	tables := make([]string, 0, len(entries))
	for _, entry := range entries {
		tables = append(tables, entry.Op.(mutationq.Insert).Table)
	}
	require.Equal(t, []string{"a", "b", "c"}, tables)

	next, err := q.Enqueue(ctx, mutationq.RPC{Procedure: "sync"})
	require.NoError(t, err)
	require.Equal(t, uint64(4), next.Seq)
}

func TestEntriesAndBlobsShareFile(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	entries, err := sqlite.NewStore(ctx, db, sqlite.WithCreateSchema(true))
	require.NoError(t, err)
	blobStore, err := sqlite.NewStore(ctx, db, sqlite.WithTable(sqlite.DefaultBlobTable), sqlite.WithCreateSchema(true))
	require.NoError(t, err)

	q := mutationq.MustNewQueue(entries)
	blobs, err := mutationq.NewBlobStore(blobStore)
	require.NoError(t, err)

	_, err = blobs.Put(ctx, mutationq.BlobRecord{ID: "photo", Data: []byte("jpeg")})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, mutationq.Upload{Bucket: "photos", Path: "p.jpg", BlobID: "photo"})
	require.NoError(t, err)

	require.NoError(t, q.Drain(ctx, mutationq.ProcessorFunc(func(context.Context, mutationq.Entry) error { return nil })))

	count, err := q.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	rec, err := blobs.Get(ctx, "photo")
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg"), rec.Data)
}
