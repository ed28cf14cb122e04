//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/velmie/mutationq"
	"github.com/velmie/mutationq/internal/testutil"
	"github.com/velmie/mutationq/postgres"
)

func TestStoreQueueDrainIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test disabled in short mode")
	}

	ctx := context.Background()
	pool := testutil.StartPostgresContainer(t, ctx).Pool
	store := setupStore(t, ctx, pool, postgres.DefaultEntryTable)
	q := mutationq.MustNewQueue(store)

	_, err := q.Enqueue(ctx, mutationq.Update{
		Table:   "todos",
		Match:   json.RawMessage(`{"id":1}`),
		Payload: json.RawMessage(`{"done":true}`),
	})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, mutationq.Delete{Table: "todos", Match: json.RawMessage(`{"id":2}`)})
	require.NoError(t, err)

	var kinds []mutationq.Kind
	require.NoError(t, q.Drain(ctx, mutationq.ProcessorFunc(func(_ context.Context, entry mutationq.Entry) error {
		kinds = append(kinds, entry.Kind())
		return nil
	})))
	require.Equal(t, []mutationq.Kind{mutationq.KindUpdate, mutationq.KindDelete}, kinds)

	count, err := q.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestStoreLockIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test disabled in short mode")
	}

	ctx := context.Background()
	pool := testutil.StartPostgresContainer(t, ctx).Pool
	store := setupStore(t, ctx, pool, postgres.DefaultEntryTable)

	release, ok, err := store.TryLock(ctx, "mutationq:drain")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.TryLock(ctx, "mutationq:drain")
	require.NoError(t, err)
	require.False(t, ok)

	release()
	again, ok, err := store.TryLock(ctx, "mutationq:drain")
	require.NoError(t, err)
	require.True(t, ok)
	again()
}

func setupStore(t *testing.T, ctx context.Context, pool *pgxpool.Pool, table string) *postgres.Store {
	t.Helper()

	schema, err := postgres.Schema(table)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	store, err := postgres.NewStore(pool, postgres.WithTable(table))
	require.NoError(t, err)

	return store
}
