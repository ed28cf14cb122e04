//go:build integration

package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/velmie/mutationq"
	"github.com/velmie/mutationq/internal/testutil"
	"github.com/velmie/mutationq/mysql"
	"github.com/velmie/mutationq/postgres"
)

func TestSweepBlobsCLIContainer(t *testing.T) {
	ctx := context.Background()
	env := testutil.StartMySQLContainer(t, ctx)

	for _, table := range []string{mysql.DefaultEntryTable, mysql.DefaultBlobTable} {
		schema, err := mysql.Schema(table)
		if err != nil {
			t.Fatalf("schema: %v", err)
		}
		if _, err := env.DB.ExecContext(ctx, schema); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	entries := mysql.MustNewStore(env.DB)
	blobStore, err := mysql.NewStore(env.DB, mysql.WithTable(mysql.DefaultBlobTable))
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}
	blobs, err := mutationq.NewBlobStore(blobStore)
	if err != nil {
		t.Fatalf("new blobs: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour).UTC()
	for _, id := range []string{"avatar", "orphan-1", "orphan-2"} {
		if _, err := blobs.Put(ctx, mutationq.BlobRecord{ID: id, Data: []byte(id), CreatedAt: old}); err != nil {
			t.Fatalf("put blob: %v", err)
		}
	}

	q := mutationq.MustNewQueue(entries)
	if _, err := q.Enqueue(ctx, mutationq.Upload{Bucket: "media", Path: "avatars/1.png", BlobID: "avatar"}); err != nil {
		t.Fatalf("enqueue upload: %v", err)
	}
	if _, err := q.Enqueue(ctx, mutationq.Insert{Table: "todos", Payload: json.RawMessage(`{"id":1}`)}); err != nil {
		t.Fatalf("enqueue insert: %v", err)
	}

	bin := testutil.BuildBinary(t, ".")
	res := testutil.RunCLI(t, ctx, testutil.CLIRun{
		Network: env.Network,
		Binary:  bin,
		Args:    []string{"--driver", "mysql", "--dsn", env.DSN, "sweep-blobs", "--retention", "24h", "--once"},
	})
	if res.ExitCode != 0 {
		t.Fatalf("sweep-blobs exit code %d output: %s", res.ExitCode, res.Output)
	}
	if !strings.Contains(res.Output, "scanned 3 deleted 2") {
		t.Fatalf("unexpected sweep output: %s", res.Output)
	}

	remaining, err := blobs.List(ctx)
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "avatar" {
		t.Fatalf("remaining blobs = %+v, want only avatar", remaining)
	}

	res = testutil.RunCLI(t, ctx, testutil.CLIRun{
		Network: env.Network,
		Binary:  bin,
		Args:    []string{"count"},
		Env:     map[string]string{"MUTATIONQ_DRIVER": "mysql", "MUTATIONQ_DSN": env.DSN},
	})
	if res.ExitCode != 0 {
		t.Fatalf("count exit code %d output: %s", res.ExitCode, res.Output)
	}
	if strings.TrimSpace(res.Output) != "2" {
		t.Fatalf("count output = %q, want 2", res.Output)
	}
}

func TestRemoveCLIContainerPostgres(t *testing.T) {
	ctx := context.Background()
	env := testutil.StartPostgresContainer(t, ctx)

	schema, err := postgres.Schema(postgres.DefaultEntryTable)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := env.Pool.Exec(ctx, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	store, err := postgres.NewStore(env.Pool)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	q := mutationq.MustNewQueue(store)
	stuck, err := q.Enqueue(ctx, mutationq.RPC{Procedure: "post_grade", Args: json.RawMessage(`{"student":4}`)})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	next, err := q.Enqueue(ctx, mutationq.FunctionCall{Function: "notify_guardian"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	bin := testutil.BuildBinary(t, ".")
	cliEnv := map[string]string{
		"MUTATIONQ_DRIVER":     "postgres",
		"MUTATIONQ_DSN":        env.DSN,
		"MUTATIONQ_LOG_FORMAT": "JSON",
	}
	res := testutil.RunCLI(t, ctx, testutil.CLIRun{Network: env.Network, Binary: bin, Args: []string{"remove", stuck.ID}, Env: cliEnv})
	if res.ExitCode != 0 {
		t.Fatalf("remove exit code %d output: %s", res.ExitCode, res.Output)
	}
	if !strings.Contains(res.Output, `"msg":"entry removed"`) {
		t.Fatalf("remove output = %s", res.Output)
	}

	pending, err := q.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != next.ID {
		t.Fatalf("pending = %+v, want only %s", pending, next.ID)
	}
}
