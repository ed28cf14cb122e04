package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"MUTATIONQ_DRIVER", "MUTATIONQ_DSN", "MUTATIONQ_BLOB_RETENTION"} {
		t.Setenv(key, "")
	}
	t.Setenv("MUTATIONQ_DRIVER", "sqlite")

	cfg := Load()
	require.Equal(t, "sqlite", cfg.Driver)
	require.Equal(t, "mutationq_entries", cfg.EntryTable)
	require.Equal(t, "mutationq_blobs", cfg.BlobTable)
	require.Equal(t, 30*time.Second, cfg.PollInterval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MUTATIONQ_DRIVER", "MySQL")
	t.Setenv("MUTATIONQ_DSN", "root:secret@tcp(db:3306)/app")
	t.Setenv("MUTATIONQ_BLOB_RETENTION", "72h")
	t.Setenv("MUTATIONQ_POLL_INTERVAL", "not-a-duration")

	cfg := Load()
	require.Equal(t, "mysql", cfg.Driver)
	require.Equal(t, "root:secret@tcp(db:3306)/app", cfg.DSN)
	require.Equal(t, 72*time.Hour, cfg.BlobRetention)
	require.Equal(t, 30*time.Second, cfg.PollInterval)
}
