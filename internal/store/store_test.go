package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	require.NoError(t, err)

	err = store.Migrate(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestNew(t *testing.T) {
	t.Run("creates directory and database", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "subdir", "test.db")

		ctx := context.Background()
		store, err := New(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)

		var result int
		err = store.QueryRowContext(ctx, "SELECT 1").Scan(&result)
		assert.NoError(t, err)
		assert.Equal(t, 1, result)
	})

	t.Run("sets WAL mode", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		ctx := context.Background()
		store, err := New(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		var mode string
		err = store.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode)
		assert.NoError(t, err)
		assert.Equal(t, "wal", mode)
	})
}

func TestStore_Migrate(t *testing.T) {
	t.Run("creates the runs table", func(t *testing.T) {
		store := newTestStore(t)

		var tableName string
		err := store.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&tableName)
		assert.NoError(t, err)
		assert.Equal(t, "runs", tableName)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := newTestStore(t)
		ctx := context.Background()

		err := store.Migrate(ctx)
		require.NoError(t, err)

		count, err := store.CountRuns(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestUpStatements(t *testing.T) {
	t.Run("keeps only the up portion", func(t *testing.T) {
		content := `-- +migrate Up
CREATE TABLE test (id INTEGER);

-- +migrate Down
DROP TABLE test;
`
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", upStatements(content))
	})

	t.Run("file without markers is all up", func(t *testing.T) {
		content := "CREATE TABLE test (id INTEGER);"
		assert.Equal(t, content, upStatements(content))
	})

	t.Run("up marker alone is stripped", func(t *testing.T) {
		content := "-- +migrate Up\nCREATE TABLE test (id INTEGER);\n"
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", upStatements(content))
	})
}

func testRun(id, hash string) Run {
	return Run{
		ID:         id,
		SourceName: "chapter-1.md",
		SourceHash: hash,
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		CardTypes:  "basic,cloze",
		MaxCards:   10,
	}
}

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.CreateRun(ctx, testRun("run-1", "hash-a")))

		got, err := store.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, "chapter-1.md", got.SourceName)
		assert.Equal(t, StatusRunning, got.Status)
		assert.False(t, got.FinishedAt.Valid)
		assert.WithinDuration(t, time.Now().UTC(), got.StartedAt, time.Minute)
	})

	t.Run("finish records outcome", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.CreateRun(ctx, testRun("run-1", "hash-a")))
		require.NoError(t, store.FinishRun(ctx, "run-1", StatusSucceeded, "", 5, 4, 1))

		got, err := store.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, StatusSucceeded, got.Status)
		assert.Equal(t, 5, got.CardsParsed)
		assert.Equal(t, 4, got.CardsCreated)
		assert.Equal(t, 1, got.CardsSkipped)
		assert.False(t, got.ErrorMessage.Valid)
		assert.True(t, got.FinishedAt.Valid)
	})

	t.Run("finish keeps the error message", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.CreateRun(ctx, testRun("run-1", "hash-a")))
		require.NoError(t, store.FinishRun(ctx, "run-1", StatusFailed, "provider unreachable", 0, 0, 0))

		got, err := store.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, got.Status)
		assert.Equal(t, "provider unreachable", got.ErrorMessage.String)
	})

	t.Run("lookup by source hash returns the latest", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.CreateRun(ctx, testRun("run-1", "hash-a")))
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, store.CreateRun(ctx, testRun("run-2", "hash-a")))

		got, err := store.GetRunBySourceHash(ctx, "hash-a")
		require.NoError(t, err)
		assert.Equal(t, "run-2", got.ID)
	})

	t.Run("unknown source hash", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.GetRunBySourceHash(ctx, "never-seen")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("list newest first with limit", func(t *testing.T) {
		store := newTestStore(t)

		for _, id := range []string{"run-1", "run-2", "run-3"} {
			require.NoError(t, store.CreateRun(ctx, testRun(id, "hash-"+id)))
			time.Sleep(10 * time.Millisecond)
		}

		runs, err := store.ListRuns(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "run-3", runs[0].ID)
		assert.Equal(t, "run-2", runs[1].ID)
	})

	t.Run("totals aggregate accounting", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.CreateRun(ctx, testRun("run-1", "hash-a")))
		require.NoError(t, store.FinishRun(ctx, "run-1", StatusSucceeded, "", 5, 4, 1))
		require.NoError(t, store.CreateRun(ctx, testRun("run-2", "hash-b")))
		require.NoError(t, store.FinishRun(ctx, "run-2", StatusSucceeded, "", 3, 3, 0))

		totals, err := store.GetTotals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), totals.Runs)
		assert.Equal(t, int64(8), totals.CardsParsed)
		assert.Equal(t, int64(7), totals.CardsCreated)
		assert.Equal(t, int64(1), totals.CardsSkipped)
	})
}
