package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// TestSQLiteStorePutGet проверяет запись, перезапись и чтение снапшота.
func TestSQLiteStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	require.NoError(t, store.Put(ctx, "event-plan-E1", []byte(`{"current_step":1}`)))
	require.NoError(t, store.Put(ctx, "event-plan-E1", []byte(`{"current_step":2}`)))

	payload, err := store.Get(ctx, "event-plan-E1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"current_step":2}`, string(payload))
}

// TestSQLiteStoreMissingKey проверяет ErrNotFound для отсутствующего ключа.
func TestSQLiteStoreMissingKey(t *testing.T) {
	store := openTestSQLite(t)

	_, err := store.Get(context.Background(), "event-plan-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestSQLiteStoreDelete проверяет удаление и идемпотентность удаления.
func TestSQLiteStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	require.NoError(t, store.Put(ctx, "event-plan-E1", []byte(`{}`)))
	require.NoError(t, store.Delete(ctx, "event-plan-E1"))
	require.NoError(t, store.Delete(ctx, "event-plan-E1"))

	_, err := store.Get(ctx, "event-plan-E1")
	assert.ErrorIs(t, err, ErrNotFound)
}
