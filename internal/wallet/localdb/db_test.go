package localdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "wallet.db")

	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO metadata (key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)

	var value []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM metadata WHERE key = 'k'`).Scan(&value))
	require.Equal(t, []byte("v"), value)
}

func TestOpen_IsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "wallet.db")
	ctx := context.Background()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
