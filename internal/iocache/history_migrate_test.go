package iocache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/storecheck/schema"
)

func TestMigrateHistoryNoneBackend(t *testing.T) {
	err := MigrateHistory(schema.NoneBackend, "", -1, &bytes.Buffer{})
	assert.ErrorContains(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrateHistorySQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "to version 3")

	out.Reset()
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "already at the latest version")

	out.Reset()
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0, &out))
	assert.Contains(t, out.String(), "rolled back from version 3 to version 0")

	out.Reset()
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 2, &out))
	assert.Contains(t, out.String(), "to version 2")

	// The store accepts a schema created by migrations.
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalRuns)
}

func TestMigrateHistoryInMemory(t *testing.T) {
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, ":memory:", -1, &bytes.Buffer{}))
}

func TestMigrationDir(t *testing.T) {
	assert.Equal(t, "migrations/mysql", migrationDir(schema.MySQLBackend))
	assert.Equal(t, "migrations/postgres", migrationDir(schema.PostgreSQLBackend))
	assert.Equal(t, "migrations/sqlite", migrationDir(schema.SQLiteBackend))

	for _, dir := range []string{"migrations/mysql", "migrations/postgres", "migrations/sqlite"} {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 6, dir)
	}
}
