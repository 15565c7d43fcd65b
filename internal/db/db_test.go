package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := Open(DriverSQLite, "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestRunMigrations(t *testing.T) {
	database := openMemory(t)

	require.NoError(t, RunMigrations(database, "file://../../migrations"))
	// Running again is a no-op.
	require.NoError(t, RunMigrations(database, "file://../../migrations"))

	var tables []string
	err := database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	assert.Contains(t, tables, "tournaments")
	assert.Contains(t, tables, "teams")
	assert.Contains(t, tables, "matches")
}

func TestRunMigrationsBadSource(t *testing.T) {
	database := openMemory(t)
	assert.Error(t, RunMigrations(database, "file://does-not-exist"))
}

func TestCreateSessionTable(t *testing.T) {
	database := openMemory(t)
	require.NoError(t, CreateSessionTable(database))

	var count int
	err := database.Get(&count, "SELECT COUNT(*) FROM sessions")
	require.NoError(t, err)
	assert.Zero(t, count)
}
