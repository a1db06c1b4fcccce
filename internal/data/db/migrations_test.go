package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", dbPath))
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestMigrateUp_FreshDB(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations(migrationsFS)
	require.NoError(t, err)

	version, err := schemaVersion(ctx, database.Conn())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM objects LIMIT 0")
	require.NoError(t, err, "objects table should exist")

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM kv_store LIMIT 0")
	require.NoError(t, err, "kv_store table should exist")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)

	err := migrateUp(context.Background(), database.Conn())
	assert.NoError(t, err, "second migrateUp should be idempotent")
}

func TestApplyPending_OnlyNewer(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	first := []migration{{version: 1, name: "a", sql: "CREATE TABLE a (x INTEGER)"}}
	require.NoError(t, applyPending(ctx, conn, first))

	// Reapplying version 1 would fail on the existing table.
	both := append(first, migration{version: 2, name: "b", sql: "CREATE TABLE b (y INTEGER)"})
	require.NoError(t, applyPending(ctx, conn, both))

	version, err := schemaVersion(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestApplyPending_FailureKeepsVersion(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	migrations := []migration{
		{version: 1, name: "ok", sql: "CREATE TABLE a (x INTEGER)"},
		{version: 2, name: "broken", sql: "CREATE TABLE"},
	}
	err := applyPending(ctx, conn, migrations)
	require.ErrorContains(t, err, "migration 0002 (broken)")

	version, err := schemaVersion(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestApplyPending_SchemaTooNew(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	_, err := conn.ExecContext(ctx, "PRAGMA user_version = 9")
	require.NoError(t, err)

	err = migrateUp(ctx, conn)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "objects", migrations[0].name)
	assert.Equal(t, "kv_store", migrations[1].name)
	for _, m := range migrations {
		assert.NotEmpty(t, m.sql, "migration %d SQL should not be empty", m.version)
	}
}

func TestLoadMigrations_Gap(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0001_a.sql": {Data: []byte("SELECT 1")},
		"migrations/0003_c.sql": {Data: []byte("SELECT 1")},
	}
	_, err := loadMigrations(fsys)
	assert.ErrorContains(t, err, "expected version 0002")
}

func TestLoadMigrations_BadName(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/first.sql": {Data: []byte("SELECT 1")},
	}
	_, err := loadMigrations(fsys)
	assert.ErrorContains(t, err, "invalid migration filename")
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion int
		wantName    string
		wantErr     bool
	}{
		{"0001_initial.sql", 1, "initial", false},
		{"0002_kv_store.sql", 2, "kv_store", false},
		{"0100_big_version.sql", 100, "big_version", false},
		{"bad.sql", 0, "", true},
		{"0001_initial.up.sql", 0, "", true},
		{"0000_zero.sql", 0, "", true},
		{"1_short.sql", 0, "", true},
		{"abcd_notnumber.sql", 0, "", true},
		{"0001_.sql", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, err := parseFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
