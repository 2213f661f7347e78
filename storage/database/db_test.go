package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campuscopilot/core"
)

func TestSqlitePath(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{dsn: "/var/lib/copilot/remote.db", want: "/var/lib/copilot/remote.db"},
		{dsn: "file:data/remote.db?cache=shared", want: "data/remote.db"},
		{dsn: ":memory:", want: ""},
		{dsn: "file::memory:?cache=shared", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.dsn, func(t *testing.T) {
			assert.Equal(t, tc.want, sqlitePath(tc.dsn))
		})
	}
}

func TestBuilder(t *testing.T) {
	query, _, err := Builder(EnginePostgres).Select("id").From("documents").Where("id = ?", "x").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM documents WHERE id = $1", query)

	query, _, err = Builder(EngineSQLite).Select("id").From("documents").Where("id = ?", "x").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM documents WHERE id = ?", query)
}

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, core.DatabaseConfig{Engine: "oracle"})
	assert.EqualError(t, err, `unsupported database engine "oracle"`)

	db, err := Open(ctx, core.DatabaseConfig{Engine: EngineSQLite, DSN: filepath.Join(t.TempDir(), "a", "b.db")})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, EngineSQLite))
	require.NoError(t, Migrate(ctx, db, EngineSQLite), "migrating twice is a no-op")

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('documents', 'identities') ORDER BY name"))
	assert.Equal(t, []string{"documents", "identities"}, tables)

	require.NoError(t, RunMigrations(ctx, db.DB, EngineSQLite, "down"))
	tables = nil
	require.NoError(t, db.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'identities'"))
	assert.Empty(t, tables)

	assert.Error(t, RunMigrations(ctx, db.DB, EngineSQLite, "sideways"))
}
