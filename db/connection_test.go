package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/mmgen/errors"
)

func queryPragma(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	var v string
	require.NoError(t, db.QueryRow("PRAGMA "+name).Scan(&v))
	return v
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "model.db")

	db, err := Open(dbPath, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			assert.Equal(t, tt.want, queryPragma(t, db, tt.pragma))
		})
	}
	assert.FileExists(t, dbPath, "import targets are created on open")
}

func TestOpen_UnwritableDirectory(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "missing", "model.db"), nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "enable WAL mode")
	assert.NotNil(t, errors.GetStack(err))
}

// migratedDB creates a model database in rollback journal mode, the way
// an external tool might ship it.
func migratedDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "model.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, nil))
	require.NoError(t, db.Close())
	return dbPath
}

func TestOpenReadOnly(t *testing.T) {
	dbPath := migratedDB(t)
	before, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	db, err := OpenReadOnly(dbPath, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.Equal(t, "delete", queryPragma(t, db, "journal_mode"))
	assert.Equal(t, "1", queryPragma(t, db, "foreign_keys"))

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, LatestSchemaVersion(), v)

	_, err = db.Exec("INSERT INTO classes (id, name, position) VALUES ('c1', 'C', 0)")
	require.Error(t, err, "writes are rejected")
	assert.Contains(t, err.Error(), "readonly")
	require.NoError(t, db.Close())

	after, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NoFileExists(t, dbPath+"-wal")
}

func TestOpenReadOnly_Errors(t *testing.T) {
	t.Run("missing file is not created", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "missing.db")
		db, err := OpenReadOnly(dbPath, nil)
		require.Error(t, err)
		assert.Nil(t, db)
		assert.NoFileExists(t, dbPath)
	})

	t.Run("newer schema", func(t *testing.T) {
		dbPath := migratedDB(t)
		db, err := sql.Open("sqlite3", dbPath)
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO schema_migrations (version) VALUES ('999')")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		ro, err := OpenReadOnly(dbPath, nil)
		require.Error(t, err)
		assert.Nil(t, ro)
		assert.True(t, errors.Is(err, errors.ErrIncompatibleVersion))
		assert.NotEmpty(t, errors.GetAllHints(err))
	})
}

func TestOpenWithMigrations_NewerSchemaRefused(t *testing.T) {
	dbPath := migratedDB(t)
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO schema_migrations (version) VALUES ('999')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenWithMigrations(dbPath, nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.True(t, errors.Is(err, errors.ErrIncompatibleVersion))
	assert.Contains(t, err.Error(), "failed to migrate database")
}
