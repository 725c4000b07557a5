package storage

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/mmgen/db"
	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/modeling"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"model.yaml":       FormatYAML,
		"model.YML":        FormatYAML,
		"a/b/model.json":   FormatJSON,
		"model.toml":       FormatTOML,
		"uml.gaphor":       FormatGaphor,
		"export.xml":       FormatGaphor,
		"model.db":         FormatSQLite,
		"model.sqlite3":    FormatSQLite,
		"https://x/m.toml": FormatTOML,
	}
	for path, want := range tests {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := DetectFormat("model.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xmi")
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))
}

func TestLoader_Load(t *testing.T) {
	want := golden(t, "scenario.py")
	for _, name := range []string{"scenario.yaml", "scenario.json", "scenario.toml", "scenario.gaphor"} {
		t.Run(name, func(t *testing.T) {
			store, err := testLoader(t).Load(context.Background(), filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, want, render(t, store, modeling.NewStaticCatalog()))
		})
	}
}

func TestLoader_FormatOverride(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "scenario.yaml"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.txt")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	l := testLoader(t)
	_, err = l.Load(context.Background(), path)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))

	l.Format = FormatYAML
	store, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, store.SelectClasses(nil), 4)
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("missing source", func(t *testing.T) {
		_, err := testLoader(t).Load(ctx, filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsLoadError(err))
		assert.NotEmpty(t, errors.GetAllHints(err))
	})

	t.Run("malformed document", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"classes": [`), 0o644))
		_, err := testLoader(t).Load(ctx, path)
		assert.True(t, errors.IsLoadError(err))
	})

	t.Run("dangling reference", func(t *testing.T) {
		path := filepath.Join(dir, "dangling.yaml")
		require.NoError(t, os.WriteFile(path, []byte("classes:\n  - name: A\n    generals: [B]\n"), 0o644))
		_, err := testLoader(t).Load(ctx, path)
		assert.True(t, errors.IsLoadError(err))
		assert.True(t, errors.Is(err, errors.ErrInvalidModel))
	})

	t.Run("empty database", func(t *testing.T) {
		path := filepath.Join(dir, "empty.db")
		_, err := testLoader(t).Load(ctx, path)
		assert.True(t, errors.IsLoadError(err))
	})
}

func TestLoader_Remote(t *testing.T) {
	srv := httptest.NewServer(http.FileServer(http.Dir("testdata")))
	defer srv.Close()

	loader := testLoader(t)
	_, err := loader.Load(context.Background(), srv.URL+"/scenario.toml")
	require.Error(t, err, "loopback servers are refused by default")
	assert.True(t, errors.IsLoadError(err))
	assert.Contains(t, err.Error(), "refusing to fetch")

	loader.Fetch.AllowPrivateHosts = true
	store, err := loader.Load(context.Background(), srv.URL+"/scenario.toml")
	require.NoError(t, err)
	assert.Equal(t, golden(t, "scenario.py"), render(t, store, modeling.NewStaticCatalog()))
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "model.db")
	l := testLoader(t)

	imported, err := Import(ctx, l, filepath.Join("testdata", "profile.yaml"), dbPath)
	require.NoError(t, err)

	loaded, err := l.Load(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, golden(t, "profile.py"), render(t, loaded, modeling.UML()))
	assert.Equal(t, render(t, imported, modeling.UML()), render(t, loaded, modeling.UML()))

	// Re-import replaces the stored model.
	_, err = Import(ctx, l, filepath.Join("testdata", "scenario.json"), dbPath)
	require.NoError(t, err)
	loaded, err = l.Load(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, golden(t, "scenario.py"), render(t, loaded, modeling.NewStaticCatalog()))
}

func TestImport_LoadFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "model.db")
	_, err := Import(context.Background(), testLoader(t), "missing.yaml", dbPath)
	require.Error(t, err)
	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "no database is created when loading fails")
}

func TestLoader_DatabaseSourceIsNotModified(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "model.db")

	// Written in rollback journal mode, the SQLite default.
	database, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database, nil))
	require.NoError(t, SaveDB(ctx, database, loadFixture(t, "scenario.yaml"), "scenario.yaml"))
	require.NoError(t, database.Close())

	before, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	store, err := testLoader(t).Load(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, golden(t, "scenario.py"), render(t, store, modeling.NewStaticCatalog()))

	after, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "loading must not rewrite the database")
	assert.NoFileExists(t, dbPath+"-wal")

	database, err = sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer database.Close()
	var mode string
	require.NoError(t, database.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "delete", mode)
}
