package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/mmgen/db"
	"github.com/teranos/mmgen/errors"
	mmtest "github.com/teranos/mmgen/internal/testing"
	"github.com/teranos/mmgen/model"
	"github.com/teranos/mmgen/modeling"
	"github.com/teranos/mmgen/version"
)

func loadFixture(t *testing.T, name string) *model.ElementFactory {
	t.Helper()
	file, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer file.Close()

	format, err := DetectFormat(name)
	require.NoError(t, err)
	if format == FormatGaphor {
		store, err := DecodeGaphor(file, nil)
		require.NoError(t, err)
		return store
	}
	doc, err := DecodeDocument(file, format)
	require.NoError(t, err)
	store, err := doc.Build("")
	require.NoError(t, err)
	return store
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		fixture string
		catalog modeling.Catalog
	}{
		{"scenario.yaml", modeling.NewStaticCatalog()},
		{"scenario.gaphor", modeling.NewStaticCatalog()},
		{"profile.yaml", modeling.UML()},
	} {
		t.Run(tc.fixture, func(t *testing.T) {
			database := mmtest.CreateModelDB(t)
			store := loadFixture(t, tc.fixture)

			require.NoError(t, SaveDB(ctx, database, store, tc.fixture))
			loaded, meta, err := LoadDB(ctx, database)
			require.NoError(t, err)

			assert.Equal(t, tc.fixture, meta.Source)
			assert.Equal(t, version.ModelFormat, meta.FormatVersion)
			assert.WithinDuration(t, time.Now(), meta.ImportedAt, time.Minute)
			assert.Equal(t, store.Size(), loaded.Size())
			assert.Equal(t, render(t, store, tc.catalog), render(t, loaded, tc.catalog))
		})
	}
}

func TestSaveDB_ReplacesPreviousImport(t *testing.T) {
	ctx := context.Background()
	database := mmtest.CreateModelDB(t)

	require.NoError(t, SaveDB(ctx, database, loadFixture(t, "profile.yaml"), "profile.yaml"))
	require.NoError(t, SaveDB(ctx, database, loadFixture(t, "scenario.yaml"), "scenario.yaml"))

	loaded, meta, err := LoadDB(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, "scenario.yaml", meta.Source)
	assert.Equal(t, golden(t, "scenario.py"), render(t, loaded, modeling.NewStaticCatalog()))
}

func TestLoadDB_Empty(t *testing.T) {
	database := mmtest.CreateModelDB(t)

	_, _, err := LoadDB(context.Background(), database)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no imported model")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestLoadDB_IncompatibleVersion(t *testing.T) {
	database := mmtest.CreateModelDB(t)
	_, err := database.Exec("INSERT INTO model_meta (key, value) VALUES ('format_version', '9.0.0')")
	require.NoError(t, err)

	_, _, err = LoadDB(context.Background(), database)
	assert.True(t, errors.Is(err, errors.ErrIncompatibleVersion))
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, mock
}

func TestSaveDB_BeginFails(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is closed"))

	err := SaveDB(context.Background(), database, model.NewElementFactory(), "x.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrDatabaseClosed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDB_RollsBackOnInsertFailure(t *testing.T) {
	database, mock := newMock(t)
	store := model.NewElementFactory()
	require.NoError(t, store.Add(&model.Class{ID: "A", Name: "A"}))

	mock.ExpectBegin()
	for _, table := range []string{"operations", "properties", "generalizations", "associations", "classes", "model_meta"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO model_meta").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec("INSERT INTO classes").
		WithArgs("A", "A", 0).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := SaveDB(context.Background(), database, store, "x.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert class A")
	assert.False(t, errors.Is(err, db.ErrDatabaseClosed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDB_CommitFails(t *testing.T) {
	database, mock := newMock(t)

	mock.ExpectBegin()
	for _, table := range []string{"operations", "properties", "generalizations", "associations", "classes", "model_meta"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO model_meta").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err := SaveDB(context.Background(), database, model.NewElementFactory(), "x.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit import")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDB_QueryFails(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectQuery("SELECT key, value FROM model_meta").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("source", "x.yaml").
			AddRow("format_version", version.ModelFormat))
	mock.ExpectQuery("SELECT id, name FROM classes").
		WillReturnError(errors.New("no such table: classes"))

	_, _, err := LoadDB(context.Background(), database)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDB_BadImportedAt(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectQuery("SELECT key, value FROM model_meta").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("imported_at", "yesterday"))

	_, _, err := LoadDB(context.Background(), database)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid imported_at")
}

func TestLoadDB_DanglingAssociation(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectQuery("SELECT key, value FROM model_meta").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("format_version", version.ModelFormat))
	mock.ExpectQuery("SELECT id, name FROM classes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("A", "A"))
	mock.ExpectQuery("SELECT id, name FROM associations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery("SELECT g.id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "specific_id", "general_id"}))
	mock.ExpectQuery("SELECT id, class_id, name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "name", "type_value", "upper_value", "association_id", "owned", "end_index"}).
			AddRow("A.x", "A", "x", "B", "1", "gone", false, 0))

	_, _, err := LoadDB(context.Background(), database)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidModel))
}
