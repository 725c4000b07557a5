package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// migration is one embedded schema step. version is the numeric file
// prefix, e.g. "001" for 001_create_model_tables.sql.
type migration struct {
	version  string
	filename string
}

// Migrate applies every embedded migration the database has not seen yet,
// each in its own transaction. A database written by a newer mmgen is
// refused rather than modified.
// If log is provided, logs migration progress; otherwise operates silently.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	pending, err := embeddedMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	latest := pending[len(pending)-1].version
	for v := range applied {
		if v > latest {
			return errors.WithHint(
				errors.Mark(errors.Newf("database schema %s is newer than this build supports (%s)", v, latest), errors.ErrIncompatibleVersion),
				"upgrade mmgen or re-import the model into a new database")
		}
	}

	count := 0
	for _, m := range pending {
		if applied[m.version] {
			if log != nil {
				log.Debugw("Skipping migration (already applied)",
					logger.FieldMigration, m.filename,
					"version", m.version,
				)
			}
			continue
		}
		if err := apply(db, m, log); err != nil {
			return err
		}
		count++
	}

	if log != nil {
		log.Debugw("Migrations complete",
			"applied", count,
			"schema_version", latest,
		)
	}
	return nil
}

// SchemaVersion returns the newest migration applied to db, or "" when the
// database has never been migrated.
func SchemaVersion(db *sql.DB) (string, error) {
	applied, err := appliedVersions(db)
	if err != nil {
		return "", err
	}
	newest := ""
	for v := range applied {
		if v > newest {
			newest = v
		}
	}
	return newest, nil
}

// LatestSchemaVersion returns the newest migration embedded in this build.
func LatestSchemaVersion() string {
	all, err := embeddedMigrations()
	if err != nil || len(all) == 0 {
		return ""
	}
	return all[len(all)-1].version
}

// embeddedMigrations lists the migration files in version order
// (000_create_schema_migrations.sql first).
func embeddedMigrations() ([]migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var out []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		out = append(out, migration{
			version:  strings.SplitN(entry.Name(), "_", 2)[0],
			filename: entry.Name(),
		})
	}
	if len(out) == 0 {
		return nil, errors.AssertionFailedf("no embedded migrations")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// appliedVersions reads schema_migrations. A missing table yields an empty
// set: migration 000 creates it.
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		if IsDatabaseClosed(err) {
			return nil, Wrap(err, "read schema_migrations")
		}
		return applied, nil
	}
	defer rows.Close()

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan schema_migrations")
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(err, "read schema_migrations")
	}
	return applied, nil
}

func apply(db *sql.DB, m migration, log *zap.SugaredLogger) error {
	sqlBytes, err := migrations.ReadFile(path.Join(migrationsDir, m.filename))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.filename)
	}

	if log != nil {
		log.Infow("Applying migration",
			logger.FieldMigration, m.filename,
			"version", m.version,
		)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.filename)
	}
	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", m.filename)
	}
	// 000 creates the table, then records itself like every other step
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", m.filename)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit %s", m.filename)
	}
	return nil
}
