package storage

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/teranos/mmgen/db"
	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/model"
)

// Loader reads models from any supported source.
type Loader struct {
	// Format overrides extension based detection when set.
	Format Format
	// BaseClassAttribute names the attribute created for document extends.
	BaseClassAttribute string
	Logger             *zap.SugaredLogger
	// Fetch applies to remote sources.
	Fetch FetchOptions
}

// NewLoader returns a loader that detects formats by extension.
func NewLoader(log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = logger.ComponentLogger("storage")
	}
	return &Loader{BaseClassAttribute: DefaultBaseClassAttribute, Logger: log}
}

func (l *Loader) log() *zap.SugaredLogger {
	if l.Logger == nil {
		return logger.Logger
	}
	return l.Logger
}

// Load resolves source and reads it into a new model store. Every failure
// is marked as a load error.
func (l *Loader) Load(ctx context.Context, source string) (*model.ElementFactory, error) {
	store, err := l.load(ctx, source)
	if err != nil {
		return nil, errors.WithHint(errors.WrapLoad(err, source),
			"check that the source exists and is a valid model file")
	}
	l.log().Debugw("Loaded model",
		logger.FieldSource, source,
		logger.FieldCount, len(store.SelectClasses(nil)))
	return store, nil
}

func (l *Loader) load(ctx context.Context, source string) (*model.ElementFactory, error) {
	format := l.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(remoteFileName(source)); err != nil {
			return nil, err
		}
	}

	src, err := ResolveSource(ctx, source, l.Fetch, l.log())
	if err != nil {
		return nil, err
	}
	defer src.Cleanup()

	if format == FormatSQLite {
		database, err := db.OpenReadOnly(src.LocalPath, l.log())
		if err != nil {
			return nil, err
		}
		defer database.Close()
		store, _, err := LoadDB(ctx, database)
		return store, err
	}

	file, err := os.Open(src.LocalPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", src.LocalPath)
	}
	defer file.Close()

	if format == FormatGaphor {
		return DecodeGaphor(file, l.log())
	}
	doc, err := DecodeDocument(file, format)
	if err != nil {
		return nil, err
	}
	return doc.Build(l.BaseClassAttribute)
}

// Import loads source and stores it in the model database at dbPath,
// creating and migrating the database as needed.
func Import(ctx context.Context, loader *Loader, source, dbPath string) (*model.ElementFactory, error) {
	store, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	database, err := db.OpenWithMigrations(dbPath, loader.log())
	if err != nil {
		return nil, err
	}
	defer database.Close()

	if err := SaveDB(ctx, database, store, source); err != nil {
		return nil, errors.Wrapf(err, "failed to import %s into %s", source, dbPath)
	}
	loader.log().Infow("Imported model",
		logger.FieldSource, source,
		logger.FieldDatabase, dbPath,
		logger.FieldCount, store.Size())
	return store, nil
}
