// Package storage loads persisted models into a model.ElementFactory.
//
// Supported sources:
//   - YAML, JSON and TOML model documents (see Document)
//   - Gaphor .gaphor XML files
//   - SQLite model databases written by `mmgen db import`
//
// Sources may be local paths or any URL go-getter understands.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/teranos/mmgen/errors"
)

// Format identifies a model serialization.
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatTOML   Format = "toml"
	FormatGaphor Format = "gaphor"
	FormatSQLite Format = "sqlite"
)

var extensions = map[string]Format{
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".json":    FormatJSON,
	".toml":    FormatTOML,
	".gaphor":  FormatGaphor,
	".xml":     FormatGaphor,
	".db":      FormatSQLite,
	".sqlite":  FormatSQLite,
	".sqlite3": FormatSQLite,
}

// DetectFormat picks a format from the file extension of path.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrUnsupportedFormat, "%s", path),
		"use one of .yaml, .json, .toml, .gaphor or .db, or pass --format")
}

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(name))
	switch f {
	case FormatYAML, FormatJSON, FormatTOML, FormatGaphor, FormatSQLite:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", name)
}
