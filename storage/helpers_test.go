package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/mmgen/codegen"
	"github.com/teranos/mmgen/model"
	"github.com/teranos/mmgen/modeling"
)

// render generates store with the given catalog.
func render(t *testing.T, store *model.ElementFactory, catalog modeling.Catalog) string {
	t.Helper()
	gen := &codegen.Generator{
		Catalog: catalog,
		Options: codegen.DefaultOptions(),
		Logger:  zaptest.NewLogger(t).Sugar(),
	}
	var buf bytes.Buffer
	_, err := gen.Generate(context.Background(), store, &buf)
	require.NoError(t, err)
	return buf.String()
}

func golden(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func testLoader(t *testing.T) *Loader {
	return NewLoader(zaptest.NewLogger(t).Sugar())
}
