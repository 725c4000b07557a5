package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestResolveSource_Local(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	path := filepath.Join("testdata", "scenario.yaml")

	src, err := ResolveSource(context.Background(), path, FetchOptions{}, log)
	require.NoError(t, err)
	defer src.Cleanup()

	assert.False(t, src.IsRemote)
	assert.Equal(t, path, src.OriginalInput)
	_, err = os.Stat(src.LocalPath)
	assert.NoError(t, err)

	src.Cleanup()
	_, err = os.Stat(path)
	assert.NoError(t, err, "cleanup never removes local sources")
}

func TestResolveSource_Errors(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		_, err := ResolveSource(ctx, "", FetchOptions{}, log)
		assert.Error(t, err)
	})
	t.Run("missing", func(t *testing.T) {
		_, err := ResolveSource(ctx, filepath.Join(t.TempDir(), "nope.yaml"), FetchOptions{}, log)
		assert.Error(t, err)
	})
	t.Run("directory", func(t *testing.T) {
		_, err := ResolveSource(ctx, t.TempDir(), FetchOptions{}, log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})
}

func TestResolveSource_Remote(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "scenario.yaml"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/scenario.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	src, err := ResolveSource(context.Background(), srv.URL+"/models/scenario.yaml",
		FetchOptions{AllowPrivateHosts: true}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.True(t, src.IsRemote)
	assert.Equal(t, "scenario.yaml", filepath.Base(src.LocalPath))
	fetched, err := os.ReadFile(src.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, body, fetched)

	src.Cleanup()
	_, err = os.Stat(src.LocalPath)
	assert.True(t, os.IsNotExist(err), "cleanup removes the fetched copy")
}

func TestResolveSource_RemotePrivateBlocked(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	_, err := ResolveSource(context.Background(), srv.URL+"/scenario.yaml", FetchOptions{}, zaptest.NewLogger(t).Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private IP address blocked")
	assert.Zero(t, hits, "blocked sources are never requested")
}

func TestRemoteFileName(t *testing.T) {
	tests := map[string]string{
		"testdata/scenario.yaml":                                    "scenario.yaml",
		"https://example.com/models/uml.gaphor?ref=main":            "uml.gaphor",
		"git::https://github.com/org/repo.git//models/profile.yaml": "profile.yaml",
		"s3::https://s3.amazonaws.com/bucket/model.json":            "model.json",
		"https://example.com/":                                      "model",
	}
	for input, want := range tests {
		assert.Equal(t, want, remoteFileName(input), input)
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/model.yaml"))
	assert.True(t, IsRemote("git::https://github.com/org/repo.git//model.yaml"))
	assert.False(t, IsRemote(filepath.Join("testdata", "scenario.yaml")))
	assert.False(t, IsRemote("/tmp/model.yaml"))
}
