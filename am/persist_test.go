package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mmgen.toml")

	require.NoError(t, Init(path, false))

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assertDefaults(t, cfg)

	// The written file loads back through viper unchanged
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assertDefaults(t, loaded)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# mmgen configuration")
	assert.Contains(t, string(content), "[generator]")
}

func TestInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mmgen.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	err := Init(path, false)
	require.Error(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(content))
}

func TestInit_ForceKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mmgen.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	require.NoError(t, Init(path, true))

	backup, err := os.ReadFile(path + ".back1")
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(backup))
}

func TestCreateBackup_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	for _, content := range []string{"v1", "v2", "v3", "v4", "v5"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		require.NoError(t, createBackup(path))
	}

	for suffix, want := range map[string]string{".back1": "v5", ".back2": "v4", ".back3": "v3"} {
		got, err := os.ReadFile(path + suffix)
		require.NoError(t, err, suffix)
		assert.Equal(t, want, string(got), suffix)
	}
	_, err := os.Stat(path + ".back4")
	assert.True(t, os.IsNotExist(err))
}

func TestCreateBackup_NoFile(t *testing.T) {
	assert.NoError(t, createBackup(filepath.Join(t.TempDir(), "none.toml")))
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, IsBackupFile("/x/am.toml.back1"))
	assert.True(t, IsBackupFile("mmgen.toml.back3"))
	assert.False(t, IsBackupFile("mmgen.toml"))
	assert.False(t, IsBackupFile("model.yaml"))
}
