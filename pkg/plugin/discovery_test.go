package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginDiscovery_DiscoverPlugins(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	discovery := NewPluginDiscovery(logger)

	t.Run("discovers plugins from all directories in order", func(t *testing.T) {
		tempDir := t.TempDir()
		systemDir := filepath.Join(tempDir, "system")
		userDir := filepath.Join(tempDir, "user")

		createTestPlugin(t, systemDir, "com.phobos.core")
		createTestPlugin(t, systemDir, "com.phobos.echo")
		createTestPlugin(t, userDir, "com.example.notes")

		discovered, err := discovery.DiscoverPlugins(PluginDiscoveryConfig{
			Dirs: []string{systemDir, "", userDir},
		})

		require.NoError(t, err)
		require.Len(t, discovered, 3)
		assert.Equal(t, "com.phobos.core", discovered[0].PackageName)
		assert.Equal(t, "com.example.notes", discovered[2].PackageName)
		assert.Equal(t, filepath.Join(userDir, "com.example.notes", ManifestFileName), discovered[2].ManifestPath)
	})

	t.Run("skips directories without plugin.json", func(t *testing.T) {
		dir := t.TempDir()
		createTestPlugin(t, dir, "valid")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.json"), []byte("{}"), 0644))

		discovered, err := discovery.DiscoverPlugins(PluginDiscoveryConfig{Dirs: []string{dir}})

		require.NoError(t, err)
		require.Len(t, discovered, 1)
		assert.Equal(t, "valid", discovered[0].PackageName)
	})

	t.Run("ignores missing and non-directory roots", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		discovered, err := discovery.DiscoverPlugins(PluginDiscoveryConfig{
			Dirs: []string{filepath.Join(dir, "missing"), file},
		})

		require.NoError(t, err)
		assert.Empty(t, discovered)
	})
}

// createTestPlugin creates a plugin directory holding a minimal plugin.json
func createTestPlugin(t *testing.T, baseDir, name string) {
	t.Helper()
	pluginDir := filepath.Join(baseDir, name)
	require.NoError(t, os.MkdirAll(pluginDir, 0755))

	manifest := `{"name": "` + name + `", "packageName": "` + name + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, ManifestFileName), []byte(manifest), 0644))
}
