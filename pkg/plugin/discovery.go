package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ManifestFileName is the metadata file every plugin directory carries
const ManifestFileName = "plugin.json"

// PluginDiscovery scans directories to find plugins
type PluginDiscovery struct {
	logger zerolog.Logger
}

// NewPluginDiscovery creates a new plugin discovery instance
func NewPluginDiscovery(logger zerolog.Logger) *PluginDiscovery {
	return &PluginDiscovery{
		logger: logger.With().Str("component", "plugin-discovery").Logger(),
	}
}

// DiscoverPlugins scans the configured directories in order. A directory
// that fails to scan is logged and skipped.
func (d *PluginDiscovery) DiscoverPlugins(config PluginDiscoveryConfig) ([]DiscoveredPlugin, error) {
	var discovered []DiscoveredPlugin

	for _, dir := range config.Dirs {
		if dir == "" {
			continue
		}
		plugins, err := d.scanDirectory(dir)
		if err != nil {
			d.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to scan plugin directory")
			continue
		}
		discovered = append(discovered, plugins...)
	}

	d.logger.Info().Int("count", len(discovered)).Msg("Plugin discovery completed")
	return discovered, nil
}

// scanDirectory scans a single directory for plugins
func (d *PluginDiscovery) scanDirectory(dir string) ([]DiscoveredPlugin, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Debug().Str("dir", dir).Msg("Directory does not exist, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var discovered []DiscoveredPlugin

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(dir, entry.Name())
		manifestPath := filepath.Join(pluginDir, ManifestFileName)

		if _, err := os.Stat(manifestPath); err != nil {
			if !os.IsNotExist(err) {
				d.logger.Warn().
					Err(err).
					Str("dir", pluginDir).
					Msg("Failed to check for plugin.json")
			}
			continue
		}

		// the directory name is only a hint until the manifest is loaded
		plugin := DiscoveredPlugin{
			PackageName:  entry.Name(),
			Path:         pluginDir,
			ManifestPath: manifestPath,
		}

		discovered = append(discovered, plugin)
		d.logger.Debug().
			Str("package", plugin.PackageName).
			Str("path", plugin.Path).
			Msg("Discovered plugin")
	}

	return discovered, nil
}
