package builtin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harun/phobos/pkg/host"
	"github.com/harun/phobos/pkg/plugin"
)

// Loader installs the built-in plugins and the plugins declared by
// manifests into a host
type Loader struct {
	host      *host.Host
	logger    zerolog.Logger
	manifests *plugin.ManifestLoader
	discovery *plugin.PluginDiscovery
	resolver  *plugin.DependencyResolver
}

// NewLoader creates a loader for h
func NewLoader(h *host.Host, logger zerolog.Logger) *Loader {
	return &Loader{
		host:      h,
		logger:    logger.With().Str("component", "plugin-loader").Logger(),
		manifests: plugin.NewManifestLoader(logger),
		discovery: plugin.NewPluginDiscovery(logger),
		resolver:  plugin.NewDependencyResolver(logger),
	}
}

// InstallBuiltins installs every built-in plugin
func (l *Loader) InstallBuiltins(ctx context.Context) error {
	echo := NewEcho(l.logger)
	if err := l.host.Install(ctx, echo); err != nil {
		return fmt.Errorf("failed to install %s: %w", EchoPackage, err)
	}
	return nil
}

// LoadManifests discovers manifests under dirs and installs a declared plugin
// for each, dependencies first. A manifest that fails to load or install is
// logged and skipped; the returned error joins those failures.
func (l *Loader) LoadManifests(ctx context.Context, dirs []string) (int, error) {
	discovered, err := l.discovery.DiscoverPlugins(plugin.PluginDiscoveryConfig{Dirs: dirs})
	if err != nil {
		return 0, err
	}

	var errs []error
	metas := make([]*plugin.PluginMetadata, 0, len(discovered))
	paths := make(map[string]string, len(discovered))
	for _, d := range discovered {
		meta, err := l.manifests.LoadManifest(d.ManifestPath)
		if err != nil {
			l.logger.Warn().Err(err).Str("manifest", d.ManifestPath).Msg("Skipping invalid manifest")
			errs = append(errs, fmt.Errorf("%s: %w", d.ManifestPath, err))
			continue
		}
		if _, dup := paths[meta.PackageName]; dup {
			errs = append(errs, fmt.Errorf("%s: %w", d.ManifestPath, plugin.ErrAlreadyRegistered))
			continue
		}
		paths[meta.PackageName] = d.Path
		metas = append(metas, meta)
	}

	order, err := l.resolver.TopologicalSort(l.resolver.BuildDependencyGraph(metas))
	if err != nil {
		return 0, errors.Join(append(errs, err)...)
	}

	byName := make(map[string]*plugin.PluginMetadata, len(metas))
	for _, m := range metas {
		byName[m.PackageName] = m
	}

	installed := 0
	for _, name := range order {
		if err := l.host.Install(ctx, NewDeclared(*byName[name], paths[name], l.logger)); err != nil {
			l.logger.Warn().Err(err).Str("plugin", name).Msg("Failed to install plugin")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		installed++
	}

	l.logger.Info().Int("installed", installed).Int("discovered", len(discovered)).Msg("Manifests loaded")
	return installed, errors.Join(errs...)
}
