package plugin

import (
	"context"
)

// Plugin is the interface every in-process plugin implements. The host calls
// SetHandlers exactly once before driving the lifecycle methods.
type Plugin interface {
	// Metadata returns the plugin's static identity
	Metadata() PluginMetadata

	// SetHandlers binds the host's capability table
	SetHandlers(h *Handlers) error

	OnInstall(ctx context.Context, args ...Value) (RequestResult, error)
	OnLaunch(ctx context.Context, args ...Value) (RequestResult, error)
	OnClosing(ctx context.Context, args ...Value) (RequestResult, error)
	OnUninstall(ctx context.Context, args ...Value) (RequestResult, error)
	OnUpdate(ctx context.Context, oldVersion, newVersion string, args ...Value) (RequestResult, error)

	// Run is called by the host or other plugins to invoke the plugin
	Run(ctx context.Context, args ...Value) (RequestResult, error)

	// OnEventReceived delivers a host event the plugin subscribed to
	OnEventReceived(ctx context.Context, category, name string, args ...Value) error
}
