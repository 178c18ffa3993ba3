package host

import (
	"sync"

	"github.com/harun/phobos/pkg/plugin"
)

// ThemeResources holds the host's merged theme resource dictionary
type ThemeResources struct {
	mu        sync.RWMutex
	resources plugin.ResourceDictionary
}

// NewThemeResources creates an empty resource set
func NewThemeResources() *ThemeResources {
	return &ThemeResources{resources: make(plugin.ResourceDictionary)}
}

// Set stores one resource
func (t *ThemeResources) Set(key string, value plugin.Value) {
	t.mu.Lock()
	t.resources[key] = value
	t.mu.Unlock()
}

// Merge overlays dict onto the current resources
func (t *ThemeResources) Merge(dict plugin.ResourceDictionary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range dict {
		t.resources[k] = v
	}
}

// Snapshot returns a copy of the resources
func (t *ThemeResources) Snapshot() plugin.ResourceDictionary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(plugin.ResourceDictionary, len(t.resources))
	for k, v := range t.resources {
		out[k] = v
	}
	return out
}

// DefaultTheme returns the resources a host starts with
func DefaultTheme() plugin.ResourceDictionary {
	return plugin.ResourceDictionary{
		"Theme":             plugin.String("Light"),
		"AccentColor":       plugin.String("#0078D4"),
		"FontFamily":        plugin.String("Segoe UI"),
		"FontSize":          plugin.Int(14),
		"CornerRadius":      plugin.Int(4),
		"WindowBackground":  plugin.String("#FFFFFF"),
		"WindowForeground":  plugin.String("#1F1F1F"),
		"HighContrastTheme": plugin.Bool(false),
	}
}
