package plugin

import (
	"path/filepath"
	"time"

	"github.com/harun/phobos/pkg/i18n"
)

// DefaultVersion is used for plugin and dependency versions left empty
const DefaultVersion = "1.0.0"

// PluginState represents where a plugin instance is in its lifecycle
type PluginState string

const (
	StateCreated  PluginState = "created"
	StateActive   PluginState = "active"
	StateClosing  PluginState = "closing"
	StateTerminal PluginState = "terminal"
)

// PluginFileType classifies an entry of the plugin file manifest
type PluginFileType string

const (
	FileMainAssembly PluginFileType = "main"
	FileLibrary      PluginFileType = "library"
	FileResource     PluginFileType = "resource"
	FileConfig       PluginFileType = "config"
	FileLocalization PluginFileType = "localization"
	FileOther        PluginFileType = "other"
)

// ValidFileTypes is a set of all valid file types
var ValidFileTypes = map[PluginFileType]bool{
	FileMainAssembly: true,
	FileLibrary:      true,
	FileResource:     true,
	FileConfig:       true,
	FileLocalization: true,
	FileOther:        true,
}

// PluginDependency represents a dependency on another plugin
type PluginDependency struct {
	PackageName string `json:"packageName"`
	MinVersion  string `json:"minVersion,omitempty"` // defaults to DefaultVersion
	IsOptional  bool   `json:"isOptional,omitempty"`
}

// PluginFileInfo describes one file shipped with a plugin
type PluginFileInfo struct {
	RelativePath   string         `json:"relativePath"`
	FileType       PluginFileType `json:"fileType,omitempty"`
	IsMainAssembly bool           `json:"isMainAssembly,omitempty"`
	IsRequired     bool           `json:"isRequired,omitempty"`
}

// PluginUninstallInfo carries the special prompt shown before uninstalling
type PluginUninstallInfo struct {
	AllowUninstall       bool              `json:"allowUninstall"`
	Title                string            `json:"title,omitempty"`
	Message              string            `json:"message,omitempty"`
	LocalizedTitles      map[string]string `json:"localizedTitles,omitempty"`
	LocalizedMessages    map[string]string `json:"localizedMessages,omitempty"`
	PreUninstallCommand  string            `json:"preUninstallCommand,omitempty"`
	PostUninstallCommand string            `json:"postUninstallCommand,omitempty"`
}

// LocalizedTitle resolves the uninstall prompt title for lang
func (u *PluginUninstallInfo) LocalizedTitle(lang string) string {
	return i18n.Resolve(u.LocalizedTitles, lang, u.Title)
}

// LocalizedMessage resolves the uninstall prompt message for lang
func (u *PluginUninstallInfo) LocalizedMessage(lang string) string {
	return i18n.Resolve(u.LocalizedMessages, lang, u.Message)
}

// PluginMetadata represents the plugin.json file structure and the identity
// every outbound call is scoped by
type PluginMetadata struct {
	Name                  string               `json:"name"`
	PackageName           string               `json:"packageName"`
	Manufacturer          string               `json:"manufacturer,omitempty"`
	Version               string               `json:"version"`
	Secret                string               `json:"secret,omitempty"`
	DatabaseKey           string               `json:"databaseKey,omitempty"`
	Dependencies          []PluginDependency   `json:"dependencies,omitempty"`
	LocalizedNames        map[string]string    `json:"localizedNames,omitempty"`
	LocalizedDescriptions map[string]string    `json:"localizedDescriptions,omitempty"`
	FileList              []PluginFileInfo     `json:"fileList,omitempty"`
	Icon                  string               `json:"icon,omitempty"`
	IsSystemPlugin        bool                 `json:"isSystemPlugin,omitempty"`
	SettingURI            string               `json:"settingUri,omitempty"`
	UninstallInfo         *PluginUninstallInfo `json:"uninstallInfo,omitempty"`
	Description           string               `json:"description,omitempty"`
	HomepageURL           string               `json:"homepageUrl,omitempty"`
	MinHostVersion        string               `json:"minHostVersion,omitempty"`
}

// LocalizedName resolves the display name for lang
func (m *PluginMetadata) LocalizedName(lang string) string {
	return i18n.Resolve(m.LocalizedNames, lang, m.Name)
}

// LocalizedDescription resolves the description for lang
func (m *PluginMetadata) LocalizedDescription(lang string) string {
	return i18n.Resolve(m.LocalizedDescriptions, lang, m.Description)
}

// MainAssembly returns the relative path of the main file, if any
func (m *PluginMetadata) MainAssembly() (string, bool) {
	for _, f := range m.FileList {
		if f.IsMainAssembly || f.FileType == FileMainAssembly {
			return f.RelativePath, true
		}
	}
	return "", false
}

// IconPath joins the icon with the plugin directory. It returns "" when the
// plugin has no icon.
func (m *PluginMetadata) IconPath(pluginDir string) string {
	if m.Icon == "" {
		return ""
	}
	return filepath.Join(pluginDir, m.Icon)
}

// Uninstallable reports whether the plugin may be removed by a user
func (m *PluginMetadata) Uninstallable() bool {
	if m.IsSystemPlugin {
		return false
	}
	return m.UninstallInfo == nil || m.UninstallInfo.AllowUninstall
}

// DiscoveredPlugin represents a plugin manifest found during discovery
type DiscoveredPlugin struct {
	PackageName  string
	Path         string
	ManifestPath string
}

// PluginDiscoveryConfig configures plugin discovery
type PluginDiscoveryConfig struct {
	Dirs []string
}

// PluginRecord tracks a plugin instance inside the host
type PluginRecord struct {
	Plugin     Plugin
	Metadata   PluginMetadata
	State      PluginState
	LoadedAt   time.Time
	UpdatedAt  *time.Time
	ErrorCount int
	LastError  error
}

// DependencyGraph represents plugin dependencies
type DependencyGraph struct {
	Nodes map[string]*PluginMetadata
	Edges map[string][]PluginDependency // packageName -> dependencies
}

// FillDefaults sets an empty Version and every empty dependency MinVersion to
// DefaultVersion. Dependencies are copied before being changed.
func (m *PluginMetadata) FillDefaults() {
	if m.Version == "" {
		m.Version = DefaultVersion
	}
	if len(m.Dependencies) == 0 {
		return
	}
	deps := make([]PluginDependency, len(m.Dependencies))
	copy(deps, m.Dependencies)
	for i := range deps {
		if deps[i].MinVersion == "" {
			deps[i].MinVersion = DefaultVersion
		}
	}
	m.Dependencies = deps
}
