package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// packageNameRegex validates reverse-domain package names
	packageNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_-]+)*$`)
)

// ValidPackageName reports whether name is a well-formed package name
func ValidPackageName(name string) bool {
	return packageNameRegex.MatchString(name)
}

// ManifestLoader loads and validates plugin.json files
type ManifestLoader struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
}

// NewManifestLoader creates a new manifest loader
func NewManifestLoader(logger zerolog.Logger) *ManifestLoader {
	schemaLoader := gojsonschema.NewStringLoader(ManifestSchema)
	return &ManifestLoader{
		logger:       logger.With().Str("component", "manifest-loader").Logger(),
		schemaLoader: schemaLoader,
	}
}

// LoadManifest loads and validates plugin metadata from a file
func (m *ManifestLoader) LoadManifest(path string) (*PluginMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return m.LoadManifestBytes(data)
}

// LoadManifestBytes validates and parses plugin metadata from JSON
func (m *ManifestLoader) LoadManifestBytes(data []byte) (*PluginMetadata, error) {
	meta, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	if err := m.validateSchema(data); err != nil {
		return nil, fmt.Errorf("manifest schema validation failed: %w", err)
	}

	if err := ValidateMetadata(meta); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	m.logger.Debug().
		Str("package", meta.PackageName).
		Str("version", meta.Version).
		Msg("Loaded manifest")

	return meta, nil
}

// validateSchema validates the manifest against the JSON schema
func (m *ManifestLoader) validateSchema(data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(m.schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// ValidateMetadata checks the rules JSON schema cannot express,
// after filling version defaults in place.
func ValidateMetadata(meta *PluginMetadata) error {
	meta.FillDefaults()

	if !ValidPackageName(meta.PackageName) {
		return fmt.Errorf("invalid package name: %q", meta.PackageName)
	}

	if _, err := semver.NewVersion(meta.Version); err != nil {
		return fmt.Errorf("invalid version %q: %w", meta.Version, err)
	}

	if meta.MinHostVersion != "" {
		if _, err := semver.NewVersion(meta.MinHostVersion); err != nil {
			return fmt.Errorf("invalid minHostVersion %q: %w", meta.MinHostVersion, err)
		}
	}

	for i, dep := range meta.Dependencies {
		if dep.PackageName == "" {
			return fmt.Errorf("dependency %d: packageName cannot be empty", i)
		}
		if dep.PackageName == meta.PackageName {
			return fmt.Errorf("dependency %d: plugin cannot depend on itself", i)
		}
		if _, err := semver.NewVersion(dep.MinVersion); err != nil {
			return fmt.Errorf("dependency %d: invalid minVersion %q: %w", i, dep.MinVersion, err)
		}
	}

	mains := 0
	for i, f := range meta.FileList {
		if f.FileType != "" && !ValidFileTypes[f.FileType] {
			return fmt.Errorf("file %d: unrecognized file type: %s", i, f.FileType)
		}
		if f.IsMainAssembly || f.FileType == FileMainAssembly {
			mains++
		}
	}
	if mains > 1 {
		return fmt.Errorf("file list declares %d main assemblies", mains)
	}

	return nil
}

// ParseManifest decodes plugin.json and fills defaults without validating
func ParseManifest(data []byte) (*PluginMetadata, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	meta := PluginMetadata{
		UninstallInfo: &PluginUninstallInfo{AllowUninstall: true},
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}
	if _, ok := raw["uninstallInfo"]; !ok {
		meta.UninstallInfo = nil
	}

	meta.FillDefaults()

	return &meta, nil
}
