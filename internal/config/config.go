package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the phobos host configuration
type Config struct {
	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// SQLite store for plugin config, system config and boot items
	DatabasePath string `json:"database_path" mapstructure:"database_path"`

	// Host language, one of i18n.SupportedLanguages
	Language string `json:"language" mapstructure:"language"`

	// Directory of YAML locale catalogs, watched for changes
	LocalesDir string `json:"locales_dir" mapstructure:"locales_dir"`

	// Directories scanned for plugin.json manifests
	ManifestDirs []string `json:"manifest_dirs" mapstructure:"manifest_dirs"`

	// Packages allowed to touch other plugins' config and system config
	TrustedPackages []string `json:"trusted_packages" mapstructure:"trusted_packages"`

	// Version reported to plugins and checked against MinHostVersion
	HostVersion string `json:"host_version" mapstructure:"host_version"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`

	// Audit log file, empty disables the audit trail
	AuditLog string `json:"audit_log" mapstructure:"audit_log"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
}

// MetricsConfig holds Prometheus exporter settings
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Listen  string `json:"listen" mapstructure:"listen"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool    `json:"enabled" mapstructure:"enabled"`
	ServiceName string  `json:"service_name" mapstructure:"service_name"`
	SampleRatio float64 `json:"sample_ratio" mapstructure:"sample_ratio"`
}

// DefaultHostVersion is reported when the config does not set one
const DefaultHostVersion = "1.0.0"

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Language:        "en-US",
		ManifestDirs:    []string{},
		TrustedPackages: []string{},
		HostVersion:     DefaultHostVersion,
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    true,
			Redaction: true,
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9464",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "phobos",
			SampleRatio: 1,
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := NewValidator()

	if err := v.ValidateLanguage(c.Language); err != nil {
		return err
	}
	if err := v.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := v.ValidateHostVersion(c.HostVersion); err != nil {
		return err
	}

	for i, pkg := range c.TrustedPackages {
		if err := v.ValidatePackageName(pkg); err != nil {
			return fmt.Errorf("trusted package %d: %w", i, err)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics listen address is required when metrics are enabled")
	}

	return nil
}

// IsTrusted reports whether pkg is listed in TrustedPackages
func (c *Config) IsTrusted(pkg string) bool {
	for _, p := range c.TrustedPackages {
		if p == pkg {
			return true
		}
	}
	return false
}
