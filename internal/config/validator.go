package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/harun/phobos/pkg/i18n"
	"github.com/harun/phobos/pkg/plugin"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateLanguage accepts the languages phobos ships texts for. Matching
// is case-insensitive, like descriptor lookup.
func (v *Validator) ValidateLanguage(lang string) error {
	if lang == "" {
		return fmt.Errorf("language cannot be empty")
	}
	for _, supported := range i18n.SupportedLanguages {
		if strings.EqualFold(lang, supported) {
			return nil
		}
	}
	return fmt.Errorf("unsupported language: %s (must be one of: %s)", lang, strings.Join(i18n.SupportedLanguages, ", "))
}

// ValidatePackageName validates a plugin package name
func (v *Validator) ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if !plugin.ValidPackageName(name) {
		return fmt.Errorf("invalid package name: %s", name)
	}
	return nil
}

// ValidateHostVersion requires a semantic version
func (v *Validator) ValidateHostVersion(version string) error {
	if _, err := semver.NewVersion(version); err != nil {
		return fmt.Errorf("invalid host version %q: %w", version, err)
	}
	return nil
}

// ValidateConfig performs comprehensive validation and reports every
// problem rather than the first
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errs []error

	if err := v.ValidateLanguage(cfg.Language); err != nil {
		errs = append(errs, err)
	}
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if err := v.ValidateHostVersion(cfg.HostVersion); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]bool, len(cfg.TrustedPackages))
	for i, pkg := range cfg.TrustedPackages {
		if err := v.ValidatePackageName(pkg); err != nil {
			errs = append(errs, fmt.Errorf("trusted package %d: %w", i, err))
			continue
		}
		if seen[pkg] {
			errs = append(errs, fmt.Errorf("trusted package %s listed twice", pkg))
		}
		seen[pkg] = true
	}

	if cfg.Logging.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("logging max_size must be >= 0"))
	}
	if cfg.Logging.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("logging max_age must be >= 0"))
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		errs = append(errs, fmt.Errorf("metrics listen address is required when metrics are enabled"))
	}
	if cfg.Tracing.Enabled && cfg.Tracing.ServiceName == "" {
		errs = append(errs, fmt.Errorf("tracing service_name is required when tracing is enabled"))
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing sample_ratio must be between 0 and 1"))
	}

	return errs
}

// Check runs ValidateConfig and joins the results
func (v *Validator) Check(cfg *Config) error {
	return errors.Join(v.ValidateConfig(cfg)...)
}
