package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			assert.NoError(t, v.ValidateLogLevel(level))
		})
	}

	t.Run("invalid", func(t *testing.T) {
		assert.Error(t, v.ValidateLogLevel("trace"))
	})
}

func TestValidateLanguage(t *testing.T) {
	v := NewValidator()

	t.Run("supported", func(t *testing.T) {
		assert.NoError(t, v.ValidateLanguage("zh-TW"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.NoError(t, v.ValidateLanguage("ko-kr"))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, v.ValidateLanguage("fr-FR"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Error(t, v.ValidateLanguage(""))
	})
}

func TestValidatePackageName(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidatePackageName("com.phobos.notes"))
	assert.NoError(t, v.ValidatePackageName("notes"))
	assert.Error(t, v.ValidatePackageName(""))
	assert.Error(t, v.ValidatePackageName("com phobos"))
	assert.Error(t, v.ValidatePackageName(".leading"))
}

func TestValidateHostVersion(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateHostVersion("2.1.0"))
	assert.Error(t, v.ValidateHostVersion(""))
	assert.Error(t, v.ValidateHostVersion("latest"))
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	t.Run("valid config", func(t *testing.T) {
		assert.Empty(t, v.ValidateConfig(DefaultConfig()))
		assert.NoError(t, v.Check(DefaultConfig()))
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Language = "xx"
		cfg.Logging.Level = "loud"
		cfg.Logging.MaxAge = -1
		cfg.TrustedPackages = []string{"com.a", "com.a"}
		cfg.Tracing.Enabled = true
		cfg.Tracing.ServiceName = ""
		cfg.Tracing.SampleRatio = 1.5

		errs := v.ValidateConfig(cfg)
		assert.Len(t, errs, 6)
		assert.Error(t, v.Check(cfg))
	})
}
