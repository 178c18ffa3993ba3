package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		m := map[string]string{"zh-CN": "确认", "en-US": "Confirm"}
		assert.Equal(t, "确认", Resolve(m, "zh-CN", "default"))
	})

	t.Run("exact match ignores case", func(t *testing.T) {
		m := map[string]string{"zh-CN": "确认", "en-US": "Confirm"}
		assert.Equal(t, "确认", Resolve(m, "ZH-cn", ""))
	})

	t.Run("base language match", func(t *testing.T) {
		m := map[string]string{"zh-CN": "确认", "en-US": "Confirm"}
		assert.Equal(t, "确认", Resolve(m, "zh-TW", ""))
	})

	t.Run("falls back to en-US", func(t *testing.T) {
		m := map[string]string{"en-US": "OK"}
		assert.Equal(t, "OK", Resolve(m, "ja-JP", "fallback"))
	})

	t.Run("en-US preferred over arbitrary value", func(t *testing.T) {
		m := map[string]string{"de-DE": "Ja", "en-US": "Yes", "fr-FR": "Oui"}
		assert.Equal(t, "Yes", Resolve(m, "ko-KR", ""))
	})

	t.Run("any remaining value", func(t *testing.T) {
		m := map[string]string{"fr-FR": "Oui"}
		assert.Equal(t, "Oui", Resolve(m, "ja-JP", "fallback"))
	})

	t.Run("caller default on empty map", func(t *testing.T) {
		assert.Equal(t, "fallback", Resolve(map[string]string{}, "ja-JP", "fallback"))
		assert.Equal(t, "fallback", Resolve(nil, "ja-JP", "fallback"))
	})

	t.Run("empty string without default", func(t *testing.T) {
		assert.Equal(t, "", Resolve(nil, "en-US", ""))
	})

	t.Run("empty language skips base match", func(t *testing.T) {
		m := map[string]string{"de-DE": "Ja", "en-US": "Yes"}
		assert.Equal(t, "Yes", Resolve(m, "", ""))
	})

	t.Run("en-US always returned when present and requested", func(t *testing.T) {
		m := map[string]string{"en-GB": "Colour", "en-US": "Color"}
		assert.Equal(t, "Color", Resolve(m, "en-US", ""))
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		m := map[string]string{"zh-CN": "简", "zh-HK": "繁", "en-US": "x"}
		first := Resolve(m, "zh-TW", "")
		for i := 0; i < 50; i++ {
			assert.Equal(t, first, Resolve(m, "zh-TW", ""))
		}
	})

	t.Run("does not mutate the map", func(t *testing.T) {
		m := map[string]string{"zh-CN": "确认"}
		Resolve(m, "ja-JP", "d")
		assert.Equal(t, map[string]string{"zh-CN": "确认"}, m)
	})
}

func TestBaseLanguage(t *testing.T) {
	assert.Equal(t, "zh", BaseLanguage("zh-TW"))
	assert.Equal(t, "zh", BaseLanguage("zh-Hant-TW"))
	assert.Equal(t, "ja", BaseLanguage("ja"))
	assert.Equal(t, "", BaseLanguage(""))
}
