package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedString(t *testing.T) {
	t.Run("add escapes and get unescapes", func(t *testing.T) {
		s := &LocalizedString{}
		s.Add("en-US", "line1\nline2")

		raw, ok := s.Raw("en-US")
		require.True(t, ok)
		assert.Equal(t, `line1\nline2`, raw)
		assert.Equal(t, "line1\nline2", s.Get("en-US"))
	})

	t.Run("language codes are case insensitive", func(t *testing.T) {
		s := &LocalizedString{}
		s.Add("zh-CN", "旧")
		s.Add("ZH-cn", "新")

		assert.Equal(t, 1, s.Len())
		assert.Equal(t, "新", s.Get("zh-cn"))
	})

	t.Run("uses the fallback chain", func(t *testing.T) {
		s := FromMap(map[string]string{"zh-CN": "确认", "en-US": "Confirm"})
		assert.Equal(t, "确认", s.Get("zh-TW"))
		assert.Equal(t, "Confirm", s.Get("ja-JP"))
	})

	t.Run("empty string resolves to empty", func(t *testing.T) {
		s := &LocalizedString{}
		assert.Equal(t, "", s.Get("en-US"))
	})

	t.Run("constructor sets en-US", func(t *testing.T) {
		s := NewLocalizedString(`C:\path`)
		assert.Equal(t, `C:\path`, s.Get("fr-FR"))
		assert.Equal(t, `C:\path`, s.String())
	})

	t.Run("nested escape-looking input decodes once", func(t *testing.T) {
		s := &LocalizedString{}
		s.Add("en-US", `already \n escaped`)
		assert.Equal(t, `already \n escaped`, s.Get("en-US"))
	})

	t.Run("all returns unescaped copy", func(t *testing.T) {
		s := FromMap(map[string]string{"en-US": "a\tb", "ja-JP": "c"})
		all := s.All()
		assert.Equal(t, map[string]string{"en-US": "a\tb", "ja-JP": "c"}, all)

		all["en-US"] = "changed"
		assert.Equal(t, "a\tb", s.Get("en-US"))
	})
}
