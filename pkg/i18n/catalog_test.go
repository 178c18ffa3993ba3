package i18n

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	t.Run("defaults to en-US", func(t *testing.T) {
		c := NewCatalog("")
		assert.Equal(t, "en-US", c.Language())
	})

	t.Run("set language ignores empty", func(t *testing.T) {
		c := NewCatalog("ja-JP")
		c.SetLanguage("")
		assert.Equal(t, "ja-JP", c.Language())
		c.SetLanguage("zh-CN")
		assert.Equal(t, "zh-CN", c.Language())
	})

	t.Run("get resolves in current language", func(t *testing.T) {
		c := NewCatalog("zh-TW")
		c.Register("dialog.ok", FromMap(map[string]string{"en-US": "OK", "zh-CN": "确定"}))

		assert.Equal(t, "确定", c.Get("dialog.ok", ""))
		assert.Equal(t, "OK", c.Get("dialog.ok", "ko-KR"))
		assert.Equal(t, "确定", c.Get("DIALOG.OK", ""))
	})

	t.Run("missing key returns key", func(t *testing.T) {
		c := NewCatalog("")
		assert.Equal(t, "missing.key", c.Get("missing.key", "en-US"))
		assert.False(t, c.Contains("missing.key"))
	})

	t.Run("format", func(t *testing.T) {
		c := NewCatalog("en-US")
		c.Register("greeting", NewLocalizedString("Hello, %s"))
		c.Register("plain", NewLocalizedString("No verbs"))

		assert.Equal(t, "Hello, Ada", c.Format("greeting", "Ada"))
		assert.Equal(t, "Hello, %s", c.Format("greeting"))
		assert.Equal(t, "No verbs", c.Format("plain", 42))
	})

	t.Run("clear", func(t *testing.T) {
		c := NewCatalog("")
		c.Register("a", NewLocalizedString("A"))
		c.Register("b", NewLocalizedString("B"))
		assert.Equal(t, []string{"a", "b"}, c.Keys())

		c.Clear()
		assert.Empty(t, c.Keys())
	})
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "00-base.yaml", `
dialog.ok:
  en-US: OK
  zh-CN: 确定
dialog.cancel:
  en-US: Cancel
`)
	writeCatalog(t, dir, "10-override.yml", `
dialog.cancel:
  en-US: Dismiss
  ja-JP: キャンセル
`)
	writeCatalog(t, dir, "notes.txt", "ignored")

	c := NewCatalog("en-US")
	n, err := LoadDir(c, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, "确定", c.Get("dialog.ok", "zh-TW"))
	assert.Equal(t, "Dismiss", c.Get("dialog.cancel", "en-US"))
	assert.Equal(t, "キャンセル", c.Get("dialog.cancel", "ja-JP"))
}

func TestReloadDir(t *testing.T) {
	t.Run("drops keys of removed files", func(t *testing.T) {
		dir := t.TempDir()
		old := writeCatalog(t, dir, "a.yaml", "old.key:\n  en-US: Old\n")

		c := NewCatalog("ja-JP")
		_, err := LoadDir(c, dir)
		require.NoError(t, err)

		require.NoError(t, os.Remove(old))
		writeCatalog(t, dir, "b.yaml", "new.key:\n  en-US: New\n")

		n, err := ReloadDir(c, dir)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"new.key"}, c.Keys())
		assert.Equal(t, "ja-JP", c.Language())
	})

	t.Run("failed reload keeps previous contents", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalog(t, dir, "a.yaml", "kept.key:\n  en-US: Kept\n")

		c := NewCatalog("en-US")
		_, err := LoadDir(c, dir)
		require.NoError(t, err)

		writeCatalog(t, dir, "b.yaml", "other.key:\n  en-US: Other\n\"\": \n  en-US: Empty\n")

		_, err = ReloadDir(c, dir)
		require.Error(t, err)
		assert.Equal(t, []string{"kept.key"}, c.Keys())
	})
}

func TestLoadFile_EmptyKeyRegistersNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, "bad.yaml", "good.key:\n  en-US: Good\n\"\": \n  en-US: Empty\n")

	c := NewCatalog("")
	_, err := LoadFile(c, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty key")
	assert.Empty(t, c.Keys())
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, "bad.yaml", "key: [unterminated")

	_, err := LoadFile(NewCatalog(""), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse catalog")
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "app.yaml", "title:\n  en-US: First\n")

	c := NewCatalog("en-US")
	_, err := LoadDir(c, dir)
	require.NoError(t, err)

	reloaded := make(chan struct{}, 4)
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	w, err := NewWatcher(c, dir, logger, func(int, error) { reloaded <- struct{}{} })
	require.NoError(t, err)
	defer w.Stop()

	writeCatalog(t, dir, "app.yaml", "title:\n  en-US: Second\n")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	assert.Equal(t, "Second", c.Get("title", ""))
	assert.NoError(t, w.Stop())
}

func TestWatcher_DropsRemovedFile(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "app.yaml", "title:\n  en-US: Title\n")
	extra := writeCatalog(t, dir, "extra.yaml", "extra.key:\n  en-US: Extra\n")

	c := NewCatalog("en-US")
	_, err := LoadDir(c, dir)
	require.NoError(t, err)
	require.True(t, c.Contains("extra.key"))

	reloaded := make(chan int, 4)
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	w, err := NewWatcher(c, dir, logger, func(n int, err error) {
		if err == nil {
			reloaded <- n
		}
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.Remove(extra))

	select {
	case n := <-reloaded:
		assert.Equal(t, 1, n)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	assert.False(t, c.Contains("extra.key"))
	assert.True(t, c.Contains("title"))
}

func writeCatalog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
