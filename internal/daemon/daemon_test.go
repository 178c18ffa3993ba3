package daemon

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/phobos/internal/builtin"
	"github.com/harun/phobos/internal/config"
	"github.com/harun/phobos/internal/logger"
	"github.com/harun/phobos/internal/observability"
	"github.com/harun/phobos/pkg/plugin"
)

func TestMain(m *testing.M) {
	observability.SetAuditLogger(observability.NewAuditLogger(io.Discard))
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = tmpDir
	cfg.DatabasePath = filepath.Join(tmpDir, "phobos.db")
	cfg.LocalesDir = filepath.Join(tmpDir, "locales")
	cfg.ManifestDirs = []string{filepath.Join(tmpDir, "plugins")}
	return cfg
}

// createTestDaemon creates a daemon that logs nowhere
func createTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *logger.Logger) {
	t.Helper()

	log, err := logger.New(logger.Config{
		Level:   "info",
		Console: false,
	})
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	daemon, err := New(cfg, log)
	require.NoError(t, err)

	return daemon, log
}

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, plugin.ManifestFileName), []byte(body), 0644))
}

func TestNew(t *testing.T) {
	t.Run("builds the host", func(t *testing.T) {
		daemon, _ := createTestDaemon(t, testConfig(t))

		assert.NotNil(t, daemon.Host())
		assert.NotNil(t, daemon.lifecycle)
		assert.DirExists(t, daemon.config.LocalesDir)
		assert.FileExists(t, daemon.config.DatabasePath)
	})

	t.Run("data directory required", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DataDir = ""

		log, err := logger.New(logger.Config{Level: "info"})
		require.NoError(t, err)
		defer log.Close()

		_, err = New(cfg, log)
		assert.Error(t, err)
	})

	t.Run("locales are loaded", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.MkdirAll(cfg.LocalesDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(cfg.LocalesDir, "app.yaml"), []byte(`
greeting:
  en-US: Hello
  ja-JP: こんにちは
`), 0644))

		daemon, _ := createTestDaemon(t, cfg)
		assert.Equal(t, "こんにちは", daemon.Host().Catalog().Get("greeting", "ja-JP"))
	})
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testConfig(t)
	writeManifest(t, filepath.Join(cfg.ManifestDirs[0], "notes"), `{
		"name": "Notes",
		"packageName": "com.test.notes",
		"version": "1.0.0",
		"secret": "notes-secret-value"
	}`)

	daemon, _ := createTestDaemon(t, cfg)

	require.NoError(t, daemon.Start())
	assert.Error(t, daemon.Start())

	status := daemon.Status()
	assert.True(t, status.Running)
	assert.Equal(t, 2, status.Plugins)
	assert.FileExists(t, daemon.lifecycle.PIDFile())

	for _, pkg := range []string{builtin.EchoPackage, "com.test.notes"} {
		record, ok := daemon.Host().Registry().Get(pkg)
		require.True(t, ok, pkg)
		assert.Equal(t, plugin.StateActive, record.State, pkg)
	}

	require.NoError(t, daemon.Stop())
	assert.Error(t, daemon.Stop())

	status = daemon.Status()
	assert.False(t, status.Running)
	assert.Equal(t, time.Duration(0), status.Uptime)
	assert.NoFileExists(t, daemon.lifecycle.PIDFile())

	record, ok := daemon.Host().Registry().Get("com.test.notes")
	require.True(t, ok)
	assert.Equal(t, plugin.StateTerminal, record.State)
}

func TestDaemonStatus(t *testing.T) {
	daemon, _ := createTestDaemon(t, testConfig(t))

	status := daemon.Status()
	assert.False(t, status.Running)
	assert.True(t, status.StartTime.IsZero())

	require.NoError(t, daemon.Start())
	defer daemon.Stop()

	status = daemon.Status()
	assert.True(t, status.Running)
	assert.False(t, status.StartTime.IsZero())
}

func TestDaemonMetricsEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	cfg.Metrics.Listen = "127.0.0.1:0"

	daemon, _ := createTestDaemon(t, cfg)
	require.NoError(t, daemon.Start())
	defer daemon.Stop()

	addr := daemon.MetricsAddr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "phobos_plugins_loaded")

	health, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestDaemonAuditLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuditLog = filepath.Join(cfg.DataDir, "audit", "audit.log")
	t.Cleanup(func() {
		observability.SetAuditLogger(observability.NewAuditLogger(io.Discard))
	})

	daemon, _ := createTestDaemon(t, cfg)
	require.NoError(t, daemon.Start())

	// system plugins refuse to be uninstalled, which is audited
	err := daemon.Host().Uninstall(t.Context(), builtin.EchoPackage)
	assert.ErrorIs(t, err, plugin.ErrUninstallNotAllowed)

	require.NoError(t, daemon.Stop())

	data, err := os.ReadFile(cfg.AuditLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), builtin.EchoPackage)
}
