package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/harun/phobos/internal/builtin"
	"github.com/harun/phobos/internal/config"
	"github.com/harun/phobos/internal/logger"
	"github.com/harun/phobos/internal/metrics"
	"github.com/harun/phobos/internal/observability"
	"github.com/harun/phobos/internal/tracing"
	"github.com/harun/phobos/pkg/host"
	"github.com/harun/phobos/pkg/i18n"
)

// Daemon runs a plugin host until it is told to stop
type Daemon struct {
	config *config.Config
	logger *logger.Logger

	store   *host.Store
	catalog *i18n.Catalog
	metrics *metrics.Metrics
	host    *host.Host
	loader  *builtin.Loader

	watcher       *i18n.Watcher
	metricsServer *http.Server
	metricsAddr   string
	lifecycle     *LifecycleManager

	startTime time.Time
	running   bool
	mu        sync.RWMutex

	tracingEnabled bool
}

// Status describes a daemon at one point in time
type Status struct {
	Running   bool
	Uptime    time.Duration
	StartTime time.Time
	Plugins   int
}

// New builds the host and everything it depends on. Nothing is started
// until Start.
func New(cfg *config.Config, log *logger.Logger) (*Daemon, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	d := &Daemon{
		config:  cfg,
		logger:  log,
		metrics: metrics.NewMetrics(),
	}

	if cfg.Tracing.Enabled {
		if err := tracing.InitOpenTelemetry(tracing.Config{
			ServiceName:    cfg.Tracing.ServiceName,
			ServiceVersion: cfg.HostVersion,
			SampleRatio:    cfg.Tracing.SampleRatio,
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing, continuing without distributed tracing")
		} else {
			d.tracingEnabled = true
		}
	}

	if cfg.AuditLog != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.AuditLog), 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
		if err := observability.InitAuditLogger(cfg.AuditLog); err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.DataDir, "phobos.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			d.shutdownTracing()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := host.OpenStore(dbPath)
	if err != nil {
		d.shutdownTracing()
		return nil, err
	}
	d.store = store

	d.catalog = i18n.NewCatalog(cfg.Language)
	if cfg.LocalesDir != "" {
		if err := os.MkdirAll(cfg.LocalesDir, 0755); err != nil {
			store.Close()
			d.shutdownTracing()
			return nil, fmt.Errorf("failed to create locales directory: %w", err)
		}
		n, err := i18n.LoadDir(d.catalog, cfg.LocalesDir)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.LocalesDir).Msg("Failed to load locale catalogs")
		} else {
			log.Info().Int("keys", n).Str("dir", cfg.LocalesDir).Msg("Locale catalogs loaded")
		}
	}

	h, err := host.New(host.Options{
		Logger:          log.GetZerolog(),
		Store:           store,
		Catalog:         d.catalog,
		Metrics:         d.metrics,
		TrustedPackages: cfg.TrustedPackages,
		HostVersion:     cfg.HostVersion,
	})
	if err != nil {
		store.Close()
		d.shutdownTracing()
		return nil, fmt.Errorf("failed to create host: %w", err)
	}
	d.host = h
	d.loader = builtin.NewLoader(h, log.GetZerolog())
	d.lifecycle = NewLifecycleManager(d)

	return d, nil
}

// Start installs and launches every plugin, runs the boot items and starts
// the locale watcher and metrics endpoint
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	ctx := tracing.WithTraceID(context.Background(), tracing.NewTraceID())
	logger := d.logger.GetZerolog().With().Str("trace_id", tracing.GetTraceID(ctx)).Logger()
	logger.Info().Str("version", d.host.Version()).Msg("Starting phobos host")

	if err := d.lifecycle.Start(); err != nil {
		d.setStopped()
		return fmt.Errorf("failed to start lifecycle manager: %w", err)
	}

	if d.config.Metrics.Enabled {
		if err := d.startMetricsServer(); err != nil {
			d.lifecycle.Stop()
			d.setStopped()
			return err
		}
	}

	if d.config.LocalesDir != "" {
		w, err := i18n.NewWatcher(d.catalog, d.config.LocalesDir, d.logger.GetZerolog(), d.onCatalogReload)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to watch locale catalogs")
		} else {
			d.watcher = w
		}
	}

	if err := d.loader.InstallBuiltins(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to install built-in plugins")
	}

	if _, err := d.loader.LoadManifests(ctx, d.config.ManifestDirs); err != nil {
		logger.Warn().Err(err).Msg("Some plugins were not installed")
	}

	// secrets of installed plugins must never reach the log
	for _, meta := range d.host.Registry().Metadata() {
		d.logger.RedactSecret(meta.Secret)
		d.logger.RedactSecret(meta.DatabaseKey)
	}

	if err := d.host.LaunchAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("Some plugins failed to launch")
	}

	ran, err := d.host.RunBootItems(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Some boot items failed")
	}

	logger.Info().
		Int("plugins", d.host.Registry().Count()).
		Int("boot_items", ran).
		Msg("Host started")

	return nil
}

// Stop closes every plugin and releases the host's resources
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not running")
	}
	d.running = false
	d.mu.Unlock()

	ctx := tracing.WithTraceID(context.Background(), tracing.NewTraceID())
	logger := d.logger.GetZerolog().With().Str("trace_id", tracing.GetTraceID(ctx)).Logger()
	logger.Info().Msg("Stopping phobos host")

	if err := d.host.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to close some plugins")
	}

	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop locale watcher")
		}
		d.watcher = nil
	}

	if d.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to stop metrics server")
		}
		cancel()
		d.metricsServer = nil
	}

	if err := d.store.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close store")
	}

	d.shutdownTracing()

	if err := observability.GetAuditLogger().Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close audit logger")
	}

	if err := d.lifecycle.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop lifecycle manager")
	}

	logger.Info().Msg("Host stopped")

	return nil
}

// Status returns the daemon status
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running: d.running,
		Plugins: d.host.Registry().Count(),
	}

	if d.running {
		status.Uptime = time.Since(d.startTime)
		status.StartTime = d.startTime
	}

	return status
}

// Wait blocks until SIGINT or SIGTERM and then stops the daemon
func (d *Daemon) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	d.logger.Info().Str("signal", sig.String()).Msg("Received signal")

	if err := d.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop daemon")
	}
}

// Host returns the plugin host
func (d *Daemon) Host() *host.Host {
	return d.host
}

// MetricsAddr returns the address the metrics endpoint listens on, empty
// when it is not running
func (d *Daemon) MetricsAddr() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metricsAddr
}

func (d *Daemon) setStopped() {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
}

func (d *Daemon) startMetricsServer() error {
	ln, err := net.Listen("tcp", d.config.Metrics.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics on %s: %w", d.config.Metrics.Listen, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", d.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	d.metricsServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	d.mu.Lock()
	d.metricsAddr = ln.Addr().String()
	d.mu.Unlock()

	d.logger.Info().Str("addr", d.metricsAddr).Msg("Metrics endpoint started")

	server := d.metricsServer
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			d.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()

	return nil
}

func (d *Daemon) onCatalogReload(keys int, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		d.logger.Warn().Err(err).Msg("Locale catalog reload failed")
	} else {
		d.logger.Info().Int("keys", keys).Msg("Locale catalogs reloaded")
	}
	d.metrics.LocaleReloadsTotal.WithLabelValues(status).Inc()
}

func (d *Daemon) shutdownTracing() {
	if !d.tracingEnabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.ShutdownOpenTelemetry(ctx); err != nil {
		d.logger.Error().Err(err).Msg("Failed to shutdown tracing")
	}
	d.tracingEnabled = false
}
