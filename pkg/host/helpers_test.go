package host

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/harun/phobos/internal/metrics"
	"github.com/harun/phobos/internal/observability"
	"github.com/harun/phobos/pkg/plugin"
)

func TestMain(m *testing.M) {
	observability.SetAuditLogger(observability.NewAuditLogger(io.Discard))
	os.Exit(m.Run())
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).Level(zerolog.Disabled)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestHostWith(t *testing.T, opts Options) *Host {
	t.Helper()
	if opts.Store == nil {
		opts.Store = newTestStore(t)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics()
	}
	h, err := New(opts)
	require.NoError(t, err)
	return h
}

func newTestHost(t *testing.T, trusted ...string) *Host {
	return newTestHostWith(t, Options{Logger: testLogger(), TrustedPackages: trusted})
}

// testPlugin records what the host did to it
type testPlugin struct {
	*plugin.Base

	mu       sync.Mutex
	events   []plugin.Event
	runArgs  [][]plugin.Value
	launched *[]string
}

func newTestPlugin(pkg string, deps ...plugin.PluginDependency) *testPlugin {
	return newTestPluginMeta(plugin.PluginMetadata{
		Name:         pkg,
		PackageName:  pkg,
		Version:      "1.0.0",
		Dependencies: deps,
	})
}

func newTestPluginMeta(meta plugin.PluginMetadata) *testPlugin {
	p := &testPlugin{Base: plugin.NewBase(meta, testLogger())}
	p.OnEvent(func(e plugin.Event) {
		p.mu.Lock()
		p.events = append(p.events, e)
		p.mu.Unlock()
	})
	return p
}

func (p *testPlugin) OnLaunch(ctx context.Context, args ...plugin.Value) (plugin.RequestResult, error) {
	if p.launched != nil {
		*p.launched = append(*p.launched, p.Metadata().PackageName)
	}
	return p.Base.OnLaunch(ctx, args...)
}

func (p *testPlugin) Run(ctx context.Context, args ...plugin.Value) (plugin.RequestResult, error) {
	p.mu.Lock()
	p.runArgs = append(p.runArgs, args)
	p.mu.Unlock()
	return plugin.Succeeded("ran "+p.Metadata().PackageName, args...), nil
}

func (p *testPlugin) receivedEvents() []plugin.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]plugin.Event(nil), p.events...)
}

func dep(pkg, minVersion string, optional bool) plugin.PluginDependency {
	return plugin.PluginDependency{PackageName: pkg, MinVersion: minVersion, IsOptional: optional}
}

func installAndLaunch(t *testing.T, h *Host, plugins ...*testPlugin) {
	t.Helper()
	ctx := context.Background()
	for _, p := range plugins {
		require.NoError(t, h.Install(ctx, p))
		require.NoError(t, h.Launch(ctx, p.Metadata().PackageName))
	}
}

// counterValue sums the samples of a metric family whose labels include
// every pair in labels
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}
