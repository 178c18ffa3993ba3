package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harun/phobos/internal/metrics"
	"github.com/harun/phobos/internal/observability"
	"github.com/harun/phobos/internal/tracing"
	"github.com/harun/phobos/pkg/i18n"
	"github.com/harun/phobos/pkg/plugin"
)

// DefaultVersion is the host version used when Options leaves it empty
const DefaultVersion = "1.0.0"

// Options configures a Host
type Options struct {
	Logger zerolog.Logger

	// Store is required
	Store *Store

	// Catalog defaults to an en-US catalog
	Catalog *i18n.Catalog

	// Metrics may be nil
	Metrics *metrics.Metrics

	TrustedPackages []string
	HostVersion     string

	// Theme seeds the resource dictionary, DefaultTheme when nil
	Theme plugin.ResourceDictionary
}

// Host is the reference in-process host. It owns the plugins it installs and
// builds one handler table per plugin.
type Host struct {
	logger   zerolog.Logger
	version  string
	store    *Store
	catalog  *i18n.Catalog
	metrics  *metrics.Metrics
	trust    *TrustPolicy
	registry *plugin.PluginRegistry
	resolver *plugin.DependencyResolver
	bus      *EventBus
	links    *LinkRegistry
	router   *CommandRouter
	theme    *ThemeResources
}

// New creates a host
func New(opts Options) (*Host, error) {
	if opts.Store == nil {
		return nil, errors.New("host store is required")
	}

	version := opts.HostVersion
	if version == "" {
		version = DefaultVersion
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = i18n.NewCatalog(i18n.DefaultLanguage)
	}

	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}

	logger := opts.Logger.With().Str("component", "host").Logger()

	h := &Host{
		logger:   logger,
		version:  version,
		store:    opts.Store,
		catalog:  catalog,
		metrics:  opts.Metrics,
		trust:    NewTrustPolicy(opts.TrustedPackages...),
		registry: plugin.NewPluginRegistry(),
		resolver: plugin.NewDependencyResolver(logger),
		bus:      NewEventBus(),
		links:    NewLinkRegistry(),
		router:   NewCommandRouter(),
		theme:    NewThemeResources(),
	}
	h.theme.Merge(theme)

	if err := h.registerBuiltinCommands(); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *Host) Version() string                  { return h.version }
func (h *Host) Catalog() *i18n.Catalog           { return h.catalog }
func (h *Host) Trust() *TrustPolicy              { return h.trust }
func (h *Host) Registry() *plugin.PluginRegistry { return h.registry }
func (h *Host) Links() *LinkRegistry             { return h.links }
func (h *Host) Router() *CommandRouter           { return h.router }
func (h *Host) Events() *EventBus                { return h.bus }
func (h *Host) Theme() *ThemeResources           { return h.theme }
func (h *Host) Store() *Store                    { return h.store }

// Language returns the host's current language
func (h *Host) Language() string {
	return h.catalog.Language()
}

// SetLanguage switches the host language and notifies subscribers
func (h *Host) SetLanguage(ctx context.Context, lang string) {
	if lang == "" || lang == h.catalog.Language() {
		return
	}
	h.catalog.SetLanguage(lang)
	h.Publish(ctx, plugin.EventLanguage, plugin.EventChanged, plugin.String(lang))
}

// SetTheme merges resources into the theme and notifies subscribers
func (h *Host) SetTheme(ctx context.Context, resources plugin.ResourceDictionary) {
	h.theme.Merge(resources)
	h.Publish(ctx, plugin.EventTheme, plugin.EventChanged)
}

// RegisterCommand exposes a command to every plugin's Request. owner is the
// providing package; its commands are dropped when it is uninstalled.
func (h *Host) RegisterCommand(command, owner string, handler CommandHandler) error {
	return h.router.Register(command, owner, handler)
}

// Publish delivers an event to every active plugin subscribed to it and
// returns the number of plugins reached. Delivery errors are logged and
// recorded against the plugin.
func (h *Host) Publish(ctx context.Context, category, name string, args ...plugin.Value) int {
	ctx, span := tracing.StartSpan(ctx, "host.Publish",
		attribute.String("event.category", category),
		attribute.String("event.name", name),
	)
	defer span.End()

	if h.metrics != nil {
		h.metrics.EventsPublishedTotal.WithLabelValues(category).Inc()
	}

	delivered := 0
	for _, pkg := range h.bus.Subscribers(plugin.Subscription{Category: category, Name: name}) {
		record, ok := h.registry.Get(pkg)
		if !ok || record.State != plugin.StateActive {
			continue
		}

		pctx := tracing.PropagateToPlugin(ctx, pkg)
		if err := record.Plugin.OnEventReceived(pctx, category, name, args...); err != nil {
			logger := tracing.PropagateToLogger(pctx, h.logger)
			logger.Warn().
				Err(err).
				Str("category", category).
				Str("event", name).
				Msg("Event delivery failed")
			_ = h.registry.RecordError(pkg, err)
			continue
		}
		delivered++
	}

	h.logger.Debug().
		Str("category", category).
		Str("event", name).
		Int("delivered", delivered).
		Msg("Event published")

	return delivered
}

// isTrusted is the host's own trust decision for pkg
func (h *Host) isTrusted(pkg string) bool {
	if h.trust.IsTrusted(pkg) {
		return true
	}
	record, ok := h.registry.Get(pkg)
	return ok && record.Metadata.IsSystemPlugin
}

// callerFor reconstructs the caller for a handler table bound to pkg. The
// incoming context must name the bound package; its trust flag is replaced.
func (h *Host) callerFor(pkg string, caller plugin.CallerContext) (plugin.CallerContext, error) {
	if caller.PackageName() != pkg {
		return caller, fmt.Errorf("%w: handlers of %s called as %s", plugin.ErrAccessDenied, pkg, caller.PackageName())
	}
	return caller.WithTrust(h.isTrusted(pkg)), nil
}

// dispatch wraps one capability call with tracing, metrics and audit. ok
// reports whether the returned envelope is a success.
func dispatch[T any](
	h *Host,
	ctx context.Context,
	pkg string,
	capability plugin.Capability,
	caller plugin.CallerContext,
	ok func(T) bool,
	fn func(context.Context, plugin.CallerContext) (T, error),
) (T, error) {
	start := time.Now()
	name := capability.String()

	ctx = tracing.NewCallContext(ctx, pkg, name)
	ctx, span := tracing.StartSpan(ctx, "host."+name,
		attribute.String("plugin.package", pkg),
		attribute.String("call.id", tracing.GetCallID(ctx)),
	)

	var (
		res T
		err error
	)
	caller, err = h.callerFor(pkg, caller)
	if err == nil {
		res, err = fn(ctx, caller)
	}

	status := metrics.StatusSuccess
	switch {
	case errors.Is(err, plugin.ErrAccessDenied):
		status = metrics.StatusDenied
		observability.RecordSecurityAudit(ctx, name, pkg, "", metrics.StatusDenied, map[string]interface{}{
			"error": err.Error(),
		})
	case err != nil:
		status = metrics.StatusError
	case !ok(res):
		status = metrics.StatusFailure
	}

	h.metrics.ObserveCall(name, status, time.Since(start))
	tracing.EndSpan(span, err)

	logger := tracing.PropagateToLogger(ctx, h.logger)
	logger.Debug().
		Str("status", status).
		Dur("duration", time.Since(start)).
		Msg("Capability call")

	return res, err
}

func requestOK(r plugin.RequestResult) bool { return r.Success }
func configOK(r plugin.ConfigResult) bool   { return r.Success }
func bootOK(r plugin.BootResult) bool       { return r.Success }
func themeOK(r plugin.ThemeResult) bool     { return r.Success }

// installedPackages returns the installed package names, sorted
func (h *Host) installedPackages() []string {
	records := h.registry.GetAll()
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Metadata.PackageName)
	}
	sort.Strings(out)
	return out
}
