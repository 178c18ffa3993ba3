package host

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/harun/phobos/internal/metrics"
	"github.com/harun/phobos/internal/observability"
	"github.com/harun/phobos/internal/tracing"
	"github.com/harun/phobos/pkg/plugin"
)

// Lifecycle stages used in metrics and the audit log
const (
	StageInstall   = "install"
	StageLaunch    = "launch"
	StageClose     = "close"
	StageUninstall = "uninstall"
	StageUpdate    = "update"
	StageRun       = "run"
)

// Install validates p, checks its dependencies against the installed
// plugins, binds its handler table and calls OnInstall.
func (h *Host) Install(ctx context.Context, p plugin.Plugin, args ...plugin.Value) (err error) {
	meta := p.Metadata()
	pkg := meta.PackageName

	ctx, span := tracing.StartSpan(ctx, "host.Install", attribute.String("plugin.package", pkg))
	defer func() { tracing.EndSpan(span, err) }()

	if err := plugin.ValidateMetadata(&meta); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}

	if meta.MinHostVersion != "" {
		if err := plugin.CheckMinVersion(h.version, meta.MinHostVersion); err != nil {
			return fmt.Errorf("%s requires host %s: %w", pkg, meta.MinHostVersion, err)
		}
	}

	if _, exists := h.registry.Get(pkg); exists {
		return fmt.Errorf("%w: %s", plugin.ErrAlreadyRegistered, pkg)
	}

	graph := h.resolver.BuildDependencyGraph(append(h.registry.Metadata(), &meta))
	if cycles := h.resolver.DetectCycles(graph); len(cycles) > 0 {
		return fmt.Errorf("%w: %v", plugin.ErrCyclicDependency, cycles)
	}
	if depErr := h.resolver.ValidateDependencies(graph)[pkg]; depErr != nil {
		return fmt.Errorf("dependencies of %s: %w", pkg, depErr)
	}

	if err := h.registry.Register(p); err != nil {
		return err
	}

	if err := p.SetHandlers(h.handlersFor(pkg)); err != nil {
		_ = h.registry.Remove(pkg)
		return fmt.Errorf("failed to bind handlers of %s: %w", pkg, err)
	}

	res, callErr := p.OnInstall(ctx, args...)
	if err := h.observeLifecycle(ctx, StageInstall, pkg, res, callErr); err != nil {
		_ = h.registry.Remove(pkg)
		return err
	}

	h.updatePluginGauge()
	h.logger.Info().
		Str("plugin", pkg).
		Str("version", meta.Version).
		Msg("Plugin installed")

	h.Publish(ctx, plugin.EventPlugin, plugin.EventInstalled, plugin.String(pkg))
	return nil
}

// Launch starts an installed plugin
func (h *Host) Launch(ctx context.Context, pkg string, args ...plugin.Value) error {
	record, ok := h.registry.Get(pkg)
	if !ok {
		return fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, pkg)
	}
	switch record.State {
	case plugin.StateActive:
		return nil
	case plugin.StateCreated:
	default:
		return fmt.Errorf("cannot launch %s in state %s", pkg, record.State)
	}

	res, callErr := record.Plugin.OnLaunch(ctx, args...)
	if err := h.observeLifecycle(ctx, StageLaunch, pkg, res, callErr); err != nil {
		_ = h.registry.RecordError(pkg, err)
		return err
	}
	if err := h.registry.UpdateState(pkg, plugin.StateActive); err != nil {
		return err
	}

	h.Publish(ctx, plugin.EventPlugin, plugin.EventEnabled, plugin.String(pkg))
	return nil
}

// LaunchAll starts every created plugin, dependencies first
func (h *Host) LaunchAll(ctx context.Context) error {
	order, err := h.loadOrder()
	if err != nil {
		return err
	}

	var errs []error
	for _, pkg := range order {
		record, ok := h.registry.Get(pkg)
		if !ok || record.State != plugin.StateCreated {
			continue
		}
		if err := h.Launch(ctx, pkg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops an active plugin. The plugin drains its own subscriptions; the
// host then drops whatever is left on its side.
func (h *Host) Close(ctx context.Context, pkg string) error {
	record, ok := h.registry.Get(pkg)
	if !ok {
		return fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, pkg)
	}
	if record.State == plugin.StateTerminal || record.State == plugin.StateClosing {
		return nil
	}

	_ = h.registry.UpdateState(pkg, plugin.StateClosing)
	res, callErr := record.Plugin.OnClosing(ctx)
	err := h.observeLifecycle(ctx, StageClose, pkg, res, callErr)
	if err != nil {
		_ = h.registry.RecordError(pkg, err)
	}

	h.bus.UnsubscribeAll(pkg)
	h.updateSubscriptionGauge()
	_ = h.registry.UpdateState(pkg, plugin.StateTerminal)

	h.Publish(ctx, plugin.EventPlugin, plugin.EventDisabled, plugin.String(pkg))
	return err
}

// Uninstall removes a plugin and everything the host stored for it. The
// uninstall commands of the plugin run through the command router.
func (h *Host) Uninstall(ctx context.Context, pkg string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "host.Uninstall", attribute.String("plugin.package", pkg))
	defer func() { tracing.EndSpan(span, err) }()

	record, ok := h.registry.Get(pkg)
	if !ok {
		return fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, pkg)
	}
	meta := record.Metadata

	if !meta.Uninstallable() {
		observability.RecordLifecycleAudit(ctx, StageUninstall, pkg, metrics.StatusDenied, nil)
		return fmt.Errorf("%w: %s", plugin.ErrUninstallNotAllowed, pkg)
	}

	if required := h.requiredBy(pkg); len(required) > 0 {
		return fmt.Errorf("cannot uninstall %s: required by %v", pkg, required)
	}

	caller := plugin.BuildContext(meta).WithTrust(h.isTrusted(pkg))

	if info := meta.UninstallInfo; info != nil && info.PreUninstallCommand != "" {
		res, cmdErr := h.router.Handle(ctx, caller, info.PreUninstallCommand, nil)
		if cmdErr == nil && !res.Success {
			cmdErr = errors.New(res.Message)
		}
		if cmdErr != nil {
			return fmt.Errorf("pre-uninstall command of %s failed: %w", pkg, cmdErr)
		}
	}

	_ = h.registry.UpdateState(pkg, plugin.StateClosing)
	res, callErr := record.Plugin.OnUninstall(ctx)
	if lcErr := h.observeLifecycle(ctx, StageUninstall, pkg, res, callErr); lcErr != nil {
		h.logger.Warn().Err(lcErr).Str("plugin", pkg).Msg("OnUninstall failed, removing anyway")
	}

	h.bus.UnsubscribeAll(pkg)
	h.updateSubscriptionGauge()
	h.links.RemovePackage(pkg)
	h.router.UnregisterOwner(pkg)

	var cleanup []error
	if err := h.store.DeleteConfig(ctx, pkg); err != nil {
		cleanup = append(cleanup, err)
	}
	if err := h.store.DeleteBootItems(ctx, pkg); err != nil {
		cleanup = append(cleanup, err)
	}
	if err := h.registry.Remove(pkg); err != nil {
		cleanup = append(cleanup, err)
	}
	h.updatePluginGauge()

	if info := meta.UninstallInfo; info != nil && info.PostUninstallCommand != "" {
		res, cmdErr := h.router.Handle(ctx, caller, info.PostUninstallCommand, nil)
		if cmdErr != nil || !res.Success {
			h.logger.Warn().
				Err(cmdErr).
				Str("plugin", pkg).
				Str("command", info.PostUninstallCommand).
				Str("message", res.Message).
				Msg("Post-uninstall command failed")
		}
	}

	h.logger.Info().Str("plugin", pkg).Msg("Plugin uninstalled")
	h.Publish(ctx, plugin.EventPlugin, plugin.EventUninstalled, plugin.String(pkg))

	return errors.Join(cleanup...)
}

// Update replaces the metadata of an installed plugin and calls OnUpdate.
// Versions may not go backwards, and plugins depending on pkg must still be
// satisfied by the new version.
func (h *Host) Update(ctx context.Context, pkg string, newMeta plugin.PluginMetadata, args ...plugin.Value) error {
	record, ok := h.registry.Get(pkg)
	if !ok {
		return fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, pkg)
	}
	if newMeta.PackageName != pkg {
		return fmt.Errorf("update of %s carries package name %s", pkg, newMeta.PackageName)
	}
	if newMeta.Version == "" {
		newMeta.Version = plugin.DefaultVersion
	}
	if err := plugin.ValidateMetadata(&newMeta); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}
	if newMeta.MinHostVersion != "" {
		if err := plugin.CheckMinVersion(h.version, newMeta.MinHostVersion); err != nil {
			return fmt.Errorf("%s requires host %s: %w", pkg, newMeta.MinHostVersion, err)
		}
	}

	oldVersion := record.Metadata.Version
	if err := plugin.CheckMinVersion(newMeta.Version, oldVersion); err != nil {
		return fmt.Errorf("cannot downgrade %s: %w", pkg, err)
	}

	nodes := h.registry.Metadata()
	for i, m := range nodes {
		if m.PackageName == pkg {
			nodes[i] = &newMeta
		}
	}
	if errs := h.resolver.ValidateDependencies(h.resolver.BuildDependencyGraph(nodes)); len(errs) > 0 {
		var all []error
		for name, e := range errs {
			all = append(all, fmt.Errorf("%s: %w", name, e))
		}
		return fmt.Errorf("update of %s breaks dependencies: %w", pkg, errors.Join(all...))
	}

	res, callErr := record.Plugin.OnUpdate(ctx, oldVersion, newMeta.Version, args...)
	if err := h.observeLifecycle(ctx, StageUpdate, pkg, res, callErr); err != nil {
		_ = h.registry.RecordError(pkg, err)
		return err
	}

	return h.registry.RecordUpdate(pkg, newMeta)
}

// Run invokes an active plugin directly
func (h *Host) Run(ctx context.Context, pkg string, args ...plugin.Value) (plugin.RequestResult, error) {
	record, ok := h.registry.Get(pkg)
	if !ok {
		return plugin.RequestResult{}, fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, pkg)
	}
	if record.State != plugin.StateActive {
		return plugin.Failure(fmt.Sprintf("plugin %s is not active", pkg)), nil
	}

	ctx = tracing.PropagateToPlugin(ctx, pkg)
	res, err := record.Plugin.Run(ctx, args...)
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	} else if !res.Success {
		status = metrics.StatusFailure
	}
	h.metrics.ObserveLifecycle(StageRun, status)
	return res, err
}

// RunBootItems runs every stored boot item whose plugin is installed,
// highest priority first, and returns how many succeeded.
func (h *Host) RunBootItems(ctx context.Context) (int, error) {
	items, err := h.store.ListBootItems(ctx, "")
	if err != nil {
		return 0, err
	}

	succeeded := 0
	var errs []error
	for _, item := range items {
		record, ok := h.registry.Get(item.PackageName)
		if !ok {
			h.logger.Debug().
				Str("plugin", item.PackageName).
				Str("uuid", item.UUID).
				Msg("Skipping boot item of missing plugin")
			continue
		}

		caller := plugin.BuildContext(record.Metadata).WithTrust(h.isTrusted(item.PackageName))
		bctx := tracing.NewCallContext(ctx, item.PackageName, "Boot")
		res, err := h.router.Handle(bctx, caller, item.Command, item.Args)

		status := metrics.StatusSuccess
		switch {
		case err != nil:
			status = metrics.StatusError
			errs = append(errs, fmt.Errorf("boot item %s of %s: %w", item.UUID, item.PackageName, err))
		case !res.Success:
			status = metrics.StatusFailure
			h.logger.Warn().
				Str("plugin", item.PackageName).
				Str("command", item.Command).
				Str("message", res.Message).
				Msg("Boot item failed")
		default:
			succeeded++
		}
		if h.metrics != nil {
			h.metrics.BootItemsRunTotal.WithLabelValues(status).Inc()
		}
	}

	return succeeded, errors.Join(errs...)
}

// Shutdown announces the shutdown and closes every plugin, dependents first
func (h *Host) Shutdown(ctx context.Context) error {
	h.Publish(ctx, plugin.EventSystem, plugin.EventShutdown)

	order, err := h.loadOrder()
	if err != nil {
		order = h.installedPackages()
	}

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		record, ok := h.registry.Get(order[i])
		if !ok || record.State != plugin.StateActive {
			continue
		}
		if err := h.Close(ctx, order[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Host) loadOrder() ([]string, error) {
	return h.resolver.TopologicalSort(h.resolver.BuildDependencyGraph(h.registry.Metadata()))
}

// requiredBy lists installed plugins with a non-optional dependency on pkg
func (h *Host) requiredBy(pkg string) []string {
	graph := h.resolver.BuildDependencyGraph(h.registry.Metadata())
	var out []string
	for _, name := range h.resolver.GetDependents(graph, pkg) {
		for _, dep := range graph.Edges[name] {
			if dep.PackageName == pkg && !dep.IsOptional {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// observeLifecycle records a lifecycle callback and turns a failed envelope
// into an error
func (h *Host) observeLifecycle(ctx context.Context, stage, pkg string, res plugin.RequestResult, err error) error {
	status := metrics.StatusSuccess
	if err == nil && !res.Success {
		err = fmt.Errorf("%s of %s failed: %s", stage, pkg, res.Message)
		status = metrics.StatusFailure
	} else if err != nil {
		err = fmt.Errorf("%s of %s: %w", stage, pkg, err)
		status = metrics.StatusError
	}

	h.metrics.ObserveLifecycle(stage, status)
	if stage != StageLaunch && stage != StageClose {
		observability.RecordLifecycleAudit(ctx, stage, pkg, status, map[string]interface{}{
			"message": res.Message,
		})
	}

	logger := tracing.PropagateToLogger(ctx, h.logger)
	if err != nil {
		logger.Error().Err(err).Str("plugin", pkg).Str("stage", stage).Msg("Lifecycle callback failed")
	} else {
		logger.Debug().Str("plugin", pkg).Str("stage", stage).Str("message", res.Message).Msg("Lifecycle callback")
	}
	return err
}

func (h *Host) updatePluginGauge() {
	if h.metrics != nil {
		h.metrics.PluginsLoaded.Set(float64(len(h.registry.GetAll())))
	}
}
