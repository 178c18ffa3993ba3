package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Base implements the host bridge for one plugin instance. Concrete plugins
// embed it and override the lifecycle methods they care about.
type Base struct {
	meta   PluginMetadata
	logger zerolog.Logger

	mu        sync.RWMutex
	handlers  *Handlers
	state     PluginState
	listeners []EventListener

	subs *SubscriptionRegistry
}

// NewBase creates a bridge for the plugin described by meta
func NewBase(meta PluginMetadata, logger zerolog.Logger) *Base {
	meta.FillDefaults()
	return &Base{
		meta:   meta,
		logger: logger.With().Str("component", "plugin").Str("plugin", meta.PackageName).Logger(),
		state:  StateCreated,
		subs:   NewSubscriptionRegistry(),
	}
}

// Metadata returns the plugin's static identity
func (b *Base) Metadata() PluginMetadata {
	return b.meta
}

// Logger returns the plugin's local logger
func (b *Base) Logger() zerolog.Logger {
	return b.logger
}

// State returns the current lifecycle state
func (b *Base) State() PluginState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Base) setState(s PluginState) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// SetHandlers binds the host's capability table. It may be called once.
func (b *Base) SetHandlers(h *Handlers) error {
	if h == nil {
		return ErrNilHandlers
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers != nil {
		return ErrHandlersAlreadyBound
	}
	b.handlers = h

	b.logger.Debug().
		Int("capabilities", len(h.Supported())).
		Msg("Handlers bound")
	return nil
}

func (b *Base) boundHandlers() *Handlers {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handlers
}

func (b *Base) callerContext() CallerContext {
	return BuildContext(b.meta)
}

// Subscriptions returns the instance's subscription registry
func (b *Base) Subscriptions() *SubscriptionRegistry {
	return b.subs
}

// OnEvent registers a local listener for every event delivered to the plugin
func (b *Base) OnEvent(listener EventListener) {
	if listener == nil {
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, listener)
	b.mu.Unlock()
}

// Request sends a command to the host. callback, when given, receives the
// same envelope that is returned.
func (b *Base) Request(ctx context.Context, command string, callback func(RequestResult), args ...Value) (RequestResult, error) {
	var (
		res RequestResult
		err error
	)

	h := b.boundHandlers()
	if h == nil || h.Request == nil {
		res = Failure(notSetMessage(CapRequest))
	} else {
		res, err = h.Request(ctx, b.callerContext(), command, args)
		if err != nil {
			res = FailureFrom(err)
		}
	}

	if callback != nil {
		callback(res)
	}
	return res, err
}

// RequestAsync runs Request on its own goroutine and delivers the outcome on
// the returned channel.
func (b *Base) RequestAsync(ctx context.Context, command string, args ...Value) <-chan RequestOutcome {
	out := make(chan RequestOutcome, 1)
	go func() {
		defer close(out)
		res, err := b.Request(ctx, command, nil, args...)
		out <- RequestOutcome{Result: res, Err: err}
	}()
	return out
}

// RequestPhobos sends a request addressed to the host itself
func (b *Base) RequestPhobos(ctx context.Context, args ...Value) (RequestResult, error) {
	h := b.boundHandlers()
	if h == nil || h.RequestPhobos == nil {
		return Failure(notSetMessage(CapRequestPhobos)), nil
	}
	return h.RequestPhobos(ctx, b.callerContext(), args)
}

// Link registers a protocol association
func (b *Base) Link(ctx context.Context, association LinkAssociation) (RequestResult, error) {
	h := b.boundHandlers()
	if h == nil || h.Link == nil {
		return Failure(notSetMessage(CapLink)), nil
	}
	return h.Link(ctx, b.callerContext(), association)
}

// LinkDefault makes the plugin the default handler for protocol
func (b *Base) LinkDefault(ctx context.Context, protocol string) (RequestResult, error) {
	h := b.boundHandlers()
	if h == nil || h.LinkDefault == nil {
		return Failure(notSetMessage(CapLinkDefault)), nil
	}
	return h.LinkDefault(ctx, b.callerContext(), protocol)
}

// ReadConfig reads key from targetPackage's configuration, or from the
// plugin's own when targetPackage is empty.
func (b *Base) ReadConfig(ctx context.Context, key, targetPackage string) (ConfigResult, error) {
	h := b.boundHandlers()
	if h == nil || h.ReadConfig == nil {
		return ConfigResult{Key: key, Message: notSetMessage(CapReadConfig)}, nil
	}
	if targetPackage == "" {
		targetPackage = b.meta.PackageName
	}
	return h.ReadConfig(ctx, b.callerContext(), key, targetPackage)
}

// WriteConfig writes key in targetPackage's configuration, or in the
// plugin's own when targetPackage is empty.
func (b *Base) WriteConfig(ctx context.Context, key, value, targetPackage string) (ConfigResult, error) {
	h := b.boundHandlers()
	if h == nil || h.WriteConfig == nil {
		return ConfigResult{Key: key, Value: value, Message: notSetMessage(CapWriteConfig)}, nil
	}
	if targetPackage == "" {
		targetPackage = b.meta.PackageName
	}
	return h.WriteConfig(ctx, b.callerContext(), key, value, targetPackage)
}

// ReadSysConfig reads key from the host's system configuration
func (b *Base) ReadSysConfig(ctx context.Context, key string) (ConfigResult, error) {
	h := b.boundHandlers()
	if h == nil || h.ReadSysConfig == nil {
		return ConfigResult{Key: key, Message: notSetMessage(CapReadSysConfig)}, nil
	}
	return h.ReadSysConfig(ctx, b.callerContext(), key)
}

// WriteSysConfig writes key in the host's system configuration. Hosts
// usually require trust for it.
func (b *Base) WriteSysConfig(ctx context.Context, key, value string) (ConfigResult, error) {
	h := b.boundHandlers()
	if h == nil || h.WriteSysConfig == nil {
		return ConfigResult{Key: key, Value: value, Message: notSetMessage(CapWriteSysConfig)}, nil
	}
	return h.WriteSysConfig(ctx, b.callerContext(), key, value)
}

// BootWithPhobos registers command to run when the host starts
func (b *Base) BootWithPhobos(ctx context.Context, command string, priority int, args ...Value) (BootResult, error) {
	h := b.boundHandlers()
	if h == nil || h.BootWithPhobos == nil {
		return BootResult{Message: notSetMessage(CapBootWithPhobos)}, nil
	}
	return h.BootWithPhobos(ctx, b.callerContext(), command, priority, args)
}

// RemoveBootWithPhobos removes the boot item registered under uuid
func (b *Base) RemoveBootWithPhobos(ctx context.Context, uuid string) (BootResult, error) {
	h := b.boundHandlers()
	if h == nil || h.RemoveBootWithPhobos == nil {
		return BootResult{UUID: uuid, Message: notSetMessage(CapRemoveBootWithPhobos)}, nil
	}
	return h.RemoveBootWithPhobos(ctx, b.callerContext(), uuid)
}

// GetBootItems lists the plugin's boot items
func (b *Base) GetBootItems(ctx context.Context) (RequestResult, error) {
	h := b.boundHandlers()
	if h == nil || h.GetBootItems == nil {
		return Failure(notSetMessage(CapGetBootItems)), nil
	}
	return h.GetBootItems(ctx, b.callerContext())
}

// Subscribe asks the host for events of category/name. The pair is recorded
// only when the host reports success.
func (b *Base) Subscribe(ctx context.Context, category, name string, args ...Value) (RequestResult, error) {
	h := b.boundHandlers()
	if h == nil || h.Subscribe == nil {
		return Failure(notSetMessage(CapSubscribe)), nil
	}

	res, err := h.Subscribe(ctx, b.callerContext(), category, name, args)
	if err == nil && res.Success {
		b.subs.Add(Subscription{Category: category, Name: name})
	}
	return res, err
}

// Unsubscribe cancels a subscription. The pair is forgotten only when the
// host reports success.
func (b *Base) Unsubscribe(ctx context.Context, category, name string, args ...Value) (RequestResult, error) {
	h := b.boundHandlers()
	if h == nil || h.Unsubscribe == nil {
		return Failure(notSetMessage(CapUnsubscribe)), nil
	}

	res, err := h.Unsubscribe(ctx, b.callerContext(), category, name, args)
	if err == nil && res.Success {
		b.subs.Remove(Subscription{Category: category, Name: name})
	}
	return res, err
}

// GetMergedDictionaries returns the host's current theme resources
func (b *Base) GetMergedDictionaries(ctx context.Context) (ThemeResult, error) {
	h := b.boundHandlers()
	if h == nil || h.GetMergedDictionaries == nil {
		return ThemeResult{Message: notSetMessage(CapGetMergedDictionaries)}, nil
	}
	return h.GetMergedDictionaries(ctx, b.callerContext())
}

// Log sends a log entry to the host. Without a Log handler the entry goes to
// the plugin's local logger.
func (b *Base) Log(ctx context.Context, level LogLevel, message string, err error, args ...Value) (RequestResult, error) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Source:    b.meta.PackageName,
		Message:   message,
		Err:       err,
		Args:      args,
	}

	h := b.boundHandlers()
	if h == nil || h.Log == nil {
		b.localLog(entry)
		return Failure(notSetMessage(CapLog)), nil
	}
	return h.Log(ctx, b.callerContext(), entry)
}

func (b *Base) localLog(entry LogEntry) {
	var ev *zerolog.Event
	switch entry.Level {
	case LogDebug:
		ev = b.logger.Debug()
	case LogInfo:
		ev = b.logger.Info()
	case LogWarning:
		ev = b.logger.Warn()
	case LogError:
		ev = b.logger.Error()
	default:
		ev = b.logger.Error().Bool("critical", true)
	}
	if entry.Err != nil {
		ev = ev.Err(entry.Err)
	}
	if len(entry.Args) > 0 {
		ev = ev.Interface("args", Interfaces(entry.Args))
	}
	ev.Msg(entry.Message)
}

// LogDebug logs message at LogDebug
func (b *Base) LogDebug(ctx context.Context, message string, args ...Value) (RequestResult, error) {
	return b.Log(ctx, LogDebug, message, nil, args...)
}

// LogInfo logs message at LogInfo
func (b *Base) LogInfo(ctx context.Context, message string, args ...Value) (RequestResult, error) {
	return b.Log(ctx, LogInfo, message, nil, args...)
}

// LogWarning logs message at LogWarning
func (b *Base) LogWarning(ctx context.Context, message string, args ...Value) (RequestResult, error) {
	return b.Log(ctx, LogWarning, message, nil, args...)
}

// LogError logs message and err at LogError
func (b *Base) LogError(ctx context.Context, message string, err error, args ...Value) (RequestResult, error) {
	return b.Log(ctx, LogError, message, err, args...)
}

// LogCritical logs message and err at LogCritical
func (b *Base) LogCritical(ctx context.Context, message string, err error, args ...Value) (RequestResult, error) {
	return b.Log(ctx, LogCritical, message, err, args...)
}

// OnInstall is called once after the host installs the plugin
func (b *Base) OnInstall(ctx context.Context, args ...Value) (RequestResult, error) {
	return Succeeded("Installed successfully"), nil
}

// OnLaunch is called when the host starts the plugin
func (b *Base) OnLaunch(ctx context.Context, args ...Value) (RequestResult, error) {
	b.setState(StateActive)
	return Succeeded("Launched successfully"), nil
}

// OnClosing releases every subscription before the host stops the plugin
func (b *Base) OnClosing(ctx context.Context, args ...Value) (RequestResult, error) {
	b.setState(StateClosing)
	b.drainSubscriptions(ctx)
	b.setState(StateTerminal)
	return Succeeded("Closing"), nil
}

// OnUninstall releases every subscription before the plugin is removed
func (b *Base) OnUninstall(ctx context.Context, args ...Value) (RequestResult, error) {
	b.setState(StateClosing)
	b.drainSubscriptions(ctx)
	b.setState(StateTerminal)
	return Succeeded("Uninstalled successfully"), nil
}

// OnUpdate is called after the host replaced the plugin's files
func (b *Base) OnUpdate(ctx context.Context, oldVersion, newVersion string, args ...Value) (RequestResult, error) {
	return Succeeded(fmt.Sprintf("Updated from %s to %s", oldVersion, newVersion)), nil
}

// Run is the plugin's entry point for direct invocation
func (b *Base) Run(ctx context.Context, args ...Value) (RequestResult, error) {
	return Succeeded("Run completed"), nil
}

// OnEventReceived hands the event to every local listener. No filtering
// against the subscription registry takes place.
func (b *Base) OnEventReceived(ctx context.Context, category, name string, args ...Value) error {
	b.mu.RLock()
	listeners := make([]EventListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	ev := Event{Category: category, Name: name, Args: args}
	for _, l := range listeners {
		l(ev)
	}
	return nil
}

// drainSubscriptions unsubscribes every recorded pair through the host and
// then clears the registry. Per-pair failures are logged and dropped, so the
// registry is emptied even when the host still holds some of the pairs.
func (b *Base) drainSubscriptions(ctx context.Context) {
	snapshot := b.subs.Snapshot()
	h := b.boundHandlers()

	if h != nil && h.Unsubscribe != nil {
		caller := b.callerContext()
		for _, s := range snapshot {
			b.safeUnsubscribe(ctx, h.Unsubscribe, caller, s)
		}
	}

	b.subs.Clear()
	b.logger.Debug().Int("subscriptions", len(snapshot)).Msg("Subscriptions drained")
}

func (b *Base) safeUnsubscribe(ctx context.Context, fn SubscriptionFunc, caller CallerContext, s Subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn().
				Str("category", s.Category).
				Str("name", s.Name).
				Interface("panic", r).
				Msg("Unsubscribe panicked during drain")
		}
	}()

	res, err := fn(ctx, caller, s.Category, s.Name, nil)
	if err != nil {
		b.logger.Warn().Err(err).Str("category", s.Category).Str("name", s.Name).Msg("Unsubscribe failed during drain")
		return
	}
	if !res.Success {
		b.logger.Debug().Str("category", s.Category).Str("name", s.Name).Str("message", res.Message).Msg("Unsubscribe rejected during drain")
	}
}

var _ Plugin = (*Base)(nil)
