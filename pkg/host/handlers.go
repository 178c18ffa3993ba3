package host

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harun/phobos/internal/observability"
	"github.com/harun/phobos/internal/tracing"
	"github.com/harun/phobos/pkg/plugin"
)

// handlersFor builds the capability table bound to pkg. Every slot goes
// through dispatch, so identity and trust are decided here and not by the
// plugin.
func (h *Host) handlersFor(pkg string) *plugin.Handlers {
	return &plugin.Handlers{
		Request: func(ctx context.Context, caller plugin.CallerContext, command string, args []plugin.Value) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapRequest, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					return h.router.Handle(ctx, caller, command, args)
				})
		},

		RequestPhobos: func(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapRequestPhobos, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					return plugin.Succeeded("phobos", h.hostInfo()), nil
				})
		},

		Link: func(ctx context.Context, caller plugin.CallerContext, association plugin.LinkAssociation) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapLink, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					if association.PackageName == "" {
						association.PackageName = caller.PackageName()
					}
					if err := RequireScope(caller, association.PackageName); err != nil {
						return plugin.RequestResult{}, err
					}
					opt, err := h.links.Register(association, h.Language())
					if err != nil {
						return plugin.Failure(err.Error()), nil
					}
					return plugin.Succeeded("Link registered", plugin.String(opt.UUID), plugin.Bool(opt.IsDefault)), nil
				})
		},

		LinkDefault: func(ctx context.Context, caller plugin.CallerContext, protocol string) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapLinkDefault, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					if err := h.links.SetDefault(protocol, caller.PackageName()); err != nil {
						return plugin.Failure(err.Error()), nil
					}
					return plugin.Succeeded("Default handler set", plugin.String(protocol)), nil
				})
		},

		ReadConfig: func(ctx context.Context, caller plugin.CallerContext, key, targetPackage string) (plugin.ConfigResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapReadConfig, caller, configOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.ConfigResult, error) {
					if err := RequireScope(caller, targetPackage); err != nil {
						return plugin.ConfigResult{Key: key}, err
					}
					value, found, err := h.store.GetConfig(ctx, targetPackage, key)
					if err != nil {
						return plugin.ConfigResult{Key: key}, err
					}
					if !found {
						return plugin.ConfigResult{Key: key, Message: "config key not found"}, nil
					}
					return plugin.ConfigResult{Key: key, Value: value, Success: true}, nil
				})
		},

		WriteConfig: func(ctx context.Context, caller plugin.CallerContext, key, value, targetPackage string) (plugin.ConfigResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapWriteConfig, caller, configOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.ConfigResult, error) {
					if err := RequireScope(caller, targetPackage); err != nil {
						return plugin.ConfigResult{Key: key}, err
					}
					if err := h.store.SetConfig(ctx, targetPackage, key, value); err != nil {
						return plugin.ConfigResult{Key: key}, err
					}
					if targetPackage != caller.PackageName() {
						observability.RecordConfigAudit(ctx, "WriteConfig", caller.PackageName(), targetPackage+"/"+key, nil)
					}
					return plugin.ConfigResult{Key: key, Value: value, Success: true, Message: "Saved"}, nil
				})
		},

		ReadSysConfig: func(ctx context.Context, caller plugin.CallerContext, key string) (plugin.ConfigResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapReadSysConfig, caller, configOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.ConfigResult, error) {
					value, found, err := h.store.GetSysConfig(ctx, key)
					if err != nil {
						return plugin.ConfigResult{Key: key}, err
					}
					if !found {
						return plugin.ConfigResult{Key: key, Message: "config key not found"}, nil
					}
					return plugin.ConfigResult{Key: key, Value: value, Success: true}, nil
				})
		},

		WriteSysConfig: func(ctx context.Context, caller plugin.CallerContext, key, value string) (plugin.ConfigResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapWriteSysConfig, caller, configOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.ConfigResult, error) {
					if err := RequireTrusted(caller, "write system config"); err != nil {
						return plugin.ConfigResult{Key: key}, err
					}
					if err := h.store.SetSysConfig(ctx, key, value); err != nil {
						return plugin.ConfigResult{Key: key}, err
					}
					observability.RecordConfigAudit(ctx, "WriteSysConfig", caller.PackageName(), key, nil)
					return plugin.ConfigResult{Key: key, Value: value, Success: true, Message: "Saved"}, nil
				})
		},

		BootWithPhobos: func(ctx context.Context, caller plugin.CallerContext, command string, priority int, args []plugin.Value) (plugin.BootResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapBootWithPhobos, caller, bootOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.BootResult, error) {
					if command == "" {
						return plugin.BootResult{Message: "boot command cannot be empty"}, nil
					}
					item, err := h.store.AddBootItem(ctx, caller.PackageName(), command, priority, args)
					if err != nil {
						return plugin.BootResult{}, err
					}
					return plugin.BootResult{Success: true, UUID: item.UUID, Message: "Boot item registered"}, nil
				})
		},

		RemoveBootWithPhobos: func(ctx context.Context, caller plugin.CallerContext, id string) (plugin.BootResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapRemoveBootWithPhobos, caller, bootOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.BootResult, error) {
					removed, err := h.store.RemoveBootItem(ctx, caller.PackageName(), id)
					if err != nil {
						return plugin.BootResult{UUID: id}, err
					}
					if !removed {
						return plugin.BootResult{UUID: id, Message: "boot item not found"}, nil
					}
					return plugin.BootResult{Success: true, UUID: id, Message: "Boot item removed"}, nil
				})
		},

		GetBootItems: func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapGetBootItems, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					items, err := h.store.ListBootItems(ctx, caller.PackageName())
					if err != nil {
						return plugin.RequestResult{}, err
					}
					data := make([]plugin.Value, 0, len(items))
					for _, item := range items {
						data = append(data, bootItemValue(item))
					}
					return plugin.Succeeded(fmt.Sprintf("%d boot items", len(items)), data...), nil
				})
		},

		Subscribe: func(ctx context.Context, caller plugin.CallerContext, category, name string, args []plugin.Value) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapSubscribe, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					if category == "" || name == "" {
						return plugin.Failure("event category and name are required"), nil
					}
					added := h.bus.Subscribe(caller.PackageName(), plugin.Subscription{Category: category, Name: name})
					h.updateSubscriptionGauge()
					if !added {
						return plugin.Succeeded("Already subscribed"), nil
					}
					return plugin.Succeeded("Subscribed"), nil
				})
		},

		Unsubscribe: func(ctx context.Context, caller plugin.CallerContext, category, name string, args []plugin.Value) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapUnsubscribe, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					removed := h.bus.Unsubscribe(caller.PackageName(), plugin.Subscription{Category: category, Name: name})
					h.updateSubscriptionGauge()
					if !removed {
						return plugin.Succeeded("Not subscribed"), nil
					}
					return plugin.Succeeded("Unsubscribed"), nil
				})
		},

		GetMergedDictionaries: func(ctx context.Context, caller plugin.CallerContext) (plugin.ThemeResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapGetMergedDictionaries, caller, themeOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.ThemeResult, error) {
					return plugin.ThemeResult{Success: true, Resources: h.theme.Snapshot()}, nil
				})
		},

		Log: func(ctx context.Context, caller plugin.CallerContext, entry plugin.LogEntry) (plugin.RequestResult, error) {
			return dispatch(h, ctx, pkg, plugin.CapLog, caller, requestOK,
				func(ctx context.Context, caller plugin.CallerContext) (plugin.RequestResult, error) {
					h.writePluginLog(ctx, caller.PackageName(), entry)
					return plugin.Succeeded("Logged"), nil
				})
		},
	}
}

// writePluginLog sinks a plugin log entry into the host logger
func (h *Host) writePluginLog(ctx context.Context, pkg string, entry plugin.LogEntry) {
	logger := tracing.PropagateToLogger(tracing.WithPlugin(ctx, pkg), h.logger)

	var event *zerolog.Event
	switch entry.Level {
	case plugin.LogDebug:
		event = logger.Debug()
	case plugin.LogInfo:
		event = logger.Info()
	case plugin.LogWarning:
		event = logger.Warn()
	case plugin.LogCritical:
		event = logger.Error().Bool("critical", true)
	default:
		event = logger.Error()
	}

	if entry.Source != "" {
		event = event.Str("source", entry.Source)
	}
	if entry.Err != nil {
		event = event.Err(entry.Err)
	}
	if len(entry.Args) > 0 {
		event = event.Interface("args", plugin.Interfaces(entry.Args))
	}
	event.Time("logged_at", entry.Timestamp).Msg(entry.Message)
}

func (h *Host) updateSubscriptionGauge() {
	if h.metrics != nil {
		h.metrics.SubscriptionsActive.Set(float64(h.bus.Count()))
	}
}

// hostInfo describes the host to RequestPhobos callers
func (h *Host) hostInfo() plugin.Value {
	installed := h.installedPackages()
	pkgs := make([]plugin.Value, len(installed))
	for i, p := range installed {
		pkgs[i] = plugin.String(p)
	}
	return plugin.Map(map[string]plugin.Value{
		"version":  plugin.String(h.version),
		"language": plugin.String(h.Language()),
		"plugins":  plugin.List(pkgs...),
		"commands": plugin.ValueOf(h.router.Commands()),
	})
}

func bootItemValue(item BootItem) plugin.Value {
	return plugin.Map(map[string]plugin.Value{
		"uuid":     plugin.String(item.UUID),
		"package":  plugin.String(item.PackageName),
		"command":  plugin.String(item.Command),
		"priority": plugin.Int(int64(item.Priority)),
		"args":     plugin.List(item.Args...),
	})
}
