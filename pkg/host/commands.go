package host

import (
	"context"
	"fmt"

	"github.com/harun/phobos/pkg/plugin"
)

// Host commands available to every plugin through Request
const (
	CmdVersion     = "phobos.version"
	CmdLanguage    = "phobos.language"
	CmdPlugins     = "phobos.plugins"
	CmdTranslate   = "phobos.translate"
	CmdRun         = "phobos.run"
	CmdPublish     = "phobos.publish"
	CmdSetLanguage = "phobos.setLanguage"
)

func (h *Host) registerBuiltinCommands() error {
	builtins := map[string]CommandHandler{
		CmdVersion:     h.cmdVersion,
		CmdLanguage:    h.cmdLanguage,
		CmdPlugins:     h.cmdPlugins,
		CmdTranslate:   h.cmdTranslate,
		CmdRun:         h.cmdRun,
		CmdPublish:     h.cmdPublish,
		CmdSetLanguage: h.cmdSetLanguage,
	}
	for name, handler := range builtins {
		if err := h.router.Register(name, "", handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) cmdVersion(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
	return plugin.Succeeded(h.version, plugin.String(h.version)), nil
}

func (h *Host) cmdLanguage(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
	lang := h.Language()
	return plugin.Succeeded(lang, plugin.String(lang)), nil
}

func (h *Host) cmdPlugins(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
	lang := h.Language()
	records := h.registry.GetAll()
	data := make([]plugin.Value, 0, len(records))
	for _, r := range records {
		data = append(data, plugin.Map(map[string]plugin.Value{
			"package": plugin.String(r.Metadata.PackageName),
			"name":    plugin.String(r.Metadata.LocalizedName(lang)),
			"version": plugin.String(r.Metadata.Version),
			"state":   plugin.String(string(r.State)),
		}))
	}
	return plugin.Succeeded(fmt.Sprintf("%d plugins", len(data)), data...), nil
}

// cmdTranslate looks up args[0] in the host catalog, optionally in the
// language given by args[1]
func (h *Host) cmdTranslate(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
	key, ok := stringArg(args, 0)
	if !ok {
		return plugin.Failure("translate requires a key"), nil
	}
	lang, _ := stringArg(args, 1)
	text := h.catalog.Get(key, lang)
	return plugin.Succeeded(text, plugin.String(text)), nil
}

// cmdRun runs the plugin named by args[0] with the remaining arguments
func (h *Host) cmdRun(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
	target, ok := stringArg(args, 0)
	if !ok {
		return plugin.Failure("run requires a package name"), nil
	}
	if target == caller.PackageName() {
		return plugin.Failure("a plugin cannot run itself through the host"), nil
	}
	if _, exists := h.registry.Get(target); !exists {
		return plugin.Failure(fmt.Sprintf("plugin not found: %s", target)), nil
	}
	return h.Run(ctx, target, args[1:]...)
}

// cmdPublish lets trusted plugins broadcast an event
func (h *Host) cmdPublish(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
	if err := RequireTrusted(caller, "publish events"); err != nil {
		return plugin.RequestResult{}, err
	}
	category, ok1 := stringArg(args, 0)
	name, ok2 := stringArg(args, 1)
	if !ok1 || !ok2 {
		return plugin.Failure("publish requires a category and a name"), nil
	}
	n := h.Publish(ctx, category, name, args[2:]...)
	return plugin.Succeeded(fmt.Sprintf("delivered to %d plugins", n), plugin.Int(int64(n))), nil
}

func (h *Host) cmdSetLanguage(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
	if err := RequireTrusted(caller, "change the host language"); err != nil {
		return plugin.RequestResult{}, err
	}
	lang, ok := stringArg(args, 0)
	if !ok || lang == "" {
		return plugin.Failure("setLanguage requires a language"), nil
	}
	h.SetLanguage(ctx, lang)
	return plugin.Succeeded(h.Language(), plugin.String(h.Language())), nil
}

func stringArg(args []plugin.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	return args[i].AsString()
}
