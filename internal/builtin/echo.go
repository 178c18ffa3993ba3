package builtin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/harun/phobos/pkg/plugin"
)

// EchoPackage is the package name of the echo plugin
const EchoPackage = "phobos.builtin.echo"

// Echo answers Run with its own arguments and follows host language changes
type Echo struct {
	*plugin.Base
}

// NewEcho creates the echo plugin
func NewEcho(logger zerolog.Logger) *Echo {
	meta := plugin.PluginMetadata{
		Name:         "Echo",
		PackageName:  EchoPackage,
		Manufacturer: "Phobos",
		Version:      "1.0.0",
		Description:  "Replies with the arguments it is run with",
		LocalizedNames: map[string]string{
			"zh-CN": "回声",
			"zh-TW": "回聲",
			"ja-JP": "エコー",
			"ko-KR": "에코",
		},
		IsSystemPlugin: true,
	}

	e := &Echo{Base: plugin.NewBase(meta, logger)}
	e.OnEvent(func(ev plugin.Event) {
		if ev.Category != plugin.EventLanguage || len(ev.Args) == 0 {
			return
		}
		lang, _ := ev.Args[0].AsString()
		l := e.Logger()
		l.Info().Str("language", lang).Msg("Host language changed")
	})
	return e
}

// OnLaunch subscribes to language changes
func (e *Echo) OnLaunch(ctx context.Context, args ...plugin.Value) (plugin.RequestResult, error) {
	res, err := e.Base.OnLaunch(ctx, args...)
	if err != nil || !res.Success {
		return res, err
	}

	sub, err := e.Subscribe(ctx, plugin.EventLanguage, plugin.EventChanged)
	if err != nil {
		return plugin.FailureFrom(err), err
	}
	if !sub.Success {
		l := e.Logger()
		l.Warn().Str("message", sub.Message).Msg("Language subscription rejected")
	}

	return res, nil
}

// Run echoes args
func (e *Echo) Run(ctx context.Context, args ...plugin.Value) (plugin.RequestResult, error) {
	e.LogDebug(ctx, "echo", args...)
	return plugin.Succeeded("echo", args...), nil
}
