package builtin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harun/phobos/pkg/plugin"
)

// Declared is a plugin known only by its manifest. It takes part in the
// host lifecycle and answers Run with its own description.
type Declared struct {
	*plugin.Base
	dir string
}

// NewDeclared creates a plugin for the manifest found in dir
func NewDeclared(meta plugin.PluginMetadata, dir string, logger zerolog.Logger) *Declared {
	return &Declared{
		Base: plugin.NewBase(meta, logger),
		dir:  dir,
	}
}

// Dir returns the directory the manifest was loaded from
func (d *Declared) Dir() string {
	return d.dir
}

func (d *Declared) Run(ctx context.Context, args ...plugin.Value) (plugin.RequestResult, error) {
	meta := d.Metadata()

	lang := ""
	if info, err := d.RequestPhobos(ctx); err == nil && info.Success && len(info.Data) > 0 {
		if v, ok := info.Data[0].Field("language"); ok {
			lang, _ = v.AsString()
		}
	}

	return plugin.Succeeded(
		fmt.Sprintf("%s %s", meta.LocalizedName(lang), meta.Version),
		plugin.String(meta.LocalizedDescription(lang)),
		plugin.String(d.dir),
	), nil
}
