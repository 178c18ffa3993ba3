package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/phobos/pkg/plugin"
)

func TestTrustPolicy(t *testing.T) {
	p := NewTrustPolicy("com.test.b", "com.test.a")

	assert.True(t, p.IsTrusted("com.test.a"))
	assert.False(t, p.IsTrusted("com.test.c"))
	assert.Equal(t, []string{"com.test.a", "com.test.b"}, p.Packages())

	p.Grant("com.test.c")
	assert.True(t, p.IsTrusted("com.test.c"))
	p.Revoke("com.test.a")
	assert.False(t, p.IsTrusted("com.test.a"))
}

func TestRequireScope(t *testing.T) {
	caller := plugin.BuildContext(plugin.PluginMetadata{PackageName: "com.test.a"})

	assert.NoError(t, RequireScope(caller, "com.test.a"))
	assert.ErrorIs(t, RequireScope(caller, "com.test.b"), plugin.ErrAccessDenied)
	assert.NoError(t, RequireScope(caller.WithTrust(true), "com.test.b"))

	assert.ErrorIs(t, RequireTrusted(caller, "act"), plugin.ErrAccessDenied)
	assert.NoError(t, RequireTrusted(caller.WithTrust(true), "act"))
}

func TestLinkRegistry(t *testing.T) {
	r := NewLinkRegistry()

	t.Run("protocol required", func(t *testing.T) {
		_, err := r.Register(plugin.LinkAssociation{PackageName: "com.test.a"}, "en-US")
		assert.Error(t, err)
	})

	first, err := r.Register(plugin.LinkAssociation{
		Protocol:    "notes",
		PackageName: "com.test.a",
		Name:        "Notes",
		Description: "Open notes",
		LocalizedDescriptions: map[string]string{
			"zh-CN": "打开笔记",
		},
	}, "zh-CN")
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.NotEmpty(t, first.UUID)
	assert.Equal(t, "打开笔记", first.Description)

	second, err := r.Register(plugin.LinkAssociation{Protocol: "notes", PackageName: "com.test.b"}, "en-US")
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	t.Run("re-register updates in place", func(t *testing.T) {
		again, err := r.Register(plugin.LinkAssociation{Protocol: "notes", PackageName: "com.test.a", Command: "open2"}, "en-US")
		require.NoError(t, err)
		assert.Equal(t, first.UUID, again.UUID)
		assert.True(t, again.IsUpdated)
		assert.Len(t, r.Options("notes"), 2)
	})

	t.Run("set default", func(t *testing.T) {
		require.NoError(t, r.SetDefault("notes", "com.test.b"))
		def, ok := r.Default("notes")
		require.True(t, ok)
		assert.Equal(t, "com.test.b", def.PackageName)

		assert.Error(t, r.SetDefault("notes", "com.test.c"))
	})

	t.Run("removing the default promotes the next", func(t *testing.T) {
		r.RemovePackage("com.test.b")
		def, ok := r.Default("notes")
		require.True(t, ok)
		assert.Equal(t, "com.test.a", def.PackageName)

		r.RemovePackage("com.test.a")
		_, ok = r.Default("notes")
		assert.False(t, ok)
		assert.Empty(t, r.Protocols())
	})
}

func TestEventBus(t *testing.T) {
	b := NewEventBus()
	theme := plugin.Subscription{Category: plugin.EventTheme, Name: plugin.EventChanged}
	lang := plugin.Subscription{Category: plugin.EventLanguage, Name: plugin.EventChanged}

	assert.True(t, b.Subscribe("com.test.b", theme))
	assert.True(t, b.Subscribe("com.test.a", theme))
	assert.False(t, b.Subscribe("com.test.a", theme))
	assert.True(t, b.Subscribe("com.test.a", lang))

	assert.Equal(t, []string{"com.test.a", "com.test.b"}, b.Subscribers(theme))
	assert.Equal(t, 3, b.Count())

	assert.True(t, b.Unsubscribe("com.test.b", theme))
	assert.False(t, b.Unsubscribe("com.test.b", theme))

	assert.Equal(t, 2, b.UnsubscribeAll("com.test.a"))
	assert.Equal(t, 0, b.Count())
	assert.Empty(t, b.Subscribers(theme))
}

func TestCommandRouter(t *testing.T) {
	ctx := context.Background()
	r := NewCommandRouter()
	caller := plugin.BuildContext(plugin.PluginMetadata{PackageName: "com.test.a"})

	echo := func(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error) {
		return plugin.Succeeded("echo", args...), nil
	}

	require.NoError(t, r.Register("echo", "com.test.a", echo))
	assert.ErrorIs(t, r.Register("echo", "", echo), ErrCommandExists)
	assert.Error(t, r.Register("", "", echo))
	assert.Error(t, r.Register("nil", "", nil))

	res, err := r.Handle(ctx, caller, "echo", []plugin.Value{plugin.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, []plugin.Value{plugin.Int(1)}, res.Data)

	require.NoError(t, r.Register("host", "", echo))
	assert.Equal(t, []string{"echo", "host"}, r.Commands())

	assert.Equal(t, 1, r.UnregisterOwner("com.test.a"))
	assert.Equal(t, 0, r.UnregisterOwner(""))
	assert.False(t, r.Has("echo"))
	assert.True(t, r.Has("host"))

	r.Unregister("host")
	res, err = r.Handle(ctx, caller, "host", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestThemeResources(t *testing.T) {
	theme := NewThemeResources()
	theme.Merge(DefaultTheme())
	theme.Set("AccentColor", plugin.String("#FF0000"))

	snap := theme.Snapshot()
	assert.Equal(t, plugin.String("#FF0000"), snap["AccentColor"])
	assert.Equal(t, plugin.Int(14), snap["FontSize"])

	snap["FontSize"] = plugin.Int(99)
	assert.Equal(t, plugin.Int(14), theme.Snapshot()["FontSize"])
}
