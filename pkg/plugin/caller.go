package plugin

import (
	"time"
)

// CallerContext identifies the plugin behind one outbound call. It is built
// fresh for every call from the plugin's own metadata and cannot be edited
// after construction.
type CallerContext struct {
	name        map[string]string
	packageName string
	databaseKey string
	trusted     bool
	callTime    time.Time
}

// BuildContext derives a CallerContext from plugin metadata. Trust is always
// false; only the host may decide to treat a call as trusted.
func BuildContext(meta PluginMetadata) CallerContext {
	name := make(map[string]string, len(meta.LocalizedNames))
	for k, v := range meta.LocalizedNames {
		name[k] = v
	}
	return CallerContext{
		name:        name,
		packageName: meta.PackageName,
		databaseKey: meta.DatabaseKey,
		trusted:     false,
		callTime:    time.Now(),
	}
}

// Name returns a copy of the caller's localized names.
func (c CallerContext) Name() map[string]string {
	out := make(map[string]string, len(c.name))
	for k, v := range c.name {
		out[k] = v
	}
	return out
}

// PackageName returns the calling plugin's package name.
func (c CallerContext) PackageName() string { return c.packageName }

// DatabaseKey returns the calling plugin's database key.
func (c CallerContext) DatabaseKey() string { return c.databaseKey }

// Trusted reports the trust flag. BuildContext always leaves it false.
func (c CallerContext) Trusted() bool { return c.trusted }

// CallTime returns when the context was built.
func (c CallerContext) CallTime() time.Time { return c.callTime }

// WithTrust returns a copy carrying the host's trust decision. Hosts must
// derive the flag from their own policy and never from the incoming value.
func (c CallerContext) WithTrust(trusted bool) CallerContext {
	c.name = c.Name()
	c.trusted = trusted
	return c
}
