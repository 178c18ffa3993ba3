package plugin

// Event categories broadcast by the host
const (
	EventTheme    = "Theme"
	EventLanguage = "Language"
	EventPlugin   = "Plugin"
	EventSystem   = "System"
	EventWindow   = "Window"
)

// Event names within the categories
const (
	EventChanged     = "Changed"
	EventLoaded      = "Loaded"
	EventInstalled   = "Installed"
	EventUninstalled = "Uninstalled"
	EventEnabled     = "Enabled"
	EventDisabled    = "Disabled"
	EventShutdown    = "Shutdown"
	EventSuspend     = "Suspend"
	EventResume      = "Resume"
	EventActivated   = "Activated"
	EventDeactivated = "Deactivated"
	EventMinimized   = "Minimized"
	EventRestored    = "Restored"
)

// Event is one host notification delivered to a plugin
type Event struct {
	Category string
	Name     string
	Args     []Value
}

// EventListener receives events delivered to a plugin instance
type EventListener func(Event)
