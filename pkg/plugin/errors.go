package plugin

import "errors"

// Plugin bridge errors.
var (
	// ErrHandlersAlreadyBound is returned when SetHandlers is called twice.
	ErrHandlersAlreadyBound = errors.New("handlers already bound")

	// ErrNilHandlers is returned when SetHandlers receives nil.
	ErrNilHandlers = errors.New("handlers are nil")

	// ErrPluginNotFound is returned when a plugin cannot be located.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrAlreadyRegistered is returned when a package name is registered twice.
	ErrAlreadyRegistered = errors.New("plugin already registered")

	// ErrDependencyNotFound is returned when a required dependency is missing.
	ErrDependencyNotFound = errors.New("plugin dependency not found")

	// ErrIncompatibleVersion is returned when a dependency is older than required.
	ErrIncompatibleVersion = errors.New("incompatible plugin version")

	// ErrCyclicDependency is returned when plugins have circular dependencies.
	ErrCyclicDependency = errors.New("cyclic plugin dependency detected")

	// ErrUninstallNotAllowed is returned for system plugins and plugins that
	// opted out of uninstalling.
	ErrUninstallNotAllowed = errors.New("plugin may not be uninstalled")

	// ErrAccessDenied is returned when an untrusted caller reaches outside its
	// own scope.
	ErrAccessDenied = errors.New("access denied")
)
