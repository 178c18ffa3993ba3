package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/harun/phobos/pkg/plugin"
)

// ErrCommandExists is returned when a command name is registered twice
var ErrCommandExists = errors.New("command already registered")

// CommandHandler serves one named command sent through Request
type CommandHandler func(ctx context.Context, caller plugin.CallerContext, args []plugin.Value) (plugin.RequestResult, error)

type route struct {
	owner   string
	handler CommandHandler
}

// CommandRouter maps command names to handlers
type CommandRouter struct {
	mu     sync.RWMutex
	routes map[string]route
}

// NewCommandRouter creates an empty router
func NewCommandRouter() *CommandRouter {
	return &CommandRouter{
		routes: make(map[string]route),
	}
}

// Register adds a handler for command. owner is the package that provides
// it, empty for host commands.
func (r *CommandRouter) Register(command, owner string, handler CommandHandler) error {
	if command == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[command]; exists {
		return fmt.Errorf("%w: %s", ErrCommandExists, command)
	}
	r.routes[command] = route{owner: owner, handler: handler}
	return nil
}

// Unregister removes command
func (r *CommandRouter) Unregister(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routes, command)
}

// UnregisterOwner removes every command provided by owner
func (r *CommandRouter) UnregisterOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for name, rt := range r.routes {
		if rt.owner != "" && rt.owner == owner {
			delete(r.routes, name)
			n++
		}
	}
	return n
}

// Has reports whether command is registered
func (r *CommandRouter) Has(command string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[command]
	return ok
}

// Commands returns the registered command names, sorted
func (r *CommandRouter) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.routes))
	for name := range r.routes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Handle routes command to its handler. Unknown commands produce a failure
// result, not an error.
func (r *CommandRouter) Handle(ctx context.Context, caller plugin.CallerContext, command string, args []plugin.Value) (plugin.RequestResult, error) {
	r.mu.RLock()
	rt, exists := r.routes[command]
	r.mu.RUnlock()

	if !exists {
		return plugin.Failure(fmt.Sprintf("unknown command: %s", command)), nil
	}
	return rt.handler(ctx, caller, args)
}
