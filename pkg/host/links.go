package host

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harun/phobos/pkg/plugin"
)

// LinkRegistry records which plugins handle which link protocols
type LinkRegistry struct {
	mu      sync.RWMutex
	options map[string][]*plugin.ProtocolHandlerOption
}

// NewLinkRegistry creates an empty link registry
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{
		options: make(map[string][]*plugin.ProtocolHandlerOption),
	}
}

// Register adds or refreshes the handler option of association's package for
// its protocol. The first handler of a protocol becomes its default.
func (r *LinkRegistry) Register(association plugin.LinkAssociation, lang string) (plugin.ProtocolHandlerOption, error) {
	if association.Protocol == "" {
		return plugin.ProtocolHandlerOption{}, fmt.Errorf("link protocol is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, opt := range r.options[association.Protocol] {
		if opt.PackageName == association.PackageName {
			opt.AssociatedItem = association.Name
			opt.Description = association.LocalizedDescription(lang)
			opt.Command = association.Command
			opt.UpdateTime = now
			opt.IsUpdated = true
			return *opt, nil
		}
	}

	opt := &plugin.ProtocolHandlerOption{
		UUID:           uuid.New().String(),
		Protocol:       association.Protocol,
		AssociatedItem: association.Name,
		PackageName:    association.PackageName,
		Description:    association.LocalizedDescription(lang),
		Command:        association.Command,
		UpdateTime:     now,
		IsDefault:      len(r.options[association.Protocol]) == 0,
	}
	r.options[association.Protocol] = append(r.options[association.Protocol], opt)

	return *opt, nil
}

// SetDefault makes packageName the default handler of protocol. The package
// must already be registered for it.
func (r *LinkRegistry) SetDefault(protocol, packageName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, opt := range r.options[protocol] {
		if opt.PackageName == packageName {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%s does not handle protocol %s", packageName, protocol)
	}

	for _, opt := range r.options[protocol] {
		opt.IsDefault = opt.PackageName == packageName
	}
	return nil
}

// Default returns the default handler option of protocol
func (r *LinkRegistry) Default(protocol string) (plugin.ProtocolHandlerOption, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, opt := range r.options[protocol] {
		if opt.IsDefault {
			return *opt, true
		}
	}
	return plugin.ProtocolHandlerOption{}, false
}

// Options returns the handler options of protocol in registration order
func (r *LinkRegistry) Options(protocol string) []plugin.ProtocolHandlerOption {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plugin.ProtocolHandlerOption, 0, len(r.options[protocol]))
	for _, opt := range r.options[protocol] {
		out = append(out, *opt)
	}
	return out
}

// Protocols returns every registered protocol, sorted
func (r *LinkRegistry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.options))
	for p := range r.options {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RemovePackage drops every option of packageName. When it held the default
// of a protocol, the next remaining option takes over.
func (r *LinkRegistry) RemovePackage(packageName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for protocol, opts := range r.options {
		kept := opts[:0]
		hadDefault := false
		for _, opt := range opts {
			if opt.PackageName == packageName {
				hadDefault = hadDefault || opt.IsDefault
				continue
			}
			kept = append(kept, opt)
		}
		if len(kept) == 0 {
			delete(r.options, protocol)
			continue
		}
		if hadDefault {
			kept[0].IsDefault = true
		}
		r.options[protocol] = kept
	}
}
