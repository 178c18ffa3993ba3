package host

import (
	"sort"
	"sync"

	"github.com/harun/phobos/pkg/plugin"
)

// EventBus tracks host-side event subscriptions by plugin
type EventBus struct {
	mu   sync.RWMutex
	subs map[plugin.Subscription]map[string]struct{}
}

// NewEventBus creates an empty event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[plugin.Subscription]map[string]struct{}),
	}
}

// Subscribe records packageName's interest in s. It reports false when the
// subscription already existed.
func (b *EventBus) Subscribe(packageName string, s plugin.Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[s]
	if !ok {
		set = make(map[string]struct{})
		b.subs[s] = set
	}
	if _, exists := set[packageName]; exists {
		return false
	}
	set[packageName] = struct{}{}
	return true
}

// Unsubscribe removes packageName's interest in s
func (b *EventBus) Unsubscribe(packageName string, s plugin.Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[s]
	if !ok {
		return false
	}
	if _, exists := set[packageName]; !exists {
		return false
	}
	delete(set, packageName)
	if len(set) == 0 {
		delete(b.subs, s)
	}
	return true
}

// UnsubscribeAll removes every subscription of packageName and returns how
// many were dropped
func (b *EventBus) UnsubscribeAll(packageName string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for s, set := range b.subs {
		if _, ok := set[packageName]; ok {
			delete(set, packageName)
			n++
		}
		if len(set) == 0 {
			delete(b.subs, s)
		}
	}
	return n
}

// Subscribers returns the packages subscribed to s, sorted
func (b *EventBus) Subscribers(s plugin.Subscription) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.subs[s]))
	for pkg := range b.subs[s] {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of (package, subscription) pairs
func (b *EventBus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}
