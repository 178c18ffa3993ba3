package plugin

import (
	"sort"
	"sync"
)

// Subscription is one (category, name) unit of event interest
type Subscription struct {
	Category string
	Name     string
}

// SubscriptionRegistry is the set of subscriptions held by one plugin
// instance. Concurrent Add and Remove of the same pair are last-writer-wins.
type SubscriptionRegistry struct {
	mu   sync.Mutex
	subs map[Subscription]struct{}
}

// NewSubscriptionRegistry creates an empty registry
func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{subs: make(map[Subscription]struct{})}
}

// Add inserts s if absent and reports whether it was added
func (r *SubscriptionRegistry) Add(s Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[s]; ok {
		return false
	}
	r.subs[s] = struct{}{}
	return true
}

// Remove deletes s and reports whether it was present
func (r *SubscriptionRegistry) Remove(s Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[s]; !ok {
		return false
	}
	delete(r.subs, s)
	return true
}

// Contains reports whether s is registered
func (r *SubscriptionRegistry) Contains(s Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[s]
	return ok
}

// Len returns the number of subscriptions
func (r *SubscriptionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Snapshot returns the subscriptions sorted by category then name
func (r *SubscriptionRegistry) Snapshot() []Subscription {
	r.mu.Lock()
	out := make([]Subscription, 0, len(r.subs))
	for s := range r.subs {
		out = append(out, s)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Clear removes every subscription
func (r *SubscriptionRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[Subscription]struct{})
}
