package host

import (
	"fmt"
	"sort"
	"sync"

	"github.com/harun/phobos/pkg/plugin"
)

// TrustPolicy decides which packages may act outside their own scope.
// The host consults it on every call; a plugin's own claim is never used.
type TrustPolicy struct {
	mu      sync.RWMutex
	trusted map[string]bool
}

// NewTrustPolicy creates a policy trusting the given packages
func NewTrustPolicy(packages ...string) *TrustPolicy {
	trusted := make(map[string]bool, len(packages))
	for _, pkg := range packages {
		trusted[pkg] = true
	}
	return &TrustPolicy{trusted: trusted}
}

// IsTrusted reports whether packageName is trusted
func (p *TrustPolicy) IsTrusted(packageName string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.trusted[packageName]
}

// Grant trusts packageName
func (p *TrustPolicy) Grant(packageName string) {
	p.mu.Lock()
	p.trusted[packageName] = true
	p.mu.Unlock()
}

// Revoke withdraws trust from packageName
func (p *TrustPolicy) Revoke(packageName string) {
	p.mu.Lock()
	delete(p.trusted, packageName)
	p.mu.Unlock()
}

// Packages returns the trusted packages in sorted order
func (p *TrustPolicy) Packages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.trusted))
	for pkg := range p.trusted {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// RequireScope allows a caller to act on its own package, and on any
// package when trusted.
func RequireScope(caller plugin.CallerContext, targetPackage string) error {
	if targetPackage == caller.PackageName() || caller.Trusted() {
		return nil
	}
	return fmt.Errorf("%w: %s may not access %s", plugin.ErrAccessDenied, caller.PackageName(), targetPackage)
}

// RequireTrusted allows only trusted callers
func RequireTrusted(caller plugin.CallerContext, action string) error {
	if caller.Trusted() {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s", plugin.ErrAccessDenied, caller.PackageName(), action)
}
