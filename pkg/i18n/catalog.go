package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SupportedLanguages lists the languages shipped with built-in descriptors.
var SupportedLanguages = []string{"en-US", "zh-CN", "zh-TW", "ja-JP", "ko-KR"}

// Catalog is a keyed registry of localized strings with a current language.
// One Catalog is created at startup and handed to the components that render
// text; there is no package-level instance.
type Catalog struct {
	mu        sync.RWMutex
	resources map[string]*LocalizedString
	language  string
}

// NewCatalog creates an empty catalog. An empty language means DefaultLanguage.
func NewCatalog(language string) *Catalog {
	if language == "" {
		language = DefaultLanguage
	}
	return &Catalog{
		resources: make(map[string]*LocalizedString),
		language:  language,
	}
}

// Language returns the current language.
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// SetLanguage changes the current language. Empty values are ignored.
func (c *Catalog) SetLanguage(language string) {
	if language == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = language
}

// Register stores s under key, replacing any previous entry.
func (c *Catalog) Register(key string, s *LocalizedString) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[strings.ToLower(key)] = s
}

// Get resolves key for lang, or for the current language when lang is empty.
// Unknown keys resolve to the key itself.
func (c *Catalog) Get(key, lang string) string {
	c.mu.RLock()
	s, ok := c.resources[strings.ToLower(key)]
	if lang == "" {
		lang = c.language
	}
	c.mu.RUnlock()

	if !ok {
		return key
	}
	return s.Get(lang)
}

// Format resolves key in the current language and formats it with args.
// If the template does not accept args the template is returned unchanged.
func (c *Catalog) Format(key string, args ...any) string {
	template := c.Get(key, "")
	if len(args) == 0 {
		return template
	}
	out := fmt.Sprintf(template, args...)
	if strings.Contains(out, "%!") && !strings.Contains(template, "%!") {
		return template
	}
	return out
}

// Contains reports whether key is registered.
func (c *Catalog) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.resources[strings.ToLower(key)]
	return ok
}

// Keys returns the registered keys in sorted order.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.resources))
	for k := range c.resources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Replace swaps every registered resource for those of from. The current
// language is kept.
func (c *Catalog) Replace(from *Catalog) {
	from.mu.RLock()
	resources := make(map[string]*LocalizedString, len(from.resources))
	for k, v := range from.resources {
		resources[k] = v
	}
	from.mu.RUnlock()

	c.mu.Lock()
	c.resources = resources
	c.mu.Unlock()
}

// Clear removes every registered resource.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = make(map[string]*LocalizedString)
}
