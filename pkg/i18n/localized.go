package i18n

import (
	"strings"
	"sync"
)

// LocalizedString holds escaped translations keyed by language code.
// Language codes are case-insensitive: adding "ZH-cn" replaces "zh-CN".
type LocalizedString struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewLocalizedString creates a LocalizedString whose en-US text is value.
func NewLocalizedString(value string) *LocalizedString {
	s := &LocalizedString{values: make(map[string]string)}
	s.Add(DefaultLanguage, value)
	return s
}

// FromMap creates a LocalizedString from raw (unescaped) translations.
func FromMap(translations map[string]string) *LocalizedString {
	s := &LocalizedString{values: make(map[string]string, len(translations))}
	for _, k := range sortedKeys(translations) {
		s.Add(k, translations[k])
	}
	return s
}

// Add stores value for lang, escaping it on write.
func (s *LocalizedString) Add(lang, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values == nil {
		s.values = make(map[string]string)
	}
	for k := range s.values {
		if k != lang && strings.EqualFold(k, lang) {
			delete(s.values, k)
		}
	}
	s.values[lang] = Escape(value)
}

// Get resolves lang through the fallback chain and unescapes the result once.
func (s *LocalizedString) Get(lang string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := lookup(s.values, lang)
	if !ok {
		return ""
	}
	return Unescape(v)
}

// Raw returns the stored, still escaped text for exactly lang.
func (s *LocalizedString) Raw(lang string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for k, v := range s.values {
		if strings.EqualFold(k, lang) {
			return v, true
		}
	}
	return "", false
}

// All returns an unescaped copy of every translation.
func (s *LocalizedString) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = Unescape(v)
	}
	return out
}

// Len returns the number of translations.
func (s *LocalizedString) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *LocalizedString) String() string {
	return s.Get(DefaultLanguage)
}
