package i18n

import (
	"sort"
	"strings"
)

// DefaultLanguage is the fallback language consulted after the exact and
// base-language matches.
const DefaultLanguage = "en-US"

// Resolve picks the text for lang from m, falling back in order to the base
// language, DefaultLanguage, any value in m, and finally def.
//
// Keys are compared case-insensitively. When several keys share a base
// language the lexically smallest one wins, which keeps the result stable
// across calls even though Go map iteration is random.
func Resolve(m map[string]string, lang, def string) string {
	if v, ok := lookup(m, lang); ok {
		return v
	}
	return def
}

// lookup runs the fallback chain without the caller default.
func lookup(m map[string]string, lang string) (string, bool) {
	if len(m) == 0 {
		return "", false
	}

	if v, ok := m[lang]; ok {
		return v, true
	}

	keys := sortedKeys(m)
	for _, k := range keys {
		if strings.EqualFold(k, lang) {
			return m[k], true
		}
	}

	if base := BaseLanguage(lang); base != "" {
		for _, k := range keys {
			if len(k) >= len(base) && strings.EqualFold(k[:len(base)], base) {
				return m[k], true
			}
		}
	}

	for _, k := range keys {
		if strings.EqualFold(k, DefaultLanguage) {
			return m[k], true
		}
	}

	return m[keys[0]], true
}

// BaseLanguage returns the part of a language code before the first '-'.
func BaseLanguage(lang string) string {
	if i := strings.IndexByte(lang, '-'); i >= 0 {
		return lang[:i]
	}
	return lang
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
