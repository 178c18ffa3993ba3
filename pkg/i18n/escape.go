package i18n

import "strings"

var escapeTable = map[byte]string{
	'\\': `\\`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'\'': `\'`,
	'"':  `\"`,
	0:    `\0`,
}

var unescapeTable = map[byte]byte{
	'\\': '\\',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\'': '\'',
	'"':  '"',
	'0':  0,
}

// Escape encodes control characters and quote/backslash delimiters as literal
// escape sequences. It works on bytes, so invalid UTF-8 passes through.
func Escape(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		if esc, ok := escapeTable[s[i]]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Unescape reverses Escape in a single left-to-right pass. A decoded
// backslash is never combined with the following character, so "\\n"
// decodes to a backslash followed by 'n'. Unknown sequences are kept as-is.
func Unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		if dec, ok := unescapeTable[s[i+1]]; ok {
			b.WriteByte(dec)
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
