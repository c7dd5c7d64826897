package pdf

import "strings"

// EscapeString prepares s for use inside a parenthesised string token.
// The backslash is escaped first so that the backslashes inserted for
// the parentheses are not doubled. Bytes are copied unchanged: s must
// already be in the font's single byte encoding.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `(`, `\(`)
	s = strings.ReplaceAll(s, `)`, `\)`)
	return s
}

// UnescapeString reverses EscapeString. It only understands the three
// escapes EscapeString produces; use the Lexer for general PDF strings.
func UnescapeString(s string) string {
	s = strings.ReplaceAll(s, `\)`, `)`)
	s = strings.ReplaceAll(s, `\(`, `(`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}
