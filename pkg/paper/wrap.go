package paper

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// LongWordPolicy decides what happens to a word longer than the wrap
// width.
type LongWordPolicy int

const (
	// Overflow puts the word on a line of its own, longer than the width.
	Overflow LongWordPolicy = iota
	// HardBreak splits the word into chunks of exactly the width.
	HardBreak
)

func (p LongWordPolicy) String() string {
	switch p {
	case Overflow:
		return "overflow"
	case HardBreak:
		return "hardbreak"
	}
	return fmt.Sprintf("LongWordPolicy(%d)", int(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *LongWordPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "overflow":
		*p = Overflow
	case "hardbreak":
		*p = HardBreak
	default:
		return fmt.Errorf("unknown long word policy %q", text)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p LongWordPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SplitParagraphs splits text at blank-line separators ("\n\n"). The
// text is trimmed first and CRLF line endings are accepted. A separator
// run of more than one blank line yields empty paragraphs, which the
// wrapper renders as extra vertical space.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n\n")
}

// Wrap greedily fills lines of at most width runes with the words of
// paragraph. Any run of whitespace, including line breaks, separates
// words. A word longer than width is handled according to policy. A
// blank paragraph yields no lines.
func Wrap(paragraph string, width int, policy LongWordPolicy) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(paragraph) {
		n := utf8.RuneCountInString(word)

		if n > width && policy == HardBreak {
			flush()
			chunks := chunk(word, width)
			lines = append(lines, chunks[:len(chunks)-1]...)
			last := chunks[len(chunks)-1]
			cur.WriteString(last)
			curLen = utf8.RuneCountInString(last)
			continue
		}

		switch {
		case curLen == 0:
			cur.WriteString(word)
			curLen = n
		case curLen+1+n <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curLen += 1 + n
		default:
			flush()
			cur.WriteString(word)
			curLen = n
		}
	}
	flush()

	return lines
}

// chunk splits s into pieces of width runes; the last may be shorter.
func chunk(s string, width int) []string {
	var chunks []string
	runes := []rune(s)
	for len(runes) > width {
		chunks = append(chunks, string(runes[:width]))
		runes = runes[width:]
	}
	return append(chunks, string(runes))
}

// WrapParagraphs wraps each paragraph and lays them out in order. Each
// non-blank paragraph is followed by one empty separator line; a blank
// paragraph contributes exactly one empty line.
func WrapParagraphs(paragraphs []string, width int, policy LongWordPolicy) []string {
	var lines []string
	for _, p := range paragraphs {
		wrapped := Wrap(p, width, policy)
		if len(wrapped) == 0 {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapped...)
		lines = append(lines, "")
	}
	return lines
}
