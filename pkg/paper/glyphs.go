package paper

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Glyph is one substitution: every occurrence of Rune is replaced by
// Replacement.
type Glyph struct {
	Rune        rune
	Replacement string
}

// GlyphTable is an immutable, ordered substitution table.
type GlyphTable struct {
	glyphs []Glyph
	index  map[rune]string
}

// NewGlyphTable builds a table. Keys must be unique and replacements
// must be encodable in WinAnsiEncoding.
func NewGlyphTable(glyphs []Glyph) (*GlyphTable, error) {
	t := &GlyphTable{
		glyphs: append([]Glyph(nil), glyphs...),
		index:  make(map[rune]string, len(glyphs)),
	}
	for _, g := range glyphs {
		if _, dup := t.index[g.Rune]; dup {
			return nil, fmt.Errorf("duplicate glyph %q", g.Rune)
		}
		for _, r := range g.Replacement {
			if !Encodable(r) {
				return nil, fmt.Errorf("replacement %q for %q is not encodable", g.Replacement, g.Rune)
			}
		}
		t.index[g.Rune] = g.Replacement
	}
	return t, nil
}

// Glyphs returns a copy of the table entries in order.
func (t *GlyphTable) Glyphs() []Glyph {
	return append([]Glyph(nil), t.glyphs...)
}

// Lookup returns the replacement for r.
func (t *GlyphTable) Lookup(r rune) (string, bool) {
	s, ok := t.index[r]
	return s, ok
}

// Len returns the number of entries.
func (t *GlyphTable) Len() int {
	return len(t.glyphs)
}

// With returns a new table with extra appended; an entry in extra
// replaces an existing entry for the same rune.
func (t *GlyphTable) With(extra []Glyph) (*GlyphTable, error) {
	override := make(map[rune]bool, len(extra))
	for _, g := range extra {
		override[g.Rune] = true
	}
	var merged []Glyph
	for _, g := range t.glyphs {
		if !override[g.Rune] {
			merged = append(merged, g)
		}
	}
	return NewGlyphTable(append(merged, extra...))
}

var defaultGlyphs = []Glyph{
	// typography
	{'…', "..."},
	{'“', `"`},
	{'”', `"`},
	{'‘', "'"},
	{'’', "'"},
	{'–', "-"},
	{'—', "-"},
	{'\u2003', " "},
	{'†', "*"},
	// relations and logic
	{'≠', "!="},
	{'≥', ">="},
	{'≤', "<="},
	{'≈', "~"},
	{'∈', "in"},
	{'∉', "not in"},
	{'∃', "Exists"},
	{'∀', "ForAll"},
	{'→', "->"},
	{'⇒', "=>"},
	{'∎', "QED"},
	{'∑', "Sum"},
	{'∞', "infinity"},
	// operator letters
	{'𝒦', "K"},
	{'𝒮', "S"},
	{'𝒞', "C"},
	// Greek
	{'Ω', "Omega"},
	{'Θ', "Theta"},
	{'Λ', "Lambda"},
	{'α', "alpha"},
	{'ζ', "zeta"},
	{'σ', "sigma"},
	{'χ', "chi"},
	{'π', "pi"},
}

var defaultTable = func() *GlyphTable {
	t, err := NewGlyphTable(defaultGlyphs)
	if err != nil {
		panic(err)
	}
	return t
}()

// DefaultGlyphs returns the built-in table for typographic and
// mathematical symbols.
func DefaultGlyphs() *GlyphTable {
	return defaultTable
}

// Encodable reports whether r has a code in WinAnsiEncoding.
func Encodable(r rune) bool {
	if r < utf8.RuneSelf {
		return r >= 0x20 && r < 0x7F || r == '\t' || r == '\n'
	}
	_, ok := charmap.Windows1252.EncodeRune(r)
	return ok
}

// MissPolicy decides what happens to a character that is neither in the
// glyph table nor encodable.
type MissPolicy int

const (
	// MissPlaceholder replaces the character by '?'.
	MissPlaceholder MissPolicy = iota
	// MissPassThrough keeps the character; Encode turns it into '?'.
	MissPassThrough
	// MissStrict makes the Builder fail with a *MissingGlyphError.
	MissStrict
)

func (p MissPolicy) String() string {
	switch p {
	case MissPlaceholder:
		return "placeholder"
	case MissPassThrough:
		return "passthrough"
	case MissStrict:
		return "strict"
	}
	return fmt.Sprintf("MissPolicy(%d)", int(p))
}

// ParseMissPolicy converts a policy name to a MissPolicy.
func ParseMissPolicy(s string) (MissPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "placeholder":
		return MissPlaceholder, nil
	case "passthrough":
		return MissPassThrough, nil
	case "strict":
		return MissStrict, nil
	}
	return 0, fmt.Errorf("unknown miss policy %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *MissPolicy) UnmarshalText(text []byte) error {
	v, err := ParseMissPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p MissPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Placeholder is substituted for characters that cannot be shown.
const Placeholder = '?'

// Miss records a character that could not be shown.
type Miss struct {
	Rune  rune
	Count int
}

func (m Miss) String() string {
	return fmt.Sprintf("%q (U+%04X) x%d", m.Rune, m.Rune, m.Count)
}

// MissingGlyphError is returned under MissStrict.
type MissingGlyphError struct {
	Misses []Miss
}

func (e *MissingGlyphError) Error() string {
	parts := make([]string, len(e.Misses))
	for i, m := range e.Misses {
		parts[i] = m.String()
	}
	return "no glyph for " + strings.Join(parts, ", ")
}

// Normalizer restricts text to what the base font encoding can show.
type Normalizer struct {
	Table  *GlyphTable
	Policy MissPolicy
}

// Normalize replaces every character that has a table entry, in one left
// to right pass so that replacement text is never rescanned. Characters
// without an entry are kept if encodable, white-space other than a line
// feed becomes a plain space, other characters are replaced by their NFKC
// compatibility form if that is encodable (e.g. subscript digits), else
// handled according to the policy. The misses are returned sorted by
// rune.
func (n Normalizer) Normalize(s string) (string, []Miss) {
	table := n.Table
	if table == nil {
		table = defaultTable
	}

	var b strings.Builder
	b.Grow(len(s))
	counts := make(map[rune]int)

	for _, r := range s {
		if repl, ok := table.Lookup(r); ok {
			b.WriteString(repl)
			continue
		}
		if r != '\n' && unicode.IsSpace(r) {
			b.WriteByte(' ')
			continue
		}
		if Encodable(r) {
			b.WriteRune(r)
			continue
		}
		if folded, ok := fold(r); ok {
			b.WriteString(folded)
			continue
		}

		counts[r]++
		if n.Policy == MissPlaceholder {
			b.WriteRune(Placeholder)
		} else {
			b.WriteRune(r)
		}
	}

	return b.String(), sortedMisses(counts)
}

// fold returns the NFKC form of r if it differs from r and is encodable.
func fold(r rune) (string, bool) {
	s := string(r)
	folded := norm.NFKC.String(s)
	if folded == s || folded == "" {
		return "", false
	}
	for _, fr := range folded {
		if !Encodable(fr) {
			return "", false
		}
	}
	return folded, true
}

func sortedMisses(counts map[rune]int) []Miss {
	if len(counts) == 0 {
		return nil
	}
	misses := make([]Miss, 0, len(counts))
	for r, c := range counts {
		misses = append(misses, Miss{Rune: r, Count: c})
	}
	sort.Slice(misses, func(i, j int) bool { return misses[i].Rune < misses[j].Rune })
	return misses
}

// mergeMisses adds the counts of b to a.
func mergeMisses(a, b []Miss) []Miss {
	if len(b) == 0 {
		return a
	}
	counts := make(map[rune]int, len(a)+len(b))
	for _, m := range a {
		counts[m.Rune] += m.Count
	}
	for _, m := range b {
		counts[m.Rune] += m.Count
	}
	return sortedMisses(counts)
}

// Encode converts normalized text to WinAnsiEncoding bytes. Characters
// without a code become '?'.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, c)
			continue
		}
		out = append(out, Placeholder)
	}
	return out
}

func sortGlyphs(glyphs []Glyph) {
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].Rune < glyphs[j].Rune })
}
