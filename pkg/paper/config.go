package paper

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout holds the page geometry and text settings. Lengths are in
// points.
type Layout struct {
	PageWidth    float64        `yaml:"page_width"`
	PageHeight   float64        `yaml:"page_height"`
	Margin       float64        `yaml:"margin"`
	FontSize     float64        `yaml:"font_size"`
	Leading      float64        `yaml:"leading"`
	WrapWidth    int            `yaml:"wrap_width"`
	BaseFont     string         `yaml:"base_font"`
	FontResource string         `yaml:"font_resource"`
	Encoding     string         `yaml:"encoding"`
	LongWords    LongWordPolicy `yaml:"long_words"`
	Missing      MissPolicy     `yaml:"missing_glyphs"`
	// Glyphs are extra substitutions applied on top of the default table.
	Glyphs map[string]string `yaml:"glyphs,omitempty"`
}

// DefaultLayout returns a US Letter page with one inch margins and 12
// point Helvetica on 14 point leading.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:    612,
		PageHeight:   792,
		Margin:       72,
		FontSize:     12,
		Leading:      14,
		WrapWidth:    86,
		BaseFont:     "Helvetica",
		FontResource: "F1",
		Encoding:     "WinAnsiEncoding",
		LongWords:    Overflow,
		Missing:      MissPlaceholder,
	}
}

// withDefaults fills unset fields from DefaultLayout. The margin is
// taken from the default only when the page size is unset too, so an
// explicit zero margin on a custom page is kept.
func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.PageWidth == 0 && l.PageHeight == 0 && l.Margin == 0 {
		l.Margin = d.Margin
	}
	if l.PageWidth == 0 {
		l.PageWidth = d.PageWidth
	}
	if l.PageHeight == 0 {
		l.PageHeight = d.PageHeight
	}
	if l.FontSize == 0 {
		l.FontSize = d.FontSize
	}
	if l.Leading == 0 {
		l.Leading = d.Leading
	}
	if l.WrapWidth == 0 {
		l.WrapWidth = d.WrapWidth
	}
	if l.BaseFont == "" {
		l.BaseFont = d.BaseFont
	}
	if l.FontResource == "" {
		l.FontResource = d.FontResource
	}
	if l.Encoding == "" {
		l.Encoding = d.Encoding
	}
	return l
}

// standard14 are the base fonts every reader provides without embedding.
var standard14 = map[string]bool{
	"Times-Roman": true, "Times-Bold": true, "Times-Italic": true, "Times-BoldItalic": true,
	"Helvetica": true, "Helvetica-Bold": true, "Helvetica-Oblique": true, "Helvetica-BoldOblique": true,
	"Courier": true, "Courier-Bold": true, "Courier-Oblique": true, "Courier-BoldOblique": true,
	"Symbol": true, "ZapfDingbats": true,
}

// Validate checks that the layout describes a usable page. All problems
// are reported together.
func (l Layout) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("page_width", l.PageWidth)
	positive("page_height", l.PageHeight)
	positive("font_size", l.FontSize)
	positive("leading", l.Leading)
	if !(l.Margin >= 0) || math.IsInf(l.Margin, 0) {
		errs = append(errs, fmt.Errorf("margin must be a non-negative number, got %v", l.Margin))
	}
	if 2*l.Margin >= l.PageWidth || 2*l.Margin >= l.PageHeight {
		errs = append(errs, fmt.Errorf("margin %v leaves no room on a %vx%v page", l.Margin, l.PageWidth, l.PageHeight))
	}
	if l.WrapWidth < 1 {
		errs = append(errs, fmt.Errorf("wrap_width must be at least 1, got %d", l.WrapWidth))
	}
	if !standard14[l.BaseFont] {
		errs = append(errs, fmt.Errorf("base_font %q is not a standard 14 font", l.BaseFont))
	}
	if l.FontResource == "" {
		errs = append(errs, errors.New("font_resource must not be empty"))
	} else if i := strings.IndexFunc(l.FontResource, notRegular); i >= 0 {
		errs = append(errs, fmt.Errorf("font_resource %q contains %q, which is not allowed in a name", l.FontResource, l.FontResource[i]))
	}
	switch l.Encoding {
	case "", "WinAnsiEncoding":
	default:
		errs = append(errs, fmt.Errorf("unsupported encoding %q", l.Encoding))
	}
	for k, v := range l.Glyphs {
		if n := len([]rune(k)); n != 1 {
			errs = append(errs, fmt.Errorf("glyph key %q must be a single character", k))
			continue
		}
		for _, r := range v {
			if !Encodable(r) {
				errs = append(errs, fmt.Errorf("glyph replacement %q for %q is not encodable", v, k))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// notRegular reports whether r would need a # escape in a PDF name.
func notRegular(r rune) bool {
	return r <= ' ' || r > '~' || strings.ContainsRune("()<>[]{}/%#", r)
}

// LinesPerPage returns the number of baselines between the top and the
// bottom margin, both included.
func (l Layout) LinesPerPage() int {
	if l.Leading <= 0 {
		return 0
	}
	printable := l.PageHeight - 2*l.Margin
	if printable < 0 {
		return 0
	}
	return int(math.Floor(printable/l.Leading)) + 1
}

// GlyphTable returns the default table extended with l.Glyphs.
func (l Layout) GlyphTable() (*GlyphTable, error) {
	if len(l.Glyphs) == 0 {
		return DefaultGlyphs(), nil
	}
	extra := make([]Glyph, 0, len(l.Glyphs))
	for k, v := range l.Glyphs {
		r := []rune(k)
		if len(r) != 1 {
			return nil, fmt.Errorf("glyph key %q must be a single character", k)
		}
		extra = append(extra, Glyph{Rune: r[0], Replacement: v})
	}
	sortGlyphs(extra)
	return DefaultGlyphs().With(extra)
}

// LoadLayout reads a YAML layout file. Keys missing from the file keep
// their default values.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes YAML layout data over the defaults and validates
// the result.
func ParseLayout(data []byte) (Layout, error) {
	l := DefaultLayout()
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, fmt.Errorf("invalid layout: %w", err)
	}
	return l, nil
}

// Save writes the layout as YAML, creating the directory if needed.
func (l Layout) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}
	return nil
}
