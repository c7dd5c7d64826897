package pdf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sort"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"
)

// PageRenderer draws the text of a page into an image. It understands
// the text operators of simple documents (BT/ET, Tf, Td, TD, Tm, T*, TL,
// Tj, TJ and ') and substitutes the Go fonts for the standard 14 fonts.
// Graphics operators are ignored; operators missing from
// ContentStreamOperators are counted and reported by Skipped.
type PageRenderer struct {
	doc     *Document
	dpi     float64
	fonts   map[string]*truetype.Font
	skipped map[string]int
}

// NewPageRenderer creates a renderer for doc at the given resolution.
func NewPageRenderer(doc *Document, dpi float64) *PageRenderer {
	if dpi <= 0 {
		dpi = 72
	}
	return &PageRenderer{
		doc:     doc,
		dpi:     dpi,
		fonts:   make(map[string]*truetype.Font),
		skipped: make(map[string]int),
	}
}

// SkippedOperator is a content stream operator the renderer does not know.
type SkippedOperator struct {
	Operator string
	Count    int
}

// Skipped returns the unknown operators met by RenderPage so far, sorted
// by operator.
func (r *PageRenderer) Skipped() []SkippedOperator {
	out := make([]SkippedOperator, 0, len(r.skipped))
	for op, n := range r.skipped {
		out = append(out, SkippedOperator{Operator: op, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operator < out[j].Operator })
	return out
}

// textState is the part of the PDF text state the renderer tracks. Only
// the translation components of the text matrices are kept.
type textState struct {
	x, y         float64 // text matrix origin
	lineX, lineY float64 // text line matrix origin
	leading      float64
	size         float64
	font         string
}

func (ts *textState) moveLine(tx, ty float64) {
	ts.lineX += tx
	ts.lineY += ty
	ts.x, ts.y = ts.lineX, ts.lineY
}

// RenderPage renders page pageNum (1-based) on a white background.
func (r *PageRenderer) RenderPage(pageNum int) (*image.RGBA, error) {
	page, err := r.doc.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	scale := r.dpi / 72
	width := int(page.Width()*scale + 0.5)
	height := int(page.Height()*scale + 0.5)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("page %d has an empty media box", pageNum)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	contents, err := page.GetContents()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNum, err)
	}
	ops, err := NewContentStreamParser(contents).ParseOperations()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNum, err)
	}

	var ts textState
	for _, op := range ops {
		if _, ok := ContentStreamOperators[op.Operator]; !ok {
			r.skipped[op.Operator]++
			continue
		}
		switch op.Operator {
		case "BT":
			ts.x, ts.y, ts.lineX, ts.lineY = 0, 0, 0, 0
		case "Tf":
			if len(op.Operands) == 2 {
				name, _ := op.Operands[0].(Name)
				ts.font = string(name)
				ts.size = objectToFloat(op.Operands[1])
			}
		case "TL":
			if len(op.Operands) == 1 {
				ts.leading = objectToFloat(op.Operands[0])
			}
		case "Td", "TD":
			if len(op.Operands) == 2 {
				tx, ty := objectToFloat(op.Operands[0]), objectToFloat(op.Operands[1])
				if op.Operator == "TD" {
					ts.leading = -ty
				}
				ts.moveLine(tx, ty)
			}
		case "Tm":
			if len(op.Operands) == 6 {
				ts.lineX, ts.lineY = objectToFloat(op.Operands[4]), objectToFloat(op.Operands[5])
				ts.x, ts.y = ts.lineX, ts.lineY
			}
		case "T*":
			ts.moveLine(0, -ts.leading)
		case "Tj", "'":
			if op.Operator == "'" {
				ts.moveLine(0, -ts.leading)
			}
			if len(op.Operands) == 1 {
				if s, ok := op.Operands[0].(String); ok {
					if err := r.show(img, page, &ts, s.Value); err != nil {
						return nil, err
					}
				}
			}
		case "TJ":
			if len(op.Operands) != 1 {
				continue
			}
			arr, _ := op.Operands[0].(Array)
			for _, elem := range arr {
				switch v := elem.(type) {
				case String:
					if err := r.show(img, page, &ts, v.Value); err != nil {
						return nil, err
					}
				case Integer, Real:
					ts.x -= objectToFloat(v) / 1000 * ts.size
				}
			}
		}
	}

	return img, nil
}

// show draws a string at the current text position and advances it.
func (r *PageRenderer) show(img *image.RGBA, page *Page, ts *textState, raw []byte) error {
	if ts.size <= 0 || len(raw) == 0 {
		return nil
	}
	fontDict, err := page.Font(ts.font)
	if err != nil {
		return err
	}
	text := decodeSimpleText(fontDict, raw)

	scale := r.dpi / 72
	x := ts.x * scale
	y := (page.MediaBox.URY - ts.y) * scale

	ttf, err := r.loadFont(fontDict)
	if err != nil {
		// no usable outline font: fall back to the fixed bitmap face
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(int(x+0.5), int(y+0.5)),
		}
		d.DrawString(text)
		ts.x += float64(d.Dot.X-fixed.I(int(x+0.5))) / 64 / scale
		return nil
	}

	c := freetype.NewContext()
	c.SetDPI(r.dpi)
	c.SetFont(ttf)
	c.SetFontSize(ts.size)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(color.Black))
	c.SetHinting(font.HintingNone)

	start := fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
	end, err := c.DrawString(text, start)
	if err != nil {
		return fmt.Errorf("draw text: %w", err)
	}
	ts.x += float64(end.X-start.X) / 64 / scale
	return nil
}

// loadFont picks a Go font for a standard 14 base font name.
func (r *PageRenderer) loadFont(fontDict Dictionary) (*truetype.Font, error) {
	base, _ := fontDict.GetName("BaseFont")
	data := goregular.TTF
	key := "regular"
	switch name := string(base); {
	case base == "":
		return nil, fmt.Errorf("font has no BaseFont")
	case strings.HasPrefix(name, "Courier"):
		data, key = gomono.TTF, "mono"
	case strings.Contains(name, "Bold"):
		data, key = gobold.TTF, "bold"
	case name == "Symbol" || name == "ZapfDingbats":
		return nil, fmt.Errorf("no substitute for %s", name)
	}

	if f, ok := r.fonts[key]; ok {
		return f, nil
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	r.fonts[key] = f
	return f, nil
}

// decodeSimpleText maps single byte codes to text using the font's
// /Encoding. WinAnsiEncoding is decoded as Windows-1252, anything else
// as Latin-1.
func decodeSimpleText(fontDict Dictionary, raw []byte) string {
	dec := charmap.ISO8859_1.NewDecoder()
	if enc, _ := fontDict.GetName("Encoding"); enc == "WinAnsiEncoding" {
		dec = charmap.Windows1252.NewDecoder()
	}
	text, err := dec.Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(text)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
