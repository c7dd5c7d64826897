// Package paper turns plain text into a single page PDF document. Text is
// split into paragraphs at blank lines, normalized to the WinAnsi
// character set, greedily wrapped at a fixed column and laid out top to
// bottom in one Type 1 font.
package paper

import (
	"errors"
	"fmt"

	"github.com/kmathlab/paperpdf/pkg/logger"
	"github.com/kmathlab/paperpdf/pkg/pdf"
)

// Builder produces single page documents. Unset Layout fields take their
// values from DefaultLayout, so the zero value builds a default page with
// the default glyph table.
type Builder struct {
	Layout Layout
	// Glyphs overrides the table derived from Layout.
	Glyphs *GlyphTable
	// Info is written as the document information dictionary when not
	// empty. Its fields are normalized like the body text.
	Info pdf.Info
	// Logger receives progress and warnings; nil is silent.
	Logger *logger.Logger
}

// Result is a built document together with what went into it.
type Result struct {
	File     *pdf.File
	Lines    []string
	Misses   []Miss
	Overflow OverflowReport
}

// Build splits text into paragraphs and builds the document.
func (b Builder) Build(text string) (*Result, error) {
	return b.BuildParagraphs(SplitParagraphs(text))
}

// BuildParagraphs builds the document for paragraphs in order. Under
// MissStrict any character without a glyph fails the build with a
// *MissingGlyphError; otherwise misses are logged and returned in the
// Result.
func (b Builder) BuildParagraphs(paragraphs []string) (*Result, error) {
	log := b.Logger.WithPrefix("build")
	defer log.Step("build")()

	layout := b.Layout.withDefaults()
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	table := b.Glyphs
	if table == nil {
		var err error
		if table, err = layout.GlyphTable(); err != nil {
			return nil, err
		}
	}
	norm := Normalizer{Table: table, Policy: layout.Missing}

	var misses []Miss
	normalized := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		s, m := norm.Normalize(p)
		normalized[i] = s
		misses = mergeMisses(misses, m)
	}
	info, m := normalizeInfo(norm, b.Info)
	misses = mergeMisses(misses, m)

	if len(misses) > 0 {
		if layout.Missing == MissStrict {
			return nil, &MissingGlyphError{Misses: misses}
		}
		for _, miss := range misses {
			log.Warn("no glyph for %s", miss)
		}
	}

	lines := WrapParagraphs(normalized, layout.WrapWidth, layout.LongWords)
	log.Debug("%d paragraphs wrapped into %d lines", len(paragraphs), len(lines))

	content, overflow := ContentStream(lines, layout)
	if overflow.Overflowed() {
		log.Warn("%d of %d lines fall below the bottom margin (page holds %d)",
			overflow.Lines, len(lines), overflow.Capacity)
	}

	objects, trailer := pdf.SinglePage(pdf.PageSetup{
		Width:        layout.PageWidth,
		Height:       layout.PageHeight,
		FontResource: layout.FontResource,
		BaseFont:     layout.BaseFont,
		Encoding:     layout.Encoding,
		Info:         info,
	}, content)

	file, err := pdf.Assemble(objects, trailer)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	log.Info("assembled %d objects, %d bytes", len(objects), len(file.Bytes()))

	return &Result{File: file, Lines: lines, Misses: misses, Overflow: overflow}, nil
}

// WriteFile builds the document for text and writes it to path.
func (b Builder) WriteFile(path, text string) (*Result, error) {
	res, err := b.Build(text)
	if err != nil {
		return nil, err
	}
	if err := pdf.WriteFile(path, res.File.Bytes()); err != nil {
		return nil, err
	}
	b.Logger.Info("wrote %s", path)
	return res, nil
}

func normalizeInfo(n Normalizer, info pdf.Info) (pdf.Info, []Miss) {
	var misses []Miss
	for _, field := range []*string{&info.Title, &info.Author, &info.Subject, &info.Creator, &info.Producer} {
		s, m := n.Normalize(*field)
		*field = string(Encode(s))
		misses = mergeMisses(misses, m)
	}
	return info, misses
}

// IsMissingGlyph reports whether err is or wraps a *MissingGlyphError.
func IsMissingGlyph(err error) bool {
	var mg *MissingGlyphError
	return errors.As(err, &mg)
}
