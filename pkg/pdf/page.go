package pdf

import (
	"fmt"
	"strings"
)

// Object numbers of the single page layout.
const (
	CatalogObject = 1
	PagesObject   = 2
	PageObject    = 3
	ContentObject = 4
	FontObject    = 5
	InfoObject    = 6
)

// Info holds the optional document information dictionary. Values must
// already be in the single byte text encoding.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
}

func (i Info) empty() bool {
	return i == Info{}
}

func (i Info) dict() string {
	var b strings.Builder
	b.WriteString("<<")
	for _, kv := range []struct{ key, val string }{
		{"Title", i.Title},
		{"Author", i.Author},
		{"Subject", i.Subject},
		{"Creator", i.Creator},
		{"Producer", i.Producer},
	} {
		if kv.val == "" {
			continue
		}
		fmt.Fprintf(&b, " /%s %s", kv.key, String{Value: []byte(kv.val)})
	}
	b.WriteString(" >>")
	return b.String()
}

// PageSetup describes the one page of a single page document.
type PageSetup struct {
	Width, Height float64
	// FontResource is the resource name used by the content stream, e.g. "F1".
	FontResource string
	// BaseFont is one of the standard 14 fonts, e.g. "Helvetica".
	BaseFont string
	// Encoding is the font's base encoding, e.g. "WinAnsiEncoding".
	// Empty means the font's built-in encoding.
	Encoding string
	Info     Info
}

// SinglePage returns the objects of a one page document in fixed order:
// catalog, page tree, page, content stream, font and, if setup.Info is
// not empty, the information dictionary.
func SinglePage(setup PageSetup, content []byte) ([]IndirectObject, Trailer) {
	font := fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont %s", Name(setup.BaseFont))
	if setup.Encoding != "" {
		font += " /Encoding " + Name(setup.Encoding).String()
	}
	font += " >>"

	objects := []IndirectObject{
		{Number: CatalogObject, Dict: fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", PagesObject)},
		{Number: PagesObject, Dict: fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", PageObject)},
		{Number: PageObject, Dict: fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Contents %d 0 R /Resources << /Font << %s %d 0 R >> >> >>",
			PagesObject, Real(setup.Width), Real(setup.Height), ContentObject, Name(setup.FontResource), FontObject)},
		NewStreamObject(ContentObject, content, ""),
		{Number: FontObject, Dict: font},
	}
	trailer := Trailer{Root: CatalogObject}

	if !setup.Info.empty() {
		objects = append(objects, IndirectObject{Number: InfoObject, Dict: setup.Info.dict()})
		trailer.Info = InfoObject
	}
	return objects, trailer
}
