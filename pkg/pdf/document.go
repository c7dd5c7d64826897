package pdf

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Document is a PDF file read into memory.
type Document struct {
	data    []byte
	Version string
	Trailer Dictionary
	Root    Dictionary
	Info    Dictionary
	Pages   []*Page
	// StartXRef is the offset stated after the startxref keyword.
	StartXRef int64
	objects   map[int]Object
	xref      map[int]XRefEntry
}

// XRefEntry is one line of a cross-reference section.
type XRefEntry struct {
	Number     int
	Offset     int64
	Generation int
	InUse      bool
}

// Page represents a PDF page
type Page struct {
	doc        *Document
	Dictionary Dictionary
	Number     int
	MediaBox   Rectangle
	Resources  Dictionary
}

// Rectangle represents a PDF rectangle
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the width of the rectangle
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the height of the rectangle
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Open opens a PDF file
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewDocument(data)
}

// NewDocument creates a new document from PDF data
func NewDocument(data []byte) (*Document, error) {
	doc := &Document{
		data:    data,
		objects: make(map[int]Object),
		xref:    make(map[int]XRefEntry),
	}
	if err := doc.parse(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) parse() error {
	if !bytes.HasPrefix(d.data, []byte("%PDF-")) {
		return fmt.Errorf("not a PDF file")
	}

	if idx := bytes.IndexAny(d.data, "\r\n"); idx > 5 {
		d.Version = string(d.data[5:idx])
	}

	startxref, err := d.findStartXRef()
	if err != nil {
		return err
	}
	d.StartXRef = startxref

	if err := d.parseXRefTable(startxref); err != nil {
		return err
	}

	rootObj, err := d.ResolveObject(d.Trailer.Get("Root"))
	if err != nil {
		return err
	}
	root, ok := rootObj.(Dictionary)
	if !ok {
		return fmt.Errorf("Root is not a dictionary")
	}
	d.Root = root

	if infoRef := d.Trailer.Get("Info"); infoRef != nil {
		if infoObj, err := d.ResolveObject(infoRef); err == nil {
			d.Info, _ = infoObj.(Dictionary)
		}
	}

	return d.parsePages()
}

// findStartXRef finds the startxref position
func (d *Document) findStartXRef() (int64, error) {
	searchLen := 1024
	if len(d.data) < searchLen {
		searchLen = len(d.data)
	}
	tailStart := len(d.data) - searchLen
	tail := d.data[tailStart:]

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}

	lexer := NewLexerFromBytes(tail[idx+len("startxref"):])
	tok, err := lexer.NextToken()
	if err != nil || tok.Type != TokenInteger {
		return 0, fmt.Errorf("invalid startxref offset")
	}
	offset := tok.Value.(int64)
	if offset < 0 || offset >= int64(len(d.data)) {
		return 0, fmt.Errorf("startxref offset %d outside file", offset)
	}
	return offset, nil
}

// parseXRefTable parses a classic xref section and the trailer after it.
// Cross-reference streams are not supported.
func (d *Document) parseXRefTable(offset int64) error {
	lexer := NewLexerFromBytes(d.data)
	lexer.pos = int(offset)

	line, err := lexer.ReadLine()
	if err != nil || string(bytes.TrimSpace(line)) != "xref" {
		return fmt.Errorf("no xref table at offset %d", offset)
	}

	for {
		lineStart := lexer.pos
		line, err := lexer.ReadLine()
		if err != nil {
			return fmt.Errorf("xref table: %w", err)
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if bytes.HasPrefix(trimmed, []byte("trailer")) {
			lexer.pos = lineStart + bytes.Index(line, []byte("trailer")) + len("trailer")
			break
		}

		// subsection header: first count
		parts := bytes.Fields(trimmed)
		if len(parts) != 2 {
			return fmt.Errorf("malformed xref subsection header %q", trimmed)
		}
		first, err1 := strconv.Atoi(string(parts[0]))
		count, err2 := strconv.Atoi(string(parts[1]))
		if err1 != nil || err2 != nil || first < 0 || count < 0 {
			return fmt.Errorf("malformed xref subsection header %q", trimmed)
		}

		for i := 0; i < count; i++ {
			entryLine, err := lexer.ReadLine()
			if err != nil {
				return fmt.Errorf("xref entry %d: %w", first+i, err)
			}
			entry, err := parseXRefEntry(entryLine)
			if err != nil {
				return fmt.Errorf("xref entry %d: %w", first+i, err)
			}
			entry.Number = first + i
			if _, exists := d.xref[entry.Number]; !exists {
				d.xref[entry.Number] = entry
			}
		}
	}

	trailerObj, err := NewParser(lexer).ParseObject()
	if err != nil {
		return fmt.Errorf("trailer: %w", err)
	}
	trailer, ok := trailerObj.(Dictionary)
	if !ok {
		return fmt.Errorf("trailer is not a dictionary")
	}
	d.Trailer = trailer
	return nil
}

// parseXRefEntry decodes "nnnnnnnnnn ggggg n" (the EOL is already removed).
func parseXRefEntry(line []byte) (XRefEntry, error) {
	fields := bytes.Fields(line)
	if len(fields) != 3 || len(fields[0]) != 10 || len(fields[1]) != 5 {
		return XRefEntry{}, fmt.Errorf("malformed entry %q", line)
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil || offset < 0 {
		return XRefEntry{}, fmt.Errorf("malformed offset %q", fields[0])
	}
	gen, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return XRefEntry{}, fmt.Errorf("malformed generation %q", fields[1])
	}
	switch string(fields[2]) {
	case "n":
		return XRefEntry{Offset: offset, Generation: gen, InUse: true}, nil
	case "f":
		return XRefEntry{Offset: offset, Generation: gen}, nil
	}
	return XRefEntry{}, fmt.Errorf("malformed type %q", fields[2])
}

// XRef returns the cross-reference entries ordered by object number.
func (d *Document) XRef() []XRefEntry {
	entries := make([]XRefEntry, 0, len(d.xref))
	for _, e := range d.xref {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })
	return entries
}

// Bytes returns the raw file data.
func (d *Document) Bytes() []byte {
	return d.data
}

// ResolveObject follows obj if it is a reference.
func (d *Document) ResolveObject(obj Object) (Object, error) {
	if obj == nil {
		return nil, fmt.Errorf("missing object")
	}
	ref, ok := obj.(Reference)
	if !ok {
		return obj, nil
	}
	return d.GetObject(ref.ObjectNumber)
}

// GetObject gets an object by number
func (d *Document) GetObject(objNum int) (Object, error) {
	if obj, ok := d.objects[objNum]; ok {
		return obj, nil
	}

	entry, ok := d.xref[objNum]
	if !ok || !entry.InUse {
		return Null{}, nil
	}
	if entry.Offset < 0 || entry.Offset >= int64(len(d.data)) {
		return nil, fmt.Errorf("object %d: offset %d outside file", objNum, entry.Offset)
	}

	num, _, obj, err := NewParserFromBytes(d.data[entry.Offset:]).ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}
	if num != objNum {
		return nil, fmt.Errorf("object %d: xref offset %d points at object %d", objNum, entry.Offset, num)
	}

	d.objects[objNum] = obj
	return obj, nil
}

func (d *Document) parsePages() error {
	pagesObj, err := d.ResolveObject(d.Root.Get("Pages"))
	if err != nil {
		return fmt.Errorf("Pages: %w", err)
	}
	pagesDict, ok := pagesObj.(Dictionary)
	if !ok {
		return fmt.Errorf("Pages is not a dictionary")
	}
	return d.parsePagesNode(pagesDict, nil, Rectangle{}, 0)
}

// parsePagesNode walks the page tree, passing inherited attributes down.
func (d *Document) parsePagesNode(node Dictionary, resources Dictionary, mediaBox Rectangle, depth int) error {
	if depth > 32 {
		return fmt.Errorf("page tree too deep")
	}

	if res := node.Get("Resources"); res != nil {
		if resObj, err := d.ResolveObject(res); err == nil {
			if dict, ok := resObj.(Dictionary); ok {
				resources = dict
			}
		}
	}
	if mb := node.Get("MediaBox"); mb != nil {
		if mbObj, err := d.ResolveObject(mb); err == nil {
			if arr, ok := mbObj.(Array); ok && len(arr) == 4 {
				mediaBox = arrayToRectangle(arr)
			}
		}
	}

	nodeType, _ := node.GetName("Type")
	switch nodeType {
	case "Pages":
		kidsObj, err := d.ResolveObject(node.Get("Kids"))
		if err != nil {
			return fmt.Errorf("Kids: %w", err)
		}
		kids, ok := kidsObj.(Array)
		if !ok {
			return fmt.Errorf("Kids is not an array")
		}
		for _, kidRef := range kids {
			kidObj, err := d.ResolveObject(kidRef)
			if err != nil {
				return err
			}
			kid, ok := kidObj.(Dictionary)
			if !ok {
				return fmt.Errorf("page tree node is not a dictionary")
			}
			if err := d.parsePagesNode(kid, resources, mediaBox, depth+1); err != nil {
				return err
			}
		}
	case "Page":
		d.Pages = append(d.Pages, &Page{
			doc:        d,
			Dictionary: node,
			Number:     len(d.Pages) + 1,
			MediaBox:   mediaBox,
			Resources:  resources,
		})
	default:
		return fmt.Errorf("unexpected page tree node type %q", nodeType)
	}
	return nil
}

func arrayToRectangle(arr Array) Rectangle {
	return Rectangle{
		LLX: objectToFloat(arr[0]),
		LLY: objectToFloat(arr[1]),
		URX: objectToFloat(arr[2]),
		URY: objectToFloat(arr[3]),
	}
}

// NumPages returns the number of pages
func (d *Document) NumPages() int {
	return len(d.Pages)
}

// GetPage returns a page by number (1-indexed)
func (d *Document) GetPage(num int) (*Page, error) {
	if num < 1 || num > len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range", num)
	}
	return d.Pages[num-1], nil
}

// GetContents returns the page contents as decoded bytes
func (p *Page) GetContents() ([]byte, error) {
	contentsRef := p.Dictionary.Get("Contents")
	if contentsRef == nil {
		return nil, nil
	}
	contentsObj, err := p.doc.ResolveObject(contentsRef)
	if err != nil {
		return nil, err
	}

	switch contents := contentsObj.(type) {
	case Stream:
		return contents.Decode()
	case Array:
		var buf bytes.Buffer
		for _, ref := range contents {
			obj, err := p.doc.ResolveObject(ref)
			if err != nil {
				return nil, err
			}
			stream, ok := obj.(Stream)
			if !ok {
				return nil, fmt.Errorf("content array element is not a stream")
			}
			data, err := stream.Decode()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("invalid Contents type")
}

// Font returns the font dictionary registered under name in the page
// resources, e.g. "F1".
func (p *Page) Font(name string) (Dictionary, error) {
	fontsObj, err := p.doc.ResolveObject(p.Resources.Get("Font"))
	if err != nil {
		return nil, fmt.Errorf("page %d has no font resources", p.Number)
	}
	fonts, ok := fontsObj.(Dictionary)
	if !ok {
		return nil, fmt.Errorf("page %d: Font resource is not a dictionary", p.Number)
	}
	fontObj, err := p.doc.ResolveObject(fonts.Get(name))
	if err != nil {
		return nil, fmt.Errorf("page %d: font %s: %w", p.Number, name, err)
	}
	font, ok := fontObj.(Dictionary)
	if !ok {
		return nil, fmt.Errorf("page %d: font %s is not a dictionary", p.Number, name)
	}
	return font, nil
}

// Width returns the page width
func (p *Page) Width() float64 {
	return p.MediaBox.Width()
}

// Height returns the page height
func (p *Page) Height() float64 {
	return p.MediaBox.Height()
}

// Close releases the document data
func (d *Document) Close() error {
	d.data = nil
	d.objects = nil
	d.xref = nil
	return nil
}

// DocumentInfo contains PDF document metadata
type DocumentInfo struct {
	Title      string
	Author     string
	Subject    string
	Creator    string
	Producer   string
	PDFVersion string
}

// GetInfo returns document metadata
func (d *Document) GetInfo() DocumentInfo {
	info := DocumentInfo{PDFVersion: d.Version}
	if d.Info == nil {
		return info
	}
	info.Title = objectToString(d.Info.Get("Title"))
	info.Author = objectToString(d.Info.Get("Author"))
	info.Subject = objectToString(d.Info.Get("Subject"))
	info.Creator = objectToString(d.Info.Get("Creator"))
	info.Producer = objectToString(d.Info.Get("Producer"))
	return info
}

func objectToString(obj Object) string {
	switch v := obj.(type) {
	case String:
		return v.Text()
	case Name:
		return string(v)
	}
	return ""
}
