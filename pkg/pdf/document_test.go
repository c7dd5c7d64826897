package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func sampleDocument(t *testing.T) (*File, *Document) {
	t.Helper()
	setup := letter
	setup.Encoding = "WinAnsiEncoding"
	setup.Info = Info{Title: "Caf\xe9", Author: "A. Author"}
	f := singlePageFile(t, setup, "BT\n/F1 12 Tf\n72 720 Td\n(Hello) Tj\n0 -14 Td\nET")

	doc, err := NewDocument(f.Bytes())
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	return f, doc
}

// TestNewDocument tests reading back an assembled file
func TestNewDocument(t *testing.T) {
	f, doc := sampleDocument(t)
	defer doc.Close()

	if doc.Version != "1.4" {
		t.Errorf("Version = %q, expected 1.4", doc.Version)
	}
	if doc.StartXRef != f.XRefOffset() {
		t.Errorf("StartXRef = %d, expected %d", doc.StartXRef, f.XRefOffset())
	}
	if doc.NumPages() != 1 {
		t.Fatalf("NumPages = %d, expected 1", doc.NumPages())
	}

	page, err := doc.GetPage(1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Width() != 612 || page.Height() != 792 {
		t.Errorf("page size %vx%v, expected 612x792", page.Width(), page.Height())
	}
	contents, err := page.GetContents()
	if err != nil {
		t.Fatalf("GetContents failed: %v", err)
	}
	if !bytes.HasPrefix(contents, []byte("BT\n/F1 12 Tf")) {
		t.Errorf("contents = %q", contents)
	}
	font, err := page.Font("F1")
	if err != nil {
		t.Fatalf("Font failed: %v", err)
	}
	if base, _ := font.GetName("BaseFont"); base != "Helvetica" {
		t.Errorf("BaseFont = %v", base)
	}
	if _, err := page.Font("F9"); err == nil {
		t.Error("Expected error for unknown font")
	}
	if _, err := doc.GetPage(2); err == nil {
		t.Error("Expected error for page 2")
	}
}

// TestDocumentInfo tests the information dictionary
func TestDocumentInfo(t *testing.T) {
	_, doc := sampleDocument(t)
	info := doc.GetInfo()
	if info.Title != "Café" || info.Author != "A. Author" || info.PDFVersion != "1.4" {
		t.Errorf("GetInfo = %+v", info)
	}
}

// TestDocumentXRef tests the parsed cross-reference table
func TestDocumentXRef(t *testing.T) {
	f, doc := sampleDocument(t)
	entries := doc.XRef()
	if len(entries) != f.Size() {
		t.Fatalf("%d xref entries, expected %d", len(entries), f.Size())
	}
	if e := entries[0]; e.InUse || e.Generation != 65535 || e.Offset != 0 {
		t.Errorf("entry 0 = %+v", e)
	}
	for i, off := range f.Offsets() {
		if e := entries[i+1]; !e.InUse || e.Offset != off || e.Number != i+1 {
			t.Errorf("entry %d = %+v, expected offset %d", i+1, e, off)
		}
	}
}

// TestInvalidPDF tests handling of invalid PDF data
func TestInvalidPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"not pdf", []byte("This is not a PDF file")},
		{"no startxref", []byte("%PDF-1.4\n1 0 obj << >> endobj\n%%EOF\n")},
		{"startxref outside", []byte("%PDF-1.4\nstartxref\n9999\n%%EOF\n")},
		{"no xref", []byte("%PDF-1.4\nhello\nstartxref\n9\n%%EOF\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDocument(tt.data); err == nil {
				t.Error("Expected error for invalid PDF data")
			}
		})
	}
}

// TestNegativeXRefOffset tests an xref entry with a signed offset
func TestNegativeXRefOffset(t *testing.T) {
	f, _ := sampleDocument(t)
	entry := fmt.Sprintf("%010d 00000 n \n", f.Offsets()[0])
	data := bytes.Replace(f.Bytes(), []byte(entry), []byte("-000000001 00000 n \n"), 1)
	if bytes.Equal(data, f.Bytes()) {
		t.Fatal("xref entry for object 1 not found")
	}

	if _, err := NewDocument(data); err == nil {
		t.Error("Expected error for negative xref offset")
	}
	if _, err := parseXRefEntry([]byte("-000000001 00000 n")); err == nil {
		t.Error("parseXRefEntry accepted a negative offset")
	}
}

// TestGetObjectOffsetOutsideFile tests the bounds check on lookups
func TestGetObjectOffsetOutsideFile(t *testing.T) {
	_, doc := sampleDocument(t)
	for _, off := range []int64{-1, int64(len(doc.Bytes()))} {
		doc.xref[5] = XRefEntry{Number: 5, Offset: off, InUse: true}
		delete(doc.objects, 5)
		if _, err := doc.GetObject(5); err == nil {
			t.Errorf("GetObject with offset %d: expected error", off)
		}
	}
}

// TestOpen tests reading from disk
func TestOpen(t *testing.T) {
	f, _ := sampleDocument(t)
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if doc.NumPages() != 1 {
		t.Errorf("NumPages = %d", doc.NumPages())
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestCheck tests the structural check on a valid file
func TestCheck(t *testing.T) {
	f, doc := sampleDocument(t)
	report, err := doc.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if report.Objects != 6 || report.Size != int64(f.Size()) || report.StartXRef != f.XRefOffset() {
		t.Errorf("report = %+v", report)
	}
}

// TestCheckCorruptOffset moves one xref entry and expects it to be found
func TestCheckCorruptOffset(t *testing.T) {
	f, _ := sampleDocument(t)
	off := f.Offsets()[4] // object 5, the font, is not read while parsing
	data := bytes.Replace(f.Bytes(),
		[]byte(fmt.Sprintf("%010d 00000 n \n", off)),
		[]byte(fmt.Sprintf("%010d 00000 n \n", off+3)), 1)

	doc, err := NewDocument(data)
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	_, err = doc.Check()
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *StructureError, got %v", err)
	}
	if se.Object != 5 || se.XRef != off+3 || se.Actual != off {
		t.Errorf("StructureError = %+v", se)
	}
}

// TestCheckSize tests a trailer whose /Size disagrees with the table
func TestCheckSize(t *testing.T) {
	f, _ := sampleDocument(t)
	data := bytes.Replace(f.Bytes(), []byte("/Size 7"), []byte("/Size 9"), 1)

	doc, err := NewDocument(data)
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	if _, err := doc.Check(); err == nil {
		t.Error("Expected error for wrong /Size")
	}
}
