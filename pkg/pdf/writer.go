package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"
	"golang.org/x/crypto/blake2b"
)

// Header is the file header: the version line and a comment with four
// bytes above 127 so that transfer tools treat the file as binary.
const Header = "%PDF-1.4\n%\xE2\xE3\xCF\xD3\n"

// IndirectObject is a numbered object waiting to be serialized. Dict is
// the object's dictionary in PDF syntax. Stream objects carry their
// payload in Stream; the /Length entry is added by NewStreamObject.
type IndirectObject struct {
	Number int
	Dict   string
	Stream []byte
}

// NewStreamObject wraps data in a stream object. extra is appended to
// the stream dictionary after /Length and may be empty.
func NewStreamObject(number int, data []byte, extra string) IndirectObject {
	dict := "<< /Length " + strconv.Itoa(len(data))
	if extra != "" {
		dict += " " + extra
	}
	dict += " >>"
	return IndirectObject{Number: number, Dict: dict, Stream: data}
}

// Bytes serializes the object, including the trailing newline.
func (o IndirectObject) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d 0 obj %s", o.Number, o.Dict)
	if o.Stream == nil {
		buf.WriteString(" endobj\n")
		return buf.Bytes()
	}
	buf.WriteString(" stream\n")
	buf.Write(o.Stream)
	buf.WriteString("\nendstream\nendobj\n")
	return buf.Bytes()
}

// Trailer names the catalog and, if non-zero, the Info dictionary.
type Trailer struct {
	Root int
	Info int
}

// File is an assembled PDF file. It is immutable once returned by
// Assemble.
type File struct {
	data       []byte
	offsets    []int64
	xrefOffset int64
}

// Bytes returns the file contents. The slice must not be modified.
func (f *File) Bytes() []byte { return f.data }

// Offsets returns the byte offset of each object; index 0 is object 1.
func (f *File) Offsets() []int64 {
	return append([]int64(nil), f.offsets...)
}

// XRefOffset returns the offset of the xref keyword.
func (f *File) XRefOffset() int64 { return f.xrefOffset }

// Size returns the trailer /Size value: the number of objects plus the
// free entry for object 0.
func (f *File) Size() int { return len(f.offsets) + 1 }

// Digest returns the BLAKE2b-256 hash of the file contents.
func (f *File) Digest() [blake2b.Size256]byte {
	return blake2b.Sum256(f.data)
}

// WriteTo writes the file contents to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.data)
	return int64(n), err
}

// Assemble serializes objects into a complete PDF file. The objects must
// be numbered 1, 2, ... in slice order. The work is done in stages, each
// depending only on the output of the previous one: object bytes, then
// offsets, then the xref section, then the trailer. The result is checked
// against the recorded offsets before it is returned; a mismatch is a
// *StructureError.
func Assemble(objects []IndirectObject, trailer Trailer) (*File, error) {
	if len(objects) == 0 {
		return nil, fmt.Errorf("pdf: no objects to assemble")
	}
	for i, obj := range objects {
		if obj.Number != i+1 {
			return nil, fmt.Errorf("pdf: object %d is numbered %d", i+1, obj.Number)
		}
	}
	if trailer.Root < 1 || trailer.Root > len(objects) {
		return nil, fmt.Errorf("pdf: root object %d does not exist", trailer.Root)
	}
	if trailer.Info < 0 || trailer.Info > len(objects) {
		return nil, fmt.Errorf("pdf: info object %d does not exist", trailer.Info)
	}

	// serialized objects
	bodies := make([][]byte, len(objects))
	for i, obj := range objects {
		bodies[i] = obj.Bytes()
	}

	// offsets
	offsets := make([]int64, len(bodies))
	pos := int64(len(Header))
	for i, body := range bodies {
		offsets[i] = pos
		pos += int64(len(body))
	}
	xrefOffset := pos

	xref := buildXRef(offsets)
	tail := buildTrailer(len(offsets)+1, trailer, xrefOffset)

	buf := bytes.NewBuffer(make([]byte, 0, int(xrefOffset)+len(xref)+len(tail)))
	buf.WriteString(Header)
	for _, body := range bodies {
		buf.Write(body)
	}
	buf.Write(xref)
	buf.Write(tail)

	if want := xrefOffset + int64(len(xref)+len(tail)); int64(buf.Len()) != want {
		return nil, &StructureError{Object: -1,
			Reason: fmt.Sprintf("assembled %d bytes, expected %d", buf.Len(), want)}
	}

	f := &File{data: buf.Bytes(), offsets: offsets, xrefOffset: xrefOffset}
	if err := f.verify(); err != nil {
		return nil, err
	}
	return f, nil
}

// buildXRef writes the xref section: one subsection starting at object 0,
// whose first entry is the head of the free list.
func buildXRef(offsets []int64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	return buf.Bytes()
}

func buildTrailer(size int, t Trailer, xrefOffset int64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "trailer << /Size %d /Root %d 0 R", size, t.Root)
	if t.Info > 0 {
		fmt.Fprintf(&buf, " /Info %d 0 R", t.Info)
	}
	buf.WriteString(" >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

// verify compares the recorded offsets with the assembled bytes.
func (f *File) verify() error {
	for i, off := range f.offsets {
		header := []byte(fmt.Sprintf("%d 0 obj ", i+1))
		if off >= int64(len(f.data)) || !bytes.HasPrefix(f.data[off:], header) {
			return &StructureError{Object: i + 1, XRef: off, Actual: -1,
				Reason: "assembled bytes do not match the recorded offset"}
		}
	}
	if !bytes.HasPrefix(f.data[f.xrefOffset:], []byte("xref\n")) {
		return &StructureError{Object: -1,
			Reason: fmt.Sprintf("assembled bytes have no xref section at %d", f.xrefOffset)}
	}
	return nil
}

// WriteFile writes data to path atomically: the bytes go to a temporary
// file in the destination directory which is then renamed over path.
// Missing parent directories are created.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
