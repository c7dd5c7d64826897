// Package pdf reads and writes the small subset of the PDF file format
// used by paperpdf: flat object tables, classic cross-reference sections
// and uncompressed (or Flate-compressed, when reading) streams.
package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ObjectType represents the type of a PDF object
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBoolean
	ObjInteger
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDictionary
	ObjStream
	ObjReference
)

// Object represents a PDF object. String returns the object in PDF
// syntax, so that a parsed object can be written back.
type Object interface {
	Type() ObjectType
	String() string
}

// Null represents a PDF null object
type Null struct{}

func (n Null) Type() ObjectType { return ObjNull }
func (n Null) String() string   { return "null" }

// Boolean represents a PDF boolean object
type Boolean bool

func (b Boolean) Type() ObjectType { return ObjBoolean }
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Integer represents a PDF integer object
type Integer int64

func (i Integer) Type() ObjectType { return ObjInteger }
func (i Integer) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real represents a PDF real number object
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String represents a PDF string object. Value holds the decoded bytes.
type String struct {
	Value []byte
	IsHex bool
}

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string {
	if s.IsHex {
		return fmt.Sprintf("<%X>", s.Value)
	}
	return "(" + EscapeString(string(s.Value)) + ")"
}

// Text returns the string value as text. Strings starting with a
// UTF-16BE byte order mark are decoded as such, everything else is
// treated as Latin-1.
func (s String) Text() string {
	if len(s.Value) >= 2 && s.Value[0] == 0xFE && s.Value[1] == 0xFF {
		return decodeUTF16BE(s.Value[2:])
	}
	runes := make([]rune, len(s.Value))
	for i, b := range s.Value {
		runes[i] = rune(b)
	}
	return string(runes)
}

// Name represents a PDF name object
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + string(n) }

// Array represents a PDF array object
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Dictionary represents a PDF dictionary object
type Dictionary map[Name]Object

func (d Dictionary) Type() ObjectType { return ObjDictionary }

// String writes the entries sorted by key.
func (d Dictionary) String() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<<")
	for _, k := range keys {
		b.WriteString(" /")
		b.WriteString(k)
		b.WriteByte(' ')
		b.WriteString(d[Name(k)].String())
	}
	b.WriteString(" >>")
	return b.String()
}

// Get returns the value for a key, or nil
func (d Dictionary) Get(key string) Object {
	return d[Name(key)]
}

// GetName returns the name value for a key
func (d Dictionary) GetName(key string) (Name, bool) {
	n, ok := d.Get(key).(Name)
	return n, ok
}

// GetInt returns the integer value for a key
func (d Dictionary) GetInt(key string) (int64, bool) {
	switch v := d.Get(key).(type) {
	case Integer:
		return int64(v), true
	case Real:
		return int64(v), true
	}
	return 0, false
}

// GetArray returns the array value for a key
func (d Dictionary) GetArray(key string) (Array, bool) {
	a, ok := d.Get(key).(Array)
	return a, ok
}

// GetDict returns the dictionary value for a key
func (d Dictionary) GetDict(key string) (Dictionary, bool) {
	dict, ok := d.Get(key).(Dictionary)
	return dict, ok
}

// Stream represents a PDF stream object
type Stream struct {
	Dictionary Dictionary
	Data       []byte
}

func (s Stream) Type() ObjectType { return ObjStream }
func (s Stream) String() string {
	return s.Dictionary.String() + " stream...endstream"
}

// Decode returns the stream data with its filters removed. Only
// FlateDecode is supported.
func (s Stream) Decode() ([]byte, error) {
	var filters []Name
	switch f := s.Dictionary.Get("Filter").(type) {
	case nil:
		return s.Data, nil
	case Name:
		filters = []Name{f}
	case Array:
		for _, item := range f {
			if n, ok := item.(Name); ok {
				filters = append(filters, n)
			}
		}
	}

	data := s.Data
	for _, filter := range filters {
		if filter != "FlateDecode" {
			return nil, fmt.Errorf("unsupported filter: %s", filter)
		}
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", filter, err)
		}
		data, err = io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", filter, err)
		}
	}
	return data, nil
}

// Reference represents a PDF indirect object reference
type Reference struct {
	ObjectNumber     int
	GenerationNumber int
}

func (r Reference) Type() ObjectType { return ObjReference }
func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

func decodeUTF16BE(data []byte) string {
	if len(data)%2 != 0 {
		data = append(data, 0)
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return string(utf16.Decode(units))
}

func objectToFloat(obj Object) float64 {
	switch v := obj.(type) {
	case Integer:
		return float64(v)
	case Real:
		return float64(v)
	}
	return 0
}
