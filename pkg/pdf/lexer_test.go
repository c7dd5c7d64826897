package pdf

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestLexerReadLine tests reading lines with each end of line marker
func TestLexerReadLine(t *testing.T) {
	lexer := NewLexerFromBytes([]byte("line1\nline2\rline3\r\nline4"))

	for _, want := range []string{"line1", "line2", "line3", "line4"} {
		line, err := lexer.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if string(line) != want {
			t.Errorf("Expected %q, got %q", want, line)
		}
	}
	if _, err := lexer.ReadLine(); err != io.EOF {
		t.Errorf("Expected io.EOF at end, got %v", err)
	}
}

// TestLexerReadBytes tests short reads
func TestLexerReadBytes(t *testing.T) {
	lexer := NewLexerFromBytes([]byte("abcdef"))
	b, err := lexer.ReadBytes(4)
	if err != nil || string(b) != "abcd" {
		t.Errorf("ReadBytes(4) = %q, %v", b, err)
	}
	b, err = lexer.ReadBytes(4)
	if err != io.ErrUnexpectedEOF || string(b) != "ef" {
		t.Errorf("ReadBytes past end = %q, %v", b, err)
	}
}

// TestIsWhitespace tests whitespace detection
func TestIsWhitespace(t *testing.T) {
	for _, ws := range []byte{' ', '\t', '\n', '\r', '\f', 0} {
		if !isWhitespace(ws) {
			t.Errorf("Expected %d to be whitespace", ws)
		}
	}
	for _, nws := range []byte{'a', '1', '/', '('} {
		if isWhitespace(nws) {
			t.Errorf("Expected %c to not be whitespace", nws)
		}
	}
}

// TestIsDelimiter tests delimiter detection
func TestIsDelimiter(t *testing.T) {
	for _, d := range []byte{'(', ')', '<', '>', '[', ']', '{', '}', '/', '%'} {
		if !isDelimiter(d) {
			t.Errorf("Expected %c to be delimiter", d)
		}
	}
	for _, nd := range []byte{'a', '1', '.', '-', '*', '\''} {
		if isDelimiter(nd) {
			t.Errorf("Expected %c to not be delimiter", nd)
		}
	}
}

// TestLexerKeywords tests bare words, including content stream operators
func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		value any
	}{
		{"obj", TokenObjStart, nil},
		{"endobj", TokenObjEnd, nil},
		{"stream", TokenStreamStart, nil},
		{"R", TokenRef, nil},
		{"xref", TokenXRef, nil},
		{"trailer", TokenTrailer, nil},
		{"startxref", TokenStartXRef, nil},
		{"true", TokenBoolean, true},
		{"null", TokenNull, nil},
		{"Tj", TokenKeyword, "Tj"},
		{"T*", TokenKeyword, "T*"},
		{"'", TokenKeyword, "'"},
	}

	for _, tt := range tests {
		tok, err := NewLexerFromBytes([]byte(tt.input)).NextToken()
		if err != nil {
			t.Errorf("NextToken(%s) failed: %v", tt.input, err)
			continue
		}
		if tok.Type != tt.typ || tok.Value != tt.value {
			t.Errorf("NextToken(%s) = %v/%v, expected %v/%v", tt.input, tok.Type, tok.Value, tt.typ, tt.value)
		}
	}
}

// TestParserParseNumbers tests parsing integers and reals
func TestParserParseNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected Object
	}{
		{"42", Integer(42)},
		{"-17", Integer(-17)},
		{"+123", Integer(123)},
		{"3.14", Real(3.14)},
		{"-2.5", Real(-2.5)},
		{".5", Real(0.5)},
		{"10.", Real(10)},
	}

	for _, tt := range tests {
		obj, err := NewParserFromBytes([]byte(tt.input)).ParseObject()
		if err != nil {
			t.Errorf("ParseObject(%s) failed: %v", tt.input, err)
			continue
		}
		if obj != tt.expected {
			t.Errorf("ParseObject(%s) = %#v, expected %#v", tt.input, obj, tt.expected)
		}
	}
}

// TestParserParseName tests parsing names with hex escapes
func TestParserParseName(t *testing.T) {
	tests := []struct {
		input    string
		expected Name
	}{
		{"/Name", "Name"},
		{"/F1", "F1"},
		{"/A#20B", "A B"},
	}

	for _, tt := range tests {
		obj, err := NewParserFromBytes([]byte(tt.input)).ParseObject()
		if err != nil {
			t.Errorf("ParseObject(%s) failed: %v", tt.input, err)
			continue
		}
		if obj != tt.expected {
			t.Errorf("ParseObject(%s) = %v, expected %v", tt.input, obj, tt.expected)
		}
	}
}

// TestParserParseString tests literal string escapes
func TestParserParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(Hello)", "Hello"},
		{"()", ""},
		{`(A \(test\) \\ case)`, `A (test) \ case`},
		{"(nested (parens) ok)", "nested (parens) ok"},
		{`(\101\102)`, "AB"},
		{"(line\\\ncontinued)", "linecontinued"},
		{`(tab\there)`, "tab\there"},
		{"<48656C6C6F>", "Hello"},
		{"<4>", "@"},
	}

	for _, tt := range tests {
		obj, err := NewParserFromBytes([]byte(tt.input)).ParseObject()
		if err != nil {
			t.Errorf("ParseObject(%s) failed: %v", tt.input, err)
			continue
		}
		if s, ok := obj.(String); !ok || string(s.Value) != tt.expected {
			t.Errorf("ParseObject(%s) = %v, expected %q", tt.input, obj, tt.expected)
		}
	}
}

// TestParserParseDictionary tests dictionaries with nested values
func TestParserParseDictionary(t *testing.T) {
	input := "<< /Type /Page /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Flag true >>"
	obj, err := NewParserFromBytes([]byte(input)).ParseObject()
	if err != nil {
		t.Fatalf("ParseObject failed: %v", err)
	}

	want := Dictionary{
		"Type":     Name("Page"),
		"MediaBox": Array{Integer(0), Integer(0), Integer(612), Integer(792)},
		"Resources": Dictionary{
			"Font": Dictionary{"F1": Reference{ObjectNumber: 5}},
		},
		"Flag": Boolean(true),
	}
	if diff := cmp.Diff(want, obj); diff != "" {
		t.Errorf("ParseObject mismatch (-want +got):\n%s", diff)
	}
}

// TestParserParseIndirectStream tests a stream object with its /Length
func TestParserParseIndirectStream(t *testing.T) {
	input := "4 0 obj << /Length 11 >> stream\nBT (x) Tj\nE\nendstream\nendobj\n"
	num, gen, obj, err := NewParserFromBytes([]byte(input)).ParseIndirectObject()
	if err != nil {
		t.Fatalf("ParseIndirectObject failed: %v", err)
	}
	if num != 4 || gen != 0 {
		t.Errorf("Expected 4 0, got %d %d", num, gen)
	}
	stream, ok := obj.(Stream)
	if !ok {
		t.Fatalf("Expected Stream, got %T", obj)
	}
	if string(stream.Data) != "BT (x) Tj\nE" {
		t.Errorf("stream data = %q", stream.Data)
	}
}

// TestParserParseIndirectMissingEndobj tests error reporting
func TestParserParseIndirectMissingEndobj(t *testing.T) {
	if _, _, _, err := NewParserFromBytes([]byte("1 0 obj << >> 2 0 obj")).ParseIndirectObject(); err == nil {
		t.Error("Expected error for missing endobj")
	}
}

// TestContentStreamParser tests splitting a content stream into operations
func TestContentStreamParser(t *testing.T) {
	content := "BT\n/F1 12 Tf\n72 720 Td\n(Hello \\(world\\)) Tj\n0 -14 Td\n[(A) -250 (B)] TJ\nT*\nET"
	ops, err := NewContentStreamParser([]byte(content)).ParseOperations()
	if err != nil {
		t.Fatalf("ParseOperations failed: %v", err)
	}

	want := []Operation{
		{Operator: "BT"},
		{Operator: "Tf", Operands: []Object{Name("F1"), Integer(12)}},
		{Operator: "Td", Operands: []Object{Integer(72), Integer(720)}},
		{Operator: "Tj", Operands: []Object{String{Value: []byte("Hello (world)")}}},
		{Operator: "Td", Operands: []Object{Integer(0), Integer(-14)}},
		{Operator: "TJ", Operands: []Object{Array{String{Value: []byte("A")}, Integer(-250), String{Value: []byte("B")}}}},
		{Operator: "T*"},
		{Operator: "ET"},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ParseOperations mismatch (-want +got):\n%s", diff)
	}
	for _, op := range ops {
		if _, ok := ContentStreamOperators[op.Operator]; !ok {
			t.Errorf("operator %s not in ContentStreamOperators", op.Operator)
		}
	}
}

// TestContentStreamParserDanglingOperands tests a truncated stream
func TestContentStreamParserDanglingOperands(t *testing.T) {
	if _, err := NewContentStreamParser([]byte("BT /F1 12")).ParseOperations(); err == nil {
		t.Error("Expected error for operands without operator")
	}
}
