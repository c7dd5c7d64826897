package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNull
	TokenBoolean
	TokenInteger
	TokenReal
	TokenString
	TokenHexString
	TokenName
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
	TokenStreamStart
	TokenStreamEnd
	TokenObjStart
	TokenObjEnd
	TokenRef
	TokenXRef
	TokenTrailer
	TokenStartXRef
	// TokenKeyword is any other bare word, e.g. a content stream operator.
	TokenKeyword
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value interface{}
	Pos   int64
}

// Lexer splits PDF data into tokens. It works on an in-memory byte slice;
// positions are offsets into that slice.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexerFromBytes creates a new lexer from byte slice
func NewLexerFromBytes(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Position returns the current position
func (l *Lexer) Position() int64 {
	return int64(l.pos)
}

func (l *Lexer) readByte() (byte, error) {
	if l.pos >= len(l.data) {
		return 0, io.EOF
	}
	b := l.data[l.pos]
	l.pos++
	return b, nil
}

func (l *Lexer) peekByte() (byte, error) {
	if l.pos >= len(l.data) {
		return 0, io.EOF
	}
	return l.data[l.pos], nil
}

// skipWhitespace skips whitespace and comments
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		switch {
		case isWhitespace(b):
			l.pos++
		case b == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\r' && l.data[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// isWhitespace checks if a byte is PDF whitespace
func isWhitespace(b byte) bool {
	return b == 0 || b == '\t' || b == '\n' || b == '\f' || b == '\r' || b == ' '
}

// isDelimiter checks if a byte is a PDF delimiter
func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' ||
		b == '[' || b == ']' || b == '{' || b == '}' ||
		b == '/' || b == '%'
}

// NextToken returns the next token
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	pos := int64(l.pos)
	b, err := l.readByte()
	if err == io.EOF {
		return Token{Type: TokenEOF, Pos: pos}, nil
	}

	switch b {
	case '[':
		return Token{Type: TokenArrayStart, Pos: pos}, nil
	case ']':
		return Token{Type: TokenArrayEnd, Pos: pos}, nil
	case '(':
		return l.readLiteralString(pos)
	case '<':
		if next, _ := l.peekByte(); next == '<' {
			l.pos++
			return Token{Type: TokenDictStart, Pos: pos}, nil
		}
		return l.readHexString(pos)
	case '>':
		if next, _ := l.peekByte(); next == '>' {
			l.pos++
			return Token{Type: TokenDictEnd, Pos: pos}, nil
		}
		return Token{}, fmt.Errorf("unexpected '>' at position %d", pos)
	case '/':
		return l.readName(pos)
	case '+', '-', '.':
		l.pos--
		return l.readNumber(pos)
	}

	if b >= '0' && b <= '9' {
		l.pos--
		return l.readNumber(pos)
	}
	if !isDelimiter(b) {
		l.pos--
		return l.readKeyword(pos)
	}
	return Token{}, fmt.Errorf("unexpected character '%c' at position %d", b, pos)
}

// readLiteralString reads a literal string (...)
func (l *Lexer) readLiteralString(pos int64) (Token, error) {
	var buf bytes.Buffer
	depth := 1

	for {
		b, err := l.readByte()
		if err != nil {
			return Token{}, fmt.Errorf("unterminated string at position %d", pos)
		}

		switch b {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: buf.Bytes(), Pos: pos}, nil
			}
		case '\\':
			buf.Write(l.readEscapeSequence())
			continue
		}
		buf.WriteByte(b)
	}
}

// readEscapeSequence reads the part of an escape after the backslash
func (l *Lexer) readEscapeSequence() []byte {
	b, err := l.readByte()
	if err != nil {
		return nil
	}

	switch b {
	case 'n':
		return []byte{'\n'}
	case 'r':
		return []byte{'\r'}
	case 't':
		return []byte{'\t'}
	case 'b':
		return []byte{'\b'}
	case 'f':
		return []byte{'\f'}
	case '\r':
		// line continuation
		if next, _ := l.peekByte(); next == '\n' {
			l.pos++
		}
		return nil
	case '\n':
		return nil
	}

	if b >= '0' && b <= '7' {
		val := int(b - '0')
		for i := 0; i < 2; i++ {
			next, err := l.peekByte()
			if err != nil || next < '0' || next > '7' {
				break
			}
			l.pos++
			val = val*8 + int(next-'0')
		}
		return []byte{byte(val)}
	}

	// \( \) \\ and unknown escapes stand for the character itself
	return []byte{b}
}

// readHexString reads a hexadecimal string <...>
func (l *Lexer) readHexString(pos int64) (Token, error) {
	var digits []byte
	for {
		b, err := l.readByte()
		if err != nil {
			return Token{}, fmt.Errorf("unterminated hex string at position %d", pos)
		}
		if b == '>' {
			break
		}
		if !isWhitespace(b) {
			digits = append(digits, b)
		}
	}

	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}

	decoded := make([]byte, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		val, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return Token{}, fmt.Errorf("invalid hex string at position %d", pos)
		}
		decoded[i/2] = byte(val)
	}

	return Token{Type: TokenHexString, Value: decoded, Pos: pos}, nil
}

// readName reads a name object; the leading slash has been consumed
func (l *Lexer) readName(pos int64) (Token, error) {
	var buf bytes.Buffer

	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++

		if b != '#' {
			buf.WriteByte(b)
			continue
		}
		if l.pos+2 > len(l.data) {
			return Token{}, fmt.Errorf("invalid name escape at position %d", pos)
		}
		val, err := strconv.ParseUint(string(l.data[l.pos:l.pos+2]), 16, 8)
		if err != nil {
			return Token{}, fmt.Errorf("invalid name escape at position %d", pos)
		}
		l.pos += 2
		buf.WriteByte(byte(val))
	}

	return Token{Type: TokenName, Value: buf.String(), Pos: pos}, nil
}

// readNumber reads a number (integer or real)
func (l *Lexer) readNumber(pos int64) (Token, error) {
	start := l.pos
	hasDecimal := false
	hasDigit := false

loop:
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		switch {
		case b == '+' || b == '-':
			if l.pos > start {
				break loop
			}
		case b == '.':
			if hasDecimal {
				break loop
			}
			hasDecimal = true
		case b >= '0' && b <= '9':
			hasDigit = true
		default:
			break loop
		}
		l.pos++
	}

	if !hasDigit {
		return Token{}, fmt.Errorf("invalid number at position %d", pos)
	}

	str := string(l.data[start:l.pos])
	if hasDecimal {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return Token{}, fmt.Errorf("invalid real number at position %d", pos)
		}
		return Token{Type: TokenReal, Value: val, Pos: pos}, nil
	}

	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("invalid integer at position %d", pos)
	}
	return Token{Type: TokenInteger, Value: val, Pos: pos}, nil
}

var keywords = map[string]TokenType{
	"obj":       TokenObjStart,
	"endobj":    TokenObjEnd,
	"stream":    TokenStreamStart,
	"endstream": TokenStreamEnd,
	"R":         TokenRef,
	"xref":      TokenXRef,
	"trailer":   TokenTrailer,
	"startxref": TokenStartXRef,
}

// readKeyword reads a bare word: true, false, null, a structural
// keyword, or anything else as TokenKeyword.
func (l *Lexer) readKeyword(pos int64) (Token, error) {
	start := l.pos
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
	}

	word := string(l.data[start:l.pos])
	switch word {
	case "true":
		return Token{Type: TokenBoolean, Value: true, Pos: pos}, nil
	case "false":
		return Token{Type: TokenBoolean, Value: false, Pos: pos}, nil
	case "null":
		return Token{Type: TokenNull, Pos: pos}, nil
	}
	if tt, ok := keywords[word]; ok {
		return Token{Type: tt, Pos: pos}, nil
	}
	return Token{Type: TokenKeyword, Value: word, Pos: pos}, nil
}

// ReadLine reads until end of line. CR, LF and CRLF all end a line.
func (l *Lexer) ReadLine() ([]byte, error) {
	if l.pos >= len(l.data) {
		return nil, io.EOF
	}
	start := l.pos
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case '\n':
			line := l.data[start:l.pos]
			l.pos++
			return line, nil
		case '\r':
			line := l.data[start:l.pos]
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '\n' {
				l.pos++
			}
			return line, nil
		}
		l.pos++
	}
	return l.data[start:], nil
}

// ReadBytes reads n bytes
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || l.pos+n > len(l.data) {
		rest := l.data[l.pos:]
		l.pos = len(l.data)
		return rest, io.ErrUnexpectedEOF
	}
	b := l.data[l.pos : l.pos+n]
	l.pos += n
	return b, nil
}
