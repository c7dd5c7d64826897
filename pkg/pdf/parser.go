package pdf

import (
	"bytes"
	"fmt"
	"io"
)

// Parser parses PDF objects from tokens
type Parser struct {
	lexer  *Lexer
	tokens []Token
	pos    int
}

// NewParser creates a new parser for the given lexer
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// NewParserFromBytes creates a new parser from byte slice
func NewParserFromBytes(data []byte) *Parser {
	return NewParser(NewLexerFromBytes(data))
}

// nextToken gets the next token, buffering for lookahead
func (p *Parser) nextToken() (Token, error) {
	tok, err := p.peekTokenN(0)
	if err != nil {
		return Token{}, err
	}
	p.pos++
	return tok, nil
}

// peekToken peeks at the next token without consuming it
func (p *Parser) peekToken() (Token, error) {
	return p.peekTokenN(0)
}

// peekTokenN peeks at the nth token ahead (0-indexed)
func (p *Parser) peekTokenN(n int) (Token, error) {
	for len(p.tokens) <= p.pos+n {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return Token{}, err
		}
		p.tokens = append(p.tokens, tok)
	}
	return p.tokens[p.pos+n], nil
}

// ParseObject parses a single PDF object
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenInteger:
		// num gen R
		next1, err1 := p.peekTokenN(0)
		next2, err2 := p.peekTokenN(1)
		if err1 == nil && err2 == nil && next1.Type == TokenInteger && next2.Type == TokenRef {
			p.pos += 2
			return Reference{
				ObjectNumber:     int(tok.Value.(int64)),
				GenerationNumber: int(next1.Value.(int64)),
			}, nil
		}
		return Integer(tok.Value.(int64)), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDictionary()
	}

	if obj, ok := scalar(tok); ok {
		return obj, nil
	}
	return nil, fmt.Errorf("unexpected token type %d at position %d", tok.Type, tok.Pos)
}

// scalar converts a token that stands for a complete direct object.
func scalar(tok Token) (Object, bool) {
	switch tok.Type {
	case TokenNull:
		return Null{}, true
	case TokenBoolean:
		return Boolean(tok.Value.(bool)), true
	case TokenInteger:
		return Integer(tok.Value.(int64)), true
	case TokenReal:
		return Real(tok.Value.(float64)), true
	case TokenString:
		return String{Value: tok.Value.([]byte)}, true
	case TokenHexString:
		return String{Value: tok.Value.([]byte), IsHex: true}, true
	case TokenName:
		return Name(tok.Value.(string)), true
	}
	return nil, false
}

// parseArray parses a PDF array [...]
func (p *Parser) parseArray() (Array, error) {
	arr := Array{}
	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenArrayEnd {
			p.pos++
			return arr, nil
		}
		if tok.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated array at position %d", tok.Pos)
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// parseDictionary parses a PDF dictionary <<...>>
func (p *Parser) parseDictionary() (Dictionary, error) {
	dict := make(Dictionary)
	for {
		keyTok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		if keyTok.Type == TokenDictEnd {
			return dict, nil
		}
		if keyTok.Type != TokenName {
			return nil, fmt.Errorf("expected name as dictionary key at position %d", keyTok.Pos)
		}

		value, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		dict[Name(keyTok.Value.(string))] = value
	}
}

// ParseIndirectObject parses an indirect object definition (num gen obj ... endobj)
func (p *Parser) ParseIndirectObject() (int, int, Object, error) {
	numTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if numTok.Type != TokenInteger {
		return 0, 0, nil, fmt.Errorf("expected object number at position %d", numTok.Pos)
	}
	genTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if genTok.Type != TokenInteger {
		return 0, 0, nil, fmt.Errorf("expected generation number at position %d", genTok.Pos)
	}
	objTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if objTok.Type != TokenObjStart {
		return 0, 0, nil, fmt.Errorf("expected 'obj' keyword at position %d", objTok.Pos)
	}
	objNum := int(numTok.Value.(int64))
	genNum := int(genTok.Value.(int64))

	obj, err := p.ParseObject()
	if err != nil {
		return 0, 0, nil, err
	}

	next, err := p.peekToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if next.Type == TokenStreamStart {
		dict, ok := obj.(Dictionary)
		if !ok {
			return 0, 0, nil, fmt.Errorf("stream must have dictionary at position %d", next.Pos)
		}
		data, err := p.readStreamData(next, dict)
		if err != nil {
			return 0, 0, nil, err
		}
		obj = Stream{Dictionary: dict, Data: data}

		endTok, err := p.nextToken()
		if err != nil {
			return 0, 0, nil, err
		}
		if endTok.Type != TokenStreamEnd {
			return 0, 0, nil, fmt.Errorf("expected 'endstream' at position %d", endTok.Pos)
		}
	}

	endTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if endTok.Type != TokenObjEnd {
		return 0, 0, nil, fmt.Errorf("expected 'endobj' keyword at position %d", endTok.Pos)
	}

	return objNum, genNum, obj, nil
}

// readStreamData reads the raw data following the 'stream' keyword tok.
// The lookahead buffer is discarded because the stream body is read
// directly from the lexer.
func (p *Parser) readStreamData(tok Token, dict Dictionary) ([]byte, error) {
	lexer := p.lexer
	lexer.pos = int(tok.Pos) + len("stream")
	p.tokens = p.tokens[:0]
	p.pos = 0

	// the keyword is followed by CRLF or LF
	if b, _ := lexer.peekByte(); b == '\r' {
		lexer.pos++
	}
	if b, _ := lexer.peekByte(); b == '\n' {
		lexer.pos++
	}

	length, ok := dict.Get("Length").(Integer)
	if !ok {
		return p.readStreamUntilEnd()
	}
	return lexer.ReadBytes(int(length))
}

// readStreamUntilEnd is used when /Length is missing or indirect.
func (p *Parser) readStreamUntilEnd() ([]byte, error) {
	lexer := p.lexer
	rest := lexer.data[lexer.pos:]
	idx := bytes.Index(rest, []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("missing 'endstream' after position %d", lexer.pos)
	}
	data := bytes.TrimRight(rest[:idx], "\r\n")
	lexer.pos += len(data)
	return data, nil
}

// Operation represents a content stream operation
type Operation struct {
	Operator string
	Operands []Object
}

// ContentStreamParser parses content streams
type ContentStreamParser struct {
	parser *Parser
}

// NewContentStreamParser creates a new content stream parser
func NewContentStreamParser(data []byte) *ContentStreamParser {
	return &ContentStreamParser{parser: NewParserFromBytes(data)}
}

// ParseOperations parses all operations from a content stream
func (c *ContentStreamParser) ParseOperations() ([]Operation, error) {
	p := c.parser
	var operations []Operation
	var operands []Object

	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case TokenEOF:
			if len(operands) > 0 {
				return nil, fmt.Errorf("operands without operator at end of content stream")
			}
			return operations, nil
		case TokenKeyword:
			p.pos++
			operations = append(operations, Operation{
				Operator: tok.Value.(string),
				Operands: operands,
			})
			operands = nil
			continue
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		operands = append(operands, obj)
	}
}

// ContentStreamOperators names the operators understood by the preview
// renderer. Other operators are parsed but ignored.
var ContentStreamOperators = map[string]string{
	"BT": "BeginText",
	"ET": "EndText",
	"Tf": "SetFont",
	"TL": "SetTextLeading",
	"Td": "MoveText",
	"TD": "MoveTextAndSetLeading",
	"Tm": "SetTextMatrix",
	"T*": "MoveToNextLine",
	"Tj": "ShowText",
	"TJ": "ShowTextArray",
	"'":  "MoveAndShowText",
	"q":  "SaveGraphicsState",
	"Q":  "RestoreGraphicsState",
}
