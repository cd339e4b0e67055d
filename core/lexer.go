package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF       TokenType = iota
	TokenKeyword             // ISO-10303-21, HEADER, DATA, ENDSEC, IFCWALL, etc.
	TokenInteger             // 123
	TokenReal                // 3.14, 1.E-05
	TokenString              // 'hello' (raw, escapes not yet decoded)
	TokenEnum                // .T.
	TokenRef                 // #123
	TokenBinary              // "0FF"
	TokenLParen              // (
	TokenRParen              // )
	TokenComma               // ,
	TokenSemicolon           // ;
	TokenEquals              // =
	TokenDollar              // $
	TokenStar                // *
)

// String returns a readable name for the token type
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenKeyword:
		return "keyword"
	case TokenInteger:
		return "integer"
	case TokenReal:
		return "real"
	case TokenString:
		return "string"
	case TokenEnum:
		return "enumeration"
	case TokenRef:
		return "reference"
	case TokenBinary:
		return "binary"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenComma:
		return "','"
	case TokenSemicolon:
		return "';'"
	case TokenEquals:
		return "'='"
	case TokenDollar:
		return "'$'"
	case TokenStar:
		return "'*'"
	default:
		return "unknown"
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64 // Position in stream
	Line  int
}

// Lexer performs lexical analysis of STEP physical file content
type Lexer struct {
	reader *bufio.Reader
	pos    int64
	line   int
}

// NewLexer creates a new lexer
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReaderSize(r, 64*1024),
		pos:    0,
		line:   1,
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (*Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return nil, err
	}

	b, err := l.peek()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: l.pos, Line: l.line}, nil
	}
	if err != nil {
		return nil, err
	}

	switch b {
	case '(':
		return l.single(TokenLParen)
	case ')':
		return l.single(TokenRParen)
	case ',':
		return l.single(TokenComma)
	case ';':
		return l.single(TokenSemicolon)
	case '=':
		return l.single(TokenEquals)
	case '$':
		return l.single(TokenDollar)
	case '*':
		return l.single(TokenStar)
	case '\'':
		return l.readString()
	case '"':
		return l.readBinary()
	case '#':
		return l.readRef()
	case '.':
		// An enumeration starts with '.' followed by a letter; a real never does in STEP,
		// but be lenient and treat ".5" as a number.
		next, err := l.peekN(2)
		if err == nil && len(next) == 2 && isDigit(next[1]) {
			return l.readNumber()
		}
		return l.readEnum()
	}

	if isDigit(b) || b == '-' || b == '+' {
		return l.readNumber()
	}

	if isAlpha(b) || b == '_' {
		return l.readKeyword()
	}

	return nil, fmt.Errorf("unexpected character '%c' at line %d (offset %d)", b, l.line, l.pos)
}

// single consumes one byte and returns it as a token of the given type
func (l *Lexer) single(t TokenType) (*Token, error) {
	startPos := l.pos
	line := l.line
	b, err := l.readByte()
	if err != nil {
		return nil, err
	}
	return &Token{Type: t, Value: []byte{b}, Pos: startPos, Line: line}, nil
}

// readByte reads a single byte and advances position
func (l *Lexer) readByte() (byte, error) {
	b, err := l.reader.ReadByte()
	if err != nil {
		return 0, err
	}
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b, nil
}

// peek looks at the next byte without consuming it
func (l *Lexer) peek() (byte, error) {
	bytes, err := l.reader.Peek(1)
	if err != nil {
		return 0, err
	}
	return bytes[0], nil
}

// peekN looks at the next n bytes without consuming them
func (l *Lexer) peekN(n int) ([]byte, error) {
	return l.reader.Peek(n)
}

// skipSpaceAndComments skips whitespace and /* ... */ comments
func (l *Lexer) skipSpaceAndComments() error {
	for {
		b, err := l.peek()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if isWhitespace(b) {
			l.readByte()
			continue
		}
		if b == '/' {
			next, err := l.peekN(2)
			if err == nil && len(next) == 2 && next[1] == '*' {
				if err := l.skipComment(); err != nil {
					return err
				}
				continue
			}
		}
		return nil
	}
}

// skipComment consumes a comment including its terminator
func (l *Lexer) skipComment() error {
	startLine := l.line
	// Consume "/*"
	l.readByte()
	l.readByte()

	var prev byte
	for {
		b, err := l.readByte()
		if err == io.EOF {
			return fmt.Errorf("unterminated comment starting at line %d", startLine)
		}
		if err != nil {
			return err
		}
		if prev == '*' && b == '/' {
			return nil
		}
		prev = b
	}
}

// readString reads a string literal 'hello'; a doubled quote stands for one quote.
// Backslash escapes are left in place and decoded by DecodeString.
func (l *Lexer) readString() (*Token, error) {
	startPos := l.pos
	line := l.line
	var buf bytes.Buffer

	// Read opening quote
	l.readByte()

	for {
		b, err := l.readByte()
		if err == io.EOF {
			return nil, fmt.Errorf("unterminated string starting at line %d", line)
		}
		if err != nil {
			return nil, err
		}

		if b == '\'' {
			next, err := l.peek()
			if err == nil && next == '\'' {
				l.readByte()
				buf.WriteByte('\'')
				continue
			}
			break
		}

		// Line breaks inside strings are not part of the value
		if b == '\r' || b == '\n' {
			continue
		}
		buf.WriteByte(b)
	}

	return &Token{Type: TokenString, Value: buf.Bytes(), Pos: startPos, Line: line}, nil
}

// readBinary reads a binary literal "0FF"
func (l *Lexer) readBinary() (*Token, error) {
	startPos := l.pos
	line := l.line
	var buf bytes.Buffer

	l.readByte()
	for {
		b, err := l.readByte()
		if err == io.EOF {
			return nil, fmt.Errorf("unterminated binary starting at line %d", line)
		}
		if err != nil {
			return nil, err
		}
		if b == '"' {
			break
		}
		if !isHexDigit(b) {
			return nil, fmt.Errorf("invalid hex digit '%c' in binary at line %d", b, l.line)
		}
		buf.WriteByte(b)
	}

	return &Token{Type: TokenBinary, Value: buf.Bytes(), Pos: startPos, Line: line}, nil
}

// readRef reads an entity instance name #123
func (l *Lexer) readRef() (*Token, error) {
	startPos := l.pos
	line := l.line
	var buf bytes.Buffer

	l.readByte()
	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !isDigit(b) {
			break
		}
		l.readByte()
		buf.WriteByte(b)
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("expected digits after '#' at line %d", line)
	}

	return &Token{Type: TokenRef, Value: buf.Bytes(), Pos: startPos, Line: line}, nil
}

// readEnum reads an enumeration .NAME.
func (l *Lexer) readEnum() (*Token, error) {
	startPos := l.pos
	line := l.line
	var buf bytes.Buffer

	l.readByte()
	for {
		b, err := l.readByte()
		if err == io.EOF {
			return nil, fmt.Errorf("unterminated enumeration at line %d", line)
		}
		if err != nil {
			return nil, err
		}
		if b == '.' {
			break
		}
		if !isAlpha(b) && !isDigit(b) && b != '_' {
			return nil, fmt.Errorf("invalid character '%c' in enumeration at line %d", b, l.line)
		}
		buf.WriteByte(b)
	}

	return &Token{Type: TokenEnum, Value: buf.Bytes(), Pos: startPos, Line: line}, nil
}

// readNumber reads an integer or real number
func (l *Lexer) readNumber() (*Token, error) {
	startPos := l.pos
	line := l.line
	var buf bytes.Buffer
	hasDecimal := false
	hasExponent := false

loop:
	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case b == '.' && !hasDecimal && !hasExponent:
			hasDecimal = true
		case isDigit(b):
		case (b == '-' || b == '+') && buf.Len() == 0:
		case (b == 'E' || b == 'e') && !hasExponent && buf.Len() > 0:
			hasExponent = true
			l.readByte()
			buf.WriteByte(b)
			// Optional exponent sign
			if sign, err := l.peek(); err == nil && (sign == '-' || sign == '+') {
				l.readByte()
				buf.WriteByte(sign)
			}
			continue
		default:
			break loop
		}
		l.readByte()
		buf.WriteByte(b)
	}

	tokenType := TokenInteger
	if hasDecimal || hasExponent {
		tokenType = TokenReal
	}

	return &Token{Type: tokenType, Value: buf.Bytes(), Pos: startPos, Line: line}, nil
}

// readKeyword reads a keyword; STEP keywords may contain '-' (ISO-10303-21)
func (l *Lexer) readKeyword() (*Token, error) {
	startPos := l.pos
	line := l.line
	var buf bytes.Buffer

	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if !isAlpha(b) && !isDigit(b) && b != '_' && b != '-' {
			break
		}

		l.readByte()
		buf.WriteByte(b)
	}

	return &Token{Type: TokenKeyword, Value: buf.Bytes(), Pos: startPos, Line: line}, nil
}

// Helper functions

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Pos returns the current byte offset
func (l *Lexer) Pos() int64 {
	return l.pos
}
