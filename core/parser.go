package core

import (
	"fmt"
	"io"
	"strconv"
)

// Parser parses STEP physical file content from an io.Reader using a Lexer for tokenization.
// It supports parameters, entity instances (simple and complex) and header entities.
type Parser struct {
	lexer        *Lexer
	currentToken *Token // Current token being processed
	peekToken    *Token // Next token (lookahead)
	err          error  // First lexer error, reported on the next parse call
}

// NewParser creates a new STEP parser for the given reader.
// It initializes the lexer and loads the first two tokens for lookahead.
func NewParser(r io.Reader) *Parser {
	p := &Parser{
		lexer: NewLexer(r),
	}
	// Load first two tokens
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances the parser to the next token by shifting the lookahead.
func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.err != nil {
		p.peekToken = &Token{Type: TokenEOF}
		return
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		p.err = err
		token = &Token{Type: TokenEOF}
	}
	p.peekToken = token
}

// Offset returns the byte offset of the lexer, used for progress reporting
func (p *Parser) Offset() int64 {
	return p.lexer.Pos()
}

// Current returns the token the parser is positioned on
func (p *Parser) Current() *Token {
	return p.currentToken
}

// check returns a pending lexer error, if any
func (p *Parser) check() error {
	if p.err != nil {
		return p.err
	}
	if p.currentToken == nil {
		return fmt.Errorf("unexpected end of input")
	}
	return nil
}

// errorf builds an error that carries the current line
func (p *Parser) errorf(format string, args ...any) error {
	line := 0
	if p.currentToken != nil {
		line = p.currentToken.Line
	}
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

// expect consumes a token of the given type or fails
func (p *Parser) expect(t TokenType) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.currentToken.Type != t {
		return p.errorf("expected %s, got %s %q", t, p.currentToken.Type, p.currentToken.Value)
	}
	p.nextToken()
	return nil
}

// ExpectKeyword consumes the given keyword followed by ';'
func (p *Parser) ExpectKeyword(keyword string) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != keyword {
		return p.errorf("expected %s, got %s %q", keyword, p.currentToken.Type, p.currentToken.Value)
	}
	p.nextToken()
	return p.expect(TokenSemicolon)
}

// ExpectSection consumes a section keyword with optional parameters followed by ';',
// e.g. "DATA;" or "DATA('main',('IFC4'));"
func (p *Parser) ExpectSection(keyword string) (List, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if !p.AtKeyword(keyword) {
		return nil, p.errorf("expected %s, got %s %q", keyword, p.currentToken.Type, p.currentToken.Value)
	}
	p.nextToken()

	var args List
	if p.currentToken != nil && p.currentToken.Type == TokenLParen {
		list, err := p.parseList()
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", keyword, err)
		}
		args = list
	}
	return args, p.expect(TokenSemicolon)
}

// AtKeyword reports whether the current token is the given keyword
func (p *Parser) AtKeyword(keyword string) bool {
	return p.currentToken != nil && p.currentToken.Type == TokenKeyword &&
		string(p.currentToken.Value) == keyword
}

// AtEOF reports whether the input is exhausted
func (p *Parser) AtEOF() bool {
	return p.currentToken == nil || p.currentToken.Type == TokenEOF
}

// ParseObject parses and returns the next parameter.
// It handles unset ($), derived (*), integer, real, string, enumeration, binary,
// reference, list and typed parameters.
func (p *Parser) ParseObject() (Object, error) {
	if err := p.check(); err != nil {
		return nil, err
	}

	tok := p.currentToken
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenDollar:
		p.nextToken()
		return Null{}, nil

	case TokenStar:
		p.nextToken()
		return Derived{}, nil

	case TokenInteger:
		val, err := strconv.ParseInt(string(tok.Value), 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer %q: %v", tok.Value, err)
		}
		p.nextToken()
		return Int(val), nil

	case TokenReal:
		val, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, p.errorf("invalid real %q: %v", tok.Value, err)
		}
		p.nextToken()
		return Real(val), nil

	case TokenString:
		val, err := DecodeString(string(tok.Value))
		if err != nil {
			return nil, p.errorf("invalid string: %v", err)
		}
		p.nextToken()
		return String(val), nil

	case TokenEnum:
		p.nextToken()
		return Enum(tok.Value), nil

	case TokenBinary:
		p.nextToken()
		return Binary(tok.Value), nil

	case TokenRef:
		id, err := strconv.Atoi(string(tok.Value))
		if err != nil {
			return nil, p.errorf("invalid reference #%s: %v", tok.Value, err)
		}
		p.nextToken()
		return Ref(id), nil

	case TokenLParen:
		return p.parseList()

	case TokenKeyword:
		return p.parseTyped()

	default:
		return nil, p.errorf("unexpected %s %q", tok.Type, tok.Value)
	}
}

// parseList parses an aggregate "(a,b,...)".
func (p *Parser) parseList() (List, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	list := List{}
	if p.currentToken != nil && p.currentToken.Type == TokenRParen {
		p.nextToken()
		return list, nil
	}

	for {
		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing list element %d: %w", len(list), err)
		}
		list = append(list, obj)

		if err := p.check(); err != nil {
			return nil, err
		}
		switch p.currentToken.Type {
		case TokenComma:
			p.nextToken()
		case TokenRParen:
			p.nextToken()
			return list, nil
		default:
			return nil, p.errorf("expected ',' or ')' in list, got %s %q", p.currentToken.Type, p.currentToken.Value)
		}
	}
}

// parseTyped parses a typed parameter NAME(value).
func (p *Parser) parseTyped() (Object, error) {
	name := string(p.currentToken.Value)
	p.nextToken()

	args, err := p.parseList()
	if err != nil {
		return nil, fmt.Errorf("error parsing typed parameter %s: %w", name, err)
	}
	if len(args) != 1 {
		return nil, p.errorf("typed parameter %s has %d values, expected 1", name, len(args))
	}
	return Typed{Name: name, Value: args[0]}, nil
}

// ParseInstance parses an entity instance definition.
// Format: "#id = NAME(args);" or "#id = (NAME1(args) NAME2(args) ...);"
func (p *Parser) ParseInstance() (*Instance, error) {
	if err := p.check(); err != nil {
		return nil, err
	}

	if p.currentToken.Type != TokenRef {
		return nil, p.errorf("expected instance name, got %s %q", p.currentToken.Type, p.currentToken.Value)
	}
	id, err := strconv.Atoi(string(p.currentToken.Value))
	if err != nil {
		return nil, p.errorf("invalid instance name #%s: %v", p.currentToken.Value, err)
	}
	p.nextToken()

	if err := p.expect(TokenEquals); err != nil {
		return nil, fmt.Errorf("instance #%d: %w", id, err)
	}

	inst := &Instance{ID: id}

	if err := p.check(); err != nil {
		return nil, err
	}
	switch p.currentToken.Type {
	case TokenKeyword:
		inst.Name = string(p.currentToken.Value)
		p.nextToken()
		args, err := p.parseList()
		if err != nil {
			return nil, fmt.Errorf("instance #%d (%s): %w", id, inst.Name, err)
		}
		inst.Args = args

	case TokenLParen:
		parts, err := p.parseComplex()
		if err != nil {
			return nil, fmt.Errorf("instance #%d: %w", id, err)
		}
		inst.Parts = parts
		inst.Name = parts[0].Name
		if args, ok := parts[0].Value.(List); ok {
			inst.Args = args
		}

	default:
		return nil, p.errorf("instance #%d: expected entity name, got %s", id, p.currentToken.Type)
	}

	if err := p.expect(TokenSemicolon); err != nil {
		return nil, fmt.Errorf("instance #%d: %w", id, err)
	}

	return inst, nil
}

// parseComplex parses the external mapping "(A(...)B(...))" of a complex instance.
func (p *Parser) parseComplex() ([]Typed, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var parts []Typed
	for {
		if err := p.check(); err != nil {
			return nil, err
		}
		if p.currentToken.Type == TokenRParen {
			p.nextToken()
			break
		}
		if p.currentToken.Type != TokenKeyword {
			return nil, p.errorf("expected partial entity name, got %s", p.currentToken.Type)
		}
		name := string(p.currentToken.Value)
		p.nextToken()
		args, err := p.parseList()
		if err != nil {
			return nil, fmt.Errorf("partial entity %s: %w", name, err)
		}
		parts = append(parts, Typed{Name: name, Value: args})
	}

	if len(parts) == 0 {
		return nil, p.errorf("empty complex instance")
	}
	return parts, nil
}

// ParseHeaderEntity parses a header section entry "NAME(args);".
func (p *Parser) ParseHeaderEntity() (*HeaderEntity, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if p.currentToken.Type != TokenKeyword {
		return nil, p.errorf("expected header entity name, got %s %q", p.currentToken.Type, p.currentToken.Value)
	}
	name := string(p.currentToken.Value)
	p.nextToken()

	args, err := p.parseList()
	if err != nil {
		return nil, fmt.Errorf("header entity %s: %w", name, err)
	}
	if err := p.expect(TokenSemicolon); err != nil {
		return nil, fmt.Errorf("header entity %s: %w", name, err)
	}
	return &HeaderEntity{Name: name, Args: args}, nil
}
