package parser

import (
	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/errors"
	"tabular-hq/verdict/pkg/feel/lexer"
)

// Parser parses FEEL expressions into ASTs.
type Parser struct {
	maxDepth int // Maximum expression nesting depth
}

// NewParser creates a parser with default configuration.
func NewParser() *Parser {
	return &Parser{maxDepth: 64}
}

// WithMaxDepth sets the maximum expression nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses a FEEL expression. It always returns a usable tree; syntax
// problems are accumulated on the returned error list, with null literals
// standing in for fragments that could not be parsed.
func (p *Parser) Parse(input string) (*ast.Node, *errors.ErrorList) {
	tokens, errs := lexer.Tokenize(input)
	s := &state{
		tokens:   tokens,
		errors:   errs,
		maxDepth: p.maxDepth,
	}

	node := s.parseExpression()

	if !s.at(lexer.TokenEOF) {
		s.errors.AddError(errors.KindSyntaxError,
			"unexpected input after expression: "+s.cur().Value, s.cur().Location)
	}

	return node, errs
}

// Parse parses an expression with the default parser configuration.
func Parse(input string) (*ast.Node, *errors.ErrorList) {
	return NewParser().Parse(input)
}

// state is the mutable cursor over one token stream. A fresh state is built
// per Parse call, so a Parser value is safe for concurrent use.
type state struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	maxDepth int
	errors   *errors.ErrorList
}

func (s *state) cur() lexer.Token {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1] // EOF sentinel
	}
	return s.tokens[s.pos]
}

func (s *state) peek() lexer.Token {
	if s.pos+1 >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos+1]
}

func (s *state) advance() lexer.Token {
	t := s.cur()
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return t
}

func (s *state) at(kind lexer.TokenKind) bool {
	return s.cur().Kind == kind
}

func (s *state) atOp(op string) bool {
	return s.cur().IsOperator(op)
}

func (s *state) atAnyOp(ops ...string) bool {
	if s.cur().Kind != lexer.TokenOperator {
		return false
	}
	for _, op := range ops {
		if s.cur().Value == op {
			return true
		}
	}
	return false
}

// expect consumes the current token if it has the wanted kind; otherwise it
// records a syntax error and leaves the cursor alone so parsing can resume.
func (s *state) expect(kind lexer.TokenKind, what string) bool {
	if s.at(kind) {
		s.advance()
		return true
	}
	s.errors.AddError(errors.KindSyntaxError,
		"expected "+what+", found "+describe(s.cur()), s.cur().Location)
	return false
}

// expectOp consumes the current token if it is the wanted operator keyword.
func (s *state) expectOp(op string) bool {
	if s.atOp(op) {
		s.advance()
		return true
	}
	s.errors.AddError(errors.KindSyntaxError,
		"expected '"+op+"', found "+describe(s.cur()), s.cur().Location)
	return false
}

func describe(t lexer.Token) string {
	if t.Kind == lexer.TokenEOF {
		return "end of expression"
	}
	return "'" + t.Value + "'"
}
