// Package lexer tokenizes FEEL expressions. It produces a flat token stream
// with positions and never fails hard: problems are reported on an error
// list and lexing continues, so the parser can surface every issue in an
// expression at once.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/errors"
)

// Tokenize lexes the input into a token stream ending with an EOF token.
// The returned error list is never nil; callers distinguish success by
// HasErrors.
func Tokenize(input string) ([]Token, *errors.ErrorList) {
	lx := &lexer{
		input:  input,
		line:   1,
		column: 1,
		errors: errors.NewErrorList(),
	}
	lx.run()
	return lx.tokens, lx.errors
}

type lexer struct {
	input  string
	pos    int // Byte offset of the next rune
	line   int
	column int
	tokens []Token
	errors *errors.ErrorList
}

func (lx *lexer) run() {
	for {
		lx.skipWhitespace()
		if lx.eof() {
			break
		}

		loc := lx.location()
		r := lx.peek()

		switch {
		case unicode.IsDigit(r):
			lx.lexNumber(loc, "")
		case r == '-' && unicode.IsDigit(lx.peekAt(1)) && lx.minusStartsNumber():
			lx.next()
			lx.lexNumber(loc, "-")
		case r == '"':
			lx.lexString(loc)
		case isIdentStart(r):
			lx.lexWord(loc)
		default:
			lx.lexSymbol(loc)
		}
	}

	lx.emit(TokenEOF, "", lx.location())
}

// minusStartsNumber reports whether a '-' at the current position begins a
// negative numeric literal rather than a subtraction. It does only when the
// previous token cannot end an operand.
func (lx *lexer) minusStartsNumber() bool {
	if len(lx.tokens) == 0 {
		return true
	}
	switch prev := lx.tokens[len(lx.tokens)-1]; prev.Kind {
	case TokenOperator, TokenLParen, TokenLBracket, TokenLBrace, TokenComma, TokenColon, TokenRange:
		return true
	}
	return false
}

func (lx *lexer) lexNumber(loc ast.Location, prefix string) {
	var sb strings.Builder
	sb.WriteString(prefix)

	for !lx.eof() && unicode.IsDigit(lx.peek()) {
		sb.WriteRune(lx.next())
	}
	// A single '.' followed by a digit is a fraction; '..' belongs to a range.
	if lx.peek() == '.' && unicode.IsDigit(lx.peekAt(1)) {
		sb.WriteRune(lx.next())
		for !lx.eof() && unicode.IsDigit(lx.peek()) {
			sb.WriteRune(lx.next())
		}
	}

	lx.emit(TokenNumber, sb.String(), loc)
}

func (lx *lexer) lexString(loc ast.Location) {
	lx.next() // opening quote
	var sb strings.Builder

	for {
		if lx.eof() {
			lx.errors.AddError(errors.KindSyntaxError, "unterminated string literal", loc)
			break
		}
		r := lx.next()
		if r == '"' {
			lx.emit(TokenString, sb.String(), loc)
			return
		}
		if r == '\\' {
			if lx.eof() {
				lx.errors.AddError(errors.KindSyntaxError, "unterminated string literal", loc)
				break
			}
			switch esc := lx.next(); esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			default:
				// Unknown escape: keep the character as-is.
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}

	// Unterminated: close at EOF with what we collected.
	lx.emit(TokenString, sb.String(), loc)
}

func (lx *lexer) lexWord(loc ast.Location) {
	start := lx.pos
	for !lx.eof() && isIdentPart(lx.peek()) {
		lx.next()
	}
	word := lx.input[start:lx.pos]

	switch {
	case word == "true" || word == "false":
		lx.emit(TokenBoolean, word, loc)
	case word == "null":
		lx.emit(TokenNull, word, loc)
	case wordOperators[word]:
		lx.emit(TokenOperator, word, loc)
	default:
		lx.emit(TokenIdentifier, word, loc)
	}
}

func (lx *lexer) lexSymbol(loc ast.Location) {
	r := lx.next()

	switch r {
	case '(':
		lx.emit(TokenLParen, "(", loc)
	case ')':
		lx.emit(TokenRParen, ")", loc)
	case '[':
		lx.emit(TokenLBracket, "[", loc)
	case ']':
		lx.emit(TokenRBracket, "]", loc)
	case '{':
		lx.emit(TokenLBrace, "{", loc)
	case '}':
		lx.emit(TokenRBrace, "}", loc)
	case ',':
		lx.emit(TokenComma, ",", loc)
	case ':':
		lx.emit(TokenColon, ":", loc)
	case '.':
		if lx.peek() == '.' {
			lx.next()
			lx.emit(TokenRange, "..", loc)
			return
		}
		lx.emit(TokenDot, ".", loc)
	case '+', '-', '/':
		lx.emit(TokenOperator, string(r), loc)
	case '*':
		if lx.peek() == '*' {
			lx.next()
			lx.emit(TokenOperator, "**", loc)
			return
		}
		lx.emit(TokenOperator, "*", loc)
	case '=':
		if lx.peek() == '=' {
			lx.next()
			lx.emit(TokenOperator, "==", loc)
			return
		}
		lx.emit(TokenOperator, "=", loc)
	case '!':
		if lx.peek() == '=' {
			lx.next()
			lx.emit(TokenOperator, "!=", loc)
			return
		}
		lx.errors.AddErrorWithSuggestion(errors.KindSyntaxError,
			"unexpected character '!'", loc, "use 'not' for negation or '!=' for inequality")
	case '<':
		if lx.peek() == '=' {
			lx.next()
			lx.emit(TokenOperator, "<=", loc)
			return
		}
		lx.emit(TokenOperator, "<", loc)
	case '>':
		if lx.peek() == '=' {
			lx.next()
			lx.emit(TokenOperator, ">=", loc)
			return
		}
		lx.emit(TokenOperator, ">", loc)
	default:
		lx.errors.AddError(errors.KindSyntaxError,
			"unexpected character "+string(r), loc)
	}
}

func (lx *lexer) skipWhitespace() {
	for !lx.eof() {
		r := lx.peek()
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return
		}
		lx.next()
	}
}

func (lx *lexer) emit(kind TokenKind, value string, loc ast.Location) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Value: value, Location: loc})
}

func (lx *lexer) location() ast.Location {
	return ast.Location{Offset: lx.pos, Line: lx.line, Column: lx.column}
}

func (lx *lexer) eof() bool {
	return lx.pos >= len(lx.input)
}

// peek returns the rune at the current position without consuming it.
func (lx *lexer) peek() rune {
	return lx.peekAt(0)
}

// peekAt returns the rune n runes ahead of the current position, or 0 past
// the end of input.
func (lx *lexer) peekAt(n int) rune {
	pos := lx.pos
	for i := 0; i <= n; i++ {
		if pos >= len(lx.input) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(lx.input[pos:])
		if i == n {
			return r
		}
		pos += size
	}
	return 0
}

// next consumes and returns the rune at the current position, tracking line
// and column.
func (lx *lexer) next() rune {
	r, size := utf8.DecodeRuneInString(lx.input[lx.pos:])
	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
