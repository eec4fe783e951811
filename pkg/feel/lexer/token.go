package lexer

import "tabular-hq/verdict/pkg/feel/ast"

// TokenKind identifies the lexical category of a token.
type TokenKind string

const (
	TokenNumber     TokenKind = "NUMBER"
	TokenString     TokenKind = "STRING"
	TokenBoolean    TokenKind = "BOOLEAN"
	TokenNull       TokenKind = "NULL"
	TokenIdentifier TokenKind = "IDENTIFIER"
	TokenOperator   TokenKind = "OPERATOR"
	TokenLParen     TokenKind = "LPAREN"
	TokenRParen     TokenKind = "RPAREN"
	TokenLBracket   TokenKind = "LBRACKET"
	TokenRBracket   TokenKind = "RBRACKET"
	TokenLBrace     TokenKind = "LBRACE"
	TokenRBrace     TokenKind = "RBRACE"
	TokenComma      TokenKind = "COMMA"
	TokenDot        TokenKind = "DOT"
	TokenColon      TokenKind = "COLON"
	TokenRange      TokenKind = "RANGE"
	TokenEOF        TokenKind = "EOF"
)

// Token is one lexical unit of a FEEL expression. Value holds the raw lexeme
// (for strings, with quotes and escapes already resolved).
type Token struct {
	Kind     TokenKind
	Value    string
	Location ast.Location
}

// Is returns true if the token has the given kind and value.
func (t Token) Is(kind TokenKind, value string) bool {
	return t.Kind == kind && t.Value == value
}

// IsOperator returns true if the token is the given operator.
func (t Token) IsOperator(op string) bool {
	return t.Kind == TokenOperator && t.Value == op
}

// IsWordOperator reports whether the name is a keyword operator of the
// grammar and therefore unusable as an identifier.
func IsWordOperator(name string) bool {
	return wordOperators[name]
}

// wordOperators are the keyword operators of the grammar. They lex as
// TokenOperator; true/false/null lex as their literal kinds instead.
var wordOperators = map[string]bool{
	"and":       true,
	"or":        true,
	"not":       true,
	"between":   true,
	"in":        true,
	"if":        true,
	"then":      true,
	"else":      true,
	"for":       true,
	"return":    true,
	"some":      true,
	"every":     true,
	"satisfies": true,
	"function":  true,
}
