package parser

import (
	"strconv"

	"tabular-hq/verdict/pkg/feel/ast"
	"tabular-hq/verdict/pkg/feel/errors"
	"tabular-hq/verdict/pkg/feel/lexer"
)

func (s *state) parseExpression() *ast.Node {
	if s.depth >= s.maxDepth {
		s.errors.AddError(errors.KindSyntaxError, "expression nesting too deep", s.cur().Location)
		return ast.NewNull(s.cur().Location)
	}
	s.depth++
	defer func() { s.depth-- }()

	switch {
	case s.atOp("if"):
		return s.parseIf()
	case s.atOp("some"), s.atOp("every"):
		return s.parseQuantified()
	case s.atOp("for"):
		return s.parseFor()
	case s.atOp("function"):
		return s.parseFunctionDefinition()
	}
	return s.parseOr()
}

func (s *state) parseIf() *ast.Node {
	loc := s.advance().Location // "if"
	cond := s.parseExpression()
	s.expectOp("then")
	thenBranch := s.parseExpression()
	s.expectOp("else")
	elseBranch := s.parseExpression()

	return &ast.Node{
		Kind:      ast.KindIf,
		Location:  loc,
		Condition: cond,
		Then:      thenBranch,
		Else:      elseBranch,
	}
}

func (s *state) parseQuantified() *ast.Node {
	quantifier := s.cur().Value // "some" | "every"
	loc := s.advance().Location

	name := ""
	if s.at(lexer.TokenIdentifier) {
		name = s.advance().Value
	} else {
		s.expect(lexer.TokenIdentifier, "variable name")
	}
	s.expectOp("in")
	source := s.parseExpression()
	s.expectOp("satisfies")
	body := s.parseExpression()

	return &ast.Node{
		Kind:       ast.KindQuantified,
		Location:   loc,
		Quantifier: quantifier,
		Var:        name,
		Source:     source,
		Body:       body,
	}
}

func (s *state) parseFor() *ast.Node {
	loc := s.advance().Location // "for"

	name := ""
	if s.at(lexer.TokenIdentifier) {
		name = s.advance().Value
	} else {
		s.expect(lexer.TokenIdentifier, "variable name")
	}
	s.expectOp("in")
	source := s.parseExpression()
	s.expectOp("return")
	body := s.parseExpression()

	return &ast.Node{
		Kind:     ast.KindFor,
		Location: loc,
		Var:      name,
		Source:   source,
		Body:     body,
	}
}

func (s *state) parseFunctionDefinition() *ast.Node {
	loc := s.advance().Location // "function"
	s.expect(lexer.TokenLParen, "'('")

	var params []string
	for s.at(lexer.TokenIdentifier) {
		params = append(params, s.advance().Value)
		if !s.at(lexer.TokenComma) {
			break
		}
		s.advance()
	}
	s.expect(lexer.TokenRParen, "')'")
	body := s.parseExpression()

	return &ast.Node{
		Kind:     ast.KindFunction,
		Location: loc,
		Params:   params,
		Body:     body,
	}
}

func (s *state) parseOr() *ast.Node {
	left := s.parseAnd()
	for s.atOp("or") {
		s.advance()
		right := s.parseAnd()
		left = &ast.Node{Kind: ast.KindBinary, Operator: "or", Left: left, Right: right, Location: left.Location}
	}
	return left
}

func (s *state) parseAnd() *ast.Node {
	left := s.parseComparison()
	for s.atOp("and") {
		s.advance()
		right := s.parseComparison()
		left = &ast.Node{Kind: ast.KindBinary, Operator: "and", Left: left, Right: right, Location: left.Location}
	}
	return left
}

func (s *state) parseComparison() *ast.Node {
	left := s.parseBetween()

	switch {
	case s.atAnyOp("=", "==", "!=", "<", "<=", ">", ">="):
		op := s.advance().Value
		if op == "==" {
			op = "="
		}
		right := s.parseBetween()
		return &ast.Node{Kind: ast.KindBinary, Operator: op, Left: left, Right: right, Location: left.Location}
	case s.atOp("in"):
		s.advance()
		right := s.parseAdditive()
		return &ast.Node{Kind: ast.KindBinary, Operator: "in", Left: left, Right: right, Location: left.Location}
	case s.atOp("not") && s.peek().IsOperator("in"):
		s.advance()
		s.advance()
		right := s.parseAdditive()
		return &ast.Node{Kind: ast.KindBinary, Operator: "not in", Left: left, Right: right, Location: left.Location}
	}
	return left
}

func (s *state) parseBetween() *ast.Node {
	left := s.parseAdditive()
	if !s.atOp("between") {
		return left
	}
	s.advance()
	lo := s.parseAdditive()
	s.expectOp("and")
	hi := s.parseAdditive()

	return &ast.Node{Kind: ast.KindBetween, Left: left, Lo: lo, Hi: hi, Location: left.Location}
}

func (s *state) parseAdditive() *ast.Node {
	left := s.parseMultiplicative()
	for s.atAnyOp("+", "-") {
		op := s.advance().Value
		right := s.parseMultiplicative()
		left = &ast.Node{Kind: ast.KindBinary, Operator: op, Left: left, Right: right, Location: left.Location}
	}
	return left
}

func (s *state) parseMultiplicative() *ast.Node {
	left := s.parsePower()
	for s.atAnyOp("*", "/") {
		op := s.advance().Value
		right := s.parsePower()
		left = &ast.Node{Kind: ast.KindBinary, Operator: op, Left: left, Right: right, Location: left.Location}
	}
	return left
}

func (s *state) parsePower() *ast.Node {
	left := s.parseUnary()
	if !s.atOp("**") {
		return left
	}
	s.advance()
	// Right-associative: 2 ** 3 ** 2 is 2 ** (3 ** 2).
	right := s.parsePower()
	return &ast.Node{Kind: ast.KindBinary, Operator: "**", Left: left, Right: right, Location: left.Location}
}

func (s *state) parseUnary() *ast.Node {
	if s.atAnyOp("-", "not") {
		op := s.cur().Value
		loc := s.advance().Location
		operand := s.parseUnary()
		return &ast.Node{Kind: ast.KindUnary, Operator: op, Left: operand, Location: loc}
	}
	return s.parsePostfix()
}

func (s *state) parsePostfix() *ast.Node {
	node := s.parsePrimary()

	for {
		switch {
		case s.at(lexer.TokenDot):
			s.advance()
			prop := ""
			if s.at(lexer.TokenIdentifier) {
				prop = s.advance().Value
			} else {
				s.expect(lexer.TokenIdentifier, "property name")
			}
			node = &ast.Node{Kind: ast.KindPath, Target: node, Property: prop, Location: node.Location}
		case s.at(lexer.TokenLParen):
			s.advance()
			var args []*ast.Node
			if !s.at(lexer.TokenRParen) {
				args = append(args, s.parseExpression())
				for s.at(lexer.TokenComma) {
					s.advance()
					args = append(args, s.parseExpression())
				}
			}
			s.expect(lexer.TokenRParen, "')'")
			node = &ast.Node{Kind: ast.KindCall, Target: node, Children: args, Location: node.Location}
		case s.at(lexer.TokenLBracket):
			s.advance()
			filter := s.parseExpression()
			s.expect(lexer.TokenRBracket, "']'")
			node = &ast.Node{Kind: ast.KindFilter, Target: node, FilterExpr: filter, Location: node.Location}
		default:
			return node
		}
	}
}

func (s *state) parsePrimary() *ast.Node {
	tok := s.cur()

	switch tok.Kind {
	case lexer.TokenNumber:
		s.advance()
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			s.errors.AddError(errors.KindSyntaxError, "invalid number literal "+tok.Value, tok.Location)
			return ast.NewNull(tok.Location)
		}
		return &ast.Node{Kind: ast.KindNumber, Number: value, Location: tok.Location}

	case lexer.TokenString:
		s.advance()
		return &ast.Node{Kind: ast.KindString, Text: tok.Value, Location: tok.Location}

	case lexer.TokenBoolean:
		s.advance()
		return &ast.Node{Kind: ast.KindBoolean, Boolean: tok.Value == "true", Location: tok.Location}

	case lexer.TokenNull:
		s.advance()
		return ast.NewNull(tok.Location)

	case lexer.TokenIdentifier:
		s.advance()
		return &ast.Node{Kind: ast.KindIdentifier, Text: tok.Value, Location: tok.Location}

	case lexer.TokenLParen:
		return s.parseParenOrRange()

	case lexer.TokenLBracket:
		return s.parseListOrRange()

	case lexer.TokenLBrace:
		return s.parseContext()

	case lexer.TokenEOF:
		s.errors.AddError(errors.KindSyntaxError, "unexpected end of expression", tok.Location)
		return ast.NewNull(tok.Location)

	default:
		s.errors.AddError(errors.KindSyntaxError, "unexpected "+describe(tok), tok.Location)
		s.advance()
		return ast.NewNull(tok.Location)
	}
}

// parseParenOrRange handles "(" which opens either a grouped expression or a
// range with an open lower bound, e.g. (1..5].
func (s *state) parseParenOrRange() *ast.Node {
	loc := s.advance().Location // "("
	inner := s.parseExpression()

	if s.at(lexer.TokenRange) {
		s.advance()
		hi := s.parseExpression()
		return s.finishRange(loc, inner, hi, false)
	}

	s.expect(lexer.TokenRParen, "')'")
	return inner
}

// parseListOrRange handles "[" which opens either a list literal or a range
// with a closed lower bound, e.g. [1..5).
func (s *state) parseListOrRange() *ast.Node {
	loc := s.advance().Location // "["

	if s.at(lexer.TokenRBracket) {
		s.advance()
		return &ast.Node{Kind: ast.KindList, Location: loc}
	}

	first := s.parseExpression()

	if s.at(lexer.TokenRange) {
		s.advance()
		hi := s.parseExpression()
		return s.finishRange(loc, first, hi, true)
	}

	elements := []*ast.Node{first}
	for s.at(lexer.TokenComma) {
		s.advance()
		elements = append(elements, s.parseExpression())
	}
	s.expect(lexer.TokenRBracket, "']'")

	return &ast.Node{Kind: ast.KindList, Children: elements, Location: loc}
}

func (s *state) finishRange(loc ast.Location, lo, hi *ast.Node, loInclusive bool) *ast.Node {
	hiInclusive := true
	switch {
	case s.at(lexer.TokenRBracket):
		s.advance()
	case s.at(lexer.TokenRParen):
		s.advance()
		hiInclusive = false
	default:
		s.errors.AddError(errors.KindSyntaxError,
			"expected ']' or ')' to close range, found "+describe(s.cur()), s.cur().Location)
	}

	return &ast.Node{
		Kind:        ast.KindRange,
		Location:    loc,
		Lo:          lo,
		Hi:          hi,
		LoInclusive: loInclusive,
		HiInclusive: hiInclusive,
	}
}

func (s *state) parseContext() *ast.Node {
	loc := s.advance().Location // "{"
	node := &ast.Node{Kind: ast.KindContext, Location: loc}

	if s.at(lexer.TokenRBrace) {
		s.advance()
		return node
	}

	for {
		keyTok := s.cur()
		key := ""
		switch keyTok.Kind {
		case lexer.TokenIdentifier, lexer.TokenString:
			key = s.advance().Value
		default:
			s.expect(lexer.TokenIdentifier, "context key")
		}
		s.expect(lexer.TokenColon, "':'")
		value := s.parseExpression()

		node.Entries = append(node.Entries, &ast.ContextEntry{
			Key:      key,
			Value:    value,
			Location: keyTok.Location,
		})

		if !s.at(lexer.TokenComma) {
			break
		}
		s.advance()
	}
	s.expect(lexer.TokenRBrace, "'}'")

	return node
}
