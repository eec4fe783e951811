// Package parser builds FEEL expression trees from source text.
//
// The parser is recursive-descent over the token stream produced by
// pkg/feel/lexer, with this precedence (loosest first):
//
//	expression  if | quantified | for | function | or
//	or          and ("or" and)*
//	and         comparison ("and" comparison)*
//	comparison  between (("="|"!="|"<"|"<="|">"|">="|"in"|"not in") between)?
//	between     additive ("between" additive "and" additive)?
//	additive    multiplicative (("+"|"-") multiplicative)*
//	multiplic.  power (("*"|"/") power)*
//	power       unary ("**" power)?          right-associative
//	unary       ("-"|"not") unary | postfix
//	postfix     primary (("." IDENT) | "(" args ")" | "[" expression "]")*
//	primary     literal | "(" expr ")" | list | context | range | IDENT
//
// # Error Recovery
//
// Errors are collected on an ErrorList instead of aborting: the parser
// always returns a tree, substituting null literals for fragments it could
// not make sense of. Callers distinguish success by the emptiness of the
// error list:
//
//	node, errs := parser.Parse("age between 20 and 30")
//	if errs.HasErrors() {
//	    return errs.ToError()
//	}
//
// # Limits
//
// Nesting depth is bounded (default 64) to keep malicious or runaway
// expressions from exhausting the stack:
//
//	p := parser.NewParser().WithMaxDepth(16)
//	node, errs := p.Parse(src)
package parser
