// Package xml converts between the internal decision model and the OMG DMN
// XML interchange format.
//
// Parse reads DMN 1.1, 1.2 or 1.3 documents into a Definitions tree and
// never fails hard: syntax problems, unknown namespaces and malformed tables
// come back as errors and warnings on the ParseResult so callers can report
// them all at once. Emit renders decisions back out, DMN 1.3 by default.
//
// Decision-table entry text follows the usual DMN idioms. The parser
// recognizes comparisons ("> 18"), membership ("in (1, 2, 3)"), inclusive
// ranges ("[18..65]" or "18..65") and bare literals; the emitter renders the
// inverse forms, quoting strings and wrapping negation as not(...). The
// dash entry "-" means unconstrained and produces no condition.
package xml
