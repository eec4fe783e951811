// Package dmn defines the decision model shared by every Verdict subsystem.
//
// A Decision is a versioned decision table: a list of typed inputs, a list of
// named outputs, and an ordered rule list. Each rule is a conjunction of
// condition entries over the inputs and produces one value per output. A hit
// policy selects which matching rules contribute to the final result and how
// their outputs are composed.
//
// # Core Types
//
// Decision: versioned decision-table definition with lifecycle status
//
// DecisionInput: input clause (id, label, FEEL expression, type)
//
// DecisionOutput: output clause (id, label, name, type, declared output values)
//
// Rule: condition entries plus output entries, evaluated in declared order
//
// Condition: (inputId, operator, value) predicate over one input
//
// HitPolicy: UNIQUE, FIRST, PRIORITY, ANY, COLLECT, RULE ORDER, OUTPUT ORDER,
// UNORDERED
//
// Aggregation: COLLECT aggregator (SUM, MIN, MAX, COUNT)
//
// DecisionStatus: DRAFT, PUBLISHED, SUSPENDED, ARCHIVED
//
// # Lifecycle
//
// Decisions are created in DRAFT, edited freely, then published. A published
// decision is immutable; changes require a new version. Publishing makes a
// decision executable, suspension temporarily blocks execution, and only
// drafts may be deleted:
//
//	DRAFT ──publish──▶ PUBLISHED ──suspend──▶ SUSPENDED
//	  ▲                    ▲                      │
//	  └─new version        └──────activate───────┘
//
// # Identity
//
// (DecisionKey, Version, TenantID) is unique. DecisionKey is the stable
// logical name callers use to execute the highest published version; ID is
// the opaque storage identity of one concrete version.
//
// # Immutability
//
// Model values should be treated as immutable after construction. The engine
// and the XML codec never modify a Decision they are handed; the lifecycle
// manager copies before mutating.
package dmn
