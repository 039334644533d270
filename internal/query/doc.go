// Package query describes a listing request and the predicate tree it
// compiles to.
//
// A Filter is the consumer-facing request: independently optional chain,
// status, free-text and risk-band restrictions plus one of five sort orders.
// Filter.Predicate lowers it to a small predicate IR that backends compile;
// internal/querysql is the SQLite backend.
//
// SEALED INTERFACES:
//
// Predicate is sealed with a marker method so backends can switch over every
// node type exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case ContainsFold:
//	case AtLeast, AtMost:
//	case And:
//	}
//
// Fields are symbolic (FieldChain, FieldRiskScore, ...). The backend maps
// them to physical columns; FieldRiskScore always refers to the computed
// score, never to a raw factor.
package query
