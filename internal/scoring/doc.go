// Package scoring derives the risk score and rank score of an airdrop.
//
// The weight table and status bonuses live in one place (Engine). From it the
// package produces both a pure Go evaluator (Evaluate) and the equivalent
// SQLite expressions (RiskExpr, RankExpr) that the query compiler inlines, so
// a row's score is identical whether it is computed in Go or in SQL.
//
// Formulas, in integer hundredths of a point:
//
//	n          = 35*sybil + 25*scam + 20*task + 20*kyc
//	risk_score = (n + 50) / 100              (integer division, halves up)
//	rank_score = (100 - n/100.0) + bonus     (live 5, upcoming 2, ended 0)
//
// rank_score uses the unrounded sum. Inputs are not clamped here; range
// enforcement happens when rows are written.
package scoring
