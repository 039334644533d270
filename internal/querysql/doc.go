// Package querysql compiles listing filters into SQLite statements.
//
// The generated statement has one shape:
//
//	WITH scored AS (SELECT a.id, <risk expr>, <rank expr> FROM airdrops a JOIN risk_factors rf ...)
//	SELECT ... FROM airdrops a JOIN projects p ... JOIN risk_factors rf ... JOIN scored s ...
//	WHERE <predicates over p.*, a.*, s.*>
//	ORDER BY <sort key>, a.id COLLATE BINARY ASC
//
// Score expressions come from internal/scoring, so the SQL and the Go
// evaluator share one weight table. Free-text matching relies on the
// casefold() function the store registers on each connection.
package querysql
