package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/query"
	"github.com/roach88/dropscope/internal/scoring"
)

// FoldFunc is the SQL function the store registers on every connection to
// apply model.FoldCase inside queries.
const FoldFunc = "casefold"

// SelectColumns is the fixed projection of a ranked listing, in scan order.
var SelectColumns = []string{
	"a.id", "a.project_id", "p.name", "p.chain", "p.website", "p.twitter",
	"a.title", "a.status", "a.start_date", "a.end_date", "a.reward", "a.link",
	"rf.sybil_risk", "rf.scam_risk", "rf.task_risk", "rf.kyc_required", "rf.notes",
	"s.risk_score", "s.rank_score",
}

// columns maps symbolic query fields to physical columns.
// Score fields resolve to the "scored" CTE so that filtering and sorting
// read the very values that are returned.
var columns = map[query.Field]string{
	query.FieldID:          "a.id",
	query.FieldChain:       "p.chain",
	query.FieldStatus:      "a.status",
	query.FieldProjectName: "p.name",
	query.FieldTitle:       "a.title",
	query.FieldStartDate:   "a.start_date",
	query.FieldEndDate:     "a.end_date",
	query.FieldRiskScore:   "s.risk_score",
	query.FieldRankScore:   "s.rank_score",
}

// SQLCompiler compiles a listing Filter to parameterized SQL for SQLite.
//
// CRITICAL: every ORDER BY ends with a.id as a deterministic tiebreaker.
// CRITICAL: values are always parameters, never interpolated.
type SQLCompiler struct {
	engine *scoring.Engine
}

// NewSQLCompiler creates a compiler that inlines the given scoring engine.
// A nil engine means scoring.Default().
func NewSQLCompiler(engine *scoring.Engine) *SQLCompiler {
	if engine == nil {
		engine = scoring.Default()
	}
	return &SQLCompiler{engine: engine}
}

// Compile converts a filter to one SQL statement plus its parameters.
//
// The statement computes risk_score and rank_score once per airdrop in a
// CTE and joins it back, so WHERE and ORDER BY see exactly the scores that
// are selected. Rows without a project or a risk row drop out of the inner
// joins.
func (c *SQLCompiler) Compile(f query.Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}

	whereSQL, params, err := c.compilePredicate(f.Predicate())
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}

	orderSQL, err := c.orderBy(f.Order())
	if err != nil {
		return "", nil, err
	}

	return c.statement(whereSQL, orderSQL), params, nil
}

// CompileByID returns the listing statement restricted to one airdrop.
func (c *SQLCompiler) CompileByID(id string) (string, []any, error) {
	whereSQL, params, err := c.compilePredicate(query.Equals{Field: query.FieldID, Value: id})
	if err != nil {
		return "", nil, err
	}
	orderSQL, err := c.orderBy(query.SortRank)
	if err != nil {
		return "", nil, err
	}
	return c.statement(whereSQL, orderSQL), params, nil
}

// statement assembles the scored listing around a WHERE and ORDER BY body.
func (c *SQLCompiler) statement(whereSQL, orderSQL string) string {
	lines := []string{
		"WITH scored AS (",
		"  SELECT a.id AS airdrop_id,",
		"    " + c.engine.RiskExpr(scoring.DefaultColumns) + " AS risk_score,",
		"    " + c.engine.RankExpr(scoring.DefaultColumns) + " AS rank_score",
		"  FROM airdrops a",
		"  JOIN risk_factors rf ON rf.airdrop_id = a.id",
		")",
		"SELECT " + strings.Join(SelectColumns, ", "),
		"FROM airdrops a",
		"JOIN projects p ON p.id = a.project_id",
		"JOIN risk_factors rf ON rf.airdrop_id = a.id",
		"JOIN scored s ON s.airdrop_id = a.id",
	}
	if whereSQL != "" {
		lines = append(lines, "WHERE "+whereSQL)
	}
	lines = append(lines, "ORDER BY "+orderSQL)

	return strings.Join(lines, "\n")
}

// orderBy returns the ORDER BY clause for a sort.
// MANDATORY: a.id COLLATE BINARY closes every ordering.
func (c *SQLCompiler) orderBy(s query.Sort) (string, error) {
	const tiebreak = "a.id COLLATE BINARY ASC"

	switch s {
	case query.SortRank:
		return "s.rank_score DESC, " + tiebreak, nil
	case query.SortRiskAsc:
		return "s.risk_score ASC, " + tiebreak, nil
	case query.SortRiskDesc:
		return "s.risk_score DESC, " + tiebreak, nil
	case query.SortStart:
		return nullsLast(columns[query.FieldStartDate]) + ", " + tiebreak, nil
	case query.SortEnd:
		return nullsLast(columns[query.FieldEndDate]) + ", " + tiebreak, nil
	default:
		return "", fmt.Errorf("unsupported sort: %q", s)
	}
}

// nullsLast orders a nullable column ascending with NULLs after values.
// SQLite sorts NULL first by default.
func nullsLast(col string) string {
	return fmt.Sprintf("CASE WHEN %s IS NULL THEN 1 ELSE 0 END, %s ASC", col, col)
}

// compilePredicate compiles a predicate to a WHERE fragment.
// An always-true predicate compiles to "" so no WHERE clause is emitted.
func (c *SQLCompiler) compilePredicate(p query.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}

	switch pred := p.(type) {
	case query.Equals:
		col, err := column(pred.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " = ?", []any{pred.Value}, nil
	case query.ContainsFold:
		return c.compileContainsFold(pred)
	case query.AtLeast:
		col, err := column(pred.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " >= ?", []any{pred.Value}, nil
	case query.AtMost:
		col, err := column(pred.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " <= ?", []any{pred.Value}, nil
	case query.And:
		return c.compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileAnd joins sub-predicates with AND, skipping always-true parts.
func (c *SQLCompiler) compileAnd(and query.And) (string, []any, error) {
	var parts []string
	var params []any

	for _, sub := range and.Predicates {
		sql, subParams, err := c.compilePredicate(sub)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		params = append(params, subParams...)
	}

	return strings.Join(parts, " AND "), params, nil
}

// compileContainsFold compiles to an OR of instr() checks over folded
// columns. The folded term is bound once per field.
func (c *SQLCompiler) compileContainsFold(cf query.ContainsFold) (string, []any, error) {
	if len(cf.Fields) == 0 {
		return "", nil, fmt.Errorf("contains predicate has no fields")
	}

	term := model.FoldCase(cf.Term)
	parts := make([]string, 0, len(cf.Fields))
	params := make([]any, 0, len(cf.Fields))
	for _, f := range cf.Fields {
		col, err := column(f)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, fmt.Sprintf("instr(%s(%s), ?) > 0", FoldFunc, col))
		params = append(params, term)
	}

	return "(" + strings.Join(parts, " OR ") + ")", params, nil
}

func column(f query.Field) (string, error) {
	col, ok := columns[f]
	if !ok {
		return "", fmt.Errorf("unknown field: %q", f)
	}
	return col, nil
}
