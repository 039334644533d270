package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// Columns names the SQL column references the expressions are built over.
type Columns struct {
	Sybil  string
	Scam   string
	Task   string
	KYC    string
	Status string
}

// DefaultColumns matches the risk_factors alias "rf" and airdrops alias "a"
// used by the query compiler.
var DefaultColumns = Columns{
	Sybil:  "rf.sybil_risk",
	Scam:   "rf.scam_risk",
	Task:   "rf.task_risk",
	KYC:    "rf.kyc_required",
	Status: "a.status",
}

// WeightedExpr renders the weighted sum in hundredths. The risk columns are
// INTEGER, so SQLite evaluates it in 64-bit integer arithmetic.
func (e *Engine) WeightedExpr(c Columns) string {
	return fmt.Sprintf("(%d*%s + %d*%s + %d*%s + %d*%s)",
		e.weights.Sybil, c.Sybil,
		e.weights.Scam, c.Scam,
		e.weights.Task, c.Task,
		e.weights.KYC, c.KYC,
	)
}

// RiskExpr renders risk_score. Both operands are integers, so the division
// truncates exactly like RoundHundredths.
func (e *Engine) RiskExpr(c Columns) string {
	return fmt.Sprintf("(%s + %d) / %d", e.WeightedExpr(c), Scale/2, Scale)
}

// RankExpr renders rank_score: (100 - weighted/100.0) + status bonus.
func (e *Engine) RankExpr(c Columns) string {
	return fmt.Sprintf("(%d - %s / %d.0) + %s", MaxScore, e.WeightedExpr(c), Scale, e.bonusExpr(c.Status))
}

// bonusExpr renders the status bonus as a CASE expression.
// Statuses are emitted in a fixed order; anything else falls to ELSE 0.
func (e *Engine) bonusExpr(statusCol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", statusCol)
	for _, s := range bonusOrder {
		v, ok := e.bonus[s]
		if !ok || v == 0 {
			continue
		}
		fmt.Fprintf(&b, " WHEN '%s' THEN %s", s, formatFloat(v))
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

// formatFloat prints the shortest decimal that parses back to the same
// float64, so SQLite reads the identical constant.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
