package query

import (
	"fmt"
	"strings"

	"github.com/roach88/dropscope/internal/model"
)

// FilterError reports an invalid filter field.
type FilterError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Field, e.Message)
}

// Validate checks the closed-enum fields of a filter.
//
// Inverted risk bounds (RiskMin > RiskMax) are accepted on purpose and
// simply match nothing. Risk bounds outside [0,100] are accepted too; they
// are plain comparisons against the computed score.
func (f Filter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return &FilterError{
			Field:   "status",
			Message: fmt.Sprintf("%q is not one of upcoming, live, ended", f.Status),
		}
	}
	if f.Sort != "" && !ValidSorts[f.Sort] {
		return &FilterError{
			Field:   "sort",
			Message: fmt.Sprintf("%q is not one of rank, riskAsc, riskDesc, start, end", f.Sort),
		}
	}
	return nil
}

// Describe renders a predicate tree in a compact human-readable form,
// used for verbose logging.
//
//	chain = "Solana" AND fold(project_name|title) ~ "sol" AND risk_score >= 30
func Describe(p Predicate) string {
	switch pred := p.(type) {
	case nil:
		return "true"
	case Equals:
		return fmt.Sprintf("%s = %q", pred.Field, pred.Value)
	case ContainsFold:
		names := make([]string, len(pred.Fields))
		for i, f := range pred.Fields {
			names[i] = string(f)
		}
		return fmt.Sprintf("fold(%s) ~ %q", strings.Join(names, "|"), model.FoldCase(pred.Term))
	case AtLeast:
		return fmt.Sprintf("%s >= %d", pred.Field, pred.Value)
	case AtMost:
		return fmt.Sprintf("%s <= %d", pred.Field, pred.Value)
	case And:
		if len(pred.Predicates) == 0 {
			return "true"
		}
		parts := make([]string, len(pred.Predicates))
		for i, sub := range pred.Predicates {
			parts[i] = Describe(sub)
		}
		return strings.Join(parts, " AND ")
	default:
		return fmt.Sprintf("<unknown %T>", p)
	}
}
