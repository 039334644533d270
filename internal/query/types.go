package query

import (
	"github.com/roach88/dropscope/internal/model"
)

// Sort selects the primary ordering of a listing.
type Sort string

const (
	SortRank     Sort = "rank"     // rank_score DESC (default)
	SortRiskAsc  Sort = "riskAsc"  // risk_score ASC
	SortRiskDesc Sort = "riskDesc" // risk_score DESC
	SortStart    Sort = "start"    // start_date ASC, NULLs last
	SortEnd      Sort = "end"      // end_date ASC, NULLs last
)

// ValidSorts defines the allowed sort orders.
var ValidSorts = map[Sort]bool{
	SortRank:     true,
	SortRiskAsc:  true,
	SortRiskDesc: true,
	SortStart:    true,
	SortEnd:      true,
}

// ParseSort converts a raw string to a Sort. The empty string maps to
// SortRank; unknown values return false.
func ParseSort(raw string) (Sort, bool) {
	if raw == "" {
		return SortRank, true
	}
	s := Sort(raw)
	if !ValidSorts[s] {
		return "", false
	}
	return s, true
}

// Filter is a listing request. Zero-valued fields are absent and every
// present field narrows the result (conjunction).
type Filter struct {
	Chain   string       `json:"chain,omitempty"`  // exact, case-sensitive
	Status  model.Status `json:"status,omitempty"` // exact, closed enum
	Q       string       `json:"q,omitempty"`      // case-insensitive substring of project name OR title
	RiskMin *int         `json:"risk_min,omitempty"`
	RiskMax *int         `json:"risk_max,omitempty"`
	Sort    Sort         `json:"sort,omitempty"`
}

// Order returns the effective sort, defaulting to SortRank.
func (f Filter) Order() Sort {
	if f.Sort == "" {
		return SortRank
	}
	return f.Sort
}

// Predicate lowers the filter to a predicate tree.
//
// Conjuncts are emitted in a fixed order (chain, status, q, riskMin,
// riskMax) so compiled SQL and its parameters are deterministic. An empty
// filter yields an empty And (always true).
func (f Filter) Predicate() Predicate {
	var preds []Predicate

	// Stored chains are NFC, so the filter value is too.
	if f.Chain != "" {
		preds = append(preds, Equals{Field: FieldChain, Value: model.NormalizeText(f.Chain)})
	}
	if f.Status != "" {
		preds = append(preds, Equals{Field: FieldStatus, Value: string(f.Status)})
	}
	// Any non-empty term filters, whitespace included.
	if f.Q != "" {
		preds = append(preds, ContainsFold{
			Fields: []Field{FieldProjectName, FieldTitle},
			Term:   model.NormalizeText(f.Q),
		})
	}
	if f.RiskMin != nil {
		preds = append(preds, AtLeast{Field: FieldRiskScore, Value: *f.RiskMin})
	}
	if f.RiskMax != nil {
		preds = append(preds, AtMost{Field: FieldRiskScore, Value: *f.RiskMax})
	}

	return And{Predicates: preds}
}

// Field is a symbolic column reference resolved by the backend.
type Field string

const (
	FieldChain       Field = "chain"
	FieldStatus      Field = "status"
	FieldProjectName Field = "project_name"
	FieldTitle       Field = "title"
	FieldRiskScore   Field = "risk_score"
	FieldRankScore   Field = "rank_score"
	FieldStartDate   Field = "start_date"
	FieldEndDate     Field = "end_date"
	FieldID          Field = "id"
)

// Predicate is a filter condition. Sealed to this package.
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose field equals Value exactly.
type Equals struct {
	Field Field
	Value string
}

func (Equals) predicateNode() {}

// ContainsFold matches rows where ANY of Fields contains Term, compared
// after Unicode case folding.
type ContainsFold struct {
	Fields []Field
	Term   string
}

func (ContainsFold) predicateNode() {}

// AtLeast matches rows with Field >= Value (inclusive).
type AtLeast struct {
	Field Field
	Value int
}

func (AtLeast) predicateNode() {}

// AtMost matches rows with Field <= Value (inclusive).
type AtMost struct {
	Field Field
	Value int
}

func (AtMost) predicateNode() {}

// And is a conjunction. Empty means always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
