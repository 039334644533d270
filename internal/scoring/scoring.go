package scoring

import (
	"github.com/roach88/dropscope/internal/model"
)

// MaxScore is the upper bound of the risk scale.
const MaxScore = 100

// Scale is the fixed-point denominator of the weighted sum. Weights are
// integer percentages, so the sum is exact in hundredths of a point.
const Scale = 100

// Weights are the per-factor multipliers of the weighted risk sum, in
// percent.
type Weights struct {
	Sybil int
	Scam  int
	Task  int
	KYC   int
}

// DefaultWeights sum to 100 so the risk score stays on the 0-100 scale.
var DefaultWeights = Weights{
	Sybil: 35,
	Scam:  25,
	Task:  20,
	KYC:   20,
}

// DefaultBonus is the rank bonus per lifecycle status.
var DefaultBonus = map[model.Status]float64{
	model.StatusLive:     5,
	model.StatusUpcoming: 2,
	model.StatusEnded:    0,
}

// bonusOrder fixes the CASE arm order in generated SQL.
var bonusOrder = []model.Status{model.StatusLive, model.StatusUpcoming, model.StatusEnded}

// Engine evaluates scores. The zero value is not usable; use Default or New.
//
// Thread-safety: Engine is immutable after construction and safe for
// concurrent use.
type Engine struct {
	weights Weights
	bonus   map[model.Status]float64
}

// Score is the derived pair for one airdrop plus the unrounded sum.
type Score struct {
	Raw  float64 `json:"raw"`
	Risk int     `json:"risk_score"`
	Rank float64 `json:"rank_score"`
}

// New creates an engine with the given weights and bonuses.
// The bonus map is copied.
func New(w Weights, bonus map[model.Status]float64) *Engine {
	b := make(map[model.Status]float64, len(bonus))
	for k, v := range bonus {
		b[k] = v
	}
	return &Engine{weights: w, bonus: b}
}

var defaultEngine = New(DefaultWeights, DefaultBonus)

// Default returns the engine with the production weights.
func Default() *Engine {
	return defaultEngine
}

// Weighted returns the weighted risk sum in hundredths of a point.
// Integer arithmetic keeps exact halves exact: 0.35*90 is 3150, not
// 31.499999999999996.
func (e *Engine) Weighted(rf model.RiskFactors) int {
	return e.weights.Sybil*rf.SybilRisk +
		e.weights.Scam*rf.ScamRisk +
		e.weights.Task*rf.TaskRisk +
		e.weights.KYC*rf.KYCRequired
}

// Bonus returns the rank bonus for a status. Unknown statuses get 0,
// matching the ELSE arm of the SQL CASE.
func (e *Engine) Bonus(s model.Status) float64 {
	return e.bonus[s]
}

// Evaluate computes the risk and rank scores for one airdrop.
//
// The float operations mirror RankExpr step for step (one division, one
// subtraction, one addition) so SQLite produces the identical double.
func (e *Engine) Evaluate(rf model.RiskFactors, status model.Status) Score {
	n := e.Weighted(rf)
	raw := float64(n) / Scale
	return Score{
		Raw:  raw,
		Risk: RoundHundredths(n),
		Rank: float64(MaxScore-raw) + e.Bonus(status),
	}
}

// RoundHundredths rounds a value in hundredths to the nearest integer,
// halves up. Division truncates toward zero like SQLite's integer
// division, so both sides agree for every stored (non-negative) sum.
func RoundHundredths(n int) int {
	return (n + Scale/2) / Scale
}
