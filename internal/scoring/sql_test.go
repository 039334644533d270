package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/dropscope/internal/model"
)

func TestWeightedExpr(t *testing.T) {
	got := Default().WeightedExpr(DefaultColumns)
	assert.Equal(t, "(35*rf.sybil_risk + 25*rf.scam_risk + 20*rf.task_risk + 20*rf.kyc_required)", got)
}

func TestRiskExpr(t *testing.T) {
	got := Default().RiskExpr(DefaultColumns)
	assert.Equal(t,
		"((35*rf.sybil_risk + 25*rf.scam_risk + 20*rf.task_risk + 20*rf.kyc_required) + 50) / 100",
		got)
}

func TestRankExpr(t *testing.T) {
	got := Default().RankExpr(DefaultColumns)
	assert.Equal(t,
		"(100 - (35*rf.sybil_risk + 25*rf.scam_risk + 20*rf.task_risk + 20*rf.kyc_required) / 100.0) + "+
			"CASE a.status WHEN 'live' THEN 5 WHEN 'upcoming' THEN 2 ELSE 0 END",
		got)
}

func TestRankExpr_CustomColumnsAndBonus(t *testing.T) {
	e := New(Weights{Sybil: 100}, map[model.Status]float64{model.StatusUpcoming: 1.5})
	cols := Columns{Sybil: "s", Scam: "c", Task: "t", KYC: "k", Status: "st"}

	assert.Equal(t, "(100 - (100*s + 0*c + 0*t + 0*k) / 100.0) + CASE st WHEN 'upcoming' THEN 1.5 ELSE 0 END", e.RankExpr(cols))
}
