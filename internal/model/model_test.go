package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
		ok   bool
	}{
		{"upcoming", StatusUpcoming, true},
		{"live", StatusLive, true},
		{"ended", StatusEnded, true},
		{"archived", "", false},
		{"LIVE", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRiskFactors(t *testing.T) {
	rf := DefaultRiskFactors("ad_1")
	assert.Equal(t, "ad_1", rf.AirdropID)
	assert.Equal(t, 50, rf.SybilRisk)
	assert.Equal(t, 50, rf.ScamRisk)
	assert.Equal(t, 50, rf.TaskRisk)
	assert.Equal(t, 0, rf.KYCRequired)
	assert.Nil(t, rf.Notes)
}

func TestRiskInput_OmitsNilLevels(t *testing.T) {
	in := RiskInput{ScamRisk: Ptr(0)}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	// Explicit zero survives, nil levels disappear so defaults can apply.
	assert.JSONEq(t, `{"scam_risk":0}`, string(data))
}

func TestRecordNormalized(t *testing.T) {
	decomposed := "Cafe\u0301"
	r := Record{
		Project: Project{ID: "p1", Name: decomposed, Chain: "Solana"},
		Airdrop: Airdrop{ID: "a1", ProjectID: "p1", Title: decomposed, Status: StatusLive, Link: Ptr("https://x/" + decomposed)},
		Risk:    RiskFactors{AirdropID: "a1", Notes: Ptr(decomposed)},
	}

	n := r.Normalized()
	assert.Equal(t, "Caf\u00e9", n.Project.Name)
	assert.Equal(t, "Caf\u00e9", n.Airdrop.Title)
	assert.Equal(t, "Caf\u00e9", *n.Risk.Notes)
	// URLs are not touched.
	assert.Equal(t, "https://x/"+decomposed, *n.Airdrop.Link)
	// Original is not mutated.
	assert.Equal(t, decomposed, r.Project.Name)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "K\u00f6ln", NormalizeText("Ko\u0308ln"))
	// Whitespace is part of the text.
	assert.Equal(t, "  SOL \t", NormalizeText("  SOL \t"))
}

func TestFoldCase(t *testing.T) {
	assert.Equal(t, "sol xyz", FoldCase("SOL XYZ"))
	assert.Equal(t, FoldCase("Straße"), FoldCase("STRASSE"))
	assert.Equal(t, FoldCase("Cafe\u0301"), FoldCase("CAF\u00c9"))
}
