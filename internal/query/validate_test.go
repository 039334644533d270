package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dropscope/internal/model"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		wantField string
	}{
		{name: "empty", filter: Filter{}},
		{name: "all valid", filter: Filter{Chain: "Multi", Status: model.StatusEnded, Q: "x", Sort: SortEnd}},
		{name: "inverted risk bounds accepted", filter: Filter{RiskMin: intPtr(80), RiskMax: intPtr(20)}},
		{name: "out of scale bounds accepted", filter: Filter{RiskMin: intPtr(-5), RiskMax: intPtr(500)}},
		{name: "bad status", filter: Filter{Status: "archived"}, wantField: "status"},
		{name: "bad sort", filter: Filter{Sort: "newest"}, wantField: "sort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fe *FilterError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantField, fe.Field)
		})
	}
}

func TestDescribe(t *testing.T) {
	f := Filter{Chain: "Solana", Q: "SOL", RiskMin: intPtr(30)}
	assert.Equal(t,
		`chain = "Solana" AND fold(project_name|title) ~ "sol" AND risk_score >= 30`,
		Describe(f.Predicate()))

	assert.Equal(t, "true", Describe(Filter{}.Predicate()))
	assert.Equal(t, "true", Describe(nil))
	assert.Equal(t, "risk_score <= 5", Describe(AtMost{Field: FieldRiskScore, Value: 5}))
}
