package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, yaml string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)
	return s
}

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".yaml")
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "rejected_batches.yaml"))
	require.NoError(t, err)

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	second, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_IsolatedDatabases(t *testing.T) {
	s := mustParse(t, `
name: isolated
description: each run starts empty
steps:
  - import:
      - project: { id: p1, name: P1, chain: Solana }
        airdrop: { id: a1, project_id: p1, title: T1, status: live }
    expect: { count: 1 }
assertions:
  - type: counts
    expect: { projects: 1, airdrops: 1, risk_factors: 1 }
`)

	for i := 0; i < 2; i++ {
		result, err := Run(context.Background(), s)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d errors: %v", i, result.Errors)
		assert.Equal(t, "batch-000001", result.Trace[0].BatchID)
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s := mustParse(t, `
name: wrong
description: every expectation here is wrong
seed: true
steps:
  - list: { chain: Solana }
    expect:
      ids: [ad_evm_abc_s1]
  - import:
      - project: { id: p1, name: P1, chain: Solana }
        airdrop: { id: a1, project_id: p1, title: T1, status: live }
    expect: { outcome: VALIDATION }
  - import: []
  - list: {}
    expect: { count: 7 }
assertions:
  - type: row
    airdrop: ad_sol_xyz_s1
    expect: { risk_score: 99, colour: blue }
  - type: absent
    airdrop: ad_sol_xyz_s1
  - type: row
    airdrop: missing
    expect: { risk_score: 1 }
  - type: counts
    expect: { projects: 1 }
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	all := strings.Join(result.Errors, "\n")
	assert.Contains(t, all, "steps[0] (list): ids: expected [ad_evm_abc_s1], got [ad_sol_xyz_s1]")
	assert.Contains(t, all, "steps[1] (import): outcome: expected VALIDATION, got ok")
	assert.Contains(t, all, "steps[2] (import): outcome: expected ok, got VALIDATION")
	assert.Contains(t, all, "steps[3] (list): count: expected 7, got 4")
	assert.Contains(t, all, `assertions[0] (row): unknown field "colour"`)
	assert.Contains(t, all, "assertions[0] (row): risk_score: expected 99, got 33")
	assert.Contains(t, all, "assertions[1] (absent): airdrop ad_sol_xyz_s1 is listed")
	assert.Contains(t, all, "assertions[2] (row): airdrop missing is not listed")
	assert.Contains(t, all, "assertions[3] (counts): projects: expected 1, got 4")
}

func TestRun_ImportOutcomeTrace(t *testing.T) {
	s := mustParse(t, `
name: outcomes
description: rejected batches consume a batch id but record none
steps:
  - import: []
    expect: { outcome: VALIDATION }
  - import:
      - project: { id: p1, name: P1, chain: Solana }
        airdrop: { id: a1, project_id: nope, title: T1, status: live }
    expect: { outcome: CONSTRAINT }
  - import:
      - project: { id: p1, name: P1, chain: Solana }
        airdrop: { id: a1, project_id: p1, title: T1, status: live }
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)

	assert.Equal(t, TraceEvent{Seq: 1, Type: StepImport, Outcome: "VALIDATION"}, result.Trace[0])
	assert.Equal(t, TraceEvent{Seq: 2, Type: StepImport, Outcome: "CONSTRAINT"}, result.Trace[1])
	assert.Equal(t, TraceEvent{Seq: 3, Type: StepImport, Outcome: OutcomeOK, Count: 1, BatchID: "batch-000003"}, result.Trace[2])
}

func TestTraceSnapshot_MarshalKeepsOperators(t *testing.T) {
	data, err := TraceSnapshot{
		ScenarioName: "ops",
		Trace:        []TraceEvent{{Seq: 1, Type: StepList, Filter: "risk_score >= 30", Outcome: OutcomeOK}},
	}.Marshal()
	require.NoError(t, err)

	assert.Contains(t, string(data), `"filter": "risk_score >= 30"`)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
}
