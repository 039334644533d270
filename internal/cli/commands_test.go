package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/store"
	"github.com/roach88/dropscope/internal/testutil"
)

// decodeData unmarshals the data field of a JSON CLIResponse into v.
func decodeData(t *testing.T, out string, v interface{}) CLIResponse {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if v != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return resp.CLIResponse
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writePayload(t *testing.T, items []model.ImportItem) string {
	t.Helper()
	data, err := json.Marshal(model.ImportPayload{Items: items})
	require.NoError(t, err)
	return writeFile(t, "batch.json", string(data))
}

func TestInit_SeedsAndReportsCounts(t *testing.T) {
	db := tempDB(t)

	out, _, err := executeRoot(t, db, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Database ready at "+db)
	assert.Contains(t, out, "airdrops:     3")

	_, statErr := os.Stat(db)
	require.NoError(t, statErr, "database file should be created")

	// Second run is idempotent.
	out, _, err = executeRoot(t, db, "--format", "json", "init")
	require.NoError(t, err)

	var res InitResult
	resp := decodeData(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, db, res.Path)
	assert.Equal(t, store.Counts{Projects: 3, Airdrops: 3, RiskFactors: 3}, res.Counts)
}

func TestInit_UnwritablePath(t *testing.T) {
	blocker := writeFile(t, "not-a-dir", "x")

	out, _, err := executeRoot(t, filepath.Join(blocker, "airdrop.db"), "init")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [NOT_READY]")
}

func TestList_DefaultRankOrder(t *testing.T) {
	db := tempDB(t)

	out, _, err := executeRoot(t, db, "--format", "json", "list")
	require.NoError(t, err)

	var res ListResult
	decodeData(t, out, &res)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "ad_sol_xyz_s1", res.Items[0].ID)
	assert.Equal(t, 33, res.Items[0].RiskScore)
	assert.Equal(t, 72.25, res.Items[0].RankScore)
	assert.Equal(t, "ad_evm_abc_s1", res.Items[1].ID)
	assert.Equal(t, "ad_multi_def_beta", res.Items[2].ID)
}

func TestList_Filters(t *testing.T) {
	db := tempDB(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"chain", []string{"--chain", "Solana"}, []string{"ad_sol_xyz_s1"}},
		{"chain_case_sensitive", []string{"--chain", "solana"}, []string{}},
		{"status", []string{"--status", "ended"}, []string{"ad_multi_def_beta"}},
		{"q_case_insensitive", []string{"--q", "evm"}, []string{"ad_evm_abc_s1"}},
		{"q_matches_title", []string{"--q", "QUEST"}, []string{"ad_evm_abc_s1"}},
		{"risk_max", []string{"--risk-max", "35"}, []string{"ad_sol_xyz_s1"}},
		{"risk_min", []string{"--risk-min", "38"}, []string{"ad_evm_abc_s1", "ad_multi_def_beta"}},
		{"risk_zero_is_a_bound", []string{"--risk-max", "0"}, []string{}},
		{"inverted_bounds", []string{"--risk-min", "60", "--risk-max", "10"}, []string{}},
		{"sort_risk_asc", []string{"--sort", "riskAsc"}, []string{"ad_sol_xyz_s1", "ad_evm_abc_s1", "ad_multi_def_beta"}},
		{"sort_risk_desc", []string{"--sort", "riskDesc"}, []string{"ad_multi_def_beta", "ad_evm_abc_s1", "ad_sol_xyz_s1"}},
		{"sort_start", []string{"--sort", "start"}, []string{"ad_multi_def_beta", "ad_sol_xyz_s1", "ad_evm_abc_s1"}},
		{"sort_end_nulls_last", []string{"--sort", "end"}, []string{"ad_multi_def_beta", "ad_sol_xyz_s1", "ad_evm_abc_s1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "list"}, tt.args...)
			out, _, err := executeRoot(t, db, args...)
			require.NoError(t, err)

			var res ListResult
			decodeData(t, out, &res)
			ids := make([]string, 0, len(res.Items))
			for _, it := range res.Items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestList_TextTable(t *testing.T) {
	out, _, err := executeRoot(t, tempDB(t), "list", "--chain", "Solana")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "RANK"))
	assert.Contains(t, lines[1], "72.25")
	assert.Contains(t, lines[1], "SOL XYZ")
	assert.Contains(t, lines[1], "ad_sol_xyz_s1")
}

func TestList_EmptyText(t *testing.T) {
	out, _, err := executeRoot(t, tempDB(t), "list", "--chain", "Cosmos")
	require.NoError(t, err)
	assert.Equal(t, "No airdrops match.\n", out)
}

func TestList_EmptyJSONIsArray(t *testing.T) {
	out, _, err := executeRoot(t, tempDB(t), "--format", "json", "list", "--chain", "Cosmos")
	require.NoError(t, err)
	assert.Contains(t, out, `"items":[]`)
}

func TestList_InvalidStatus(t *testing.T) {
	out, _, err := executeRoot(t, tempDB(t), "list", "--status", "paused")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [BAD_REQUEST]")
}

func TestList_VerboseLogsFilterToStderr(t *testing.T) {
	out, errOut, err := executeRoot(t, tempDB(t), "-v", "--format", "json", "list", "--chain", "Solana")
	require.NoError(t, err)
	assert.Contains(t, errOut, `chain = "Solana"`)
	assert.NotContains(t, out, "Filter:")
}

func TestImport_AppliesBatch(t *testing.T) {
	db := tempDB(t)
	path := writePayload(t, testutil.SampleItems())

	stdout := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Database: db}
	opts := &ImportOptions{RootOptions: rootOpts, BatchIDs: testutil.NewFixedBatchIDGenerator("batch-1")}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())

	require.NoError(t, runImport(opts, path, cmd))

	var res ImportResult
	resp := decodeData(t, stdout.String(), &res)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "batch-1", resp.BatchID)
	assert.Equal(t, ImportResult{Count: 3}, res)
	assert.NotContains(t, stdout.String(), `"data":{"batch_id"`)

	out, _, err := executeRoot(t, db, "--format", "json", "list", "--chain", "Ethereum")
	require.NoError(t, err)
	var list ListResult
	decodeData(t, out, &list)
	ids := []string{}
	for _, it := range list.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"ad_alpha_s1", "ad_evm_abc_s1"}, ids)
}

func TestImport_YAML(t *testing.T) {
	db := tempDB(t)
	path := writeFile(t, "batch.yaml", `
items:
  - project:
      id: proj_yaml
      name: YAML Project
      chain: Base
    airdrop:
      id: ad_yaml_s1
      project_id: proj_yaml
      title: Points Season
      status: live
    risk:
      sybil_risk: 10
      scam_risk: 10
      task_risk: 10
`)

	out, _, err := executeRoot(t, db, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 item(s)")

	out, _, err = executeRoot(t, db, "--format", "json", "list", "--chain", "Base")
	require.NoError(t, err)
	var list ListResult
	decodeData(t, out, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 0, list.Items[0].KYCRequired)
	assert.Equal(t, 8, list.Items[0].RiskScore)
}

func TestImport_Stdin(t *testing.T) {
	db := tempDB(t)
	data, err := json.Marshal(model.ImportPayload{Items: []model.ImportItem{
		testutil.Item("proj_stdin", "ad_stdin", model.StatusUpcoming),
	}})
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewReader(data))
	cmd.SetArgs([]string{"--db", db, "import", "-"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Imported 1 item(s)")
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	db := tempDB(t)
	path := writePayload(t, testutil.SampleItems())

	out, _, err := executeRoot(t, db, "import", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Batch valid: 3 item(s)")

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "dry run should not create the database")
}

func TestImport_ValidationFailure(t *testing.T) {
	db := tempDB(t)
	bad := testutil.Item("proj_bad", "ad_bad", model.Status("paused"))
	path := writePayload(t, []model.ImportItem{bad})

	out, _, err := executeRoot(t, db, "--format", "json", "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeData(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION", resp.Error.Code)

	// Seed data untouched, nothing from the batch written.
	out, _, err = executeRoot(t, db, "--format", "json", "init")
	require.NoError(t, err)
	var res InitResult
	decodeData(t, out, &res)
	assert.Equal(t, 3, res.Counts.Airdrops)
}

func TestImport_UnknownProjectIsConstraint(t *testing.T) {
	db := tempDB(t)
	good := testutil.Item("proj_ok", "ad_ok", model.StatusLive)
	orphan := testutil.Item("proj_ok", "ad_orphan", model.StatusLive)
	orphan.Project.ID = "proj_other"
	orphan.Airdrop.ProjectID = "proj_missing"
	path := writePayload(t, []model.ImportItem{good, orphan})

	out, _, err := executeRoot(t, db, "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [CONSTRAINT]")

	out, _, err = executeRoot(t, db, "--format", "json", "import", path)
	require.Error(t, err)
	resp := decodeData(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONSTRAINT", resp.Error.Code)
	assert.Equal(t, map[string]interface{}{"kind": "foreign_key", "item": float64(-1)}, resp.Error.Details)

	out, _, err = executeRoot(t, db, "--format", "json", "list", "--q", "ad_ok")
	require.NoError(t, err)
	var list ListResult
	decodeData(t, out, &list)
	assert.Empty(t, list.Items, "batch should be rolled back")
}

func TestImport_EmptyBatch(t *testing.T) {
	path := writeFile(t, "empty.json", `{"items": []}`)

	out, _, err := executeRoot(t, tempDB(t), "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [VALIDATION]")
	assert.Contains(t, out, "E201")
}

func TestImport_MissingFile(t *testing.T) {
	out, _, err := executeRoot(t, tempDB(t), "import", "/nonexistent/batch.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [BAD_REQUEST]")
}

func TestImport_MalformedJSON(t *testing.T) {
	path := writeFile(t, "broken.json", `{"items": [`)

	_, _, err := executeRoot(t, tempDB(t), "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "as JSON")
}

func TestReadPayload_Sniffing(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json_ext", "a.json", `{"items":[{"project":{"id":"p"}}]}`},
		{"yaml_ext", "a.yml", "items:\n  - project:\n      id: p\n"},
		{"sniff_json", "a.txt", `  {"items":[{"project":{"id":"p"}}]}`},
		{"sniff_yaml", "a.txt", "items:\n  - project:\n      id: p\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			payload, err := readPayload(path, nil)
			require.NoError(t, err)
			require.Len(t, payload.Items, 1)
			assert.Equal(t, "p", payload.Items[0].Project.ID)
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantRisk int
		wantRank float64
	}{
		{"sol_xyz_live", []string{"--sybil", "40", "--scam", "35", "--task", "50", "--status", "live"}, 33, 72.25},
		{"evm_abc_upcoming", []string{"--sybil", "55", "--scam", "45", "--task", "35"}, 38, 64.5},
		{"multi_def_ended", []string{"--sybil", "25", "--scam", "20", "--task", "30", "--kyc", "100", "--status", "ended"}, 40, 60.25},
		{"defaults", nil, 40, 62},
		{"all_zero_live", []string{"--sybil", "0", "--scam", "0", "--task", "0", "--status", "live"}, 0, 105},
		{"exact_half_rounds_up", []string{"--sybil", "90", "--scam", "0", "--task", "0", "--status", "ended"}, 32, 68.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "score"}, tt.args...)
			out, _, err := executeRoot(t, tempDB(t), args...)
			require.NoError(t, err)

			var res ScoreResult
			decodeData(t, out, &res)
			assert.Equal(t, tt.wantRisk, res.RiskScore)
			assert.Equal(t, tt.wantRank, res.RankScore)
		})
	}
}

func TestScore_TextOutput(t *testing.T) {
	db := tempDB(t)
	out, _, err := executeRoot(t, db, "score", "--sybil", "40", "--scam", "35", "--task", "50", "--status", "live")
	require.NoError(t, err)
	assert.Equal(t, "risk_score: 33\nrank_score: 72.25\n", out)

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "score should not touch the database")
}

func TestScore_RejectsOutOfRange(t *testing.T) {
	tests := [][]string{
		{"--sybil", "101"},
		{"--kyc", "-1"},
		{"--status", "paused"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, "="), func(t *testing.T) {
			out, _, err := executeRoot(t, tempDB(t), append([]string{"score"}, args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error [BAD_REQUEST]")
		})
	}
}

// syncBuffer is a bytes.Buffer safe for the server goroutines and the test
// to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServe_ServesUntilCancelled(t *testing.T) {
	db := tempDB(t)
	stdout := &syncBuffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--db", db, "serve", "--addr", "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- cmd.ExecuteContext(ctx)
	}()

	var addr string
	require.Eventually(t, func() bool {
		line := stdout.String()
		if !strings.HasPrefix(line, "Listening on ") {
			return false
		}
		addr = strings.TrimSpace(strings.TrimPrefix(line, "Listening on "))
		return true
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/airdrops?chain=Solana", addr))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ad_sol_xyz_s1")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}

func TestServe_BadAddr(t *testing.T) {
	out, _, err := executeRoot(t, tempDB(t), "serve", "--addr", "not-an-address")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [BAD_REQUEST]")
}
