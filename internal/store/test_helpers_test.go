package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/dropscope/internal/model"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v\n%s", err, query)
	}
}

// createTestRecord creates a record with minimal required fields.
func createTestRecord(projectID, airdropID string, status model.Status, sybil, scam, task, kyc int) model.Record {
	return model.Record{
		Project: model.Project{ID: projectID, Name: "Project " + projectID, Chain: "Solana"},
		Airdrop: model.Airdrop{ID: airdropID, ProjectID: projectID, Title: "Drop " + airdropID, Status: status},
		Risk: model.RiskFactors{
			AirdropID: airdropID,
			SybilRisk: sybil, ScamRisk: scam, TaskRisk: task, KYCRequired: kyc,
		},
	}
}
