package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/dropscope/internal/model"
)

// recordSQL is the statement set used to write one Record.
type recordSQL struct {
	project string
	airdrop string
	risk    string
}

// upsertSQL replaces every payload column of an existing row in place.
// created_at keeps its first value.
var upsertSQL = recordSQL{
	project: `
		INSERT INTO projects (id, name, chain, website, twitter)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			chain = excluded.chain,
			website = excluded.website,
			twitter = excluded.twitter
	`,
	airdrop: `
		INSERT INTO airdrops (id, project_id, title, status, start_date, end_date, reward, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			title = excluded.title,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reward = excluded.reward,
			link = excluded.link
	`,
	risk: `
		INSERT INTO risk_factors (airdrop_id, sybil_risk, scam_risk, task_risk, kyc_required, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(airdrop_id) DO UPDATE SET
			sybil_risk = excluded.sybil_risk,
			scam_risk = excluded.scam_risk,
			task_risk = excluded.task_risk,
			kyc_required = excluded.kyc_required,
			notes = excluded.notes
	`,
}

// seedSQL never touches existing rows.
var seedSQL = recordSQL{
	project: `
		INSERT INTO projects (id, name, chain, website, twitter)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
	airdrop: `
		INSERT INTO airdrops (id, project_id, title, status, start_date, end_date, reward, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
	risk: `
		INSERT INTO risk_factors (airdrop_id, sybil_risk, scam_risk, task_risk, kyc_required, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(airdrop_id) DO NOTHING
	`,
}

// UpsertBatch writes all records in a single transaction.
//
// Each record replaces the project, airdrop and risk row sharing its ids;
// when a batch repeats an id the later record wins. Foreign keys are checked
// at COMMIT, so an airdrop may reference a project that appears later in
// the same batch.
//
// On any failure nothing is written. Integrity violations are returned as
// *ConstraintError.
func (s *Store) UpsertBatch(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Resets automatically when the transaction ends.
	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("upsert batch: defer foreign keys: %w", err)
	}

	for i, r := range records {
		if err := insertRecord(ctx, tx, r, upsertSQL); err != nil {
			return classify("upsert batch", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("upsert batch: commit", -1, err)
	}

	return nil
}

// insertRecord writes the three rows of a record, parent first.
func insertRecord(ctx context.Context, tx *sql.Tx, r model.Record, stmts recordSQL) error {
	p, a, rf := r.Project, r.Airdrop, r.Risk

	if _, err := tx.ExecContext(ctx, stmts.project,
		p.ID, p.Name, p.Chain, p.Website, p.Twitter,
	); err != nil {
		return fmt.Errorf("project %q: %w", p.ID, err)
	}

	if _, err := tx.ExecContext(ctx, stmts.airdrop,
		a.ID, a.ProjectID, a.Title, string(a.Status), a.StartDate, a.EndDate, a.Reward, a.Link,
	); err != nil {
		return fmt.Errorf("airdrop %q: %w", a.ID, err)
	}

	if _, err := tx.ExecContext(ctx, stmts.risk,
		rf.AirdropID, rf.SybilRisk, rf.ScamRisk, rf.TaskRisk, rf.KYCRequired, rf.Notes,
	); err != nil {
		return fmt.Errorf("risk factors %q: %w", rf.AirdropID, err)
	}

	return nil
}
