package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/query"
)

// Counts reports the row count of each table.
type Counts struct {
	Projects    int `json:"projects"`
	Airdrops    int `json:"airdrops"`
	RiskFactors int `json:"risk_factors"`
}

// List returns the ranked listing for a filter.
//
// Scores are computed by the query itself; nothing is read back from a
// materialized column. An airdrop missing its project or risk row is not
// listed. The result is never nil.
func (s *Store) List(ctx context.Context, f query.Filter) ([]model.RankedAirdrop, error) {
	sqlText, params, err := s.compiler.Compile(f)
	if err != nil {
		return nil, fmt.Errorf("list airdrops: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("list airdrops: %w", err)
	}
	defer rows.Close()

	result := []model.RankedAirdrop{}
	for rows.Next() {
		r, err := scanRanked(rows)
		if err != nil {
			return nil, fmt.Errorf("list airdrops: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list airdrops: %w", err)
	}

	return result, nil
}

// Get returns the ranked row for one airdrop.
// Returns sql.ErrNoRows (wrapped) if the airdrop is not listed.
func (s *Store) Get(ctx context.Context, airdropID string) (model.RankedAirdrop, error) {
	sqlText, params, err := s.compiler.CompileByID(airdropID)
	if err != nil {
		return model.RankedAirdrop{}, fmt.Errorf("get airdrop: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return model.RankedAirdrop{}, fmt.Errorf("get airdrop: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.RankedAirdrop{}, fmt.Errorf("get airdrop: %w", err)
		}
		return model.RankedAirdrop{}, fmt.Errorf("get airdrop %q: %w", airdropID, sql.ErrNoRows)
	}

	r, err := scanRanked(rows)
	if err != nil {
		return model.RankedAirdrop{}, fmt.Errorf("get airdrop: %w", err)
	}
	return r, nil
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM airdrops),
			(SELECT COUNT(*) FROM risk_factors)
	`).Scan(&c.Projects, &c.Airdrops, &c.RiskFactors)
	if err != nil {
		return Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}

// scanRanked scans one row in querysql.SelectColumns order.
func scanRanked(rows *sql.Rows) (model.RankedAirdrop, error) {
	var r model.RankedAirdrop
	var status string
	err := rows.Scan(
		&r.ID, &r.ProjectID, &r.Project, &r.Chain, &r.Website, &r.Twitter,
		&r.Title, &status, &r.StartDate, &r.EndDate, &r.Reward, &r.Link,
		&r.SybilRisk, &r.ScamRisk, &r.TaskRisk, &r.KYCRequired, &r.Notes,
		&r.RiskScore, &r.RankScore,
	)
	if err != nil {
		return model.RankedAirdrop{}, fmt.Errorf("scan ranked airdrop: %w", err)
	}
	r.Status = model.Status(status)
	return r, nil
}
