package store

import (
	"context"
	"fmt"

	"github.com/roach88/dropscope/internal/model"
)

// SeedRecords are the example records written into a database that holds
// no airdrops yet.
var SeedRecords = []model.Record{
	{
		Project: model.Project{
			ID:      "proj_sol_xyz",
			Name:    "SOL XYZ",
			Chain:   "Solana",
			Website: model.Ptr("https://solxyz.io"),
			Twitter: model.Ptr("https://twitter.com/solxyz"),
		},
		Airdrop: model.Airdrop{
			ID:        "ad_sol_xyz_s1",
			ProjectID: "proj_sol_xyz",
			Title:     "Season 1 Early",
			Status:    model.StatusLive,
			StartDate: model.Ptr("2025-10-01"),
			EndDate:   model.Ptr("2025-12-31"),
			Reward:    model.Ptr("5% supply"),
			Link:      model.Ptr("https://solxyz.io/airdrop"),
		},
		Risk: model.RiskFactors{
			AirdropID: "ad_sol_xyz_s1",
			SybilRisk: 40, ScamRisk: 35, TaskRisk: 50, KYCRequired: 0,
			Notes: model.Ptr("普通交互，反女巫中等"),
		},
	},
	{
		Project: model.Project{
			ID:      "proj_evm_abc",
			Name:    "EVM ABC",
			Chain:   "Ethereum",
			Website: model.Ptr("https://abc.xyz"),
			Twitter: model.Ptr("https://twitter.com/abcxyz"),
		},
		Airdrop: model.Airdrop{
			ID:        "ad_evm_abc_s1",
			ProjectID: "proj_evm_abc",
			Title:     "Quest Round",
			Status:    model.StatusUpcoming,
			StartDate: model.Ptr("2025-11-01"),
			Reward:    model.Ptr("Points → TGE"),
			Link:      model.Ptr("https://abc.xyz/airdrop"),
		},
		Risk: model.RiskFactors{
			AirdropID: "ad_evm_abc_s1",
			SybilRisk: 55, ScamRisk: 45, TaskRisk: 35, KYCRequired: 0,
			Notes: model.Ptr("任务较多，反女巫偏高"),
		},
	},
	{
		Project: model.Project{
			ID:      "proj_multi_def",
			Name:    "MULTI DEF",
			Chain:   "Multi",
			Website: model.Ptr("https://def.app"),
			Twitter: model.Ptr("https://twitter.com/defapp"),
		},
		Airdrop: model.Airdrop{
			ID:        "ad_multi_def_beta",
			ProjectID: "proj_multi_def",
			Title:     "Beta Incentives",
			Status:    model.StatusEnded,
			StartDate: model.Ptr("2025-07-01"),
			EndDate:   model.Ptr("2025-09-15"),
			Reward:    model.Ptr("OG role"),
			Link:      model.Ptr("https://def.app/beta"),
		},
		Risk: model.RiskFactors{
			AirdropID: "ad_multi_def_beta",
			SybilRisk: 25, ScamRisk: 20, TaskRisk: 30, KYCRequired: 100,
			Notes: model.Ptr("历史活动，KYC 强制"),
		},
	},
}

// SeedIfEmpty writes SeedRecords when the airdrops table is empty.
// Reports whether it seeded.
//
// The emptiness check and the inserts share one immediate transaction, so
// concurrent callers seed at most once. Existing rows are never overwritten.
func (s *Store) SeedIfEmpty(ctx context.Context) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM airdrops").Scan(&count); err != nil {
		return false, fmt.Errorf("seed: count airdrops: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for i, r := range SeedRecords {
		if err := insertRecord(ctx, tx, r, seedSQL); err != nil {
			return false, classify("seed", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, classify("seed: commit", -1, err)
	}

	s.log.Info("seeded example airdrops", "count", len(SeedRecords), "path", s.path)
	return true, nil
}
