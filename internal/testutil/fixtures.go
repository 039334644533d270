package testutil

import "github.com/roach88/dropscope/internal/model"

// Item builds a valid import item. Risk levels are left nil so the schema
// defaults apply; set them on the returned value when a test needs them.
func Item(projectID, airdropID string, status model.Status) model.ImportItem {
	return model.ImportItem{
		Project: model.Project{
			ID:    projectID,
			Name:  "Project " + projectID,
			Chain: "Solana",
		},
		Airdrop: model.Airdrop{
			ID:        airdropID,
			ProjectID: projectID,
			Title:     "Drop " + airdropID,
			Status:    status,
		},
	}
}

// ItemWithRisk builds a valid import item with all four levels set.
func ItemWithRisk(projectID, airdropID string, status model.Status, sybil, scam, task, kyc int) model.ImportItem {
	it := Item(projectID, airdropID, status)
	it.Risk = model.RiskInput{
		SybilRisk:   model.Ptr(sybil),
		ScamRisk:    model.Ptr(scam),
		TaskRisk:    model.Ptr(task),
		KYCRequired: model.Ptr(kyc),
	}
	return it
}

// SampleItems is a small mixed batch: one item per status, one relying on
// defaults, and one with a decomposed (NFD) project name.
func SampleItems() []model.ImportItem {
	alpha := ItemWithRisk("proj_alpha", "ad_alpha_s1", model.StatusLive, 20, 10, 40, 0)
	alpha.Project.Chain = "Ethereum"
	alpha.Project.Website = model.Ptr("https://alpha.example")
	alpha.Airdrop.StartDate = model.Ptr("2025-09-01")
	alpha.Risk.Notes = model.Ptr("low effort")

	beta := Item("proj_beta", "ad_beta_q1", model.StatusUpcoming)
	beta.Project.Name = "Cafe\u0301 Beta"

	gamma := ItemWithRisk("proj_gamma", "ad_gamma_og", model.StatusEnded, 70, 60, 20, 100)
	gamma.Project.Chain = "Multi"
	gamma.Airdrop.EndDate = model.Ptr("2025-06-30")

	return []model.ImportItem{alpha, beta, gamma}
}
