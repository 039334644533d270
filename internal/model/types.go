package model

// Status is the lifecycle state of an airdrop event.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusLive     Status = "live"
	StatusEnded    Status = "ended"
)

// ValidStatuses defines the allowed lifecycle states.
var ValidStatuses = map[Status]bool{
	StatusUpcoming: true,
	StatusLive:     true,
	StatusEnded:    true,
}

// Valid reports whether s is one of the closed enum values.
func (s Status) Valid() bool {
	return ValidStatuses[s]
}

// ParseStatus converts a raw string to a Status.
// Returns false for anything outside the enum, including the empty string.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// Default risk levels applied when an import omits a factor.
const (
	DefaultSybilRisk   = 50
	DefaultScamRisk    = 50
	DefaultTaskRisk    = 50
	DefaultKYCRequired = 0

	MinRiskLevel = 0
	MaxRiskLevel = 100
)

// Project is the team or protocol behind one or more airdrops.
type Project struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Chain   string  `json:"chain" yaml:"chain"` // free-form label ("Solana", "Multi")
	Website *string `json:"website,omitempty" yaml:"website,omitempty"`
	Twitter *string `json:"twitter,omitempty" yaml:"twitter,omitempty"`
}

// Airdrop is a single token-distribution event owned by a Project.
type Airdrop struct {
	ID        string  `json:"id" yaml:"id"`
	ProjectID string  `json:"project_id" yaml:"project_id"`
	Title     string  `json:"title" yaml:"title"`
	Status    Status  `json:"status" yaml:"status"`
	StartDate *string `json:"start_date,omitempty" yaml:"start_date,omitempty"` // ISO date, no ordering vs EndDate
	EndDate   *string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Reward    *string `json:"reward,omitempty" yaml:"reward,omitempty"`
	Link      *string `json:"link,omitempty" yaml:"link,omitempty"`
}

// RiskFactors holds the four weighted inputs of the risk score.
// Identity is the owning airdrop's ID (one-to-one).
type RiskFactors struct {
	AirdropID   string  `json:"airdrop_id"`
	SybilRisk   int     `json:"sybil_risk"`
	ScamRisk    int     `json:"scam_risk"`
	TaskRisk    int     `json:"task_risk"`
	KYCRequired int     `json:"kyc_required"` // 0/100 magnitude, weighted like the others
	Notes       *string `json:"notes,omitempty"`
}

// DefaultRiskFactors returns the column defaults for an airdrop.
func DefaultRiskFactors(airdropID string) RiskFactors {
	return RiskFactors{
		AirdropID:   airdropID,
		SybilRisk:   DefaultSybilRisk,
		ScamRisk:    DefaultScamRisk,
		TaskRisk:    DefaultTaskRisk,
		KYCRequired: DefaultKYCRequired,
	}
}

// Record is a resolved (Project, Airdrop, RiskFactors) triple ready to persist.
type Record struct {
	Project Project
	Airdrop Airdrop
	Risk    RiskFactors
}

// RiskInput is the import form of RiskFactors.
// Nil levels take the column defaults; AirdropID may be omitted.
type RiskInput struct {
	AirdropID   string  `json:"airdrop_id,omitempty" yaml:"airdrop_id,omitempty"`
	SybilRisk   *int    `json:"sybil_risk,omitempty" yaml:"sybil_risk,omitempty"`
	ScamRisk    *int    `json:"scam_risk,omitempty" yaml:"scam_risk,omitempty"`
	TaskRisk    *int    `json:"task_risk,omitempty" yaml:"task_risk,omitempty"`
	KYCRequired *int    `json:"kyc_required,omitempty" yaml:"kyc_required,omitempty"`
	Notes       *string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ImportItem is one composite entry of an import batch.
type ImportItem struct {
	Project Project   `json:"project" yaml:"project"`
	Airdrop Airdrop   `json:"airdrop" yaml:"airdrop"`
	Risk    RiskInput `json:"risk" yaml:"risk"`
}

// ImportPayload is the envelope accepted by the import file loader and the
// HTTP adapter.
type ImportPayload struct {
	Items []ImportItem `json:"items" yaml:"items"`
}

// RankedAirdrop is one row of the derived listing: an airdrop joined to its
// project and risk factors, plus the two computed scores.
type RankedAirdrop struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	Project   string  `json:"project"` // project name
	Chain     string  `json:"chain"`
	Website   *string `json:"website"`
	Twitter   *string `json:"twitter"`
	Title     string  `json:"title"`
	Status    Status  `json:"status"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Reward    *string `json:"reward"`
	Link      *string `json:"link"`

	SybilRisk   int     `json:"sybil_risk"`
	ScamRisk    int     `json:"scam_risk"`
	TaskRisk    int     `json:"task_risk"`
	KYCRequired int     `json:"kyc_required"`
	Notes       *string `json:"notes"`

	RiskScore int     `json:"risk_score"`
	RankScore float64 `json:"rank_score"`
}

// Ptr returns a pointer to v. Handy for optional columns in literals.
func Ptr[T any](v T) *T {
	return &v
}
