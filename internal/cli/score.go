package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/scoring"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	Sybil  int
	Scam   int
	Task   int
	KYC    int
	Status string
}

// ScoreResult is the JSON payload of the score command.
type ScoreResult struct {
	Factors   model.RiskFactors `json:"factors"`
	Status    model.Status      `json:"status"`
	RiskScore int               `json:"risk_score"`
	RankScore float64           `json:"rank_score"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute risk and rank scores for a set of factors",
		Long: `Compute the risk and rank scores for the given risk factors without
touching the database.

  risk_score = round(0.35*sybil + 0.25*scam + 0.20*task + 0.20*kyc), halves up
  rank_score = 100 - weighted risk + status bonus (live 5, upcoming 2, ended 0)

Example:
  dropscope score --sybil 40 --scam 35 --task 50 --status live`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Sybil, "sybil", model.DefaultSybilRisk, "sybil risk (0-100)")
	cmd.Flags().IntVar(&opts.Scam, "scam", model.DefaultScamRisk, "scam risk (0-100)")
	cmd.Flags().IntVar(&opts.Task, "task", model.DefaultTaskRisk, "task risk (0-100)")
	cmd.Flags().IntVar(&opts.KYC, "kyc", model.DefaultKYCRequired, "kyc required (0-100)")
	cmd.Flags().StringVar(&opts.Status, "status", string(model.StatusUpcoming), "upcoming|live|ended")

	return cmd
}

func runScore(opts *ScoreOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	levels := []struct {
		flag  string
		value int
	}{
		{"sybil", opts.Sybil},
		{"scam", opts.Scam},
		{"task", opts.Task},
		{"kyc", opts.KYC},
	}
	for _, l := range levels {
		if l.value < model.MinRiskLevel || l.value > model.MaxRiskLevel {
			return usageError(formatter, fmt.Sprintf("--%s must be between %d and %d, got %d",
				l.flag, model.MinRiskLevel, model.MaxRiskLevel, l.value))
		}
	}
	status, ok := model.ParseStatus(opts.Status)
	if !ok {
		return usageError(formatter, fmt.Sprintf("--status must be one of upcoming, live, ended, got %q", opts.Status))
	}

	rf := model.RiskFactors{
		SybilRisk:   opts.Sybil,
		ScamRisk:    opts.Scam,
		TaskRisk:    opts.Task,
		KYCRequired: opts.KYC,
	}
	score := scoring.Default().Evaluate(rf, status)
	formatter.VerboseLog("Weighted risk (unrounded): %v", score.Raw)

	return formatter.Success(ScoreResult{Factors: rf, Status: status, RiskScore: score.Risk, RankScore: score.Rank})
}

// WriteText prints the two scores, one per line.
func (r ScoreResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "risk_score: %d\nrank_score: %s\n",
		r.RiskScore, strconv.FormatFloat(r.RankScore, 'f', -1, 64))
	return err
}
