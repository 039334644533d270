package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/query"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Chain   string
	Status  string
	Q       string
	RiskMin int
	RiskMax int
	Sort    string
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Items []model.RankedAirdrop `json:"items"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List airdrops ranked by score",
		Long: `List airdrops joined to their project and risk factors, with the computed
risk and rank scores. Every flag narrows the result.

Sort orders:
  rank      rank score, highest first (default)
  riskAsc   risk score, lowest first
  riskDesc  risk score, highest first
  start     start date, earliest first, undated last
  end       end date, earliest first, undated last

Example:
  dropscope list --chain Solana --risk-max 40
  dropscope list --q sol --sort riskAsc --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Chain, "chain", "", "exact chain label")
	cmd.Flags().StringVar(&opts.Status, "status", "", "upcoming|live|ended")
	cmd.Flags().StringVar(&opts.Q, "q", "", "case-insensitive substring of project name or title")
	cmd.Flags().IntVar(&opts.RiskMin, "risk-min", 0, "minimum risk score (inclusive)")
	cmd.Flags().IntVar(&opts.RiskMax, "risk-max", 100, "maximum risk score (inclusive)")
	cmd.Flags().StringVar(&opts.Sort, "sort", string(query.SortRank), "rank|riskAsc|riskDesc|start|end")

	return cmd
}

// filter builds the query filter from the flags that were set.
func (o *ListOptions) filter(cmd *cobra.Command) query.Filter {
	f := query.Filter{
		Chain:  o.Chain,
		Status: model.Status(o.Status),
		Q:      o.Q,
		Sort:   query.Sort(o.Sort),
	}
	if cmd.Flags().Changed("risk-min") {
		f.RiskMin = model.Ptr(o.RiskMin)
	}
	if cmd.Flags().Changed("risk-max") {
		f.RiskMax = model.Ptr(o.RiskMax)
	}
	return f
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	filter := opts.filter(cmd)
	if err := filter.Validate(); err != nil {
		return fail(formatter, "invalid filter", err)
	}
	formatter.VerboseLog("Filter: %s, sort %s", query.Describe(filter.Predicate()), filter.Order())

	st, err := openStore(opts.RootOptions, log)
	if err != nil {
		return fail(formatter, "failed to open database", err)
	}
	defer closeStore(st, log)

	ctx := cmd.Context()
	if err := st.EnsureReady(ctx); err != nil {
		return fail(formatter, "failed to prepare database", err)
	}

	items, err := st.List(ctx, filter)
	if err != nil {
		return fail(formatter, "failed to list airdrops", err)
	}
	formatter.VerboseLog("Matched %d airdrop(s)", len(items))

	return formatter.Success(ListResult{Items: items})
}

// WriteText renders the listing as an aligned table.
func (r ListResult) WriteText(w io.Writer) error {
	items := r.Items
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No airdrops match.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tRISK\tSTATUS\tCHAIN\tPROJECT\tTITLE\tID")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			strconv.FormatFloat(it.RankScore, 'f', -1, 64),
			it.RiskScore, it.Status, it.Chain, it.Project, it.Title, it.ID)
	}
	return tw.Flush()
}
