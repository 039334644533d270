package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dropscope/internal/store"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Path   string       `json:"path"`
	Counts store.Counts `json:"counts"`
}

// WriteText prints the database path and row counts.
func (r InitResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ Database ready at %s\n\n"+
		"  projects:     %d\n"+
		"  airdrops:     %d\n"+
		"  risk factors: %d\n",
		r.Path, r.Counts.Projects, r.Counts.Airdrops, r.Counts.RiskFactors)
	return err
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and seed example airdrops",
		Long: `Create the SQLite database if needed, apply the schema and seed the three
example airdrops when the airdrops table is empty.

Running init again is harmless: schema creation and seeding are idempotent.

Example:
  dropscope init --db ./data/airdrop.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	log := newLogger(opts, cmd.ErrOrStderr())

	st, err := openStore(opts, log)
	if err != nil {
		return fail(formatter, "failed to open database", err)
	}
	defer closeStore(st, log)

	ctx := cmd.Context()
	if err := st.EnsureReady(ctx); err != nil {
		return fail(formatter, "failed to prepare database", err)
	}

	counts, err := st.Counts(ctx)
	if err != nil {
		return fail(formatter, "failed to count rows", err)
	}

	return formatter.Success(InitResult{Path: st.Path(), Counts: counts})
}
