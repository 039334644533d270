package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Environment variables consulted for flag defaults.
const (
	EnvDatabase = "DROPSCOPE_DB"
	EnvAddr     = "DROPSCOPE_ADDR"

	DefaultDatabase = "data/airdrop.db"
	DefaultAddr     = ":8080"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dropscope CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dropscope",
		Short: "dropscope - airdrop risk ranking",
		Long: `Track crypto airdrop events and rank them by a weighted risk score.

Data lives in a single SQLite file. The database is created, migrated and
seeded with example airdrops on first use.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", envOr(EnvDatabase, DefaultDatabase),
		"path to SQLite database (env "+EnvDatabase+")")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// envOr returns the environment value for key, or def when unset or empty.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
