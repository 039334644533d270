package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dropscope/internal/importer"
	"github.com/roach88/dropscope/internal/model"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	DryRun bool

	// BatchIDs allows overriding the batch id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	BatchIDs importer.BatchIDGenerator
}

// ImportResult is the JSON payload of the import command. The batch id
// travels on the CLIResponse envelope.
type ImportResult struct {
	Count   int    `json:"count"`
	DryRun  bool   `json:"dry_run,omitempty"`
	BatchID string `json:"-"`
}

// WriteText prints a one-line summary of the batch.
func (r ImportResult) WriteText(w io.Writer) error {
	if r.DryRun {
		_, err := fmt.Fprintf(w, "✓ Batch valid: %d item(s), nothing written\n", r.Count)
		return err
	}
	_, err := fmt.Fprintf(w, "✓ Imported %d item(s) (batch %s)\n", r.Count, r.BatchID)
	return err
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a batch of projects, airdrops and risk factors",
		Long: `Import a batch from a JSON or YAML file of the form

  {"items": [{"project": {...}, "airdrop": {...}, "risk": {...}}]}

The whole batch is validated first and then written in one transaction:
either every item is applied or none is. Existing ids are updated in place.
Omitted risk levels default to 50 (kyc_required to 0).

Use "-" to read JSON or YAML from stdin.

Example:
  dropscope import airdrops.json
  dropscope import --dry-run airdrops.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate the batch without writing it")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	payload, err := readPayload(path, cmd.InOrStdin())
	if err != nil {
		return usageError(formatter, err.Error())
	}
	formatter.VerboseLog("Read %d item(s) from %s", len(payload.Items), path)

	if opts.DryRun {
		im, err := importer.New(nil, importer.WithLogger(log))
		if err != nil {
			return fail(formatter, "failed to create importer", err)
		}
		records, err := im.Validate(payload.Items)
		if err != nil {
			return fail(formatter, "import rejected", err)
		}
		return formatter.Success(ImportResult{Count: len(records), DryRun: true})
	}

	st, err := openStore(opts.RootOptions, log)
	if err != nil {
		return fail(formatter, "failed to open database", err)
	}
	defer closeStore(st, log)

	ctx := cmd.Context()
	if err := st.EnsureReady(ctx); err != nil {
		return fail(formatter, "failed to prepare database", err)
	}

	im, err := importer.New(st, importer.WithLogger(log), importer.WithBatchIDs(opts.BatchIDs))
	if err != nil {
		return fail(formatter, "failed to create importer", err)
	}

	res, err := im.Import(ctx, payload.Items)
	if err != nil {
		return fail(formatter, "import rejected", err)
	}
	return formatter.SuccessBatch(res.BatchID, ImportResult{Count: res.Applied, BatchID: res.BatchID})
}

// readPayload loads an import envelope from path, or from stdin when path
// is "-". Files ending in .yaml or .yml are decoded as YAML, .json as JSON.
// Anything else is sniffed: a leading '{' means JSON.
func readPayload(path string, stdin io.Reader) (model.ImportPayload, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.ImportPayload{}, fmt.Errorf("read import file: %w", err)
	}

	var payload model.ImportPayload
	if isJSON(path, data) {
		if err := json.Unmarshal(data, &payload); err != nil {
			return model.ImportPayload{}, fmt.Errorf("decode %s as JSON: %w", path, err)
		}
		return payload, nil
	}
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return model.ImportPayload{}, fmt.Errorf("decode %s as YAML: %w", path, err)
	}
	return payload, nil
}

func isJSON(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}
