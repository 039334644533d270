package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/dropscope/internal/importer"
	"github.com/roach88/dropscope/internal/query"
	"github.com/roach88/dropscope/internal/store"
)

// Error codes shared with the HTTP adapter.
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION"
	ErrCodeInternal   = "INTERNAL"
)

// newFormatter builds the output formatter for a command's streams.
// Verbose logs go to stderr to avoid corrupting JSON.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger writing to w, at debug level with --verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore opens the database named by --db. Schema is applied on open;
// seeding is left to EnsureReady.
func openStore(opts *RootOptions, log *slog.Logger) (*store.Store, error) {
	log.Debug("opening database", "path", opts.Database)
	return store.Open(opts.Database, store.WithLogger(log))
}

// closeStore closes st and logs, rather than returns, a failure.
func closeStore(st *store.Store, log *slog.Logger) {
	if err := st.Close(); err != nil {
		log.Error("error closing database", "error", err)
	}
}

// fail prints err in the configured format and returns an ExitError whose
// code matches the error class. Every ExitError a command returns has
// already been shown to the user.
func fail(f *OutputFormatter, message string, err error) error {
	code, exit, details := classifyError(err)
	_ = f.Error(code, err.Error(), details)
	return WrapExitError(exit, message, err)
}

// classifyError maps a core error to its CLI error code, exit code and
// optional details.
func classifyError(err error) (string, int, interface{}) {
	var (
		ve *importer.ValidationError
		ce *store.ConstraintError
		re *store.ReadinessError
		fe *query.FilterError
	)
	switch {
	case errors.As(err, &ve):
		return ErrCodeValidation, ExitFailure, ve.Fields
	case errors.As(err, &ce):
		return ce.Code(), ExitFailure, map[string]interface{}{"kind": ce.Kind, "item": ce.Item}
	case errors.As(err, &re):
		return re.Code(), ExitCommandError, map[string]interface{}{"stage": re.Stage, "path": re.Path}
	case errors.As(err, &fe):
		return ErrCodeBadRequest, ExitCommandError, fe
	default:
		return ErrCodeInternal, ExitFailure, nil
	}
}

// usageError reports a bad flag or argument value.
func usageError(f *OutputFormatter, message string) error {
	_ = f.Error(ErrCodeBadRequest, message, nil)
	return NewExitError(ExitCommandError, message)
}
