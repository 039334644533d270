package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/dropscope/internal/importer"
	"github.com/roach88/dropscope/internal/query"
	"github.com/roach88/dropscope/internal/store"
	"github.com/roach88/dropscope/internal/testutil"
)

// OutcomeBadFilter is the outcome of a list step whose filter is invalid.
const OutcomeBadFilter = "BAD_REQUEST"

// Harness is the scenario execution engine.
// It runs steps against one store with deterministic batch ids.
type Harness struct {
	store    *store.Store
	importer *importer.Importer
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database, seeded if the scenario asks
// 2. Execute steps, checking each expect clause
// 3. Evaluate assertions against the final state
//
// Failed expectations are recorded in the result. The returned error is
// reserved for failures of the harness itself, including store errors a
// step could not classify.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(store.MemoryPath, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if scenario.Seed {
		if err := st.EnsureReady(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
	}

	im, err := importer.New(st,
		importer.WithLogger(logger),
		importer.WithBatchIDs(testutil.NewSequentialBatchIDGenerator()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create importer: %w", err)
	}

	h := &Harness{
		store:    st,
		importer: im,
		logger:   logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		ev, err := h.executeStep(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		ev = result.addTrace(ev)
		for _, msg := range checkExpect(step.Expect, ev) {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, ev.Type, msg))
		}
	}

	for _, msg := range EvaluateAssertions(ctx, st, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, step Step) (TraceEvent, error) {
	if step.Kind() == StepList {
		return h.executeList(ctx, *step.List)
	}
	return h.executeImport(ctx, step)
}

func (h *Harness) executeImport(ctx context.Context, step Step) (TraceEvent, error) {
	ev := TraceEvent{Type: StepImport}

	res, err := h.importer.Import(ctx, step.Import)
	if err != nil {
		code, ok := errorCode(err)
		if !ok {
			return ev, err
		}
		h.logger.Debug("import step rejected", "code", code, "error", err)
		ev.Outcome = code
		return ev, nil
	}

	ev.Outcome = OutcomeOK
	ev.Count = res.Applied
	ev.BatchID = res.BatchID
	return ev, nil
}

func (h *Harness) executeList(ctx context.Context, l ListStep) (TraceEvent, error) {
	f := l.Filter()
	ev := TraceEvent{
		Type:   StepList,
		Filter: query.Describe(f.Predicate()),
		Sort:   string(f.Order()),
	}

	if err := f.Validate(); err != nil {
		ev.Outcome = OutcomeBadFilter
		return ev, nil
	}

	rows, err := h.store.List(ctx, f)
	if err != nil {
		return ev, err
	}

	ev.Outcome = OutcomeOK
	ev.Count = len(rows)
	ev.Rows = make([]RowSummary, len(rows))
	for i, r := range rows {
		ev.Rows[i] = RowSummary{ID: r.ID, RiskScore: r.RiskScore, RankScore: r.RankScore}
	}
	return ev, nil
}

// errorCode returns the machine-readable class of a rejected step.
// Only validation and constraint failures are expected outcomes.
func errorCode(err error) (string, bool) {
	var coded interface{ Code() string }
	if !errors.As(err, &coded) {
		return "", false
	}
	if importer.IsValidationError(err) || store.IsConstraintError(err) {
		return coded.Code(), true
	}
	return "", false
}

// checkExpect compares an event against its expect clause. A missing
// clause or outcome means the step must succeed.
func checkExpect(exp *Expect, ev TraceEvent) []string {
	var errs []string

	want := OutcomeOK
	if exp != nil && exp.Outcome != "" {
		want = exp.Outcome
	}
	if ev.Outcome != want {
		errs = append(errs, fmt.Sprintf("outcome: expected %s, got %s", want, ev.Outcome))
	}
	if exp == nil {
		return errs
	}

	if exp.Count != nil && ev.Count != *exp.Count {
		errs = append(errs, fmt.Sprintf("count: expected %d, got %d", *exp.Count, ev.Count))
	}
	if exp.IDs != nil {
		got := make([]string, len(ev.Rows))
		for i, r := range ev.Rows {
			got[i] = r.ID
		}
		if !slices.Equal(exp.IDs, got) {
			errs = append(errs, fmt.Sprintf("ids: expected [%s], got [%s]",
				strings.Join(exp.IDs, ", "), strings.Join(got, ", ")))
		}
	}
	return errs
}
