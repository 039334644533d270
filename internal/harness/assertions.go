package harness

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/roach88/dropscope/internal/store"
)

// EvaluateAssertions checks every assertion against the store and returns
// one message per failure.
func EvaluateAssertions(ctx context.Context, st *store.Store, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var msgs []string
		switch a.Type {
		case AssertRow:
			msgs = assertRow(ctx, st, a)
		case AssertCounts:
			msgs = assertCounts(ctx, st, a)
		case AssertAbsent:
			msgs = assertAbsent(ctx, st, a)
		default:
			msgs = []string{fmt.Sprintf("unknown assertion type %q", a.Type)}
		}
		for _, m := range msgs {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, m))
		}
	}
	return errs
}

func assertRow(ctx context.Context, st *store.Store, a Assertion) []string {
	row, err := st.Get(ctx, a.Airdrop)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{fmt.Sprintf("airdrop %s is not listed", a.Airdrop)}
	}
	if err != nil {
		return []string{err.Error()}
	}

	// Compare through JSON so expectations use the wire field names.
	data, err := json.Marshal(row)
	if err != nil {
		return []string{err.Error()}
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return []string{err.Error()}
	}
	return matchSubset(a.Expect, fields)
}

func assertCounts(ctx context.Context, st *store.Store, a Assertion) []string {
	c, err := st.Counts(ctx)
	if err != nil {
		return []string{err.Error()}
	}
	fields := map[string]interface{}{
		"projects":     c.Projects,
		"airdrops":     c.Airdrops,
		"risk_factors": c.RiskFactors,
	}
	return matchSubset(a.Expect, fields)
}

func assertAbsent(ctx context.Context, st *store.Store, a Assertion) []string {
	_, err := st.Get(ctx, a.Airdrop)
	if err == nil {
		return []string{fmt.Sprintf("airdrop %s is listed", a.Airdrop)}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return []string{err.Error()}
	}
	return nil
}

// matchSubset reports every expected key whose actual value differs.
// Keys are checked in sorted order for stable messages.
func matchSubset(expected, actual map[string]interface{}) []string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown field %q", k))
			continue
		}
		if !valuesEqual(expected[k], got) {
			errs = append(errs, fmt.Sprintf("%s: expected %v, got %v", k, expected[k], got))
		}
	}
	return errs
}

// valuesEqual compares a YAML-decoded expectation with an actual value.
// Numbers compare by value regardless of their Go type.
func valuesEqual(want, got interface{}) bool {
	wf, wok := toFloat(want)
	gf, gok := toFloat(got)
	if wok && gok {
		return wf == gf
	}
	return reflect.DeepEqual(want, got)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
