package importer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/dropscope/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// validator checks items against #Item. A cue.Context is not safe for
// concurrent use, so calls are serialized.
type validator struct {
	mu   sync.Mutex
	ctx  *cue.Context
	item cue.Value
}

func newValidator() (*validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}
	item := schema.LookupPath(cue.ParsePath("#Item"))
	if err := item.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Item: %w", err)
	}
	return &validator{ctx: ctx, item: item}, nil
}

// validateBatch checks every item and returns the resolved records, or all
// field errors found. It does not stop at the first bad item.
func (v *validator) validateBatch(items []model.ImportItem) ([]model.Record, []FieldError) {
	if len(items) == 0 {
		return nil, []FieldError{{
			Item:    -1,
			Field:   "items",
			Message: "batch contains no items",
			Code:    ErrEmptyBatch,
		}}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	records := make([]model.Record, 0, len(items))
	var errs []FieldError
	for i, item := range items {
		rec, itemErrs := v.validateItem(i, item)
		if len(itemErrs) > 0 {
			errs = append(errs, itemErrs...)
			continue
		}
		records = append(records, rec)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return records, nil
}

// validateItem unifies one item with the schema, applies defaults and runs
// the cross-field checks.
func (v *validator) validateItem(i int, item model.ImportItem) (model.Record, []FieldError) {
	data, err := json.Marshal(item)
	if err != nil {
		return model.Record{}, []FieldError{undecodable(i, err)}
	}

	value := v.ctx.CompileBytes(data, cue.Filename(fmt.Sprintf("item[%d]", i)))
	if err := value.Err(); err != nil {
		return model.Record{}, []FieldError{undecodable(i, err)}
	}

	unified := v.item.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return model.Record{}, schemaErrors(i, err)
	}

	var resolved model.ImportItem
	if err := unified.Decode(&resolved); err != nil {
		return model.Record{}, []FieldError{undecodable(i, err)}
	}

	// E203: the risk row belongs to this item's airdrop.
	if id := resolved.Risk.AirdropID; id != "" && id != resolved.Airdrop.ID {
		return model.Record{}, []FieldError{{
			Item:    i,
			Field:   "risk.airdrop_id",
			Message: fmt.Sprintf("%q does not match airdrop.id %q", id, resolved.Airdrop.ID),
			Code:    ErrRiskIDMismatch,
		}}
	}

	return toRecord(resolved), nil
}

// toRecord resolves an item into the rows to persist. Omitted levels keep
// the column defaults.
func toRecord(it model.ImportItem) model.Record {
	rf := model.DefaultRiskFactors(it.Airdrop.ID)
	setLevel(&rf.SybilRisk, it.Risk.SybilRisk)
	setLevel(&rf.ScamRisk, it.Risk.ScamRisk)
	setLevel(&rf.TaskRisk, it.Risk.TaskRisk)
	setLevel(&rf.KYCRequired, it.Risk.KYCRequired)
	rf.Notes = it.Risk.Notes

	return model.Record{
		Project: it.Project,
		Airdrop: it.Airdrop,
		Risk:    rf,
	}
}

func setLevel(dst, src *int) {
	if src != nil {
		*dst = *src
	}
}

// schemaErrors flattens CUE errors into field errors, one per message.
func schemaErrors(i int, err error) []FieldError {
	var out []FieldError
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		path := e.Path()
		if len(path) > 0 && path[0] == "#Item" {
			path = path[1:]
		}
		fe := FieldError{
			Item:    i,
			Field:   strings.Join(path, "."),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrSchemaViolation,
		}
		if fe.Field == "" {
			fe.Field = "item"
		}
		key := fe.Field + "\x00" + fe.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fe)
	}
	if len(out) == 0 {
		out = append(out, FieldError{Item: i, Field: "item", Message: err.Error(), Code: ErrSchemaViolation})
	}
	return out
}

func undecodable(i int, err error) FieldError {
	return FieldError{Item: i, Field: "item", Message: err.Error(), Code: ErrUndecodable}
}
