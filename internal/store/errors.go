package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ReadinessStage names the step of bringing a database up that failed.
type ReadinessStage string

const (
	StageOpen   ReadinessStage = "open"
	StagePragma ReadinessStage = "pragma"
	StageSchema ReadinessStage = "schema"
	StageSeed   ReadinessStage = "seed"
)

// ReadinessError reports that the database could not be opened, configured,
// migrated or seeded. Callers treat it as fatal for the current operation.
type ReadinessError struct {
	Stage ReadinessStage
	Path  string
	Err   error
}

func (e *ReadinessError) Error() string {
	return fmt.Sprintf("store not ready (%s %s): %v", e.Stage, e.Path, e.Err)
}

func (e *ReadinessError) Unwrap() error {
	return e.Err
}

// Code returns the machine-readable error class.
func (e *ReadinessError) Code() string {
	return "NOT_READY"
}

// ConstraintKind classifies an integrity violation.
type ConstraintKind string

const (
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintOther      ConstraintKind = "constraint"
)

// ConstraintError reports that a write violated an integrity constraint.
// The transaction it occurred in has been rolled back.
type ConstraintError struct {
	Op   string
	Item int // batch index, -1 when the violation surfaced at commit
	Kind ConstraintKind
	Err  error
}

func (e *ConstraintError) Error() string {
	if e.Item >= 0 {
		return fmt.Sprintf("%s: item %d: %s constraint failed: %v", e.Op, e.Item, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s constraint failed: %v", e.Op, e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Code returns the machine-readable error class.
func (e *ConstraintError) Code() string {
	return "CONSTRAINT"
}

// IsConstraintError reports whether err is a ConstraintError.
func IsConstraintError(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// classify wraps SQLite constraint failures in a ConstraintError and
// everything else in a plain op-prefixed error.
func classify(op string, item int, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return &ConstraintError{Op: op, Item: item, Kind: constraintKind(se.ExtendedCode), Err: err}
	}
	if item >= 0 {
		return fmt.Errorf("%s: item %d: %w", op, item, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func constraintKind(code sqlite3.ErrNoExtended) ConstraintKind {
	switch code {
	case sqlite3.ErrConstraintForeignKey:
		return ConstraintForeignKey
	case sqlite3.ErrConstraintCheck:
		return ConstraintCheck
	case sqlite3.ErrConstraintNotNull:
		return ConstraintNotNull
	case sqlite3.ErrConstraintPrimaryKey:
		return ConstraintPrimaryKey
	case sqlite3.ErrConstraintUnique:
		return ConstraintUnique
	default:
		return ConstraintOther
	}
}
