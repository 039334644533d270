package importer

import (
	"errors"
	"fmt"
	"strings"
)

// Validation error codes (E201-E209)
const (
	ErrEmptyBatch      = "E201" // batch has no items
	ErrSchemaViolation = "E202" // item does not satisfy schema.cue
	ErrRiskIDMismatch  = "E203" // risk.airdrop_id != airdrop.id
	ErrUndecodable     = "E204" // item could not be encoded or decoded
)

// FieldError is one problem found in one item of a batch.
type FieldError struct {
	Item    int    `json:"item"` // index in the batch, -1 for batch-level errors
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if e.Item < 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] item %d: %s: %s", e.Code, e.Item, e.Field, e.Message)
}

// ValidationError rejects a batch. Nothing was written.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return "invalid import batch"
	case 1:
		return "invalid import batch: " + e.Fields[0].Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("invalid import batch: %d errors: %s", len(e.Fields), strings.Join(msgs, "; "))
}

// Code returns the machine-readable error class.
func (e *ValidationError) Code() string {
	return "VALIDATION"
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
