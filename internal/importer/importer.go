package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/dropscope/internal/model"
)

// Writer persists a validated batch atomically.
// *store.Store satisfies it.
type Writer interface {
	UpsertBatch(ctx context.Context, records []model.Record) error
}

// Result reports an applied batch.
type Result struct {
	Applied int    `json:"count"`
	BatchID string `json:"batch_id"`
}

// Importer validates import batches and applies them through a Writer.
//
// Thread-safety: safe for concurrent use. Validation is serialized; writes
// are serialized by the store.
type Importer struct {
	w     Writer
	check *validator
	ids   BatchIDGenerator
	log   *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}

// WithBatchIDs sets the batch id generator. Defaults to UUIDv7Generator.
func WithBatchIDs(g BatchIDGenerator) Option {
	return func(im *Importer) {
		if g != nil {
			im.ids = g
		}
	}
}

// New creates an Importer writing through w.
func New(w Writer, opts ...Option) (*Importer, error) {
	check, err := newValidator()
	if err != nil {
		return nil, err
	}
	im := &Importer{
		w:     w,
		check: check,
		ids:   UUIDv7Generator{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im, nil
}

// Validate checks a batch without writing it and returns the normalised
// records that Import would persist. Returns *ValidationError on any problem.
func (im *Importer) Validate(items []model.ImportItem) ([]model.Record, error) {
	records, errs := im.check.validateBatch(items)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	for i := range records {
		records[i] = records[i].Normalized()
	}
	return records, nil
}

// Import validates the whole batch, then upserts every item in one
// transaction.
//
// Returns:
//   - *ValidationError if any item is invalid (nothing written)
//   - *store.ConstraintError (wrapped) if the store rejects the batch,
//     e.g. an airdrop referencing an unknown project (nothing written)
//
// Repeated ids inside a batch are applied in order, so the last one wins.
// Applied counts items, not distinct rows.
func (im *Importer) Import(ctx context.Context, items []model.ImportItem) (Result, error) {
	start := time.Now()
	batchID := im.ids.Generate()

	records, err := im.Validate(items)
	if err != nil {
		im.log.Warn("import rejected",
			"batch_id", batchID,
			"items", len(items),
			"error", err,
		)
		return Result{}, err
	}

	if err := im.w.UpsertBatch(ctx, records); err != nil {
		im.log.Warn("import failed",
			"batch_id", batchID,
			"items", len(items),
			"error", err,
		)
		return Result{}, fmt.Errorf("import: %w", err)
	}

	im.log.Info("import applied",
		"batch_id", batchID,
		"count", len(records),
		"duration", time.Since(start),
	)

	return Result{Applied: len(items), BatchID: batchID}, nil
}
