package testutil

import (
	"fmt"
	"sync"
)

// FixedBatchIDGenerator returns the same batch id every time.
//
// This keeps import responses byte-identical across runs so they can be
// compared against golden files.
//
// Thread-safety: FixedBatchIDGenerator is stateless and safe for concurrent use.
type FixedBatchIDGenerator struct {
	id string
}

// NewFixedBatchIDGenerator creates a generator returning id.
// If id is empty, Generate() returns "test-batch-default".
func NewFixedBatchIDGenerator(id string) *FixedBatchIDGenerator {
	if id == "" {
		id = "test-batch-default"
	}
	return &FixedBatchIDGenerator{id: id}
}

// Generate returns the fixed batch id.
//
// Implements importer.BatchIDGenerator.
func (g *FixedBatchIDGenerator) Generate() string {
	return g.id
}

// SequentialBatchIDGenerator returns "batch-000001", "batch-000002", ...
//
// Unlike the production UUIDv7 generator it can be reset, so the same test
// scenario produces the same ids on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialBatchIDGenerator struct {
	mu  sync.Mutex
	seq int64
}

// NewSequentialBatchIDGenerator creates a generator starting at 0.
// The first call to Generate() returns "batch-000001".
func NewSequentialBatchIDGenerator() *SequentialBatchIDGenerator {
	return &SequentialBatchIDGenerator{}
}

// Generate increments the sequence and returns the next id.
func (g *SequentialBatchIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("batch-%06d", g.seq)
}

// Count returns how many ids have been generated since the last Reset.
func (g *SequentialBatchIDGenerator) Count() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence at 0.
func (g *SequentialBatchIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
