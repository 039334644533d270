// Package importer validates and applies batches of import items.
//
// A batch is all-or-nothing. Every item is checked against the embedded CUE
// schema (schema.cue) and the cross-field rules before anything is written;
// a single bad item rejects the batch with a *ValidationError that lists
// every problem found. A valid batch is normalised and handed to the store
// as one transaction.
//
// Validation error codes (E201-E209):
//
//	E201  batch is empty
//	E202  item violates the schema (missing field, bad status, level out of range)
//	E203  risk.airdrop_id names a different airdrop than airdrop.id
//	E204  item could not be encoded or decoded
package importer
