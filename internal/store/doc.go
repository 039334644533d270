// Package store provides SQLite-backed durable storage for dropscope.
//
// The store holds three related tables:
//   - projects: one row per project, identity id
//   - airdrops: one row per airdrop event, FK project_id ON DELETE CASCADE
//   - risk_factors: one row per airdrop, PK/FK airdrop_id ON DELETE CASCADE
//
// Scores are never stored. List compiles a query.Filter through
// internal/querysql, which computes risk_score and rank_score inline.
//
// # Critical Patterns
//
// Upsert is full-row replacement via INSERT ... ON CONFLICT(id) DO UPDATE.
// INSERT OR REPLACE is avoided: it deletes the old row first, and with
// foreign keys on that cascades into the children.
//
// A batch is one transaction. Foreign keys are deferred to COMMIT so item
// order inside a batch does not matter, and any violation rolls the whole
// batch back.
//
// Every listing ends its ORDER BY with a.id COLLATE BINARY for
// deterministic output.
//
// # Database Configuration
//
// Pragmas are passed in the DSN so every pooled connection carries them:
//   - WAL mode: readers proceed while a writer holds the lock
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - _txlock=immediate: transactions take the write lock at BEGIN, so
//     concurrent batches serialize instead of interleaving
package store
