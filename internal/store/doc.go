// Package store provides the SQLite run journal for fprecon.
//
// The journal is append-only and lives outside the engine: only the CLI
// writes it. It holds:
//   - Runs: one row per reconciled batch
//   - Results: every reconciled record with its components and hypothesis
//   - Skipped: records rejected before reconciliation
//
// # Ordering
//
// Runs are ordered by their logical seq, then id COLLATE BINARY. Results
// are ordered by input index. Wall-clock time is never stored.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING, so journaling the same batch twice
// leaves one copy.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
