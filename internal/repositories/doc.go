// Package repositories implements SQLite persistence for the run ledger.
//
// The ledger records every migration run and the per-record outcomes it produced, so a run can be
// audited or a failed subset re-run long after its report file is gone.
//
// Key Implementations:
//   - [RunRepository] : run persistence with status-based queries and outcome storage
//
// Runs support soft deletes via deleted_at timestamps and are excluded from queries once deleted.
//
// Runs are numbered (run #42) from a single-row counter table; [NextSequence] bumps it with UPDATE ... RETURNING.
package repositories
