// Package tasks migrates accounts between two projects with real-time progress reporting.
//
// # Migration Pipeline
//
// [MigrationEngine.Run] enumerates every source profile and resolves each one, strictly in order, before starting the next:
//
//  1. Resolve identity: email and display name from the paired source account when one exists, else from the profile
//  2. Validate the matricule with [ValidateMatricule]; failures are recorded as error(invalid_identifier)
//  3. Look for an existing destination identity with [DuplicateDetector] (auth by email, then profile by matricule)
//  4. In a dry run, stop at would_migrate
//  5. Create the account and its profile with [Provisioner]
//
// Every per-record failure becomes a [models.Outcome]. Only a failed source enumeration aborts a run.
//
// # Schema Transformation
//
// [Transform] maps the drifted source schema to the destination one. It is pure and degrades to
// defaults instead of failing: arrays are never nil, the creation timestamp falls back to now.
//
// # Partial Provisioning
//
// The account is always created before its profile. When the profile write fails the account is
// deleted again if rollback is enabled. An account that cannot be rolled back is reported as orphaned
// with its new UID so it can be reconciled by hand.
//
// # Progress Reporting
//
// Progress updates wait for the consumer, so a slow printer never loses a record line. After cancellation they are best effort.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Reports
//
// [BuildReport] and [WriteReport] produce the write-once JSON audit artifact of a run.
//
// # Maintenance
//
//   - [CountAccountTypes], [AnalyzeProfiles] : destination audits
//   - [InspectSource] : source schema preview
//   - [MigrationEngine.BackfillQuota] : raise the free quota of migrated teachers
//   - [CollectContacts] : contact sheet export
package tasks
