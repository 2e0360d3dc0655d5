// Package models defines the records moved by the account migration and the persistence interfaces for the run ledger.
//
// The package contains three categories of types:
//
// 1. Store documents: raw records as read from the hosted document database
//   - [Document] : opaque identity plus field map
//   - [SourceProfile] : typed view of a source profile, tolerant of schema drift
//   - [DestinationProfile] : the normalized profile written to the destination
//   - [AuthPrincipal] / [PrincipalToCreate] : authentication accounts
//
// 2. Run results: per-record outcomes and the immutable report
//   - [Outcome] : success, would_migrate, skipped, error or orphaned, with audit detail
//   - [Summary] / [Report] : aggregate counts and the serialized artifact
//
// 3. Persistent entities: database-backed ledger models
//   - [MigrationRun] : one execution of the pipeline and its totals
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
