// Package services defines the store interfaces a migration reads from and writes to, and implements them for hosted projects.
//
// # Store Interfaces
//
// A project pairs a document database collection of profiles with an authentication system of accounts.
//
// [SourceStore] is read-only: it enumerates profile documents and looks up the account paired with each one.
// [DestinationStore] adds the writes a migration needs: account creation and deletion, profile creation, and bulk field updates.
//
// # Firebase Implementation
//
// [FirebaseStore] implements both interfaces over one Admin SDK app. Credentials come from a service-account key file
// (see [LoadCredentials]) or application default credentials when no file is configured.
//
// Profile documents are written with create semantics, so an existing document is never overwritten.
//
// # Error Handling
//
// Stores translate provider errors to sentinels from the shared package:
//   - [shared.ErrPrincipalNotFound] : no account for the UID or email
//   - [shared.ErrEmailExists] : account creation raced with another registration
//   - [shared.ErrProfileExists] : a profile document already exists for the UID
//   - [shared.ErrMissingCredentials], [shared.ErrInvalidCredentials] : key file unreadable or malformed
package services
