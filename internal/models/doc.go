// Package models defines the Habitica task and backup document types plus the backup codec.
//
// The package contains two categories of types:
//
// 1. Wire types mirroring the Habitica v3 API format:
//   - [Task] : one habit, daily, or to-do, JSON-tagged to round-trip byte-compatibly
//   - [ChecklistItem] : a sub-item of a task
//   - [Credentials] : the user-id/api-token pair identifying one account
//
// 2. The portable backup document:
//   - [Backup] : metadata plus an ordered task sequence, immutable once built
//   - [BackupMetadata] : creation timestamp, source tool, account name
//   - [TaskCounts] : per-type tallies derived from a task sequence
//
// Loading a backup from a file or storage goes through [UnmarshalBackup],
// which validates the document shell only: metadata must be an object and
// tasks must be an array. Individual task fields are deliberately not
// validated on load; a malformed task surfaces, if at all, as a remote
// rejection when it is re-created on the target account.
package models
