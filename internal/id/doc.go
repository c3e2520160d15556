// Package id provides unique identifier generation for apisim records.
//
//   - New: UUID v4 (via github.com/google/uuid) for projects, collections and
//     mock APIs, matching the identifiers clients already store
//   - Sortable: 26-character time-ordered identifiers for request log entries,
//     so that lexical order equals arrival order
package id
