// Package store provides the DynamoDB access layer for the issue record engine.
//
// The engine keeps one logical record family in three tables: an active
// table for live issues, an archive table for soft-deleted issues, and a
// counter table holding one {name, current} record per id sequence. The
// Store treats table names as configuration ([Config]) and a
// *dynamodb.Client as an injected dependency obtained once at process
// start.
//
// # Consistency
//
// All cross-caller guarantees are delegated to DynamoDB primitives:
//
//   - [Store.NextSequence] allocates ids with a single ADD update, an
//     atomic find-or-create-and-increment.
//   - [Store.Put] and [Store.Update] use condition expressions so a write
//     never resurrects or blindly overwrites a record.
//   - [Store.Move] transfers a record between tables in one
//     TransactWriteItems call; the delete is conditioned on the source
//     still being present and the put on the destination being free, so
//     under a race exactly one mover wins and the loser observes
//     [ErrConflict].
//
// # Errors
//
// The package defines sentinel errors for the outcomes callers branch on:
//
//   - [ErrNotFound] - no record with the requested id
//   - [ErrAlreadyExists] - the id is already taken
//   - [ErrConflict] - a conditional move lost a race
//
// Anything else is a storage failure and propagates wrapped, unretried.
package store
