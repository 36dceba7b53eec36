// Package issue implements the issue record engine: stable id
// allocation, invariant validation, filtered and paginated queries,
// reversible soft deletion, and grouped aggregate counts over a shared
// DynamoDB-backed record family.
//
// The engine assumes an external API layer hands it already-typed,
// already-authorized arguments and serializes whatever it returns. It
// owns no transport, no auth, and no process bootstrap.
//
// # Operations
//
//   - [Engine.Add] - validate, allocate an id, persist, return the
//     stored form
//   - [Engine.Get] - fetch an active record; nil when absent
//   - [Engine.Update] - merge a [Patch], re-validate touched
//     invariants, apply
//   - [Engine.Remove] / [Engine.Restore] - conditional moves between
//     the active and archive tables
//   - [Engine.List] - filtered, id-ordered pages of 10
//   - [Engine.Counts] - (owner, status) counts pivoted per owner
//
// # Outcomes
//
// Validation failures return *[ValidationError] with every violation
// itemized and nothing written. Absence is a nil record or false flag,
// never an error. A Remove or Restore that loses a race to a concurrent
// move reports false. Storage failures propagate wrapped and are logged
// through the engine's slog.Logger; the engine never retries.
package issue
