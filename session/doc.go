// Package session persists one authenticated-user snapshot per client
// context with absolute expiration and compact binary encoding.
//
// # Single-slot model
//
// A [Store] owns exactly one [Slot]: one logical key-value location
// per client context. A second login from the same context overwrites
// the first. Expiry is lazy: it is detected on read, which clears the
// slot; there is no background timer.
//
// # Architecture boundaries
//
// This package owns the [Snapshot] model, its codec, and the slot
// implementations (in-memory and Redis). It does not verify
// credentials or enforce lockout policy; those belong to the
// gateway.
//
// # What this package must NOT do
//
//   - Import the root authkit package (no upward imports).
//   - Store credentials or password material in [Snapshot] fields.
//   - Coordinate concurrent writers: slots are last-write-wins.
package session
