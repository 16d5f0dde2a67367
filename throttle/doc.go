// Package throttle provides a process-local fixed-window attempt
// limiter keyed by opaque strings, plus a background sweeper for
// expired windows.
//
// # Window semantics
//
// Fixed-window counters: the first hit opens a window of the policy's
// duration, later hits increment until the budget is exhausted, and a
// denied hit never extends the window. Expired windows are replaced
// lazily on the next hit or reaped by [Sweeper].
//
// # Architecture boundaries
//
// State is a mutex-guarded in-process map, not shared across server
// instances or restarts; callers needing cross-instance limits must
// bring a shared store.
//
// # What this package must NOT do
//
//   - Decide consequences of a denied attempt. Callers map denial to
//     their own error types.
//   - Track account lockout. Lockout is durable per-account policy and
//     lives with the credential store; this package only bounds call
//     rate.
package throttle
