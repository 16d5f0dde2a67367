// Package authkit is the authentication and session-lifecycle core of
// the conducta incident-tracking backend: credential verification,
// fixed-window attempt throttling, deterministic account lockout, and
// time-bounded session snapshots.
//
// The package is designed for concurrent server workloads: Gateway
// methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Gateway], [Builder],
// [Config], error values, and value types. Attempt throttling lives
// in the throttle package, the session slot model in session, and
// password hashing in password; audit dispatch and metrics live under
// internal/ and surface here only as re-exported types.
//
// The credential store (accounts, password hashes, lockout state)
// is an external collaborator reached through [CredentialStore] and
// [CredentialVerifier]. authkit never sees a password hash's
// internals and never stores plaintext credentials at rest.
//
// # Failure contract
//
// Every expected failure is a returned, typed error ([ErrValidation],
// [ErrRateLimited], [ErrInvalidCredentials], [ErrAccountLocked],
// [ErrPersistence], [ErrConfiguration]). Gateway methods never
// propagate a panic: unexpected failures surface as a generic
// [ErrInternal] while the detail goes to the warn log and audit
// stream only.
//
// # What this package must NOT do
//
//   - Fall back to plaintext credential comparison when the verifier
//     capability is missing. Build fails instead.
//   - Reveal account existence through login or password-reset
//     responses.
//   - Share throttle state across processes. Attempt counters are
//     process-local.
package authkit
