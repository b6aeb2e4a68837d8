// Package goVerify provides the verification-code core used for email
// ownership proofs: sliding-window send rate limiting, failed-attempt
// lockout, TTL-based code expiry, idempotent cleanup, and optional
// post-verification session establishment, backed by Redis.
//
// The package is designed for concurrent request handlers: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goVerify is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (IssueResult, ValidateResult, SessionArtifacts, etc.).
// Collaborators at the boundary — notification delivery, identity directory
// sync, credential exchange — are consumed through interfaces ([Notifier],
// [Directory], [CredentialExchanger]) and never implemented here except as
// optional adapters under their own subpackages.
//
// # What this package must NOT do
//
//   - Expose Redis clients, record encoding, or Lua script details in its
//     public API.
//   - Hold Redis transactions open across collaborator I/O (notification
//     dispatch, directory sync, credential exchange).
//   - Produce user-facing text; callers localize from the structured
//     [ErrorKind] and timestamps on the results.
//
// # Concurrency contract
//
// Every read-modify-write against the record store executes as a single
// server-side critical section, so concurrent IssueCode/ValidateCode calls
// for the same recipient can never under-count sends or lose a
// failed-attempt increment.
package goVerify
