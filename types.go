package goVerify

import (
	"context"
	"time"
)

// Notifier delivers a verification code to a recipient over an external
// channel. SendCode is synchronous from the issuer's point of view: issuance
// is not considered complete until it returns.
type Notifier interface {
	SendCode(ctx context.Context, recipient, code, locale string) error
}

// Directory is the external identity directory the engine syncs into after a
// successful validation. Both operations are idempotent and best-effort:
// failures are logged and surfaced as warnings, never as validator failures.
type Directory interface {
	ConfirmAddress(ctx context.Context, recipient string) error
	SetAttribute(ctx context.Context, recipient, key, value string) error
}

// ProfileStore is an optional secondary profile backend that receives
// best-effort locale updates alongside the directory.
type ProfileStore interface {
	UpdateLocale(ctx context.Context, recipient, locale string) error
}

// ExchangeOutcome is the result of one credential-exchange step. Exactly one
// of Artifacts and ChallengeRef is set on a non-error return: ChallengeRef
// signals a forced-credential-reset challenge that must be answered before
// tokens are issued.
type ExchangeOutcome struct {
	Artifacts    *SessionArtifacts
	ChallengeRef string
}

// CredentialExchanger performs the post-verification credential exchange
// against the identity directory. The engine tries PrivilegedExchange first
// and falls back to StandardExchange when the privileged path is unavailable.
type CredentialExchanger interface {
	PrivilegedExchange(ctx context.Context, recipient, credential string) (ExchangeOutcome, error)
	StandardExchange(ctx context.Context, recipient, credential string) (ExchangeOutcome, error)
	AnswerResetChallenge(ctx context.Context, recipient, credential, challengeRef string) (ExchangeOutcome, error)
}

// SessionArtifacts defines a public type used by goVerify APIs.
//
// SessionArtifacts instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionArtifacts struct {
	AccessToken  string
	IDToken      string
	RefreshToken string

	// ExpiresAt is derived from the access token's exp claim when the token
	// is a parseable JWT; zero otherwise.
	ExpiresAt time.Time
}

// IssueResult is returned by [Engine.IssueCode].
//
// IssueResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type IssueResult struct {
	Accepted       bool
	RemainingSends int
	ErrorKind      ErrorKind

	// ResetAt is set only for KindRateLimited: the instant the current send
	// window elapses and issuance becomes possible again.
	ResetAt time.Time
}

// ValidateMode selects the post-success side effects of a validation.
//
// ValidateMode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ValidateMode int

const (
	// ModeSignup is an exported constant or variable used by the verification engine.
	ModeSignup ValidateMode = iota
	// ModeEmailChange is an exported constant or variable used by the verification engine.
	ModeEmailChange
)

// ValidateOptions defines a public type used by goVerify APIs.
//
// ValidateOptions instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ValidateOptions struct {
	Mode ValidateMode

	// AutoSignIn requests session establishment after a successful match.
	// Credential must be supplied for the exchange to be attempted.
	AutoSignIn   bool
	Credential   string
	RedirectHint string
}

// ValidateResult is returned by [Engine.ValidateCode].
//
// ValidateResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ValidateResult struct {
	Verified          bool
	RemainingAttempts int
	ErrorKind         ErrorKind

	// Warnings carries soft failures from the post-success pipeline
	// (directory sync, session establishment). They never reverse the
	// verification verdict.
	Warnings []ErrorKind

	SessionEstablished bool
	Session            *SessionArtifacts
}

// SessionResult is returned by [Engine.EstablishSession].
//
// SessionResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionResult struct {
	Established bool
	Session     *SessionArtifacts

	// ChallengeResolved reports that a forced-credential-reset challenge was
	// raised and answered during the exchange.
	ChallengeResolved bool
}
