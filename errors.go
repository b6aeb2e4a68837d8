package goVerify

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the verification engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrRecipientInvalid is an exported constant or variable used by the verification engine.
	ErrRecipientInvalid = errors.New("invalid recipient address")
	// ErrSendRateLimited is an exported constant or variable used by the verification engine.
	ErrSendRateLimited = errors.New("verification send rate limited")
	// ErrDispatchFailed is an exported constant or variable used by the verification engine.
	ErrDispatchFailed = errors.New("verification notification dispatch failed")
	// ErrCodeNotFound is an exported constant or variable used by the verification engine.
	ErrCodeNotFound = errors.New("verification code not found")
	// ErrCodeExpired is an exported constant or variable used by the verification engine.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeMismatch is an exported constant or variable used by the verification engine.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrLockedOut is an exported constant or variable used by the verification engine.
	ErrLockedOut = errors.New("verification attempts exceeded")
	// ErrThrottled is an exported constant or variable used by the verification engine.
	ErrThrottled = errors.New("verification operation throttled")
	// ErrDirectorySyncFailed is an exported constant or variable used by the verification engine.
	ErrDirectorySyncFailed = errors.New("identity directory sync failed")
	// ErrSessionEstablishFailed is an exported constant or variable used by the verification engine.
	ErrSessionEstablishFailed = errors.New("session establishment failed")
	// ErrSessionDisabled is an exported constant or variable used by the verification engine.
	ErrSessionDisabled = errors.New("session establishment disabled")
	// ErrStoreUnavailable is an exported constant or variable used by the verification engine.
	ErrStoreUnavailable = errors.New("verification record store unavailable")
)

// ErrorKind classifies the outcome of an issuance or validation call so the
// presentation layer can localize a message without string matching.
//
// ErrorKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ErrorKind int

const (
	// KindNone is an exported constant or variable used by the verification engine.
	KindNone ErrorKind = iota
	// KindRateLimited is an exported constant or variable used by the verification engine.
	KindRateLimited
	// KindDispatchFailed is an exported constant or variable used by the verification engine.
	KindDispatchFailed
	// KindNotFound is an exported constant or variable used by the verification engine.
	KindNotFound
	// KindExpired is an exported constant or variable used by the verification engine.
	KindExpired
	// KindMismatch is an exported constant or variable used by the verification engine.
	KindMismatch
	// KindLockedOut is an exported constant or variable used by the verification engine.
	KindLockedOut
	// KindThrottled is an exported constant or variable used by the verification engine.
	KindThrottled
	// KindDirectorySyncFailed is an exported constant or variable used by the verification engine.
	KindDirectorySyncFailed
	// KindSessionFailed is an exported constant or variable used by the verification engine.
	KindSessionFailed
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRateLimited:
		return "rate_limited"
	case KindDispatchFailed:
		return "dispatch_failed"
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	case KindMismatch:
		return "mismatch"
	case KindLockedOut:
		return "locked_out"
	case KindThrottled:
		return "throttled"
	case KindDirectorySyncFailed:
		return "directory_sync_failed"
	case KindSessionFailed:
		return "session_failed"
	default:
		return "unknown"
	}
}

// Err maps the kind to its corresponding sentinel error, or nil for KindNone.
// Useful for callers that prefer errors.Is over switching on the kind.
func (k ErrorKind) Err() error {
	switch k {
	case KindRateLimited:
		return ErrSendRateLimited
	case KindDispatchFailed:
		return ErrDispatchFailed
	case KindNotFound:
		return ErrCodeNotFound
	case KindExpired:
		return ErrCodeExpired
	case KindMismatch:
		return ErrCodeMismatch
	case KindLockedOut:
		return ErrLockedOut
	case KindThrottled:
		return ErrThrottled
	case KindDirectorySyncFailed:
		return ErrDirectorySyncFailed
	case KindSessionFailed:
		return ErrSessionEstablishFailed
	default:
		return nil
	}
}
