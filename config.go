package goVerify

import (
	"errors"
	"time"
)

// Config defines a public type used by goVerify APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Issue      IssueConfig
	Validation ValidationConfig
	Throttle   ThrottleConfig
	Session    SessionConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
ISSUE CONFIG
====================================
*/

// IssueConfig defines a public type used by goVerify APIs.
//
// IssueConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type IssueConfig struct {
	// CodeDigits is the length of the numeric code sent to the recipient.
	CodeDigits int

	// CodeTTL bounds how long a code remains usable after issuance.
	CodeTTL time.Duration

	// SendWindow and MaxSendsPerWindow define the send rate limit: at most
	// MaxSendsPerWindow issuances per recipient within any window anchored
	// at the first send.
	SendWindow        time.Duration
	MaxSendsPerWindow int

	// RedisPrefix namespaces every record and index key.
	RedisPrefix string
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig defines a public type used by goVerify APIs.
//
// ValidationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ValidationConfig struct {
	// MaxFailedAttempts is the lockout threshold: reaching it purges every
	// record for the recipient and forces a fresh issuance.
	MaxFailedAttempts int
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig defines a public type used by goVerify APIs.
//
// ThrottleConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ThrottleConfig struct {
	// EnableIPThrottle adds a fixed-window per-IP guard in front of both
	// entry points, on top of the per-recipient send window. Requires the
	// caller to attach the client IP via [WithClientIP].
	EnableIPThrottle bool
	Window           time.Duration
	MaxOps           int
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goVerify APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// Enabled gates auto sign-in after validation and direct
	// [Engine.EstablishSession] calls.
	Enabled bool

	// SupportedLocales restricts which locale hints are propagated to the
	// directory and profile store after session establishment.
	SupportedLocales []string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goVerify APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goVerify APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration the builder starts from.
// Callers customize the returned value and pass it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Issue: IssueConfig{
			CodeDigits:        6,
			CodeTTL:           5 * time.Minute,
			SendWindow:        time.Minute,
			MaxSendsPerWindow: 3,
			RedisPrefix:       defaultRedisPrefix,
		},
		Validation: ValidationConfig{
			MaxFailedAttempts: 5,
		},
		Throttle: ThrottleConfig{
			EnableIPThrottle: false,
			Window:           time.Minute,
			MaxOps:           30,
		},
		Session: SessionConfig{
			Enabled:          false,
			SupportedLocales: []string{"ja", "en", "ko", "zh", "es", "fr", "de", "pt", "id"},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Issue.CodeDigits < 6 || c.Issue.CodeDigits > 10 {
		return errors.New("Issue.CodeDigits must be between 6 and 10")
	}
	if c.Issue.CodeTTL <= 0 {
		return errors.New("Issue.CodeTTL must be positive")
	}
	if c.Issue.SendWindow <= 0 {
		return errors.New("Issue.SendWindow must be positive")
	}
	if c.Issue.SendWindow > c.Issue.CodeTTL {
		return errors.New("Issue.SendWindow must not exceed Issue.CodeTTL")
	}
	if c.Issue.MaxSendsPerWindow < 1 {
		return errors.New("Issue.MaxSendsPerWindow must be at least 1")
	}
	if c.Issue.RedisPrefix == "" {
		return errors.New("Issue.RedisPrefix must not be empty")
	}
	if c.Validation.MaxFailedAttempts < 1 {
		return errors.New("Validation.MaxFailedAttempts must be at least 1")
	}
	if c.Throttle.EnableIPThrottle {
		if c.Throttle.Window <= 0 {
			return errors.New("Throttle.Window must be positive when the IP throttle is enabled")
		}
		if c.Throttle.MaxOps < 1 {
			return errors.New("Throttle.MaxOps must be at least 1 when the IP throttle is enabled")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.SupportedLocales = append([]string(nil), cfg.Session.SupportedLocales...)
	return out
}
