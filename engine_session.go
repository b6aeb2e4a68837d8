package goVerify

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EstablishSession describes the establishsession operation and its observable behavior.
//
// EstablishSession exchanges the recipient's credential for session artifacts.
// The privileged exchange is tried first; a forced-credential-reset challenge
// raised by the directory is answered in place, and any privileged-path
// failure falls back to the standard exchange. The returned artifacts carry
// an expiry stamped from the access token when the exchanger did not provide
// one. A non-empty supported localeHint is propagated to the directory and
// profile store after the exchange, best-effort.
//
// EstablishSession may return an error when input validation, dependency calls, or security checks fail.
// EstablishSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EstablishSession(ctx context.Context, recipient, credential, localeHint string) (*SessionResult, error) {
	if e == nil || e.exchanger == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Session.Enabled {
		return nil, ErrSessionDisabled
	}

	tenantID := tenantIDFromContext(ctx)
	if recipient == "" || credential == "" {
		e.metricInc(MetricSessionEstablishFailure)
		e.emitAudit(ctx, auditEventSessionFailure, false, recipient, "", tenantID, ErrSessionEstablishFailed, func() map[string]string {
			return map[string]string{
				"reason": "invalid_input",
			}
		})
		return nil, ErrSessionEstablishFailed
	}
	recipient = normalizeRecipient(recipient)

	result, err := e.exchange(ctx, recipient, credential)
	if err != nil {
		e.metricInc(MetricSessionEstablishFailure)
		e.emitAudit(ctx, auditEventSessionFailure, false, recipient, "", tenantID, ErrSessionEstablishFailed, nil)
		return nil, ErrSessionEstablishFailed
	}

	if localeHint != "" {
		e.propagateLocale(ctx, recipient, localeHint)
	}

	e.metricInc(MetricSessionEstablished)
	e.emitAudit(ctx, auditEventSessionEstablished, true, recipient, "", tenantID, nil, func() map[string]string {
		if !result.ChallengeResolved {
			return nil
		}
		return map[string]string{
			"challenge_resolved": "true",
		}
	})
	return result, nil
}

// propagateLocale writes the recipient's locale preference to the directory
// and the optional profile store. Failures are logged only.
func (e *Engine) propagateLocale(ctx context.Context, recipient, locale string) {
	if locale != e.resolveLocale(locale) {
		return
	}
	if e.directory != nil {
		if err := e.directory.SetAttribute(ctx, recipient, "locale", locale); err != nil {
			e.softFail("directory", err)
		}
	}
	if e.profile != nil {
		if err := e.profile.UpdateLocale(ctx, recipient, locale); err != nil {
			e.softFail("profile", err)
		}
	}
}

func (e *Engine) exchange(ctx context.Context, recipient, credential string) (*SessionResult, error) {
	outcome, err := e.exchanger.PrivilegedExchange(ctx, recipient, credential)
	if err == nil {
		if outcome.Artifacts != nil {
			return e.finishExchange(outcome.Artifacts, false), nil
		}
		if outcome.ChallengeRef != "" {
			answered, answerErr := e.exchanger.AnswerResetChallenge(ctx, recipient, credential, outcome.ChallengeRef)
			if answerErr == nil && answered.Artifacts != nil {
				return e.finishExchange(answered.Artifacts, true), nil
			}
			if answerErr != nil {
				e.softFail("exchanger", answerErr)
			}
		}
	} else {
		e.softFail("exchanger", err)
	}

	// Privileged path exhausted: the standard exchange is the last resort.
	fallback, err := e.exchanger.StandardExchange(ctx, recipient, credential)
	if err != nil {
		return nil, err
	}
	if fallback.Artifacts == nil {
		return nil, ErrSessionEstablishFailed
	}
	return e.finishExchange(fallback.Artifacts, false), nil
}

func (e *Engine) finishExchange(artifacts *SessionArtifacts, challengeResolved bool) *SessionResult {
	if artifacts.ExpiresAt.IsZero() && artifacts.AccessToken != "" {
		if exp, ok := tokenExpiry(artifacts.AccessToken); ok {
			artifacts.ExpiresAt = exp
		}
	}
	return &SessionResult{
		Established:       true,
		Session:           artifacts,
		ChallengeResolved: challengeResolved,
	}
}

// tokenExpiry reads the exp claim without verifying the signature. The token
// was just minted by the directory; the stamp is informational only.
func tokenExpiry(tokenStr string) (time.Time, bool) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
