package goVerify

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/galgiade/goVerify/internal"
)

// ValidateCode describes the validatecode operation and its observable behavior.
//
// ValidateCode checks the submitted code against the newest record held for
// the recipient. A match purges every record for the recipient before any side
// effect runs, so the same code can never be redeemed twice. Mismatch, expiry,
// and lockout are reported in the result's ErrorKind together with the
// remaining attempt budget. After a match the engine runs the post-success
// pipeline in order: directory sync, locale propagation, then optional session
// establishment. Pipeline failures degrade to Warnings and never reverse the
// verification verdict.
//
// ValidateCode may return an error when input validation, dependency calls, or security checks fail.
// ValidateCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateCode(ctx context.Context, recipient, code string, opts ValidateOptions) (*ValidateResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricValidateLatency, time.Since(start))
		}()
	}
	if !isValidRecipient(recipient) || code == "" {
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventValidateFailure, false, recipient, "", "", ErrRecipientInvalid, func() map[string]string {
			return map[string]string{
				"reason": "invalid_input",
			}
		})
		return nil, ErrRecipientInvalid
	}

	tenantID := tenantIDFromContext(ctx)
	recipient = normalizeRecipient(recipient)

	if e.throttle != nil {
		if err := e.throttle.Check(ctx, tenantID, "validate", clientIPFromContext(ctx)); err != nil {
			if errors.Is(err, errThrottleLimited) {
				e.metricInc(MetricThrottleHit)
				e.emitAudit(ctx, auditEventThrottleTriggered, false, recipient, "", tenantID, ErrThrottled, func() map[string]string {
					return map[string]string{
						"scope": "validate",
					}
				})
				return &ValidateResult{ErrorKind: KindThrottled}, nil
			}
			return nil, ErrStoreUnavailable
		}
	}

	record, attemptsLeft, err := e.store.Consume(
		ctx,
		tenantID,
		recipient,
		internal.HashCodeBytes([]byte(code)),
		e.config.Validation.MaxFailedAttempts,
		e.clock(),
	)
	if err != nil {
		switch {
		case errors.Is(err, errRecordNotFound):
			e.metricInc(MetricValidateNotFound)
			e.emitAudit(ctx, auditEventValidateNotFound, false, recipient, "", tenantID, ErrCodeNotFound, nil)
			return &ValidateResult{ErrorKind: KindNotFound}, nil
		case errors.Is(err, errRecordExpired):
			e.metricInc(MetricValidateExpired)
			e.emitAudit(ctx, auditEventValidateExpired, false, recipient, "", tenantID, ErrCodeExpired, nil)
			return &ValidateResult{ErrorKind: KindExpired}, nil
		case errors.Is(err, errRecordMismatch):
			e.metricInc(MetricValidateMismatch)
			e.emitAudit(ctx, auditEventValidateMismatch, false, recipient, "", tenantID, ErrCodeMismatch, nil)
			return &ValidateResult{ErrorKind: KindMismatch, RemainingAttempts: attemptsLeft}, nil
		case errors.Is(err, errRecordLockedOut):
			e.metricInc(MetricValidateLockedOut)
			e.emitAudit(ctx, auditEventValidateLockedOut, false, recipient, "", tenantID, ErrLockedOut, nil)
			return &ValidateResult{ErrorKind: KindLockedOut}, nil
		default:
			e.metricInc(MetricValidateFailure)
			e.emitAudit(ctx, auditEventValidateFailure, false, recipient, "", tenantID, err, func() map[string]string {
				return map[string]string{
					"reason": "store_consume",
				}
			})
			return nil, ErrStoreUnavailable
		}
	}

	e.metricInc(MetricValidateSuccess)
	e.metricInc(MetricRecordsPurged)
	e.emitAudit(ctx, auditEventValidateSuccess, true, recipient, record.SubjectID, tenantID, nil, nil)

	result := &ValidateResult{Verified: true}
	e.runPostSuccess(ctx, tenantID, recipient, record, opts, result)
	return result, nil
}

// runPostSuccess applies the ordered side effects of a verified code. Order
// matters: the directory must accept the address before any session exchange
// can authenticate against it.
func (e *Engine) runPostSuccess(
	ctx context.Context,
	tenantID, recipient string,
	record *verificationRecord,
	opts ValidateOptions,
	result *ValidateResult,
) {
	if e.directory != nil {
		if err := e.syncDirectory(ctx, recipient, opts.Mode); err != nil {
			e.metricInc(MetricDirectorySyncFailure)
			e.softFail("directory", err)
			e.emitAudit(ctx, auditEventDirectorySyncFailure, false, recipient, record.SubjectID, tenantID, ErrDirectorySyncFailed, nil)
			result.Warnings = append(result.Warnings, KindDirectorySyncFailed)
		}
	}

	if e.profile != nil && record.Locale != "" {
		if err := e.profile.UpdateLocale(ctx, recipient, record.Locale); err != nil {
			e.softFail("profile", err)
			result.Warnings = append(result.Warnings, KindDirectorySyncFailed)
		}
	}

	if !opts.AutoSignIn {
		return
	}
	if opts.Credential == "" {
		// Auto sign-in requested without a credential to exchange. Skip the
		// exchange instead of recording it as a session failure.
		result.Warnings = append(result.Warnings, KindSessionFailed)
		return
	}

	// Locale was already propagated above; no hint is passed down.
	session, err := e.EstablishSession(ctx, recipient, opts.Credential, "")
	if err != nil || session == nil || !session.Established {
		if err != nil {
			e.softFail("session", err)
		}
		result.Warnings = append(result.Warnings, KindSessionFailed)
		return
	}

	result.SessionEstablished = true
	result.Session = session.Session
}

func (e *Engine) syncDirectory(ctx context.Context, recipient string, mode ValidateMode) error {
	switch mode {
	case ModeEmailChange:
		if err := e.directory.SetAttribute(ctx, recipient, "email", recipient); err != nil {
			return err
		}
		return e.directory.SetAttribute(ctx, recipient, "email_verified", "true")
	default:
		if err := e.directory.ConfirmAddress(ctx, recipient); err != nil {
			return err
		}
		return e.directory.SetAttribute(ctx, recipient, "email_verified", "true")
	}
}

// PurgeRecipient describes the purgerecipient operation and its observable behavior.
//
// PurgeRecipient removes every verification record held for the recipient.
// It exists for operator tooling and account-deletion hooks.
//
// PurgeRecipient may return an error when input validation, dependency calls, or security checks fail.
// PurgeRecipient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) PurgeRecipient(ctx context.Context, recipient string) (int, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}
	if !isValidRecipient(recipient) {
		return 0, ErrRecipientInvalid
	}

	tenantID := tenantIDFromContext(ctx)
	recipient = normalizeRecipient(recipient)

	purged, err := e.store.PurgeRecipient(ctx, tenantID, recipient)
	if err != nil {
		return 0, ErrStoreUnavailable
	}
	if purged > 0 {
		e.metricInc(MetricRecordsPurged)
	}
	e.emitAudit(ctx, auditEventRecipientPurged, true, recipient, "", tenantID, nil, func() map[string]string {
		return map[string]string{
			"purged": strconv.Itoa(purged),
		}
	})
	return purged, nil
}
