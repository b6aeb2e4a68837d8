package goVerify

import (
	"context"
	"errors"
	"strings"

	"github.com/galgiade/goVerify/internal"
	"github.com/google/uuid"
)

// IssueCode describes the issuecode operation and its observable behavior.
//
// IssueCode generates a numeric code for the recipient, persists it as the
// newest record for that recipient, and dispatches it through the configured
// Notifier. Send-window exhaustion and dispatch failure are reported in the
// result's ErrorKind; the error return is reserved for dependency outages and
// caller misuse. A record whose delivery failed is rolled back so it can never
// be validated.
//
// IssueCode may return an error when input validation, dependency calls, or security checks fail.
// IssueCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueCode(ctx context.Context, recipient, subjectID, locale string) (*IssueResult, error) {
	if e == nil || e.store == nil || e.notifier == nil {
		return nil, ErrEngineNotReady
	}
	if !isValidRecipient(recipient) {
		e.emitAudit(ctx, auditEventIssueFailure, false, recipient, subjectID, "", ErrRecipientInvalid, func() map[string]string {
			return map[string]string{
				"reason": "invalid_recipient",
			}
		})
		return nil, ErrRecipientInvalid
	}

	tenantID := tenantIDFromContext(ctx)
	recipient = normalizeRecipient(recipient)
	locale = e.resolveLocale(locale)

	if e.throttle != nil {
		if err := e.throttle.Check(ctx, tenantID, "issue", clientIPFromContext(ctx)); err != nil {
			if errors.Is(err, errThrottleLimited) {
				e.metricInc(MetricThrottleHit)
				e.emitAudit(ctx, auditEventThrottleTriggered, false, recipient, subjectID, tenantID, ErrThrottled, func() map[string]string {
					return map[string]string{
						"scope": "issue",
					}
				})
				return &IssueResult{ErrorKind: KindThrottled}, nil
			}
			return nil, ErrStoreUnavailable
		}
	}

	code, err := internal.NewOTP(e.config.Issue.CodeDigits)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, recipient, subjectID, tenantID, err, func() map[string]string {
			return map[string]string{
				"reason": "code_generation",
			}
		})
		return nil, err
	}

	now := e.clock()
	record := &verificationRecord{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Recipient: recipient,
		Locale:    locale,
		CodeHash:  internal.HashCodeBytes([]byte(code)),
		ExpiresAt: now.Add(e.config.Issue.CodeTTL).Unix(),
		CreatedAt: now.UnixMilli(),
	}

	remaining, resetAt, err := e.store.Create(
		ctx,
		tenantID,
		record,
		e.config.Issue.CodeTTL,
		e.config.Issue.SendWindow,
		e.config.Issue.MaxSendsPerWindow,
		now,
	)
	if err != nil {
		if errors.Is(err, errRecordRateLimited) {
			e.metricInc(MetricIssueRateLimited)
			e.emitAudit(ctx, auditEventIssueRateLimited, false, recipient, subjectID, tenantID, ErrSendRateLimited, nil)
			return &IssueResult{ErrorKind: KindRateLimited, ResetAt: resetAt}, nil
		}
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, recipient, subjectID, tenantID, err, func() map[string]string {
			return map[string]string{
				"reason": "store_create",
			}
		})
		return nil, ErrStoreUnavailable
	}

	if err := e.notifier.SendCode(ctx, recipient, code, locale); err != nil {
		// The undeliverable record must not stay validatable.
		if rmErr := e.store.Remove(ctx, tenantID, recipient, record.ID); rmErr != nil {
			e.softFail("record_store", rmErr)
		}
		e.metricInc(MetricIssueDispatchFailure)
		e.emitAudit(ctx, auditEventIssueDispatchFailure, false, recipient, subjectID, tenantID, ErrDispatchFailed, nil)
		return &IssueResult{ErrorKind: KindDispatchFailed}, nil
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventIssueSuccess, true, recipient, subjectID, tenantID, nil, func() map[string]string {
		return map[string]string{
			"locale": locale,
		}
	})

	return &IssueResult{
		Accepted:       true,
		RemainingSends: remaining,
		ResetAt:        resetAt,
	}, nil
}

func (e *Engine) resolveLocale(locale string) string {
	for _, supported := range e.config.Session.SupportedLocales {
		if locale == supported {
			return locale
		}
	}
	return defaultLocale
}

const defaultLocale = "en"

func isValidRecipient(recipient string) bool {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || len(recipient) > 254 {
		return false
	}
	at := strings.IndexByte(recipient, '@')
	return at > 0 && at < len(recipient)-1
}

func normalizeRecipient(recipient string) string {
	return strings.ToLower(strings.TrimSpace(recipient))
}
