package goVerify

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	auditEventIssueSuccess         = "verify.issue.success"
	auditEventIssueRateLimited     = "verify.issue.rate_limited"
	auditEventIssueDispatchFailure = "verify.issue.dispatch_failure"
	auditEventIssueFailure         = "verify.issue.failure"
	auditEventValidateSuccess      = "verify.validate.success"
	auditEventValidateMismatch     = "verify.validate.mismatch"
	auditEventValidateLockedOut    = "verify.validate.locked_out"
	auditEventValidateExpired      = "verify.validate.expired"
	auditEventValidateNotFound     = "verify.validate.not_found"
	auditEventValidateFailure      = "verify.validate.failure"
	auditEventThrottleTriggered    = "verify.throttle.triggered"
	auditEventDirectorySyncFailure = "verify.directory.sync_failure"
	auditEventSessionEstablished   = "verify.session.established"
	auditEventSessionFailure       = "verify.session.failure"
	auditEventRecipientPurged      = "verify.records.purged"
)

// Engine defines a public type used by goVerify APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config    Config
	store     *recordStore
	throttle  *opThrottle
	notifier  Notifier
	directory Directory
	profile   ProfileStore
	exchanger CredentialExchanger
	audit     *auditDispatcher
	metrics   *Metrics
	log       *logrus.Logger
	now       func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	recipient string,
	subjectID string,
	tenantID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}
	if tenantID == "" {
		tenantID = tenantIDFromContext(ctx)
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Recipient: recipient,
		SubjectID: subjectID,
		TenantID:  tenantID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = code
	}

	e.audit.Emit(ctx, event)
}

// softFail logs a non-fatal dependency failure without interrupting the flow.
func (e *Engine) softFail(component string, err error) {
	if e == nil || e.log == nil || err == nil {
		return
	}
	e.log.WithFields(logrus.Fields{
		"component": component,
	}).WithError(err).Warn("goVerify: soft failure")
}

func auditErrorCode(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrSendRateLimited), errors.Is(err, errRecordRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrThrottled), errors.Is(err, errThrottleLimited):
		return "throttled"
	case errors.Is(err, ErrDispatchFailed):
		return "dispatch_failed"
	case errors.Is(err, ErrCodeNotFound), errors.Is(err, errRecordNotFound):
		return "not_found"
	case errors.Is(err, ErrCodeExpired), errors.Is(err, errRecordExpired):
		return "expired"
	case errors.Is(err, ErrCodeMismatch), errors.Is(err, errRecordMismatch):
		return "mismatch"
	case errors.Is(err, ErrLockedOut), errors.Is(err, errRecordLockedOut):
		return "locked_out"
	case errors.Is(err, ErrDirectorySyncFailed):
		return "directory_sync_failed"
	case errors.Is(err, ErrSessionEstablishFailed), errors.Is(err, ErrSessionDisabled):
		return "session_failed"
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, errRecordRedisUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
