package internaldefs

import (
	goVerify "github.com/galgiade/goVerify"
)

// CounterDef defines a public type used by goVerify APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goVerify.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goVerify APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goVerify.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the verification engine.
var CounterDefs = []CounterDef{
	{ID: goVerify.MetricIssueSuccess, Name: "goverify_issue_success_total", Help: "Successfully issued and dispatched verification codes."},
	{ID: goVerify.MetricIssueRateLimited, Name: "goverify_issue_rate_limited_total", Help: "Issuance attempts denied by the send window."},
	{ID: goVerify.MetricIssueDispatchFailure, Name: "goverify_issue_dispatch_failure_total", Help: "Issued codes rolled back after dispatch failure."},
	{ID: goVerify.MetricIssueFailure, Name: "goverify_issue_failure_total", Help: "Issuance attempts failed for other reasons."},
	{ID: goVerify.MetricValidateSuccess, Name: "goverify_validate_success_total", Help: "Successful code validations."},
	{ID: goVerify.MetricValidateMismatch, Name: "goverify_validate_mismatch_total", Help: "Validations rejected for code mismatch."},
	{ID: goVerify.MetricValidateLockedOut, Name: "goverify_validate_locked_out_total", Help: "Validations that tripped the attempt lockout."},
	{ID: goVerify.MetricValidateExpired, Name: "goverify_validate_expired_total", Help: "Validations rejected for expired codes."},
	{ID: goVerify.MetricValidateNotFound, Name: "goverify_validate_not_found_total", Help: "Validations with no live record for the recipient."},
	{ID: goVerify.MetricValidateFailure, Name: "goverify_validate_failure_total", Help: "Validations failed for other reasons."},
	{ID: goVerify.MetricThrottleHit, Name: "goverify_throttle_hit_total", Help: "Operations denied by the per-IP throttle."},
	{ID: goVerify.MetricDirectorySyncFailure, Name: "goverify_directory_sync_failure_total", Help: "Post-success directory sync failures."},
	{ID: goVerify.MetricSessionEstablished, Name: "goverify_session_established_total", Help: "Sessions established after verification."},
	{ID: goVerify.MetricSessionEstablishFailure, Name: "goverify_session_establish_failure_total", Help: "Failed session establishment attempts."},
	{ID: goVerify.MetricRecordsPurged, Name: "goverify_records_purged_total", Help: "Recipient record purges."},
}

// HistogramDefs is an exported constant or variable used by the verification engine.
var HistogramDefs = []HistogramDef{
	{ID: goVerify.MetricValidateLatency, Name: "goverify_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the verification engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the verification engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
