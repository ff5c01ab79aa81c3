package domain

import "errors"

// FailureKind is the machine-readable classification of a failed summary
// request. Callers render kind-specific guidance; the engine only exposes the
// kind.
type FailureKind string

const (
	FailureContentTooShort    FailureKind = "content_too_short"
	FailureContentTooLong     FailureKind = "content_too_long"
	FailureUnauthenticated    FailureKind = "unauthenticated"
	FailurePermissionDenied   FailureKind = "permission_denied"
	FailureOffline            FailureKind = "offline"
	FailureNetwork            FailureKind = "network_error"
	FailureTimeout            FailureKind = "timeout"
	FailureRateLimited        FailureKind = "rate_limited"
	FailureServiceUnavailable FailureKind = "service_unavailable"
	FailureInvalidResponse    FailureKind = "invalid_response"
	FailureCancelled          FailureKind = "cancelled"
	FailureUnknown            FailureKind = "unknown"
)

// QuotaWindow distinguishes short-window rate limiting from longer-window
// quota ceilings on a rate-limited failure.
type QuotaWindow string

const (
	WindowNone   QuotaWindow = ""
	WindowMinute QuotaWindow = "minute"
	WindowHour   QuotaWindow = "hour"
	WindowDay    QuotaWindow = "day"
	WindowMonth  QuotaWindow = "month"
)

// Failure is the typed error surfaced by every fallible engine operation.
type Failure struct {
	Kind    FailureKind
	Message string
	// Window is only meaningful for FailureRateLimited.
	Window QuotaWindow
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return string(f.Kind)
	}
	return string(f.Kind) + ": " + f.Message
}

// NewFailure builds a Failure with the given kind and message.
func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// AsFailure extracts a *Failure from err, wrapping unrecognized errors as
// FailureUnknown so every error path yields an enumerable kind.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: FailureUnknown, Message: err.Error()}
}

// RetryPolicy decides which failure kinds are eligible for automatic
// re-attempt under backoff.
type RetryPolicy struct {
	// RetryHourlyQuota controls whether an hourly quota exhaustion is still
	// treated as transient. Daily and monthly quotas are never retried.
	RetryHourlyQuota bool
}

// Retryable reports whether the failure is transient under this policy.
// Unrecognized kinds are never retried (fail safe).
func (p RetryPolicy) Retryable(f *Failure) bool {
	if f == nil {
		return false
	}
	switch f.Kind {
	case FailureOffline, FailureNetwork, FailureTimeout, FailureServiceUnavailable:
		return true
	case FailureRateLimited:
		switch f.Window {
		case WindowNone, WindowMinute:
			return true
		case WindowHour:
			return p.RetryHourlyQuota
		default:
			return false
		}
	default:
		return false
	}
}
