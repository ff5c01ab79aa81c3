package providers

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/smartnotes/summarizer/sumengine/domain"
)

// summaryPrompt frames the completion request. Kept short: the note body
// dominates token usage, not the instruction.
const summaryPrompt = `Summarize the following note in 2-3 concise sentences.
Keep the author's language and do not add information that is not in the note.

NOTE:
`

func classifyStatus(status int, message string) *domain.Failure {
	switch {
	case status == 401:
		return domain.NewFailure(domain.FailureUnauthenticated, message)
	case status == 403:
		return domain.NewFailure(domain.FailurePermissionDenied, message)
	case status == 429:
		return &domain.Failure{
			Kind:    domain.FailureRateLimited,
			Message: message,
			Window:  detectQuotaWindow(message),
		}
	case status == 408 || status == 504:
		return domain.NewFailure(domain.FailureTimeout, message)
	case status >= 500:
		return domain.NewFailure(domain.FailureServiceUnavailable, message)
	default:
		return domain.NewFailure(domain.FailureUnknown, message)
	}
}

// detectQuotaWindow inspects a rate-limit message for the quota period it
// names. Providers encode this in prose ("per minute", "requests per day"),
// not in a structured field.
func detectQuotaWindow(message string) domain.QuotaWindow {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "per minute") || strings.Contains(m, "perminute") || strings.Contains(m, "rpm") || strings.Contains(m, "tpm"):
		return domain.WindowMinute
	case strings.Contains(m, "per hour") || strings.Contains(m, "perhour") || strings.Contains(m, "hourly"):
		return domain.WindowHour
	case strings.Contains(m, "per day") || strings.Contains(m, "perday") || strings.Contains(m, "daily") || strings.Contains(m, "rpd"):
		return domain.WindowDay
	case strings.Contains(m, "per month") || strings.Contains(m, "monthly") || strings.Contains(m, "billing"):
		return domain.WindowMonth
	default:
		return domain.WindowNone
	}
}

func classifyTransportError(err error) *domain.Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewFailure(domain.FailureTimeout, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return domain.NewFailure(domain.FailureCancelled, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.NewFailure(domain.FailureTimeout, err.Error())
		}
		return domain.NewFailure(domain.FailureNetwork, err.Error())
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.NewFailure(domain.FailureNetwork, err.Error())
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") || strings.Contains(msg, "no such host") || strings.Contains(msg, "eof") {
		return domain.NewFailure(domain.FailureNetwork, err.Error())
	}
	return domain.NewFailure(domain.FailureUnknown, err.Error())
}
