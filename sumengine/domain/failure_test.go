package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_TransientKinds(t *testing.T) {
	policy := RetryPolicy{}

	retryable := []FailureKind{FailureOffline, FailureNetwork, FailureTimeout, FailureServiceUnavailable}
	for _, kind := range retryable {
		assert.True(t, policy.Retryable(NewFailure(kind, "")), "%s should be retryable", kind)
	}

	terminal := []FailureKind{
		FailureContentTooShort, FailureContentTooLong, FailureUnauthenticated,
		FailurePermissionDenied, FailureInvalidResponse, FailureCancelled, FailureUnknown,
	}
	for _, kind := range terminal {
		assert.False(t, policy.Retryable(NewFailure(kind, "")), "%s should not be retryable", kind)
	}
}

func TestRetryPolicy_RateLimitWindows(t *testing.T) {
	policy := RetryPolicy{}

	limited := func(w QuotaWindow) *Failure {
		return &Failure{Kind: FailureRateLimited, Window: w}
	}

	assert.True(t, policy.Retryable(limited(WindowNone)))
	assert.True(t, policy.Retryable(limited(WindowMinute)))
	assert.False(t, policy.Retryable(limited(WindowHour)), "hourly quota defaults to non-retryable")
	assert.False(t, policy.Retryable(limited(WindowDay)))
	assert.False(t, policy.Retryable(limited(WindowMonth)))

	policy.RetryHourlyQuota = true
	assert.True(t, policy.Retryable(limited(WindowHour)))
	assert.False(t, policy.Retryable(limited(WindowDay)), "daily quota is never retried")
}

func TestAsFailure(t *testing.T) {
	f := NewFailure(FailureTimeout, "took too long")
	require.Same(t, f, AsFailure(f))
	require.Same(t, f, AsFailure(fmt.Errorf("wrapped: %w", f)))

	unknown := AsFailure(errors.New("something odd"))
	assert.Equal(t, FailureUnknown, unknown.Kind)
	assert.Equal(t, "something odd", unknown.Message)

	assert.Nil(t, AsFailure(nil))
}

func TestFailure_Error(t *testing.T) {
	assert.Equal(t, "timeout: took too long", NewFailure(FailureTimeout, "took too long").Error())
	assert.Equal(t, "offline", NewFailure(FailureOffline, "").Error())
}
