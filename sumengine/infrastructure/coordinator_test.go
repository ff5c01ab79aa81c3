package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartnotes/summarizer/sumengine/domain"
	"github.com/smartnotes/summarizer/sumengine/repository"
)

type stubGateway struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, content string) (domain.GatewayResult, error)
}

func (g *stubGateway) Complete(ctx context.Context, content string) (domain.GatewayResult, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	fn := g.fn
	g.mu.Unlock()

	if fn != nil {
		return fn(call, content)
	}
	return domain.GatewayResult{Text: "short summary", ModelUsed: "stub-model"}, nil
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordingDocStore struct {
	mu      sync.Mutex
	updates map[string]string
}

func newRecordingDocStore() *recordingDocStore {
	return &recordingDocStore{updates: make(map[string]string)}
}

func (s *recordingDocStore) UpdateSummary(ctx context.Context, documentID, summary string, generatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[documentID] = summary
	return nil
}

func testOptions() Options {
	return Options{
		DebounceDelay:         20 * time.Millisecond,
		MaxRetries:            3,
		InitialRetryDelay:     time.Millisecond,
		MaxRetryDelay:         10 * time.Millisecond,
		RateLimitBackoffFloor: time.Millisecond,
		RequestTimeout:        time.Second,
	}
}

func TestCoordinator_DeduplicatesConcurrentRequests(t *testing.T) {
	gw := &stubGateway{}
	cache := repository.NewSummaryCache(10, nil)
	c := NewCoordinator(gw, cache, nil, nil, testOptions())
	defer c.Dispose()

	doc := domain.Document{ID: "note-1", Content: "some long enough note content"}

	var wg sync.WaitGroup
	results := make([]domain.SummaryResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Schedule(context.Background(), doc)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, gw.callCount(), "both callers must share one gateway call")
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "short summary", results[i].Summary)
		assert.Equal(t, results[0].GeneratedAt, results[i].GeneratedAt)
	}
	assert.Equal(t, 0, c.PendingCount())
}

func TestCoordinator_DebounceResetUsesLatestContent(t *testing.T) {
	var got string
	var mu sync.Mutex
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		mu.Lock()
		got = content
		mu.Unlock()
		return domain.GatewayResult{Text: "summary"}, nil
	}}
	cache := repository.NewSummaryCache(10, nil)
	c := NewCoordinator(gw, cache, nil, nil, testOptions())
	defer c.Dispose()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "first draft"})
	}()

	time.Sleep(5 * time.Millisecond)
	_, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "second draft"})
	require.NoError(t, err)
	<-done

	assert.Equal(t, 1, gw.callCount())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "second draft", got, "the last reschedule within the window wins")
}

func TestCoordinator_SupersededDebounceFireDoesNotDoubleDispatch(t *testing.T) {
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		time.Sleep(100 * time.Millisecond)
		return domain.GatewayResult{Text: "summary"}, nil
	}}
	cache := repository.NewSummaryCache(10, nil)
	opts := testOptions()
	opts.DebounceDelay = 50 * time.Millisecond
	c := NewCoordinator(gw, cache, nil, nil, opts)
	defer c.Dispose()

	doc := domain.Document{ID: "note-1", Content: "first draft"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Schedule(context.Background(), doc)
	}()

	time.Sleep(10 * time.Millisecond)
	go func() {
		_, _ = c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "second draft"})
	}()
	time.Sleep(10 * time.Millisecond)

	// A stopped timer whose callback already started still runs; stand in for
	// that late callback by firing with the first schedule's token.
	c.fire("note-1", 1)

	<-done
	assert.Equal(t, 1, gw.callCount(), "a superseded debounce fire must not dispatch a second generation")
	assert.Equal(t, 0, c.PendingCount())
}

func TestCoordinator_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		return domain.GatewayResult{}, domain.NewFailure(domain.FailureServiceUnavailable, "upstream down")
	}}
	cache := repository.NewSummaryCache(10, nil)
	opts := testOptions()
	opts.MaxRetries = 0
	c := NewCoordinator(gw, cache, nil, nil, opts)
	defer c.Dispose()

	_, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "content"})
	require.Error(t, err)
	assert.Equal(t, 1, gw.callCount(), "explicitly configured zero retries must not be promoted to the default")
}

func TestCoordinator_RetryExhaustion(t *testing.T) {
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		return domain.GatewayResult{}, domain.NewFailure(domain.FailureServiceUnavailable, "upstream down")
	}}
	cache := repository.NewSummaryCache(10, nil)
	opts := testOptions()
	opts.MaxRetries = 3
	c := NewCoordinator(gw, cache, nil, nil, opts)
	defer c.Dispose()

	_, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "content"})
	require.Error(t, err)

	failure := domain.AsFailure(err)
	assert.Equal(t, domain.FailureServiceUnavailable, failure.Kind)
	assert.Equal(t, 4, gw.callCount(), "one initial attempt plus maxRetries retries")
}

func TestCoordinator_NonRetryableShortCircuit(t *testing.T) {
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		return domain.GatewayResult{}, domain.NewFailure(domain.FailureInvalidResponse, "empty payload")
	}}
	cache := repository.NewSummaryCache(10, nil)
	c := NewCoordinator(gw, cache, nil, nil, testOptions())
	defer c.Dispose()

	_, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "content"})
	require.Error(t, err)

	assert.Equal(t, domain.FailureInvalidResponse, domain.AsFailure(err).Kind)
	assert.Equal(t, 1, gw.callCount(), "non-retryable failures abort immediately")
}

func TestCoordinator_RecoversAfterTransientFailure(t *testing.T) {
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		if call < 3 {
			return domain.GatewayResult{}, domain.NewFailure(domain.FailureNetwork, "connection reset")
		}
		return domain.GatewayResult{Text: "finally", ModelUsed: "stub"}, nil
	}}
	cache := repository.NewSummaryCache(10, nil)
	docs := newRecordingDocStore()
	c := NewCoordinator(gw, cache, docs, nil, testOptions())
	defer c.Dispose()

	res, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "content"})
	require.NoError(t, err)
	assert.Equal(t, "finally", res.Summary)
	assert.Equal(t, 3, gw.callCount())

	// Success side effects: cache entry and document write-back
	assert.True(t, cache.IsValid("note-1", "content"))
	docs.mu.Lock()
	defer docs.mu.Unlock()
	assert.Equal(t, "finally", docs.updates["note-1"])
}

func TestCoordinator_CancelPendingRequest(t *testing.T) {
	gw := &stubGateway{}
	cache := repository.NewSummaryCache(10, nil)
	opts := testOptions()
	opts.DebounceDelay = 200 * time.Millisecond
	c := NewCoordinator(gw, cache, nil, nil, opts)
	defer c.Dispose()

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "content"})
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.True(t, c.Cancel("note-1"))

	err := <-errCh
	require.Error(t, err)
	assert.Equal(t, domain.FailureCancelled, domain.AsFailure(err).Kind)
	assert.Equal(t, 0, gw.callCount(), "a cancelled debounce must never reach the gateway")
	assert.False(t, c.Cancel("note-1"), "second cancel is a no-op")
}

func TestCoordinator_CallerContextCancellation(t *testing.T) {
	gw := &stubGateway{}
	cache := repository.NewSummaryCache(10, nil)
	opts := testOptions()
	opts.DebounceDelay = 200 * time.Millisecond
	c := NewCoordinator(gw, cache, nil, nil, opts)
	defer c.Dispose()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Schedule(ctx, domain.Document{ID: "note-1", Content: "content"})
	require.Error(t, err)
	assert.Equal(t, domain.FailureCancelled, domain.AsFailure(err).Kind)
}

func TestCoordinator_TimeoutIsRetried(t *testing.T) {
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		if call == 1 {
			return domain.GatewayResult{}, context.DeadlineExceeded
		}
		return domain.GatewayResult{Text: "ok"}, nil
	}}
	cache := repository.NewSummaryCache(10, nil)
	c := NewCoordinator(gw, cache, nil, nil, testOptions())
	defer c.Dispose()

	res, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "content"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Summary)
	assert.Equal(t, 2, gw.callCount())
}

func TestCoordinator_DisposeRejectsNewWork(t *testing.T) {
	gw := &stubGateway{}
	cache := repository.NewSummaryCache(10, nil)
	c := NewCoordinator(gw, cache, nil, nil, testOptions())
	c.Dispose()

	_, err := c.Schedule(context.Background(), domain.Document{ID: "note-1", Content: "content"})
	require.Error(t, err)
	assert.Equal(t, domain.FailureCancelled, domain.AsFailure(err).Kind)
}

func TestCoordinator_BackoffDelayShape(t *testing.T) {
	c := NewCoordinator(&stubGateway{}, repository.NewSummaryCache(10, nil), nil, nil, Options{
		InitialRetryDelay:     100 * time.Millisecond,
		MaxRetryDelay:         time.Second,
		RateLimitBackoffFloor: 900 * time.Millisecond,
	})
	defer c.Dispose()

	unavailable := domain.NewFailure(domain.FailureServiceUnavailable, "")
	assert.Equal(t, 200*time.Millisecond, c.backoffDelay(1, unavailable))
	assert.Equal(t, 400*time.Millisecond, c.backoffDelay(2, unavailable))
	assert.Equal(t, 800*time.Millisecond, c.backoffDelay(3, unavailable))
	assert.Equal(t, time.Second, c.backoffDelay(4, unavailable), "capped at MaxRetryDelay")

	limited := domain.NewFailure(domain.FailureRateLimited, "")
	assert.Equal(t, 900*time.Millisecond, c.backoffDelay(1, limited), "rate limit floor applies")
}
