// Package infrastructure holds the engine's concurrency machinery.
package infrastructure

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smartnotes/summarizer/pkg/genworker"
	"github.com/smartnotes/summarizer/sumengine/domain"
	"github.com/smartnotes/summarizer/sumengine/repository"
)

// Options configures debounce, retry and timeout behavior of the Coordinator.
type Options struct {
	DebounceDelay         time.Duration // delay before a scheduled request fires
	MaxRetries            int           // additional attempts after the first failure; zero disables retries
	InitialRetryDelay     time.Duration // base for exponential backoff
	MaxRetryDelay         time.Duration // backoff cap
	RateLimitBackoffFloor time.Duration // minimum delay after a rate-limited failure
	RequestTimeout        time.Duration // per-attempt gateway timeout
	RetryPolicy           domain.RetryPolicy
}

func (o Options) withDefaults() Options {
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = 500 * time.Millisecond
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.InitialRetryDelay <= 0 {
		o.InitialRetryDelay = time.Second
	}
	if o.MaxRetryDelay <= 0 {
		o.MaxRetryDelay = 30 * time.Second
	}
	if o.RateLimitBackoffFloor <= 0 {
		o.RateLimitBackoffFloor = 5 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	return o
}

// pendingRequest tracks one debounced generation per document. All callers
// scheduling the same document share the same pendingRequest and receive the
// same settlement.
type pendingRequest struct {
	doc    domain.Document
	timer  *time.Timer // nil once the debounce window has fired
	token  uint64
	cancel context.CancelFunc // set when the generation is in flight

	done    chan struct{}
	result  *domain.SummaryResult
	failure *domain.Failure
}

// Coordinator de-duplicates and debounces concurrent summary requests per
// document, and owns the retry/backoff loop against the remote gateway.
// At most one pendingRequest exists per document id at any time.
type Coordinator struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest
	seq     uint64
	closed  bool

	gateway domain.SummaryGateway
	cache   *repository.SummaryCache
	docs    domain.DocumentStore // optional write-back target
	pool    *genworker.Pool      // optional, bounds concurrent generations
	opts    Options
}

// NewCoordinator wires a Coordinator. docs and pool may be nil.
func NewCoordinator(gateway domain.SummaryGateway, cache *repository.SummaryCache, docs domain.DocumentStore, pool *genworker.Pool, opts Options) *Coordinator {
	return &Coordinator{
		pending: make(map[string]*pendingRequest),
		gateway: gateway,
		cache:   cache,
		docs:    docs,
		pool:    pool,
		opts:    opts.withDefaults(),
	}
}

// Schedule requests a summary for doc and blocks until the shared pending
// request settles. Rescheduling the same document before the debounce window
// fires resets the window; the latest content wins. Callers joining an
// existing request receive its eventual result without a second remote call.
func (c *Coordinator) Schedule(ctx context.Context, doc domain.Document) (domain.SummaryResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SummaryResult{}, domain.NewFailure(domain.FailureCancelled, "coordinator disposed")
	}

	p, ok := c.pending[doc.ID]
	if ok {
		p.doc = doc
		if p.timer != nil {
			// Classic debounce: only the last call within the window proceeds.
			// Stop may lose the race against an expiring timer, so the token
			// is rotated to turn the old callback into a no-op.
			p.timer.Stop()
			c.seq++
			p.token = c.seq
			token := p.token
			p.timer = time.AfterFunc(c.opts.DebounceDelay, func() {
				c.fire(doc.ID, token)
			})
		}
	} else {
		c.seq++
		p = &pendingRequest{
			doc:   doc,
			token: c.seq,
			done:  make(chan struct{}),
		}
		token := p.token
		p.timer = time.AfterFunc(c.opts.DebounceDelay, func() {
			c.fire(doc.ID, token)
		})
		c.pending[doc.ID] = p
	}
	c.mu.Unlock()

	select {
	case <-p.done:
		if p.failure != nil {
			return domain.SummaryResult{}, p.failure
		}
		return *p.result, nil
	case <-ctx.Done():
		// Only this caller gives up; the shared request keeps running.
		return domain.SummaryResult{}, domain.NewFailure(domain.FailureCancelled, ctx.Err().Error())
	}
}

// Cancel aborts the pending request for documentID, resolving joined callers
// with a cancellation failure. An already dispatched remote call is not
// aborted; its eventual result is discarded. Returns false if nothing was
// pending.
func (c *Coordinator) Cancel(documentID string) bool {
	c.mu.Lock()
	p, ok := c.pending[documentID]
	if !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.pending, documentID)
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	cancel := p.cancel
	p.failure = domain.NewFailure(domain.FailureCancelled, "summary request cancelled")
	close(p.done)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	logrus.Debugf("[COORDINATOR] Cancelled pending request for %s", documentID)
	return true
}

// CancelAll cancels every pending request.
func (c *Coordinator) CancelAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.Cancel(id)
	}
}

// PendingCount returns the number of in-flight or debouncing requests.
func (c *Coordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Dispose cancels all pending work and rejects further scheduling.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.CancelAll()
}

// fire runs when the debounce window elapses: it marks the request in flight
// and dispatches the generation, through the worker pool when one is wired.
func (c *Coordinator) fire(documentID string, token uint64) {
	c.mu.Lock()
	p, ok := c.pending[documentID]
	if !ok || p.token != token {
		c.mu.Unlock()
		return
	}
	p.timer = nil
	doc := p.doc
	jobCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	c.mu.Unlock()

	run := func(workerCtx context.Context) error {
		stop := context.AfterFunc(workerCtx, cancel)
		defer stop()

		result, failure := c.generate(jobCtx, doc)
		c.settle(documentID, token, result, failure)
		return nil
	}

	if c.pool != nil {
		if c.pool.TryDispatch(genworker.Job{DocumentID: documentID, Handler: run}) {
			return
		}
		logrus.Warnf("[COORDINATOR] Worker pool rejected job for %s, running inline", documentID)
	}
	go func() {
		_ = run(context.Background())
	}()
}

// generate performs the retry loop against the gateway. On success it stores
// the cache entry and writes the summary back to the document store.
func (c *Coordinator) generate(ctx context.Context, doc domain.Document) (*domain.SummaryResult, *domain.Failure) {
	var lastFailure *domain.Failure

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt, lastFailure)
			logrus.Debugf("[COORDINATOR] Retry %d/%d for %s in %v (%s)",
				attempt, c.opts.MaxRetries, doc.ID, delay, lastFailure.Kind)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, domain.NewFailure(domain.FailureCancelled, "cancelled during backoff")
			}
		}

		callCtx, cancelCall := context.WithTimeout(ctx, c.opts.RequestTimeout)
		res, err := c.gateway.Complete(callCtx, doc.Content)
		cancelCall()

		if err == nil {
			return c.commit(ctx, doc, res), nil
		}

		if ctx.Err() != nil {
			return nil, domain.NewFailure(domain.FailureCancelled, ctx.Err().Error())
		}

		failure := classifyAttemptError(err)
		lastFailure = failure
		if !c.opts.RetryPolicy.Retryable(failure) {
			logrus.WithError(failure).Debugf("[COORDINATOR] Non-retryable failure for %s", doc.ID)
			return nil, failure
		}
	}

	logrus.Warnf("[COORDINATOR] Retries exhausted for %s: %v", doc.ID, lastFailure)
	return nil, lastFailure
}

// commit applies the success side effects: cache entry plus summary
// write-back. Side effects survive a late cancellation of the request.
func (c *Coordinator) commit(ctx context.Context, doc domain.Document, res domain.GatewayResult) *domain.SummaryResult {
	sideCtx := context.WithoutCancel(ctx)

	entry := c.cache.Put(sideCtx, doc.ID, res.Text, doc.Content, res.ModelUsed)

	if c.docs != nil {
		if err := c.docs.UpdateSummary(sideCtx, doc.ID, res.Text, entry.CreatedAt); err != nil {
			logrus.WithError(err).Warnf("[COORDINATOR] Failed to write summary back for %s", doc.ID)
		}
	}

	return &domain.SummaryResult{
		Summary:     res.Text,
		ModelUsed:   res.ModelUsed,
		GeneratedAt: entry.CreatedAt,
	}
}

// settle resolves the pending request and fans the result out to all joined
// callers. A request already removed by Cancel keeps its cancellation result
// and the late outcome is discarded.
func (c *Coordinator) settle(documentID string, token uint64, result *domain.SummaryResult, failure *domain.Failure) {
	c.mu.Lock()
	p, ok := c.pending[documentID]
	if !ok || p.token != token {
		c.mu.Unlock()
		return
	}
	delete(c.pending, documentID)
	cancel := p.cancel
	p.result = result
	p.failure = failure
	close(p.done)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// backoffDelay computes the exponential delay before retry attempt n,
// capped at MaxRetryDelay, with a higher floor after rate limiting.
func (c *Coordinator) backoffDelay(attempt int, failure *domain.Failure) time.Duration {
	delay := c.opts.InitialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.opts.MaxRetryDelay {
			delay = c.opts.MaxRetryDelay
			break
		}
	}
	if failure != nil && failure.Kind == domain.FailureRateLimited && delay < c.opts.RateLimitBackoffFloor {
		delay = c.opts.RateLimitBackoffFloor
	}
	return delay
}

// classifyAttemptError maps a gateway error onto the failure taxonomy.
// Per-attempt deadline expiry counts as a retryable timeout.
func classifyAttemptError(err error) *domain.Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewFailure(domain.FailureTimeout, "summary request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return domain.NewFailure(domain.FailureCancelled, "summary request cancelled")
	}
	return domain.AsFailure(err)
}
