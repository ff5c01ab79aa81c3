package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartnotes/summarizer/sumengine/domain"
	"github.com/smartnotes/summarizer/sumengine/infrastructure"
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

type staticIdentity string

func (s staticIdentity) CurrentUserID(ctx context.Context) string { return string(s) }

type staticProbe bool

func (p staticProbe) IsOnline(ctx context.Context) bool { return bool(p) }

func newTestService(gw domain.SummaryGateway, identity domain.CallerIdentity, probe domain.ConnectivityProbe) *SummaryService {
	cache := repository.NewSummaryCache(10, nil)
	coordinator := infrastructure.NewCoordinator(gw, cache, nil, nil, infrastructure.Options{
		DebounceDelay:     10 * time.Millisecond,
		MaxRetries:        1,
		InitialRetryDelay: time.Millisecond,
		RequestTimeout:    time.Second,
	})
	return NewSummaryService(cache, coordinator, identity, probe, Options{})
}

func loremContent(n int) string {
	lorem := "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore. "
	return strings.Repeat(lorem, 1+n/len(lorem))[:n]
}

func TestRequestSummary_EndToEnd(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw, nil, nil)
	defer svc.Dispose()

	doc := domain.Document{ID: "note-1", Content: loremContent(150)}

	first, err := svc.RequestSummary(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "short summary", first.Summary)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, gw.callCount())

	// Unchanged content: served from cache, gateway untouched
	second, err := svc.RequestSummary(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "short summary", second.Summary)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, gw.callCount())
}

func TestRequestSummary_EligibilityBoundary(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw, nil, nil)
	defer svc.Dispose()

	// 99 trimmed characters: rejected before any network or cache work
	_, err := svc.RequestSummary(context.Background(), domain.Document{ID: "short", Content: loremContent(99) + "   "})
	require.Error(t, err)
	assert.Equal(t, domain.FailureContentTooShort, domain.AsFailure(err).Kind)
	assert.Equal(t, 0, gw.callCount())

	// Exactly 100 characters proceeds
	_, err = svc.RequestSummary(context.Background(), domain.Document{ID: "ok", Content: loremContent(100)})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.callCount())
}

func TestRequestSummary_PerDocumentMinLengthOverride(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw, nil, nil)
	defer svc.Dispose()

	doc := domain.Document{ID: "note-1", Content: loremContent(50), EligibleMinLength: 40}
	_, err := svc.RequestSummary(context.Background(), doc)
	require.NoError(t, err)
}

func TestRequestSummary_ContentTooLong(t *testing.T) {
	gw := &stubGateway{}
	cache := repository.NewSummaryCache(10, nil)
	coordinator := infrastructure.NewCoordinator(gw, cache, nil, nil, infrastructure.Options{
		DebounceDelay: time.Millisecond,
	})
	svc := NewSummaryService(cache, coordinator, nil, nil, Options{MaxContentLength: 200})
	defer svc.Dispose()

	_, err := svc.RequestSummary(context.Background(), domain.Document{ID: "big", Content: loremContent(201)})
	require.Error(t, err)
	assert.Equal(t, domain.FailureContentTooLong, domain.AsFailure(err).Kind)
	assert.Equal(t, 0, gw.callCount())
}

func TestRequestSummary_Unauthenticated(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw, staticIdentity(""), nil)
	defer svc.Dispose()

	_, err := svc.RequestSummary(context.Background(), domain.Document{ID: "note-1", Content: loremContent(150)})
	require.Error(t, err)
	assert.Equal(t, domain.FailureUnauthenticated, domain.AsFailure(err).Kind)
	assert.Equal(t, 0, gw.callCount())
}

func TestRequestSummary_Offline(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw, staticIdentity("user-1"), staticProbe(false))
	defer svc.Dispose()

	_, err := svc.RequestSummary(context.Background(), domain.Document{ID: "note-1", Content: loremContent(150)})
	require.Error(t, err)
	assert.Equal(t, domain.FailureOffline, domain.AsFailure(err).Kind)
	assert.Equal(t, 0, gw.callCount())
}

func TestRequestSummary_OfflineStillServesCache(t *testing.T) {
	gw := &stubGateway{}
	probe := &togglingProbe{online: true}
	cache := repository.NewSummaryCache(10, nil)
	coordinator := infrastructure.NewCoordinator(gw, cache, nil, nil, infrastructure.Options{
		DebounceDelay:  time.Millisecond,
		RequestTimeout: time.Second,
	})
	svc := NewSummaryService(cache, coordinator, nil, probe, Options{})
	defer svc.Dispose()

	doc := domain.Document{ID: "note-1", Content: loremContent(150)}
	_, err := svc.RequestSummary(context.Background(), doc)
	require.NoError(t, err)

	probe.setOnline(false)
	res, err := svc.RequestSummary(context.Background(), doc)
	require.NoError(t, err, "cache lookup happens before the connectivity check")
	assert.True(t, res.FromCache)
}

type togglingProbe struct {
	mu     sync.Mutex
	online bool
}

func (p *togglingProbe) IsOnline(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *togglingProbe) setOnline(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = v
}

func TestRequestSummary_ChangedContentRegenerates(t *testing.T) {
	gw := &stubGateway{fn: func(call int, content string) (domain.GatewayResult, error) {
		if call == 1 {
			return domain.GatewayResult{Text: "first summary"}, nil
		}
		return domain.GatewayResult{Text: "second summary"}, nil
	}}
	svc := newTestService(gw, nil, nil)
	defer svc.Dispose()

	contentA := loremContent(150)
	contentB := loremContent(180)

	res, err := svc.RequestSummary(context.Background(), domain.Document{ID: "note-1", Content: contentA})
	require.NoError(t, err)
	assert.Equal(t, "first summary", res.Summary)

	res, err = svc.RequestSummary(context.Background(), domain.Document{ID: "note-1", Content: contentB})
	require.NoError(t, err)
	assert.Equal(t, "second summary", res.Summary)
	assert.False(t, res.FromCache)
	assert.Equal(t, 2, gw.callCount())
}

func TestCachedSummaryAccessors(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw, nil, nil)
	defer svc.Dispose()

	content := loremContent(150)
	assert.False(t, svc.HasCachedSummary("note-1", content))
	assert.Nil(t, svc.GetCachedSummary("note-1", content))

	_, err := svc.RequestSummary(context.Background(), domain.Document{ID: "note-1", Content: content})
	require.NoError(t, err)

	assert.True(t, svc.HasCachedSummary("note-1", content))
	entry := svc.GetCachedSummary("note-1", content)
	require.NotNil(t, entry)
	assert.Equal(t, "short summary", entry.Summary)

	svc.ClearCachedSummary(context.Background(), "note-1")
	assert.False(t, svc.HasCachedSummary("note-1", content))

	_, err = svc.RequestSummary(context.Background(), domain.Document{ID: "note-1", Content: content})
	require.NoError(t, err)
	svc.ClearAllCaches(context.Background())
	assert.Equal(t, 0, svc.CacheStats().Size)
}
