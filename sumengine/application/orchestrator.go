// Package application contains the summary engine's public façade.
package application

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/smartnotes/summarizer/sumengine/domain"
	"github.com/smartnotes/summarizer/sumengine/infrastructure"
	"github.com/smartnotes/summarizer/sumengine/repository"
)

const (
	// DefaultMinEligibleContentLength is the minimum trimmed content length
	// (in runes) worth summarizing.
	DefaultMinEligibleContentLength = 100
	// DefaultMaxContentLength bounds what is sent to the remote service.
	DefaultMaxContentLength = 20000
)

// Options configures the orchestration façade.
type Options struct {
	MinEligibleContentLength int
	MaxContentLength         int // 0 disables the upper bound
}

// SummaryService is the public entry point combining eligibility checks,
// cache lookup, connectivity check and delegation to the coordinator.
type SummaryService struct {
	cache        *repository.SummaryCache
	coordinator  *infrastructure.Coordinator
	identity     domain.CallerIdentity    // optional
	connectivity domain.ConnectivityProbe // optional
	opts         Options
}

// NewSummaryService wires the façade. identity and connectivity may be nil,
// which skips the corresponding fast-fail check.
func NewSummaryService(cache *repository.SummaryCache, coordinator *infrastructure.Coordinator, identity domain.CallerIdentity, connectivity domain.ConnectivityProbe, opts Options) *SummaryService {
	if opts.MinEligibleContentLength <= 0 {
		opts.MinEligibleContentLength = DefaultMinEligibleContentLength
	}
	return &SummaryService{
		cache:        cache,
		coordinator:  coordinator,
		identity:     identity,
		connectivity: connectivity,
		opts:         opts,
	}
}

// RequestSummary implements the request pipeline. Fast-fail checks never
// reach the coordinator and so never consume a retry budget.
func (s *SummaryService) RequestSummary(ctx context.Context, doc domain.Document) (domain.SummaryResult, error) {
	trimmed := strings.TrimSpace(doc.Content)
	length := utf8.RuneCountInString(trimmed)

	minLen := doc.EligibleMinLength
	if minLen <= 0 {
		minLen = s.opts.MinEligibleContentLength
	}
	if length < minLen {
		return domain.SummaryResult{}, domain.NewFailure(domain.FailureContentTooShort, "note is too short to summarize")
	}
	if s.opts.MaxContentLength > 0 && length > s.opts.MaxContentLength {
		return domain.SummaryResult{}, domain.NewFailure(domain.FailureContentTooLong, "note is too long to summarize")
	}

	if s.identity != nil && s.identity.CurrentUserID(ctx) == "" {
		return domain.SummaryResult{}, domain.NewFailure(domain.FailureUnauthenticated, "sign in to generate summaries")
	}

	if entry := s.cache.Get(ctx, doc.ID, doc.Content); entry != nil {
		logrus.Debugf("[SUMMARY] Cache hit for %s", doc.ID)
		return domain.SummaryResult{
			Summary:     entry.Summary,
			ModelUsed:   entry.ModelUsed,
			FromCache:   true,
			GeneratedAt: entry.CreatedAt,
		}, nil
	}

	if s.connectivity != nil && !s.connectivity.IsOnline(ctx) {
		return domain.SummaryResult{}, domain.NewFailure(domain.FailureOffline, "no connection to the summary service")
	}

	result, err := s.coordinator.Schedule(ctx, doc)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	result.FromCache = false
	return result, nil
}

func (s *SummaryService) HasCachedSummary(documentID, currentContent string) bool {
	return s.cache.IsValid(documentID, currentContent)
}

func (s *SummaryService) GetCachedSummary(documentID, currentContent string) *domain.CacheEntry {
	return s.cache.Peek(documentID, currentContent)
}

func (s *SummaryService) ClearCachedSummary(ctx context.Context, documentID string) {
	s.cache.Remove(ctx, documentID)
}

func (s *SummaryService) ClearAllCaches(ctx context.Context) {
	s.cache.Clear(ctx)
}

func (s *SummaryService) CancelPendingRequest(documentID string) bool {
	return s.coordinator.Cancel(documentID)
}

func (s *SummaryService) CancelAllPendingRequests() {
	s.coordinator.CancelAll()
}

func (s *SummaryService) CacheStats() domain.CacheStats {
	return s.cache.Stats()
}

// Dispose cancels all pending work and rejects further scheduling.
func (s *SummaryService) Dispose() {
	s.coordinator.Dispose()
}
