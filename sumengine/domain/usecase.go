package domain

import "context"

// ISummaryUsecase is the public entry point of the summary engine.
type ISummaryUsecase interface {
	// RequestSummary runs the full pipeline: eligibility, identity, cache
	// lookup, connectivity, then delegation to the request coordinator.
	RequestSummary(ctx context.Context, doc Document) (SummaryResult, error)

	// HasCachedSummary reports whether a valid cached summary exists.
	// Pure read: no LRU touch, no eviction.
	HasCachedSummary(documentID, currentContent string) bool

	// GetCachedSummary returns the cached entry if still valid. Pure read.
	GetCachedSummary(documentID, currentContent string) *CacheEntry

	// ClearCachedSummary drops the cached summary for one document.
	ClearCachedSummary(ctx context.Context, documentID string)

	// ClearAllCaches empties the summary cache and its persisted state.
	ClearAllCaches(ctx context.Context)

	// CancelPendingRequest cancels a pending request; returns false if none.
	CancelPendingRequest(documentID string) bool

	// CancelAllPendingRequests cancels every pending request.
	CancelAllPendingRequests()

	// CacheStats returns a snapshot of the summary cache.
	CacheStats() CacheStats

	// Dispose cancels everything and releases resources.
	Dispose()
}
