package domain

import (
	"context"
	"time"
)

// Document is the read-only view of a note the engine operates on.
// The engine never mutates documents directly; derived summary fields are
// written back through the DocumentStore update interface.
type Document struct {
	ID      string
	Content string
	// EligibleMinLength overrides the configured minimum content length for
	// this document when > 0.
	EligibleMinLength int
}

// SummaryResult is the outcome of a successful summary request.
type SummaryResult struct {
	Summary     string    `json:"summary"`
	ModelUsed   string    `json:"model_used,omitempty"`
	FromCache   bool      `json:"from_cache"`
	GeneratedAt time.Time `json:"generated_at"`
}

// CacheEntry is an immutable cached summary. A content change supersedes the
// entry with a new one rather than mutating it.
type CacheEntry struct {
	DocumentID  string    `json:"document_id"`
	Summary     string    `json:"summary"`
	Fingerprint string    `json:"content_hash"`
	CreatedAt   time.Time `json:"timestamp"`
	ModelUsed   string    `json:"model_used,omitempty"`
}

// CacheStats is a point-in-time snapshot of the summary cache.
type CacheStats struct {
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
	OldestID  string `json:"oldest_id,omitempty"`
	NewestID  string `json:"newest_id,omitempty"`
	OldestAge string `json:"oldest_age,omitempty"`
}

// GatewayResult is the raw output of the remote completion service.
type GatewayResult struct {
	Text      string
	ModelUsed string
}

// SummaryGateway abstracts the remote AI completion capability: given text,
// return a shorter text, or fail with a typed Failure. Implementations must
// honor ctx cancellation and deadlines.
type SummaryGateway interface {
	Complete(ctx context.Context, content string) (GatewayResult, error)
}

// DocumentStore is the engine's write-back interface to the external note
// store. On successful generation the summary text, generation timestamp and
// freshness flag are persisted.
type DocumentStore interface {
	UpdateSummary(ctx context.Context, documentID, summary string, generatedAt time.Time) error
}

// ConnectivityProbe reports whether the remote service is reachable.
type ConnectivityProbe interface {
	IsOnline(ctx context.Context) bool
}

// CallerIdentity resolves the current caller. An empty id means the caller
// is not authenticated.
type CallerIdentity interface {
	CurrentUserID(ctx context.Context) string
}
