package rest

import "time"

// SummaryResponse is the wire representation of a generated or cached summary.
type SummaryResponse struct {
	DocumentID  string    `json:"document_id"`
	Summary     string    `json:"summary"`
	ModelUsed   string    `json:"model_used,omitempty"`
	FromCache   bool      `json:"from_cache"`
	GeneratedAt time.Time `json:"generated_at"`
}

// CachedSummaryResponse exposes a cache entry without touching LRU order.
type CachedSummaryResponse struct {
	DocumentID  string    `json:"document_id"`
	Summary     string    `json:"summary"`
	ModelUsed   string    `json:"model_used,omitempty"`
	Fingerprint string    `json:"content_hash"`
	CreatedAt   time.Time `json:"timestamp"`
}
