// Package connectivity implements the online/offline probe consulted before
// remote summary generation.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultProbeURL answers HEAD requests with 204 and no body.
	DefaultProbeURL = "https://www.gstatic.com/generate_204"

	defaultProbeTimeout = 3 * time.Second
	defaultCacheTTL     = 10 * time.Second
)

// HTTPProbe checks reachability of a well-known endpoint. Results are cached
// briefly so bursts of requests do not each pay for a network round trip.
type HTTPProbe struct {
	url    string
	client *http.Client

	mu        sync.Mutex
	lastCheck time.Time
	lastState bool
}

func NewHTTPProbe(url string) *HTTPProbe {
	if url == "" {
		url = DefaultProbeURL
	}
	return &HTTPProbe{
		url:    url,
		client: &http.Client{Timeout: defaultProbeTimeout},
	}
}

func (p *HTTPProbe) IsOnline(ctx context.Context) bool {
	p.mu.Lock()
	if time.Since(p.lastCheck) < defaultCacheTTL {
		state := p.lastState
		p.mu.Unlock()
		return state
	}
	p.mu.Unlock()

	state := p.check(ctx)

	p.mu.Lock()
	p.lastCheck = time.Now()
	p.lastState = state
	p.mu.Unlock()
	return state
}

func (p *HTTPProbe) check(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		logrus.WithError(err).Debug("[CONNECTIVITY] Probe failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// StaticProbe always reports the same state. Useful for tests and for
// deployments that disable the check.
type StaticProbe bool

func (p StaticProbe) IsOnline(ctx context.Context) bool { return bool(p) }
