package ogproxy

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Prober performs advisory existence checks against candidate OGP images.
// Crawlers cache card images aggressively, so a broken image URL is worse
// than falling back to the known-good default; the probe trades one bounded
// round trip for that guarantee.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	budget  *probeBudget
}

// NewProber builds a prober from configuration.
func NewProber(cfg ProbeConfig) *Prober {
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	var budget *probeBudget
	if cfg.Budget.Requests > 0 && cfg.Budget.Window.Duration > 0 {
		budget = newProbeBudget(cfg.Budget.Requests, cfg.Budget.Window.Duration)
	}
	return &Prober{
		client:  &http.Client{Transport: newTransport()},
		timeout: timeout,
		budget:  budget,
	}
}

// Exists reports whether rawURL points at a fetchable image: a success status
// and an image Content-Type are both required. Timeouts, network errors, and
// malformed responses all report false; the check never returns an error. An
// exhausted probe budget also reports false without touching the network, so
// a crawl burst degrades cards to the known-good default instead of gambling
// on unverified candidates that crawlers would cache.
func (p *Prober) Exists(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	if p.budget != nil && !p.budget.allow(u.Host) {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "image/")
}

// probeBudget caps outbound probes per image host, token-bucket style.
type probeBudget struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	requests int
	window   time.Duration
}

func newProbeBudget(requests int, window time.Duration) *probeBudget {
	return &probeBudget{
		limiters: make(map[string]*rate.Limiter),
		requests: requests,
		window:   window,
	}
}

func (b *probeBudget) allow(host string) bool {
	host = strings.ToLower(host)
	b.mu.Lock()
	limiter, ok := b.limiters[host]
	if !ok {
		interval := b.window / time.Duration(b.requests)
		if interval <= 0 {
			interval = time.Millisecond
		}
		limiter = rate.NewLimiter(rate.Every(interval), b.requests)
		b.limiters[host] = limiter
	}
	b.mu.Unlock()
	return limiter.Allow()
}
