package worker

import (
	"context"
	"net/url"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// defaultIdleTTL is how long a key's bucket survives without requests
const defaultIdleTTL = 10 * time.Minute

// Limiter keeps one token bucket per key. The fetcher keys by host, the
// HTTP server by client address. Buckets idle longer than the idle TTL are
// evicted, so a long-running server does not accumulate one per client.
type Limiter struct {
	buckets      *gocache.Cache
	idleTTL      time.Duration
	mu           sync.Mutex // serializes get-or-create
	defaultRate  rate.Limit
	defaultBurst int
}

// LimiterOption customizes a Limiter
type LimiterOption func(*Limiter)

// WithIdleTTL sets how long an unused bucket is kept
func WithIdleTTL(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

// NewLimiter creates a new rate limiter. A non-positive rate means
// unlimited.
func NewLimiter(requestsPerSecond float64, burst int, opts ...LimiterOption) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	l := &Limiter{
		idleTTL:      defaultIdleTTL,
		defaultRate:  limit,
		defaultBurst: burst,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.buckets = gocache.New(l.idleTTL, l.idleTTL/2)

	return l
}

// Wait blocks until key may proceed or ctx ends
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.getLimiter(key).Wait(ctx)
}

// Allow reports whether key may proceed now, consuming a token if so
func (l *Limiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

// WaitWithDelay waits for the bucket and then for an additional delay
// (robots.txt Crawl-delay)
func (l *Limiter) WaitWithDelay(ctx context.Context, key string, additionalDelay time.Duration) error {
	if err := l.Wait(ctx, key); err != nil {
		return err
	}

	if additionalDelay > 0 {
		timer := time.NewTimer(additionalDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

// Len returns the number of live (non-expired) keys
func (l *Limiter) Len() int {
	return len(l.buckets.Items())
}

func (l *Limiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, found := l.buckets.Get(key); found {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	}

	// Every access pushes the expiry out again
	l.buckets.SetDefault(key, limiter)

	return limiter
}

// HostKey returns the limiter key for a URL: its host
func HostKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
