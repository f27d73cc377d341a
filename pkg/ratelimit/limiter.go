package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SlidingWindow implements a sliding window rate limiter
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	now         func() time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a new sliding window rate limiter
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// reserve records a request if the window has room; otherwise it returns
// how long until the oldest request leaves the window.
func (sw *SlidingWindow) reserve() (time.Duration, bool) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return 0, true
	}
	return sw.windowSize - now.Sub(sw.requests[0]), false
}

// Wait blocks until a request is allowed or ctx is done
func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for {
		delay, ok := sw.reserve()
		if ok {
			return nil
		}
		if delay <= 0 {
			delay = time.Millisecond
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// cleanOldRequests removes requests outside the sliding window
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && !sw.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

// PerHost throttles requests separately for every host
type PerHost struct {
	perMinute int
	mu        sync.Mutex
	windows   map[string]*SlidingWindow
}

// NewPerHost allows perMinute requests a minute to each host. A limit of
// zero or less returns nil, which never blocks.
func NewPerHost(perMinute int) *PerHost {
	if perMinute <= 0 {
		return nil
	}
	return &PerHost{
		perMinute: perMinute,
		windows:   make(map[string]*SlidingWindow),
	}
}

// Wait blocks until rawURL's host may be requested again
func (p *PerHost) Wait(ctx context.Context, rawURL string) error {
	if p == nil {
		return ctx.Err()
	}
	return p.window(hostOf(rawURL)).Wait(ctx)
}

func (p *PerHost) window(host string) *SlidingWindow {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.windows[host]
	if !ok {
		w = NewSlidingWindow(p.perMinute, time.Minute)
		p.windows[host] = w
	}
	return w
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}
