// Package ratelimit throttles sync copies to a configured bandwidth.
package ratelimit

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// minBucket keeps small limits from degenerating into tiny reads
const minBucket = 64 * 1024

// Limiter is a token bucket shared by every reader of one sync run
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastRefill time.Time
}

// NewLimiter creates a limiter for the given rate. It returns nil for a
// non-positive rate, and a nil limiter means unlimited.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucket := max(bytesPerSecond, minBucket)
	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucket,
		tokens:         bucket,
		lastRefill:     time.Now(),
	}
}

// Rate returns the configured bytes per second
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// wait blocks until n tokens are available or ctx is done
func (l *Limiter) wait(ctx context.Context, n int64) error {
	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		delay := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		delay = max(delay, time.Millisecond)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill must be called with mu held
func (l *Limiter) refill(now time.Time) {
	add := int64(now.Sub(l.lastRefill).Seconds() * float64(l.bytesPerSecond))
	if add <= 0 {
		return
	}
	l.tokens = min(l.tokens+add, l.bucketSize)
	l.lastRefill = now
}

type reader struct {
	ctx     context.Context
	r       io.Reader
	limiter *Limiter
}

// NewReader wraps r so reads draw from limiter. A nil limiter returns r.
func NewReader(ctx context.Context, r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &reader{ctx: ctx, r: r, limiter: limiter}
}

func (r *reader) Read(p []byte) (int, error) {
	if len(p) > int(r.limiter.bucketSize) {
		p = p[:r.limiter.bucketSize]
	}
	if err := r.limiter.wait(r.ctx, int64(len(p))); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// ParseRate parses a bandwidth such as "512K", "10M" or "1G" into bytes per
// second. Units are binary. An empty string or "0" means unlimited.
func ParseRate(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, nil
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/S"), "B")

	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1 << 10
	case strings.HasSuffix(s, "M"):
		mult = 1 << 20
	case strings.HasSuffix(s, "G"):
		mult = 1 << 30
	}
	if mult > 1 {
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid bandwidth %q", s)
	}
	return int64(n * float64(mult)), nil
}
