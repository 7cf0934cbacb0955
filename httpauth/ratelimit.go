package httpauth

import (
	"sync"
	"time"
)

// FailureLimiter counts rejected authentication attempts per client with a
// token bucket. A client whose bucket is empty is refused before its token is
// even checked. The limiter is safe for concurrent use.
type FailureLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxRate    int
	window     time.Duration
	maxBuckets int
	now        func() time.Time
}

type bucket struct {
	tokens     int
	lastRefill int64
}

// NewFailureLimiter allows maxRate failures per window for each client.
// Non-positive arguments fall back to 10 failures per minute.
func NewFailureLimiter(maxRate int, window time.Duration) *FailureLimiter {
	if maxRate <= 0 {
		maxRate = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return &FailureLimiter{
		buckets:    make(map[string]*bucket),
		maxRate:    maxRate,
		window:     window,
		maxBuckets: 10000,
		now:        time.Now,
	}
}

// Blocked reports whether client has no failures left in the current window.
func (l *FailureLimiter) Blocked(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[client]
	if !ok {
		return false
	}
	l.refillUnsafe(b, l.now().UnixNano())
	return b.tokens <= 0
}

// Fail records one failed attempt for client and reports whether it was
// still within the limit.
func (l *FailureLimiter) Fail(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	nowNano := l.now().UnixNano()
	b, ok := l.buckets[client]
	if !ok {
		if len(l.buckets) >= l.maxBuckets {
			l.evictOldestUnsafe()
		}
		l.buckets[client] = &bucket{tokens: l.maxRate - 1, lastRefill: nowNano}
		return true
	}

	l.refillUnsafe(b, nowNano)
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Reset forgets client. Middleware calls it after a successful authentication.
func (l *FailureLimiter) Reset(client string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, client)
}

// RetryAfter is the time for one failure to be refunded.
func (l *FailureLimiter) RetryAfter() time.Duration {
	return l.window / time.Duration(l.maxRate)
}

func (l *FailureLimiter) refillUnsafe(b *bucket, nowNano int64) {
	elapsed := nowNano - b.lastRefill
	if elapsed >= int64(l.window) {
		b.tokens = l.maxRate
		b.lastRefill = nowNano
		return
	}
	if elapsed <= 0 {
		return
	}
	refund := int(float64(l.maxRate) * float64(elapsed) / float64(l.window))
	if refund > 0 {
		b.tokens = min(b.tokens+refund, l.maxRate)
		b.lastRefill = nowNano
	}
}

func (l *FailureLimiter) evictOldestUnsafe() {
	oldestKey := ""
	oldestTime := int64(1<<63 - 1)

	for key, b := range l.buckets {
		if b.lastRefill < oldestTime {
			oldestKey = key
			oldestTime = b.lastRefill
		}
	}

	if oldestKey != "" {
		delete(l.buckets, oldestKey)
	}
}
