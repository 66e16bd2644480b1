package server

import "golang.org/x/sync/semaphore"

// DefaultMaxEventClients caps concurrent page event streams.
const DefaultMaxEventClients = 128

// connLimiter bounds concurrent connections. A nil limiter admits all.
type connLimiter struct {
	sem *semaphore.Weighted
}

func newConnLimiter(max int) *connLimiter {
	if max <= 0 {
		return nil
	}
	return &connLimiter{sem: semaphore.NewWeighted(int64(max))}
}

// Acquire takes a slot without blocking. Only a successful Acquire may be
// paired with Release.
func (l *connLimiter) Acquire() bool {
	if l == nil {
		return true
	}
	return l.sem.TryAcquire(1)
}

func (l *connLimiter) Release() {
	if l == nil {
		return
	}
	l.sem.Release(1)
}
