package validation

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter per client
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	clients map[string]*bucket

	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// bucket tracks rate limiting state for a single client
type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter with specified limits
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		clients:     make(map[string]*bucket),
		done:        make(chan struct{}),
	}

	// Start cleanup goroutine to remove inactive clients
	rl.cleanupTick = time.NewTicker(window)
	go rl.cleanup()

	return rl
}

// Allow checks if a request should be allowed for the given client ID
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.clients[clientID]
	if !exists {
		b = &bucket{tokens: rl.maxRequests, lastRefill: now}
		rl.clients[clientID] = b
	}

	// Refill by the fraction of the window that has passed
	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 && b.tokens < rl.maxRequests {
		refill := int(float64(rl.maxRequests) * float64(elapsed) / float64(rl.window))
		if refill > 0 {
			b.tokens = min(b.tokens+refill, rl.maxRequests)
			b.lastRefill = now
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Clients returns the number of tracked clients
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// cleanup removes inactive clients to prevent memory leaks
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.removeInactiveClients()
		case <-rl.done:
			return
		}
	}
}

// removeInactiveClients removes clients that haven't been active for 2 windows
func (rl *RateLimiter) removeInactiveClients() {
	cutoff := rl.now().Add(-2 * rl.window)

	rl.mu.Lock()
	for clientID, b := range rl.clients {
		if b.lastRefill.Before(cutoff) {
			delete(rl.clients, clientID)
		}
	}
	rl.mu.Unlock()
}

// Close stops the rate limiter and cleans up resources
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
