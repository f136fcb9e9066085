// Package security provides rate limiting for login and mutation endpoints.
package security

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket per identifier (IP or user ID).
// Safe for concurrent use.
type RateLimiter struct {
	buckets map[string]*bucketState
	mu      sync.RWMutex

	maxTokens  int           // Maximum tokens in a bucket
	refillRate time.Duration // Time between token refills

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// bucketState tracks the token bucket for a single identifier.
type bucketState struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limiter allowing maxTokens requests with one
// token restored every refillRate.
//
// Example:
//
//	// Allow 5 requests per minute
//	limiter := NewRateLimiter(5, 12*time.Second) // 60s / 5 requests = 12s per token
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:     make(map[string]*bucketState),
		maxTokens:   maxTokens,
		refillRate:  refillRate,
		stopCleanup: make(chan struct{}),
	}

	// Background sweep drops stale buckets so the map stays bounded.
	rl.cleanupTicker = time.NewTicker(10 * time.Minute)
	go rl.cleanup()

	return rl
}

// Allow reports whether a request from the given identifier is within the
// limit, consuming one token when it is.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	bucket, exists := rl.buckets[identifier]
	if !exists {
		// First request from this identifier consumes one token.
		bucket = &bucketState{
			tokens:     rl.maxTokens - 1,
			lastRefill: time.Now(),
		}
		rl.buckets[identifier] = bucket
		rl.mu.Unlock()
		return true
	}
	rl.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	elapsed := time.Since(bucket.lastRefill)
	tokensToAdd := int(elapsed / rl.refillRate)

	if tokensToAdd > 0 {
		bucket.tokens += tokensToAdd
		if bucket.tokens > rl.maxTokens {
			bucket.tokens = rl.maxTokens
		}
		bucket.lastRefill = time.Now()
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

// Reset removes the rate limit state for an identifier.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, identifier)
}

// cleanup periodically removes buckets inactive for more than an hour.
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.mu.Lock()
			now := time.Now()
			for id, bucket := range rl.buckets {
				bucket.mu.Lock()
				if now.Sub(bucket.lastRefill) > time.Hour {
					delete(rl.buckets, id)
				}
				bucket.mu.Unlock()
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// Stop stops the cleanup goroutine and releases resources.
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.stopCleanup)
}

// AccountLockout tracks failed login attempts per account and locks the
// account once the threshold is crossed.
type AccountLockout struct {
	lockouts map[string]*lockoutState
	mu       sync.RWMutex

	threshold int           // Failed attempts before lockout
	duration  time.Duration // How long the account stays locked
}

// lockoutState tracks failed attempts and lockout status for one account.
type lockoutState struct {
	failedAttempts int
	lockedUntil    time.Time
	lastAttempt    time.Time
	mu             sync.Mutex
}

// NewAccountLockout creates a lockout tracker.
//
// Example:
//
//	// Lock account for 30 minutes after 10 failed attempts
//	lockout := NewAccountLockout(10, 30*time.Minute)
func NewAccountLockout(threshold int, duration time.Duration) *AccountLockout {
	return &AccountLockout{
		lockouts:  make(map[string]*lockoutState),
		threshold: threshold,
		duration:  duration,
	}
}

// RecordFailedAttempt records a failed login attempt.
// Returns true if the account is now locked.
func (al *AccountLockout) RecordFailedAttempt(identifier string) bool {
	al.mu.Lock()
	state, exists := al.lockouts[identifier]
	if !exists {
		state = &lockoutState{
			failedAttempts: 1,
			lastAttempt:    time.Now(),
		}
		al.lockouts[identifier] = state
		al.mu.Unlock()
		return false
	}
	al.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()

	// Attempts older than 30 minutes no longer count toward the threshold.
	if time.Since(state.lastAttempt) > 30*time.Minute {
		state.failedAttempts = 1
		state.lastAttempt = time.Now()
		return false
	}

	state.failedAttempts++
	state.lastAttempt = time.Now()

	if state.failedAttempts >= al.threshold {
		state.lockedUntil = time.Now().Add(al.duration)
		return true
	}

	return false
}

// IsLocked reports whether an account is currently locked.
// Expired lockouts are cleared on read.
func (al *AccountLockout) IsLocked(identifier string) bool {
	al.mu.RLock()
	state, exists := al.lockouts[identifier]
	al.mu.RUnlock()

	if !exists {
		return false
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if time.Now().After(state.lockedUntil) {
		state.failedAttempts = 0
		state.lockedUntil = time.Time{}
		return false
	}

	return !state.lockedUntil.IsZero()
}

// ResetAttempts clears the failed attempt counter for an identifier.
// Call this on successful login.
func (al *AccountLockout) ResetAttempts(identifier string) {
	al.mu.Lock()
	defer al.mu.Unlock()
	delete(al.lockouts, identifier)
}

// GetLockoutTimeRemaining returns how much time is left on the lockout.
// Returns 0 if not locked.
func (al *AccountLockout) GetLockoutTimeRemaining(identifier string) time.Duration {
	al.mu.RLock()
	state, exists := al.lockouts[identifier]
	al.mu.RUnlock()

	if !exists {
		return 0
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lockedUntil.IsZero() {
		return 0
	}

	remaining := time.Until(state.lockedUntil)
	if remaining < 0 {
		return 0
	}

	return remaining
}
