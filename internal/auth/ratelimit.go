package auth

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxTrackedLogins bounds how many IP+email pairs are remembered at once.
const maxTrackedLogins = 10000

// RateLimiter locks out an IP+email pair after too many failed logins
// within a window.
type RateLimiter struct {
	mu          sync.Mutex
	records     *expirable.LRU[string, attemptRecord]
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Maximum failures before lockout (default: 5)
	WindowDuration  time.Duration // Time window for counting failures (default: 15m)
	LockoutDuration time.Duration // How long to lock out after max failures (default: 30m)
}

// NewRateLimiter creates a rate limiter, filling in defaults for zero values.
// Records expire on their own once both the window and the lockout have passed.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}

	ttl := cfg.WindowDuration + cfg.LockoutDuration
	return &RateLimiter{
		records:     expirable.NewLRU[string, attemptRecord](maxTrackedLogins, nil, ttl),
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.WindowDuration,
		lockout:     cfg.LockoutDuration,
		now:         time.Now,
	}
}

// Stop forgets all tracked attempts.
func (rl *RateLimiter) Stop() {
	rl.records.Purge()
}

func attemptKey(ip, email string) string {
	return ip + ":" + email
}

// Allow reports whether a login attempt may proceed. When it may not,
// retryAfter is the time left until the lockout ends.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.records.Peek(attemptKey(ip, email))
	if !ok {
		return true, 0
	}

	now := rl.now()
	switch {
	case now.Before(record.lockedUntil):
		return false, record.lockedUntil.Sub(now)
	case now.Sub(record.firstAttempt) > rl.window:
		return true, 0
	case record.count < rl.maxAttempts:
		return true, 0
	}
	return false, rl.lockout
}

// RecordFailure counts a failed login. It reports whether the pair is now
// locked out and for how long.
func (rl *RateLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	key := attemptKey(ip, email)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.records.Peek(key)
	if !ok || now.Sub(record.firstAttempt) > rl.window {
		record = attemptRecord{firstAttempt: now}
	}

	record.count++
	locked := record.count >= rl.maxAttempts
	if locked {
		record.lockedUntil = now.Add(rl.lockout)
	}
	rl.records.Add(key, record)

	if locked {
		return true, rl.lockout
	}
	return false, 0
}

// RecordSuccess clears the failures of a pair after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	rl.records.Remove(attemptKey(ip, email))
	rl.mu.Unlock()
}

// retryAfterSeconds formats a lockout for the Retry-After header.
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
