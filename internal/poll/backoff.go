package poll

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes the sleep between consecutive probes.
type Backoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64

	// maxAttempts bounds the number of probes (-1 = unlimited).
	maxAttempts int

	// jitter of 0.1 means +/- 10% randomness.
	jitter     float64
	jitterFunc func() float64
}

// BackoffOption configures a Backoff.
type BackoffOption func(*Backoff)

// WithInitialDelay sets the sleep after the first probe.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *Backoff) {
		b.initialDelay = d
	}
}

// WithMaxDelay caps the sleep between probes.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *Backoff) {
		b.maxDelay = d
	}
}

// WithMultiplier sets the growth factor between consecutive sleeps.
func WithMultiplier(m float64) BackoffOption {
	return func(b *Backoff) {
		b.multiplier = m
	}
}

// WithJitter sets the jitter factor (0.0-1.0).
func WithJitter(j float64) BackoffOption {
	return func(b *Backoff) {
		b.jitter = j
	}
}

// WithJitterFunc replaces the random source used for jitter. Tests pass a
// deterministic function.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *Backoff) {
		b.jitterFunc = f
	}
}

// NewBackoff creates a backoff that allows maxAttempts probes.
// Defaults: 10s initial delay, 1m cap, multiplier 1.5, jitter 0.1.
func NewBackoff(maxAttempts int, opts ...BackoffOption) *Backoff {
	b := &Backoff{
		initialDelay: 10 * time.Second,
		maxDelay:     time.Minute,
		multiplier:   1.5,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Delay returns the sleep after probe number attempt (zero based).
func (b *Backoff) Delay(attempt int) time.Duration {
	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}

	if b.jitter > 0 {
		random := b.jitterFunc
		if random == nil {
			random = rand.Float64
		}
		// Map [0,1) to [-1,1) and scale by jitter.
		delay *= 1.0 + b.jitter*(random()-0.5)*2.0
	}

	return time.Duration(delay)
}

// MaxAttempts returns the probe budget.
func (b *Backoff) MaxAttempts() int {
	return b.maxAttempts
}
