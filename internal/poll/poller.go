package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrGaveUp is returned when the probe budget is spent before the desired
// state is reached.
var ErrGaveUp = errors.New("gave up waiting")

// Probe reports whether the desired state has been reached.
type Probe func(ctx context.Context) (done bool, err error)

// Poller repeats a Probe until it reports done.
//
// Thread Safety: WithOnWait returns a new instance; a Poller is never
// modified after construction and is safe for concurrent use.
type Poller struct {
	backoff     *Backoff
	isTransient func(error) bool
	onWait      func(attempt int, err error, delay time.Duration)
}

// New creates a poller with the given backoff and the default
// transient-error classifier. Panics if backoff is nil.
func New(backoff *Backoff) *Poller {
	if backoff == nil {
		panic("backoff cannot be nil")
	}
	return &Poller{backoff: backoff, isTransient: IsTransient}
}

// WithOnWait returns a copy that calls callback before each sleep. err is the
// transient probe error, or nil when the resource simply was not ready.
func (p *Poller) WithOnWait(callback func(attempt int, err error, delay time.Duration)) *Poller {
	clone := *p
	clone.onWait = callback
	return &clone
}

// WithClassifier returns a copy that uses isTransient to classify probe errors.
func (p *Poller) WithClassifier(isTransient func(error) bool) *Poller {
	clone := *p
	clone.isTransient = isTransient
	return &clone
}

// Until probes until done, a non-transient error, context cancellation, or
// the probe budget runs out.
func (p *Poller) Until(ctx context.Context, probe Probe) error {
	maxAttempts := p.backoff.MaxAttempts()
	var lastErr error

	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := probe(ctx)
		if err != nil && !p.isTransient(err) {
			return err
		}
		if err == nil && done {
			return nil
		}
		lastErr = err

		if maxAttempts >= 0 && attempt == maxAttempts-1 {
			break
		}

		delay := p.backoff.Delay(attempt)
		if p.onWait != nil {
			p.onWait(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrGaveUp, maxAttempts, lastErr)
	}
	return fmt.Errorf("%w after %d attempts", ErrGaveUp, maxAttempts)
}
