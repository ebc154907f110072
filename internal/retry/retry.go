package retry

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/logging"
)

// Policy is a bounded exponential backoff for absorbing transient storage
// errors. Sleep is injectable so tests run without waiting.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Sleep     func(time.Duration)
}

// Default returns the standard policy: three attempts with a jittered base
// delay of 200ms doubling per attempt.
func Default() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 200 * time.Millisecond,
		MaxDelay:  2 * time.Second,
		Sleep:     time.Sleep,
	}
}

// Do runs fn until it succeeds or the attempt budget is exhausted. The last
// error is wrapped with the operation name so the enclosing step can report
// which storage call gave up.
func (p Policy) Do(op string, fn func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		delay := p.delay(attempt)
		logging.Warn("retrying after transient failure", err, logging.Fields{
			"op":      op,
			"attempt": attempt,
			"delay":   delay.String(),
		})
		sleep(delay)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}

// delay computes the wait before the next attempt: base * 2^(attempt-1)
// plus up to 50% random jitter, capped at MaxDelay.
func (p Policy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base << uint(attempt-1)
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	d += jitter
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
