package amqp

import (
	"math/rand/v2"
	"time"
)

// backoff yields jittered, exponentially growing redial delays.
// Not safe for concurrent use; Reconnector guards it with its mutex.
type backoff struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	multiplier float64
	current    time.Duration
	attempts   int
}

func newBackoff(minDelay, maxDelay time.Duration) *backoff {
	return &backoff{
		minDelay:   minDelay,
		maxDelay:   max(minDelay, maxDelay),
		multiplier: 2,
		current:    minDelay,
	}
}

// Next returns the next delay with +/-20% jitter, never below minDelay.
func (b *backoff) Next() time.Duration {
	b.attempts++

	jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(b.current))
	wait := max(b.current+jitter, b.minDelay)
	b.current = min(time.Duration(float64(b.current)*b.multiplier), b.maxDelay)

	return wait
}

func (b *backoff) Reset() {
	b.current = b.minDelay
	b.attempts = 0
}
