package mutationq

import "time"

// Clock supplies the CreatedAt stamp of enqueued entries and blobs, and the sweeper's cutoff.
// Entries replay in CreatedAt order, so tests inject a fixed clock to pin that order.
type Clock interface {
	Now() time.Time
}

// SystemClock stamps entries with wall-clock time in UTC so stored records compare across time zones.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
