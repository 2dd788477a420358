package lock

import "time"

// Default backoff schedule: 100ms, 150ms, 225ms, ... capped at one second.
const (
	DefaultBackoffInitial = 100 * time.Millisecond
	DefaultBackoffFactor  = 1.5
	DefaultBackoffMax     = time.Second
)

// Backoff is an exponential wait schedule with a ceiling.
type Backoff struct {
	Initial time.Duration
	Factor  float64
	Max     time.Duration
}

// DefaultBackoff returns the default schedule.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial: DefaultBackoffInitial,
		Factor:  DefaultBackoffFactor,
		Max:     DefaultBackoffMax,
	}
}

func (b Backoff) valid() bool {
	return b.Initial > 0 && b.Factor > 1 && b.Max >= b.Initial
}

// Next returns the interval that follows d. It never shrinks and never
// grows past Max.
func (b Backoff) Next(d time.Duration) time.Duration {
	if d >= b.Max {
		return d
	}
	next := float64(d) * b.Factor
	if next >= float64(b.Max) {
		return b.Max
	}
	if n := time.Duration(next); n > d {
		return n
	}
	return d
}
