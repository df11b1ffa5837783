package dispatch

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBackoff is the retry table used when SEND_BACKOFF is unset.
var DefaultBackoff = []time.Duration{
	1 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	60 * time.Minute,
	6 * time.Hour,
}

// DefaultMaxTries parks a send after this many failures.
const DefaultMaxTries = 12

// RetryPolicy maps a failure count to the next attempt time.
type RetryPolicy struct {
	steps    []time.Duration
	maxTries int
}

// ParseBackoff parses a comma separated duration list ("1m,5m,15m,1h,6h").
func ParseBackoff(spec string) ([]time.Duration, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return append([]time.Duration(nil), DefaultBackoff...), nil
	}
	var steps []time.Duration
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("backoff: %q: %w", part, err)
		}
		steps = append(steps, d)
	}
	return steps, nil
}

// NewRetryPolicy validates the table: non-empty, positive and non-decreasing.
// maxTries <= 0 means retries are unbounded.
func NewRetryPolicy(steps []time.Duration, maxTries int) (RetryPolicy, error) {
	if len(steps) == 0 {
		return RetryPolicy{}, fmt.Errorf("backoff: table is empty")
	}
	for i, s := range steps {
		if s <= 0 {
			return RetryPolicy{}, fmt.Errorf("backoff: step %d must be positive", i+1)
		}
		if i > 0 && s < steps[i-1] {
			return RetryPolicy{}, fmt.Errorf("backoff: step %d (%s) is shorter than step %d (%s)", i+1, s, i, steps[i-1])
		}
	}
	return RetryPolicy{steps: append([]time.Duration(nil), steps...), maxTries: maxTries}, nil
}

// DefaultRetryPolicy returns the default table with DefaultMaxTries.
func DefaultRetryPolicy() RetryPolicy {
	p, _ := NewRetryPolicy(DefaultBackoff, DefaultMaxTries)
	return p
}

// Delay returns the wait after the given number of failures (>= 1).
// The last step caps every later failure.
func (p RetryPolicy) Delay(tries int) time.Duration {
	if tries < 1 {
		tries = 1
	}
	if tries > len(p.steps) {
		tries = len(p.steps)
	}
	return p.steps[tries-1]
}

// Exhausted reports whether no further attempt should be scheduled.
func (p RetryPolicy) Exhausted(tries int) bool {
	return p.maxTries > 0 && tries >= p.maxTries
}

// NextRetry returns now+Delay(tries), or nil once the policy is exhausted.
func (p RetryPolicy) NextRetry(tries int, now time.Time) *time.Time {
	if p.Exhausted(tries) {
		return nil
	}
	t := now.Add(p.Delay(tries))
	return &t
}

// MaxTries returns the configured bound, 0 when unbounded.
func (p RetryPolicy) MaxTries() int { return p.maxTries }
