// Package retry holds the backoff schedule used around transient external
// calls, kept as a pure function so the policy is testable without timers.
package retry

import "time"

// Policy computes the wait before the next attempt. attempt is 0-based.
type Policy func(attempt int) time.Duration

// Exponential returns a policy that doubles the base delay per attempt:
// base, 2*base, 4*base, ...
func Exponential(base time.Duration) Policy {
	return func(attempt int) time.Duration {
		d := base
		for i := 0; i < attempt; i++ {
			d *= 2
		}
		return d
	}
}
