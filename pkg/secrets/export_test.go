package secrets

import "time"

// SetNow overrides the clock and returns a restore func.
func SetNow(fn func() time.Time) func() {
	prev := now
	now = fn
	return func() { now = prev }
}
