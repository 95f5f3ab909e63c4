package app

import "time"

// nextCycleDelay aligns the first cycle to the next interval boundary so
// restarts keep the plant's cadence.
func nextCycleDelay(now time.Time, interval time.Duration) time.Duration {
	return now.Truncate(interval).Add(interval).Sub(now)
}
