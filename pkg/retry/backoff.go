package retry

import (
	"math"
	"time"
)

// NextDelay computes the delay that an exponential policy would apply
// after the given attempt, capped at maxInterval.
func NextDelay(attempt int, initialInterval time.Duration, multiplier float64, maxInterval time.Duration) time.Duration {
	duration := float64(initialInterval) * math.Pow(multiplier, float64(attempt))
	if duration > float64(maxInterval) {
		return maxInterval
	}
	return time.Duration(duration)
}
