package scheduler

import "time"

// MinIntervalMinutes is the floor applied to every schedule interval.
const MinIntervalMinutes = 5

// NormalizeInterval clamps minutes to at least MinIntervalMinutes.
func NormalizeInterval(minutes int) int {
	if minutes < MinIntervalMinutes {
		return MinIntervalMinutes
	}
	return minutes
}

// CalculateNextRun returns the next due time after now for the interval.
func CalculateNextRun(now time.Time, intervalMinutes int) time.Time {
	return now.Add(time.Duration(NormalizeInterval(intervalMinutes)) * time.Minute)
}
