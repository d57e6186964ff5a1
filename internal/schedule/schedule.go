// internal/schedule/schedule.go
package schedule

import "time"

// Compose joins the calendar day of date with the hour and minute of clock,
// zeroing seconds, in now's location.
func Compose(date, clock, now time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		now.Location(),
	)
}

// IsFutureInstant reports whether the composed instant is strictly later
// than now. Strict: today at the current minute is not a valid schedule,
// so a near-term schedule cannot slip into the past between validation
// and submission.
func IsFutureInstant(date, clock, now time.Time) bool {
	return Compose(date, clock, now).After(now)
}
