package schedule

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultLeadDays keeps same-day trips out of reach: the earliest a new trip
// may be scheduled or enabled is tomorrow. Widen it via SCHEDULE_LEAD_DAYS.
const DefaultLeadDays = 1

// DatePolicy is the single source of truth for whether an administrator may
// create or enable a trip schedule on a given calendar date. It is pure:
// "now" is always passed in, never read from the clock, so every mutation
// path and every test consults identical rules.
type DatePolicy struct {
	LeadDays int
}

// PolicyFromEnv builds the policy from SCHEDULE_LEAD_DAYS, falling back to
// the default when unset or unparsable.
func PolicyFromEnv() DatePolicy {
	lead := DefaultLeadDays
	if v := os.Getenv("SCHEDULE_LEAD_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 {
			lead = parsed
		}
	}
	return DatePolicy{LeadDays: lead}
}

// MinimumScheduleDate is the earliest date a new trip may be created for,
// used to bound date-picker inputs.
func (p DatePolicy) MinimumScheduleDate(now time.Time) time.Time {
	return truncateToDay(now).AddDate(0, 0, p.leadDays())
}

// CanEnableForDate reports whether date is schedulable relative to now. When
// it is not, the returned reason is suitable for direct display to the
// administrator.
func (p DatePolicy) CanEnableForDate(date, now time.Time) (bool, string) {
	day := truncateToDay(date)
	minDay := p.MinimumScheduleDate(now)
	if day.Before(minDay) {
		return false, fmt.Sprintf(
			"trips for %s must be scheduled at least %d day(s) in advance; the earliest allowed date is %s",
			day.Format("2006-01-02"), p.leadDays(), minDay.Format("2006-01-02"),
		)
	}
	return true, ""
}

// Same-day trips are never bookable, so the lead time floors at one day.
func (p DatePolicy) leadDays() int {
	if p.LeadDays < 1 {
		return DefaultLeadDays
	}
	return p.LeadDays
}

// truncateToDay drops the time-of-day component in the date's own location.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
