package aggregator

import "time"

// DeadlineStatus classifies a deadline relative to a reference date.
type DeadlineStatus string

const (
	DeadlineOverdue    DeadlineStatus = "OVERDUE"
	DeadlineCritical   DeadlineStatus = "CRITICAL"
	DeadlineUpcoming   DeadlineStatus = "UPCOMING"
	DeadlineSafe       DeadlineStatus = "SAFE"
	DeadlineNoDeadline DeadlineStatus = "NO_DEADLINE"
)

// Window bounds in whole days, inclusive on both ends.
const (
	CriticalWindowDays = 7
	UpcomingWindowDays = 30
)

// DeadlineStatuses lists every status in severity order.
var DeadlineStatuses = []DeadlineStatus{
	DeadlineOverdue,
	DeadlineCritical,
	DeadlineUpcoming,
	DeadlineSafe,
	DeadlineNoDeadline,
}

var deadlineSeverity = map[DeadlineStatus]int{
	DeadlineOverdue:    0,
	DeadlineCritical:   1,
	DeadlineUpcoming:   2,
	DeadlineSafe:       3,
	DeadlineNoDeadline: 4,
}

// Severity returns the position of the status in DeadlineStatuses, lower is more urgent.
func (s DeadlineStatus) Severity() int {
	if rank, ok := deadlineSeverity[s]; ok {
		return rank
	}
	return len(DeadlineStatuses)
}

// DaysUntil returns the number of calendar days from ref to target. target is a
// calendar date: its own year, month and day are used as stored, while ref's day
// is taken in ref's location. Negative values mean target is in the past.
func DaysUntil(ref, target time.Time) int {
	return civilDay(target) - civilDay(ref)
}

// ClassifyByDeadline maps a deadline onto a DeadlineStatus. The result only
// depends on the calendar dates of ref and deadline.
func ClassifyByDeadline(ref time.Time, deadline *time.Time) DeadlineStatus {
	if deadline == nil {
		return DeadlineNoDeadline
	}
	days := DaysUntil(ref, *deadline)
	switch {
	case days < 0:
		return DeadlineOverdue
	case days <= CriticalWindowDays:
		return DeadlineCritical
	case days <= UpcomingWindowDays:
		return DeadlineUpcoming
	default:
		return DeadlineSafe
	}
}

func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
