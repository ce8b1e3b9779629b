// Package schedule evaluates whether a stored lock window covers a given
// instant. This is display-only derived state: it never commands a device
// agent and has no authority over the actual lock state.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"pc-control-dashboard/internal/model"
)

// IsActiveAt reports whether the schedule's lock window covers the given
// time. Disabled schedules are never active. A window whose start is later
// than its end wraps midnight (22:00-07:00 covers 23:00 and 03:00).
func IsActiveAt(sched *model.Schedule, at time.Time) bool {
	if sched == nil || !sched.Enabled {
		return false
	}

	start, ok := minutesOfDay(sched.StartTime)
	if !ok {
		return false
	}
	end, ok := minutesOfDay(sched.EndTime)
	if !ok {
		return false
	}

	now := at.Hour()*60 + at.Minute()

	if start > end {
		return now >= start || now <= end
	}
	return now >= start && now <= end
}

// IsActiveNow reports whether the schedule's lock window covers the current
// wall-clock time.
func IsActiveNow(sched *model.Schedule) bool {
	return IsActiveAt(sched, time.Now())
}

// minutesOfDay converts an HH:MM string to minutes since midnight.
func minutesOfDay(value string) (int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
