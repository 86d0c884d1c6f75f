package scheduler

import (
	"time"

	"github.com/hoanghai1803/autoscribe/internal/models"
)

// CalculateNextRun returns the run after from. Monthly schedules move one
// calendar month and clamp the day to the end of the target month, so
// Jan 31 becomes Feb 28 (or 29). Unknown frequencies advance one day.
func CalculateNextRun(freq models.Frequency, from time.Time) time.Time {
	switch freq {
	case models.FrequencyHourly:
		return from.Add(time.Hour)
	case models.FrequencyDaily:
		return from.Add(24 * time.Hour)
	case models.FrequencyWeekly:
		return from.Add(7 * 24 * time.Hour)
	case models.FrequencyMonthly:
		return addMonth(from)
	default:
		return from.Add(24 * time.Hour)
	}
}

func addMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month())
	return first.AddDate(0, 0, min(d, last)-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
