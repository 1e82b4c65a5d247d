package billing

import (
	"time"

	"meilenstein-backend/models"
)

// DueDate combines the milestone's offset fields with today into a computed
// invoice date: absolute month/day replace first (with the relative months
// folded in and the day clamped to the month), then days and weeks are added,
// then the date advances to the requested weekday, counting the same day.
// Weekdays are numbered 0=Monday through 6=Sunday.
func DueDate(today time.Time, f models.MilestoneFields) time.Time {
	year, month, day := today.Date()

	m := int(month)
	if f.Month != nil {
		m = *f.Month
	}
	m0 := m - 1 + f.Months
	year += floorDiv(m0, 12)
	m = mod(m0, 12) + 1

	if f.Day != nil {
		day = *f.Day
	}
	if max := daysIn(year, time.Month(m)); day > max {
		day = max
	}

	t := time.Date(year, time.Month(m), day, 0, 0, 0, 0, today.Location())
	t = t.AddDate(0, 0, f.Days+7*f.Weeks)

	if f.Weekday != nil {
		want := time.Weekday((*f.Weekday + 1) % 7)
		for t.Weekday() != want {
			t = t.AddDate(0, 0, 1)
		}
	}
	return t
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
