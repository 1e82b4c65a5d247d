package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"meilenstein-backend/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intp(n int) *int { return &n }

func TestDueDate(t *testing.T) {
	tests := []struct {
		name   string
		today  time.Time
		fields models.MilestoneFields
		want   time.Time
	}{
		{
			name:  "no offsets keeps today",
			today: date(2026, time.August, 30),
			want:  date(2026, time.August, 30),
		},
		{
			name:   "relative months",
			today:  date(2026, time.August, 30),
			fields: models.MilestoneFields{Months: 1},
			want:   date(2026, time.September, 30),
		},
		{
			name:   "relative months clamp the day",
			today:  date(2026, time.January, 31),
			fields: models.MilestoneFields{Months: 1},
			want:   date(2026, time.February, 28),
		},
		{
			name:   "relative months carry into next year",
			today:  date(2026, time.November, 15),
			fields: models.MilestoneFields{Months: 3},
			want:   date(2027, time.February, 15),
		},
		{
			name:   "negative months borrow from previous year",
			today:  date(2026, time.January, 15),
			fields: models.MilestoneFields{Months: -2},
			want:   date(2025, time.November, 15),
		},
		{
			name:   "absolute month and day replace",
			today:  date(2026, time.August, 30),
			fields: models.MilestoneFields{Month: intp(2), Day: intp(30)},
			want:   date(2026, time.February, 28),
		},
		{
			name:   "days and weeks add after replacement",
			today:  date(2026, time.August, 30),
			fields: models.MilestoneFields{Days: 3, Weeks: 1},
			want:   date(2026, time.September, 9),
		},
		{
			name:   "weekday advances to next monday",
			today:  date(2026, time.August, 30), // a Sunday
			fields: models.MilestoneFields{Weekday: intp(0)},
			want:   date(2026, time.August, 31),
		},
		{
			name:   "weekday counts the same day",
			today:  date(2026, time.August, 31), // a Monday
			fields: models.MilestoneFields{Weekday: intp(0)},
			want:   date(2026, time.August, 31),
		},
		{
			name:   "combined offset then weekday",
			today:  date(2026, time.August, 30),
			fields: models.MilestoneFields{Months: 1, Days: 1, Weekday: intp(4)}, // Friday
			want:   date(2026, time.October, 2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDate(tt.today, tt.fields)
			assert.Equal(t, tt.want, got)
		})
	}
}
