package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestNextPaymentDate(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		now   time.Time
		want  time.Time
	}{
		{
			name:  "month end overflow clamps to leap February then back to 31st",
			start: date(2024, time.January, 31),
			now:   date(2024, time.March, 15),
			want:  date(2024, time.March, 31),
		},
		{
			name:  "february of a leap year",
			start: date(2024, time.January, 31),
			now:   date(2024, time.February, 1),
			want:  date(2024, time.February, 29),
		},
		{
			name:  "start in the future is returned as is",
			start: date(2025, time.June, 1),
			now:   date(2025, time.May, 20),
			want:  date(2025, time.June, 1),
		},
		{
			name:  "due date equal to now moves to next month",
			start: date(2024, time.May, 10),
			now:   date(2024, time.July, 10),
			want:  date(2024, time.August, 10),
		},
		{
			name:  "crosses year boundary",
			start: date(2023, time.November, 30),
			now:   date(2024, time.February, 10),
			want:  date(2024, time.February, 29),
		},
		{
			name:  "many years back",
			start: date(2015, time.March, 31),
			now:   date(2024, time.April, 30),
			want:  date(2024, time.May, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPaymentDate(tt.start, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextPaymentDate(%s, %s) = %s, want %s", tt.start, tt.now, got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("result %s is not after now %s", got, tt.now)
			}
		})
	}
}

func TestNextPaymentDate_IsMinimal(t *testing.T) {
	start := date(2024, time.January, 31)
	for day := 0; day < 800; day += 7 {
		now := start.AddDate(0, 0, day)
		got := NextPaymentDate(start, now)
		if !got.After(now) {
			t.Fatalf("now=%s: %s not after now", now, got)
		}
		// The previous candidate must not be after now.
		for n := 1; ; n++ {
			c := AddMonths(start, n)
			if c.Equal(got) {
				if prev := AddMonths(start, n-1); prev.After(now) {
					t.Fatalf("now=%s: %s is not the earliest due date (%s is)", now, got, prev)
				}
				break
			}
			if c.After(got) {
				t.Fatalf("now=%s: %s is not reachable by whole months from %s", now, got, start)
			}
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{date(2024, time.August, 31), 1, date(2024, time.September, 30)},
		{date(2024, time.December, 15), 1, date(2025, time.January, 15)},
		{date(2024, time.March, 31), 0, date(2024, time.March, 31)},
	}
	for _, tt := range tests {
		if got := AddMonths(tt.in, tt.n); !got.Equal(tt.want) {
			t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.in, tt.n, got, tt.want)
		}
	}
}
