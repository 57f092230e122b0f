package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "calendar_date", input: "2024-03-15", want: date(2024, time.March, 15)},
		{name: "timestamp", input: "2024-03-15T10:30:00", want: date(2024, time.March, 15).Add(10*time.Hour + 30*time.Minute)},
		{name: "garbage", input: "15/03/2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgeYears(t *testing.T) {
	birth := date(1990, time.June, 15)

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{name: "day_before_birthday", asOf: date(2024, time.June, 14), want: 33},
		{name: "on_birthday", asOf: date(2024, time.June, 15), want: 34},
		{name: "day_after_birthday", asOf: date(2024, time.June, 16), want: 34},
		{name: "earlier_month", asOf: date(2024, time.May, 20), want: 33},
		{name: "later_month", asOf: date(2024, time.July, 1), want: 34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeYears(birth, tt.asOf))
		})
	}
}

func TestAgeMonths(t *testing.T) {
	birth := date(2024, time.January, 31)

	// Day of month is ignored: exactly the component arithmetic.
	assert.Equal(t, 1, AgeMonths(birth, date(2024, time.February, 1)))
	assert.Equal(t, 0, AgeMonths(birth, date(2024, time.January, 1)))
	assert.Equal(t, 13, AgeMonths(birth, date(2025, time.February, 15)))
}

func TestAgeDays(t *testing.T) {
	birth := date(2024, time.February, 27)

	assert.Equal(t, 0, AgeDays(birth, date(2024, time.February, 27)))
	assert.Equal(t, 2, AgeDays(birth, date(2024, time.February, 29))) // leap year
	assert.Equal(t, 3, AgeDays(birth, date(2024, time.March, 1)))
	assert.Equal(t, -1, AgeDays(birth, date(2024, time.February, 26)))
}

func TestAddInterval(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		iv   Interval
		want time.Time
	}{
		{name: "plain_days", from: date(2024, time.March, 1), iv: Interval{Days: 14}, want: date(2024, time.March, 15)},
		{name: "plain_months", from: date(2024, time.March, 15), iv: Interval{Months: 3}, want: date(2024, time.June, 15)},
		{name: "plain_years", from: date(2024, time.March, 15), iv: Interval{Years: 1}, want: date(2025, time.March, 15)},
		{name: "month_end_clamps", from: date(2024, time.January, 31), iv: Interval{Months: 1}, want: date(2024, time.February, 29)},
		{name: "month_end_clamps_non_leap", from: date(2023, time.January, 31), iv: Interval{Months: 1}, want: date(2023, time.February, 28)},
		{name: "months_across_year", from: date(2024, time.November, 30), iv: Interval{Months: 3}, want: date(2025, time.February, 28)},
		{name: "year_from_leap_day", from: date(2024, time.February, 29), iv: Interval{Years: 1}, want: date(2025, time.February, 28)},
		{name: "months_and_days", from: date(2024, time.January, 31), iv: Interval{Months: 1, Days: 1}, want: date(2024, time.March, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddInterval(tt.from, tt.iv))
		})
	}
}

func TestDaysUntilAndOverdue(t *testing.T) {
	due := date(2024, time.May, 10)

	assert.Equal(t, 5, DaysUntil(due, date(2024, time.May, 5)))
	assert.Equal(t, 0, DaysUntil(due, date(2024, time.May, 10)))
	assert.Equal(t, -3, DaysUntil(due, date(2024, time.May, 13)))

	assert.Equal(t, 3, DaysOverdue(due, date(2024, time.May, 13)))
	assert.Equal(t, -5, DaysOverdue(due, date(2024, time.May, 5)))

	assert.False(t, IsOverdue(due, date(2024, time.May, 10)))
	assert.True(t, IsOverdue(due, date(2024, time.May, 11)))
}

func TestDaysOverdueMonotonicity(t *testing.T) {
	due := date(2024, time.May, 10)
	asOf := date(2024, time.May, 20)
	base := DaysOverdue(due, asOf)

	for n := 1; n <= 30; n++ {
		assert.Equal(t, base+n, DaysOverdue(due, asOf.AddDate(0, 0, n)))
	}
}
