package engine

import (
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the calendar-date format used across patient records.
const DateLayout = "2006-01-02"

// ParseDate parses a record date string. Accepts full timestamps for
// tolerance but only the calendar date is meaningful.
func ParseDate(s string) (time.Time, error) {
	layouts := []string{
		DateLayout,
		"2006-01-02T15:04:05",
		time.RFC3339,
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unable to parse date: %s", s)
}

// FormatDate renders t as a record date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDatePtr renders t as a nullable record date string.
func FormatDatePtr(t time.Time) *string {
	s := t.Format(DateLayout)
	return &s
}

func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AgeYears returns completed years between birth and asOf: the year
// difference, decremented when asOf's month/day precedes the birthday.
func AgeYears(birth, asOf time.Time) int {
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	return years
}

// AgeMonths returns the month-component difference between birth and asOf.
// The day of month is deliberately ignored; infant dosing thresholds work at
// month granularity.
func AgeMonths(birth, asOf time.Time) int {
	return (asOf.Year()-birth.Year())*12 + int(asOf.Month()) - int(birth.Month())
}

// AgeDays returns the number of whole calendar days elapsed from birth to
// asOf. Negative when asOf precedes birth.
func AgeDays(birth, asOf time.Time) int {
	return int(toDate(asOf).Sub(toDate(birth)).Hours() / 24)
}

// Interval is a calendar offset for scheduling.
type Interval struct {
	Days   int
	Months int
	Years  int
}

// AddInterval adds a calendar interval to a date. Month arithmetic clamps to
// the last valid day of the target month (Jan 31 + 1 month is the end of
// February), so a monthly schedule never drifts into the following month.
func AddInterval(t time.Time, iv Interval) time.Time {
	t = toDate(t)
	if iv.Months != 0 || iv.Years != 0 {
		y, m, d := t.Date()
		months := int(m) - 1 + iv.Months + 12*iv.Years
		targetYear := y + months/12
		targetMonth := time.Month(months%12 + 1)
		if months < 0 && months%12 != 0 {
			targetYear--
			targetMonth += 12
		}
		if last := lastDayOfMonth(targetYear, targetMonth); d > last {
			d = last
		}
		t = time.Date(targetYear, targetMonth, d, 0, 0, 0, 0, time.UTC)
	}
	return t.AddDate(0, 0, iv.Days)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysUntil returns the signed number of days from asOf until due; negative
// when the due date has passed.
func DaysUntil(due, asOf time.Time) int {
	return int(toDate(due).Sub(toDate(asOf)).Hours() / 24)
}

// DaysOverdue returns the signed number of days due has been missed by;
// negative when due is still in the future.
func DaysOverdue(due, asOf time.Time) int {
	return -DaysUntil(due, asOf)
}

// IsOverdue reports whether due has passed as of the given date.
func IsOverdue(due, asOf time.Time) bool {
	return DaysOverdue(due, asOf) > 0
}
