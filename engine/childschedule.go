package engine

import (
	"time"

	"PMTCTCare/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DBS result values.
const (
	DBSPositive      = "positive"
	DBSNegative      = "negative"
	DBSIndeterminate = "indeterminate"
)

// dbsWindows are the early-infant-diagnosis testing points, in days from
// birth: 72 hours (high risk only), 6 weeks, 9 months.
const (
	dbsBirthWindowDays = 3
	dbsSixWeekDays     = 42
	dbsNineMonthDays   = 270

	biolineAfterWeaningDays = 42
)

// NextDBSDate computes the next dried blood spot test date for an exposed
// infant, or nil once the schedule is exhausted (age >= 9 months). The
// 72-hour window applies to high-risk infants only.
func NextDBSDate(birth time.Time, risk models.RiskLevel, asOf time.Time) *time.Time {
	age := AgeDays(birth, asOf)

	var due time.Time
	switch {
	case risk == models.RiskHigh && age < dbsBirthWindowDays:
		due = AddInterval(birth, Interval{Days: dbsBirthWindowDays})
	case age < dbsSixWeekDays:
		due = AddInterval(birth, Interval{Days: dbsSixWeekDays})
	case age < dbsNineMonthDays:
		due = AddInterval(birth, Interval{Days: dbsNineMonthDays})
	default:
		return nil
	}
	return &due
}

// ScheduleChild refreshes the child's DBS/Bioline due dates as of the given
// date. Once the DBS track is exhausted the child moves to the Bioline track,
// which only activates after breastfeeding has stopped.
func ScheduleChild(c *models.Child, asOf time.Time) error {
	birth, err := ParseDate(c.DateOfBirth)
	if err != nil {
		return newValidationError("date_of_birth", err.Error())
	}

	if due := NextDBSDate(birth, c.RiskLevel, asOf); due != nil {
		c.NextDBSDate = FormatDatePtr(*due)
		c.NextBiolineDate = nil
		return nil
	}

	// Until a breastfeeding stop date exists there is no Bioline to schedule.
	// All parsing happens before the record is touched so a bad date leaves
	// it unchanged.
	var bioline *string
	if c.BreastfeedingStopDate != nil {
		stop, err := ParseDate(*c.BreastfeedingStopDate)
		if err != nil {
			return newValidationError("breastfeeding_stop_date", err.Error())
		}
		bioline = FormatDatePtr(AddInterval(stop, Interval{Days: biolineAfterWeaningDays}))
	}
	c.NextDBSDate = nil
	c.NextBiolineDate = bioline
	return nil
}

// RecordDBS appends a DBS result and reschedules the next test. A positive
// result demands immediate ART initiation.
func RecordDBS(c *models.Child, result string, date time.Time) ([]Recommendation, error) {
	err := validation.Validate(result,
		validation.Required,
		validation.In(DBSPositive, DBSNegative, DBSIndeterminate),
	)
	if err != nil {
		return nil, newValidationError("dbs", "must be positive, negative or indeterminate")
	}

	// Reschedule before touching the history; ScheduleChild is the only step
	// that can fail, so a rejected record keeps its history intact.
	if err := ScheduleChild(c, date); err != nil {
		return nil, err
	}
	c.DBSHistory = append(c.DBSHistory, models.DBSEntry{
		Date:   FormatDate(date),
		Result: result,
	})

	var rec Recommendation
	switch result {
	case DBSPositive:
		rec = Recommendation{
			Priority: PriorityCritical,
			Title:    "DBS Positive",
			Messages: []string{
				"HIV DNA detected in infant sample",
				"Start ART immediately",
				"Confirm with a second sample per national guidance",
			},
		}
	case DBSIndeterminate:
		rec = Recommendation{
			Priority: PriorityWarning,
			Title:    "DBS Indeterminate",
			Messages: []string{
				"Result could not be read reliably",
				"Repeat DBS with a fresh sample",
			},
		}
	default:
		rec = Recommendation{
			Priority: PrioritySuccess,
			Title:    "DBS Negative",
			Messages: []string{
				"No HIV DNA detected",
				nextDBSMessage(c),
			},
		}
	}

	return []Recommendation{rec}, nil
}

func nextDBSMessage(c *models.Child) string {
	if c.NextDBSDate != nil {
		return "Next DBS: " + *c.NextDBSDate
	}
	return "DBS schedule complete; Bioline follows after breastfeeding stops"
}

// RecordBioline appends a Bioline antibody result. No further Bioline test is
// scheduled here.
func RecordBioline(c *models.Child, result string, date time.Time) ([]Recommendation, error) {
	err := validation.Validate(result,
		validation.Required,
		validation.In(DBSPositive, DBSNegative, DBSIndeterminate),
	)
	if err != nil {
		return nil, newValidationError("bioline", "must be positive, negative or indeterminate")
	}

	c.BiolineHistory = append(c.BiolineHistory, models.BiolineEntry{
		Date:   FormatDate(date),
		Result: result,
	})
	c.NextBiolineDate = nil

	if result == DBSPositive {
		return []Recommendation{{
			Priority: PriorityCritical,
			Title:    "Bioline Positive",
			Messages: []string{
				"HIV antibodies detected",
				"Confirm with DNA PCR and start ART immediately",
			},
		}}, nil
	}
	return []Recommendation{{
		Priority: PrioritySuccess,
		Title:    "Bioline Negative",
		Messages: []string{"No HIV antibodies detected"},
	}}, nil
}

// StopBreastfeeding records the cessation date and schedules the follow-up
// Bioline test once the DBS track is exhausted.
func StopBreastfeeding(c *models.Child, date time.Time) error {
	if !c.Breastfeeding {
		return newValidationError("breastfeeding", "child is not recorded as breastfeeding")
	}
	// Rescheduling parses the birth date; check it before flipping any flags.
	if _, err := ParseDate(c.DateOfBirth); err != nil {
		return newValidationError("date_of_birth", err.Error())
	}
	c.Breastfeeding = false
	c.BreastfeedingStopDate = FormatDatePtr(date)
	return ScheduleChild(c, date)
}
