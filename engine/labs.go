package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"PMTCTCare/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TestKind identifies a lab test the processor knows how to record.
type TestKind string

const (
	TestCD4        TestKind = "CD4"
	TestHVL        TestKind = "HVL"
	TestCrAg       TestKind = "CrAg"
	TestALT        TestKind = "ALT"
	TestCreatinine TestKind = "Creatinine"
)

// Priority ranks a recommendation or alert for the caller to render.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityWarning  Priority = "warning"
	PrioritySuccess  Priority = "success"
)

func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityWarning:
		return 1
	default:
		return 2
	}
}

// Recommendation is a structured clinical follow-up produced when a result
// is recorded. The presentation layer renders it without further logic.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Title    string   `json:"title"`
	Messages []string `json:"messages"`
}

// CrAg result values.
const (
	CrAgPositive      = "positive"
	CrAgNegative      = "negative"
	CrAgIndeterminate = "indeterminate"
)

// RecordResult records a raw string-valued result of the given kind against
// the patient. It parses per test kind, so it is the entry point for the
// HTTP surface; typed callers use the per-test functions directly.
func RecordResult(p *models.Patient, kind TestKind, value string, date time.Time) ([]Recommendation, error) {
	switch kind {
	case TestCD4:
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, newValidationError("cd4", "must be a whole number")
		}
		return RecordCD4(p, v, date)
	case TestHVL:
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, newValidationError("hvl", "must be a whole number")
		}
		return RecordHVL(p, v, date)
	case TestCrAg:
		return RecordCrAg(p, strings.ToLower(strings.TrimSpace(value)), date)
	case TestALT:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, newValidationError("alt", "must be a number")
		}
		return RecordALT(p, v, date)
	case TestCreatinine:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, newValidationError("creatinine", "must be a number")
		}
		return RecordCreatinine(p, v, date)
	default:
		return nil, newValidationError("test", fmt.Sprintf("unknown test kind %q", kind))
	}
}

// RecordCD4 appends a CD4 count, syncs the latest value, derives the next
// due date and the co-trimoxazole flag, and returns the follow-up actions.
//
// Policy: <200 critical (CrAg today, co-trimoxazole, next in 6 months),
// 200-349 warning (co-trimoxazole, next in 6 months), >=350 routine
// (stop co-trimoxazole, next in 12 months).
func RecordCD4(p *models.Patient, value int, date time.Time) ([]Recommendation, error) {
	if err := validation.Validate(value, validation.Min(0)); err != nil {
		return nil, newValidationError("cd4", "must be a non-negative count")
	}

	p.CD4History = append(p.CD4History, models.LabEntry{
		Date:   FormatDate(date),
		Result: float64(value),
	})
	p.LatestCD4 = &value

	var next time.Time
	if value < 350 {
		next = AddInterval(date, Interval{Months: 6})
	} else {
		next = AddInterval(date, Interval{Years: 1})
	}
	p.NextCD4Date = FormatDatePtr(next)

	var rec Recommendation
	switch {
	case value < 200:
		p.OnCoTrimoxazole = true
		rec = Recommendation{
			Priority: PriorityCritical,
			Title:    "Critical CD4",
			Messages: []string{
				"CD4 <200 cells/uL - Very low",
				"Perform CrAg test TODAY",
				"Start co-trimoxazole 960mg OD",
				"Monitor closely for opportunistic infections",
				fmt.Sprintf("Next CD4: %s (6 months)", *p.NextCD4Date),
			},
		}
	case value < 350:
		p.OnCoTrimoxazole = true
		rec = Recommendation{
			Priority: PriorityWarning,
			Title:    "Low CD4",
			Messages: []string{
				"CD4 200-350 cells/uL - Below normal",
				"Start co-trimoxazole 960mg OD",
				"Check adherence to ARV",
				fmt.Sprintf("Next CD4: %s (6 months)", *p.NextCD4Date),
			},
		}
	default:
		p.OnCoTrimoxazole = false
		rec = Recommendation{
			Priority: PrioritySuccess,
			Title:    "Good CD4",
			Messages: []string{
				"CD4 >=350 cells/uL - Normal range",
				"Co-trimoxazole not needed (can stop if currently taking)",
				"Continue ARV as prescribed",
				fmt.Sprintf("Next CD4: %s (12 months)", *p.NextCD4Date),
			},
		}
	}

	return []Recommendation{rec}, nil
}

// RecordHVL appends a viral load result, syncs the latest value, derives the
// next due date, and starts EAC when the load exceeds 1000 copies/mL.
//
// Policy: <50 suppressed (next in 6 months), 50-1000 detectable (next in
// 3 months), >1000 treatment failure risk (next in 3 months, start EAC).
func RecordHVL(p *models.Patient, value int, date time.Time) ([]Recommendation, error) {
	if err := validation.Validate(value, validation.Min(0)); err != nil {
		return nil, newValidationError("hvl", "must be a non-negative count")
	}

	p.HVLHistory = append(p.HVLHistory, models.LabEntry{
		Date:   FormatDate(date),
		Result: float64(value),
	})
	p.LatestVL = &value

	var next time.Time
	if value > 1000 {
		next = AddInterval(date, Interval{Months: 3})
	} else if value >= 50 {
		next = AddInterval(date, Interval{Months: 3})
	} else {
		next = AddInterval(date, Interval{Months: 6})
	}
	p.NextHVLDate = FormatDatePtr(next)

	var rec Recommendation
	switch {
	case value < 50:
		rec = Recommendation{
			Priority: PrioritySuccess,
			Title:    "Virus Undetectable",
			Messages: []string{
				"VL <50 copies/mL - Virus suppressed",
				"Continue ARV as prescribed",
				"Good adherence - keep it up",
				fmt.Sprintf("Next HVL: %s (6 months)", *p.NextHVLDate),
			},
		}
	case value <= 1000:
		rec = Recommendation{
			Priority: PriorityWarning,
			Title:    "Virus Detectable",
			Messages: []string{
				"VL 50-1000 copies/mL - Low but detectable",
				"Check adherence to ARV - are doses being missed?",
				"Counsel patient on importance of adherence",
				fmt.Sprintf("Repeat HVL in 3 months: %s", *p.NextHVLDate),
			},
		}
	default:
		StartEAC(p, date)
		rec = Recommendation{
			Priority: PriorityCritical,
			Title:    "High Viral Load",
			Messages: []string{
				fmt.Sprintf("VL >1000 copies/mL (%d) - Treatment failure risk", value),
				"Start EAC sessions immediately: 3 days in a row, repeat every 2 weeks, continue for 3 months",
				"Investigate reasons for poor adherence",
				fmt.Sprintf("Repeat HVL in 3 months: %s", *p.NextHVLDate),
			},
		}
	}

	return []Recommendation{rec}, nil
}

// RecordCrAg appends a cryptococcal antigen result. A positive result yields
// the lumbar puncture and Fluconazole taper instructions; no dosing state is
// tracked beyond the history entry.
func RecordCrAg(p *models.Patient, result string, date time.Time) ([]Recommendation, error) {
	err := validation.Validate(result,
		validation.Required,
		validation.In(CrAgPositive, CrAgNegative, CrAgIndeterminate),
	)
	if err != nil {
		return nil, newValidationError("crag", "must be positive, negative or indeterminate")
	}

	p.CrAgHistory = append(p.CrAgHistory, models.CrAgEntry{
		Date:   FormatDate(date),
		Result: result,
	})

	var rec Recommendation
	switch result {
	case CrAgPositive:
		rec = Recommendation{
			Priority: PriorityCritical,
			Title:    "CrAg Positive",
			Messages: []string{
				"Cryptococcal antigen detected",
				"Do lumbar puncture to check CSF",
				"If CSF normal: start Fluconazole 800mg for 2 weeks",
				"Then Fluconazole 400mg for 8 weeks",
				"Then Fluconazole 200mg for 1 year",
			},
		}
	case CrAgIndeterminate:
		rec = Recommendation{
			Priority: PriorityWarning,
			Title:    "CrAg Indeterminate",
			Messages: []string{
				"Result could not be read reliably",
				"Repeat CrAg test with a fresh sample",
			},
		}
	default:
		rec = Recommendation{
			Priority: PrioritySuccess,
			Title:    "CrAg Negative",
			Messages: []string{
				"No cryptococcal infection detected",
				"Continue monitoring CD4",
			},
		}
	}

	return []Recommendation{rec}, nil
}

// RecordALT appends an ALT result. Values are kept for reference trend only;
// no scheduling is derived.
func RecordALT(p *models.Patient, value float64, date time.Time) ([]Recommendation, error) {
	if err := validation.Validate(value, validation.Min(float64(0))); err != nil {
		return nil, newValidationError("alt", "must be non-negative")
	}

	p.ALTHistory = append(p.ALTHistory, models.LabEntry{
		Date:   FormatDate(date),
		Result: value,
	})

	return []Recommendation{{
		Priority: PrioritySuccess,
		Title:    "ALT Recorded",
		Messages: []string{fmt.Sprintf("ALT %.1f U/L saved for trend review", value)},
	}}, nil
}

// RecordCreatinine appends a creatinine result. Reference trend only.
func RecordCreatinine(p *models.Patient, value float64, date time.Time) ([]Recommendation, error) {
	if err := validation.Validate(value, validation.Min(float64(0))); err != nil {
		return nil, newValidationError("creatinine", "must be non-negative")
	}

	p.CreatinineHistory = append(p.CreatinineHistory, models.LabEntry{
		Date:   FormatDate(date),
		Result: value,
	})

	return []Recommendation{{
		Priority: PrioritySuccess,
		Title:    "Creatinine Recorded",
		Messages: []string{fmt.Sprintf("Creatinine %.1f umol/L saved for trend review", value)},
	}}, nil
}
