package engine

import (
	"time"

	"PMTCTCare/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// StartEAC moves the patient's EAC state to active unless a course is
// already running. Returns true when a new course was started. The course
// runs three months from the triggering result date; sessions start at zero.
func StartEAC(p *models.Patient, date time.Time) bool {
	if p.EAC.Started && !p.EAC.Completed {
		return false
	}

	p.EAC = models.EAC{
		Needed:    true,
		Started:   true,
		StartDate: FormatDatePtr(date),
		EndDate:   FormatDatePtr(AddInterval(date, Interval{Months: 3})),
		Sessions:  0,
	}
	return true
}

// RecordEACSession increments the session count for an active EAC course.
func RecordEACSession(p *models.Patient) error {
	if !p.EAC.Started || p.EAC.Completed {
		return newValidationError("eac", "no active EAC course")
	}
	p.EAC.Sessions++
	return nil
}

// CompleteEAC closes an active EAC course. Reaching the course end date does
// not complete it automatically; completion is a deliberate clinical action.
func CompleteEAC(p *models.Patient, date time.Time) error {
	if !p.EAC.Started || p.EAC.Completed {
		return newValidationError("eac", "no active EAC course")
	}
	p.EAC.Completed = true
	p.EAC.EndDate = FormatDatePtr(date)
	return nil
}

// ComputeIPT derives the isoniazid preventive therapy window from the ART
// start date: 14 days after ART start, for a three-month course. The flag is
// only raised once the computed start date has been reached.
func ComputeIPT(p *models.Patient, asOf time.Time) error {
	if p.ARTStartDate == "" {
		return nil
	}
	artStart, err := ParseDate(p.ARTStartDate)
	if err != nil {
		return newValidationError("art_start_date", err.Error())
	}

	iptStart := AddInterval(artStart, Interval{Days: 14})
	if toDate(asOf).Before(iptStart) {
		return nil
	}

	p.OnIPT = true
	p.IPTStartDate = FormatDatePtr(iptStart)
	p.IPTEndDate = FormatDatePtr(AddInterval(iptStart, Interval{Months: 3}))
	return nil
}

// CompleteVisit validates the visit checklist, appends the visit to the
// history, and schedules the next monthly visit. Nothing is mutated when the
// checklist is incomplete.
func CompleteVisit(p *models.Patient, visit models.Visit) error {
	err := validation.Errors{
		"date":          validation.Validate(visit.Date, validation.Required, validation.Date(DateLayout)),
		"weight":        validation.Validate(visit.Weight, validation.Required, validation.Min(float64(0.1))),
		"tb_screening":  checklistDone(visit.TBScreening),
		"sti_screening": checklistDone(visit.STIScreening),
		"arv_dispensed": checklistDone(visit.ARVDispensed),
	}.Filter()
	if err != nil {
		return newValidationError("visit", err.Error())
	}

	date, err := ParseDate(visit.Date)
	if err != nil {
		return newValidationError("visit", err.Error())
	}

	p.VisitHistory = append(p.VisitHistory, visit)
	p.LastVisitDate = FormatDatePtr(date)
	p.NextVisitDate = FormatDatePtr(AddInterval(date, Interval{Months: 1}))
	return nil
}

// Required fails on a zero value, so an unchecked item is rejected. Rules
// like In are skipped for zero values and would let false through.
func checklistDone(done bool) error {
	return validation.Validate(done, validation.Required.Error("must be completed"))
}

// RecordDelivery marks a pregnancy as delivered and moves the mother into
// the breastfeeding follow-up track.
func RecordDelivery(p *models.Patient, date time.Time) error {
	if p.Delivered {
		return newValidationError("delivery", "delivery already recorded")
	}
	if !p.Pregnant {
		return newValidationError("delivery", "patient is not recorded as pregnant")
	}

	p.Delivered = true
	p.DeliveryDate = FormatDatePtr(date)
	p.Pregnant = false
	p.Breastfeeding = true
	return nil
}
