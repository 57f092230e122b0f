package engine

import (
	"time"

	"PMTCTCare/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// InitialLabs carries the optional baseline results taken at registration.
type InitialLabs struct {
	CD4        *int     `json:"cd4,omitempty"`
	ALT        *float64 `json:"alt,omitempty"`
	Creatinine *float64 `json:"creatinine,omitempty"`
}

// InitializePatient derives the full follow-up schedule for a newly
// registered patient: first HVL three months after ART start, CD4 cadence
// from the baseline result, the IPT window, and the first monthly visit.
// Baseline results flow through the normal recording path so histories,
// flags and recommendations stay consistent with later visits.
func InitializePatient(p *models.Patient, labs InitialLabs, asOf time.Time) ([]Recommendation, error) {
	// Baseline values are checked here as well so nothing is recorded when
	// any part of the registration is invalid.
	err := validation.Errors{
		"name":           validation.Validate(p.Name, validation.Required),
		"date_of_birth":  validation.Validate(p.DateOfBirth, validation.Required, validation.Date(DateLayout)),
		"unique_ctc_id":  validation.Validate(p.UniqueCTCID, validation.Required),
		"art_start_date": validation.Validate(p.ARTStartDate, validation.Required, validation.Date(DateLayout)),
		"cd4":            validation.Validate(labs.CD4, validation.Min(0)),
		"alt":            validation.Validate(labs.ALT, validation.Min(float64(0))),
		"creatinine":     validation.Validate(labs.Creatinine, validation.Min(float64(0))),
	}.Filter()
	if err != nil {
		return nil, newValidationError("patient", err.Error())
	}
	if p.Pregnant && p.ExpectedDeliveryDate == nil {
		return nil, newValidationError("expected_delivery_date", "required for a pregnant patient")
	}

	artStart, err := ParseDate(p.ARTStartDate)
	if err != nil {
		return nil, newValidationError("art_start_date", err.Error())
	}

	p.Active = true
	p.RegistrationDate = FormatDate(asOf)
	p.LastVisitDate = FormatDatePtr(asOf)
	p.NextVisitDate = FormatDatePtr(AddInterval(asOf, Interval{Months: 1}))
	p.NextHVLDate = FormatDatePtr(AddInterval(artStart, Interval{Months: 3}))

	var recs []Recommendation

	if labs.CD4 != nil {
		cd4Recs, err := RecordCD4(p, *labs.CD4, asOf)
		if err != nil {
			return nil, err
		}
		p.CD4History[len(p.CD4History)-1].Note = "Initial test at registration"
		recs = append(recs, cd4Recs...)
	} else {
		// No baseline count: default to the yearly cadence.
		p.NextCD4Date = FormatDatePtr(AddInterval(asOf, Interval{Years: 1}))
	}

	if labs.ALT != nil {
		if _, err := RecordALT(p, *labs.ALT, asOf); err != nil {
			return nil, err
		}
		p.ALTHistory[len(p.ALTHistory)-1].Note = "Initial test at registration"
	}
	if labs.Creatinine != nil {
		if _, err := RecordCreatinine(p, *labs.Creatinine, asOf); err != nil {
			return nil, err
		}
		p.CreatinineHistory[len(p.CreatinineHistory)-1].Note = "Initial test at registration"
	}

	if err := ComputeIPT(p, asOf); err != nil {
		return nil, err
	}
	if p.OnIPT {
		recs = append(recs, Recommendation{
			Priority: PrioritySuccess,
			Title:    "IPT Started",
			Messages: []string{
				"IPT started (2 weeks after ART)",
				"Isoniazid 3 tablets OD for 3 months",
			},
		})
	}

	return recs, nil
}

// InitializeChild validates a newly registered child and computes the first
// DBS due date from age and risk level.
func InitializeChild(c *models.Child, asOf time.Time) error {
	err := validation.Errors{
		"name":          validation.Validate(c.Name, validation.Required),
		"mother_id":     validation.Validate(c.MotherID, validation.Required),
		"date_of_birth": validation.Validate(c.DateOfBirth, validation.Required, validation.Date(DateLayout)),
		"risk_level":    validation.Validate(string(c.RiskLevel), validation.Required, validation.In(string(models.RiskHigh), string(models.RiskLow))),
	}.Filter()
	if err != nil {
		return newValidationError("child", err.Error())
	}

	c.Active = true
	return ScheduleChild(c, asOf)
}
