package engine

import (
	"fmt"
	"sort"
	"time"

	"PMTCTCare/models"
)

// AlertKind names the rule that raised an alert. One alert per
// (subject, rule) at most.
type AlertKind string

const (
	AlertMissedVisit  AlertKind = "missed-visit"
	AlertHighVL       AlertKind = "high-vl"
	AlertHVLOverdue   AlertKind = "hvl-overdue"
	AlertCD4Overdue   AlertKind = "cd4-overdue"
	AlertLowCD4       AlertKind = "low-cd4"
	AlertScreeningDue AlertKind = "screening-due"
	AlertDBSDue       AlertKind = "dbs-due"
	AlertDBSOverdue   AlertKind = "dbs-overdue"
	AlertDBSPositive  AlertKind = "dbs-positive"
)

// Alert is one actionable finding from a scan over the patient and child
// collections.
type Alert struct {
	Priority  Priority  `json:"priority"`
	Kind      AlertKind `json:"kind"`
	PatientID string    `json:"patient_id"`
	ChildID   string    `json:"child_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	// Pointer so a due-today alert (zero days) still serializes, while
	// kinds without a day count omit the field.
	Days *int `json:"days,omitempty"`
}

const missedVisitThresholdDays = 14

func daysPtr(d int) *int { return &d }

// GenerateAlerts scans all patients and children as of the given date and
// returns the prioritized alert list. The scan is pure: it reads derived
// fields only and never mutates a record. Children whose mother id does not
// resolve are skipped; each such case is returned as a diagnostic.
//
// Ordering: stable sort by priority (critical, warning, success); within a
// priority, patients in input order, then children in input order.
func GenerateAlerts(patients []models.Patient, children []models.Child, asOf time.Time) ([]Alert, []error) {
	alerts := []Alert{}
	var diags []error

	mothers := make(map[string]struct{}, len(patients))
	for _, p := range patients {
		mothers[p.ID] = struct{}{}
	}

	for i := range patients {
		p := &patients[i]
		if !p.Active {
			continue
		}
		alerts = append(alerts, patientAlerts(p, asOf)...)
	}

	for i := range children {
		c := &children[i]
		if !c.Active {
			continue
		}
		if _, ok := mothers[c.MotherID]; !ok {
			diags = append(diags, &InconsistentStateError{ChildID: c.ID, MotherID: c.MotherID})
			continue
		}
		alerts = append(alerts, childAlerts(c, asOf)...)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return priorityRank(alerts[i].Priority) < priorityRank(alerts[j].Priority)
	})

	return alerts, diags
}

func patientAlerts(p *models.Patient, asOf time.Time) []Alert {
	var alerts []Alert

	// Missed visit: more than two weeks since the last one.
	if p.LastVisitDate != nil {
		if last, err := ParseDate(*p.LastVisitDate); err == nil {
			if days := AgeDays(last, asOf); days > missedVisitThresholdDays {
				alerts = append(alerts, Alert{
					Priority:  PriorityCritical,
					Kind:      AlertMissedVisit,
					PatientID: p.ID,
					Title:     p.Name + " - Missed Visit",
					Message:   fmt.Sprintf("Last visit was %d days ago. Please call!", days),
					Days:      daysPtr(days),
				})
			}
		}
	}

	// Treatment failure risk without counselling underway.
	if p.LatestVL != nil && *p.LatestVL > 1000 && !p.EAC.Started {
		alerts = append(alerts, Alert{
			Priority:  PriorityCritical,
			Kind:      AlertHighVL,
			PatientID: p.ID,
			Title:     p.Name + " - High Viral Load",
			Message:   fmt.Sprintf("VL: %d copies/mL. Start EAC sessions!", *p.LatestVL),
		})
	}

	if p.NextHVLDate != nil {
		if due, err := ParseDate(*p.NextHVLDate); err == nil && IsOverdue(due, asOf) {
			days := DaysOverdue(due, asOf)
			alerts = append(alerts, Alert{
				Priority:  PriorityWarning,
				Kind:      AlertHVLOverdue,
				PatientID: p.ID,
				Title:     p.Name + " - HVL Overdue",
				Message:   fmt.Sprintf("HVL is %d days overdue!", days),
				Days:      daysPtr(days),
			})
		}
	}

	if p.NextCD4Date != nil {
		if due, err := ParseDate(*p.NextCD4Date); err == nil && IsOverdue(due, asOf) {
			days := DaysOverdue(due, asOf)
			alerts = append(alerts, Alert{
				Priority:  PriorityWarning,
				Kind:      AlertCD4Overdue,
				PatientID: p.ID,
				Title:     p.Name + " - CD4 Overdue",
				Message:   fmt.Sprintf("CD4 test is %d days overdue", days),
				Days:      daysPtr(days),
			})
		}
	}

	// Critical immune suppression without prophylaxis or CrAg screening.
	if p.LatestCD4 != nil && *p.LatestCD4 < 200 && (!p.OnCoTrimoxazole || !p.CrAgTested()) {
		msg := fmt.Sprintf("CD4: %d.", *p.LatestCD4)
		if !p.CrAgTested() {
			msg += " Do CrAg test!"
		}
		if !p.OnCoTrimoxazole {
			msg += " Start co-trimoxazole!"
		}
		alerts = append(alerts, Alert{
			Priority:  PriorityCritical,
			Kind:      AlertLowCD4,
			PatientID: p.ID,
			Title:     p.Name + " - Critical CD4",
			Message:   msg,
		})
	}

	if p.CervicalCancerScreeningDate != nil {
		if due, err := ParseDate(*p.CervicalCancerScreeningDate); err == nil {
			if days := DaysUntil(due, asOf); days >= 0 && days <= 30 {
				alerts = append(alerts, Alert{
					Priority:  PriorityWarning,
					Kind:      AlertScreeningDue,
					PatientID: p.ID,
					Title:     p.Name + " - Cervical Cancer Screening Due",
					Message:   fmt.Sprintf("Screening due in %d days (%s)", days, *p.CervicalCancerScreeningDate),
					Days:      daysPtr(days),
				})
			}
		}
	}

	return alerts
}

func childAlerts(c *models.Child, asOf time.Time) []Alert {
	var alerts []Alert

	if c.NextDBSDate != nil {
		if due, err := ParseDate(*c.NextDBSDate); err == nil {
			days := DaysUntil(due, asOf)
			switch {
			case days < 0:
				alerts = append(alerts, Alert{
					Priority:  PriorityCritical,
					Kind:      AlertDBSOverdue,
					PatientID: c.MotherID,
					ChildID:   c.ID,
					Title:     c.Name + " - DBS Overdue",
					Message:   fmt.Sprintf("DBS test is %d days overdue", -days),
					Days:      daysPtr(-days),
				})
			case days <= 7:
				alerts = append(alerts, Alert{
					Priority:  PriorityWarning,
					Kind:      AlertDBSDue,
					PatientID: c.MotherID,
					ChildID:   c.ID,
					Title:     c.Name + " - DBS Due",
					Message:   fmt.Sprintf("DBS test due in %d days", days),
					Days:      daysPtr(days),
				})
			}
		}
	}

	if c.DBSPositive() && !c.OnART {
		alerts = append(alerts, Alert{
			Priority:  PriorityCritical,
			Kind:      AlertDBSPositive,
			PatientID: c.MotherID,
			ChildID:   c.ID,
			Title:     c.Name + " - DBS Positive",
			Message:   "Start ART immediately!",
		})
	}

	return alerts
}
