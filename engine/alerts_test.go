package engine

import (
	"encoding/json"
	"testing"
	"time"

	"PMTCTCare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func findAlerts(alerts []Alert, kind AlertKind) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func TestGenerateAlertsMissedVisit(t *testing.T) {
	asOf := date(2024, time.June, 1)

	tests := []struct {
		name      string
		lastVisit string
		wantAlert bool
		wantDays  int
	}{
		{name: "twenty_days_ago", lastVisit: "2024-05-12", wantAlert: true, wantDays: 20},
		{name: "boundary_fourteen_days", lastVisit: "2024-05-18", wantAlert: false},
		{name: "boundary_fifteen_days", lastVisit: "2024-05-17", wantAlert: true, wantDays: 15},
		{name: "recent", lastVisit: "2024-05-30", wantAlert: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatient()
			p.LastVisitDate = strPtr(tt.lastVisit)

			alerts, diags := GenerateAlerts([]models.Patient{*p}, nil, asOf)
			assert.Empty(t, diags)

			missed := findAlerts(alerts, AlertMissedVisit)
			if !tt.wantAlert {
				assert.Empty(t, missed)
				return
			}
			require.Len(t, missed, 1)
			assert.Equal(t, PriorityCritical, missed[0].Priority)
			assert.Equal(t, tt.wantDays, *missed[0].Days)
			assert.Equal(t, p.ID, missed[0].PatientID)
		})
	}
}

func TestGenerateAlertsHighVL(t *testing.T) {
	asOf := date(2024, time.March, 1)

	t.Run("recording_starts_eac_so_no_alert", func(t *testing.T) {
		p := newTestPatient()
		_, err := RecordHVL(p, 1500, asOf)
		require.NoError(t, err)
		// Recording already started EAC, so no alert fires.
		alerts, _ := GenerateAlerts([]models.Patient{*p}, nil, asOf)
		assert.Empty(t, findAlerts(alerts, AlertHighVL))
	})

	t.Run("high_vl_eac_never_started", func(t *testing.T) {
		p := newTestPatient()
		p.LatestVL = intPtr(1500)

		alerts, _ := GenerateAlerts([]models.Patient{*p}, nil, asOf)
		high := findAlerts(alerts, AlertHighVL)
		require.Len(t, high, 1)
		assert.Equal(t, PriorityCritical, high[0].Priority)
	})

	t.Run("boundary_1000_is_not_high", func(t *testing.T) {
		p := newTestPatient()
		p.LatestVL = intPtr(1000)

		alerts, _ := GenerateAlerts([]models.Patient{*p}, nil, asOf)
		assert.Empty(t, findAlerts(alerts, AlertHighVL))
	})
}

func TestGenerateAlertsOverdueTests(t *testing.T) {
	asOf := date(2024, time.June, 10)
	p := newTestPatient()
	p.NextHVLDate = strPtr("2024-06-01")
	p.NextCD4Date = strPtr("2024-06-10")

	alerts, _ := GenerateAlerts([]models.Patient{*p}, nil, asOf)

	hvl := findAlerts(alerts, AlertHVLOverdue)
	require.Len(t, hvl, 1)
	assert.Equal(t, PriorityWarning, hvl[0].Priority)
	assert.Equal(t, 9, *hvl[0].Days)

	// Due today is not overdue.
	assert.Empty(t, findAlerts(alerts, AlertCD4Overdue))
}

func TestGenerateAlertsLowCD4(t *testing.T) {
	asOf := date(2024, time.March, 1)

	tests := []struct {
		name      string
		cd4       int
		onCoTri   bool
		cragTaken bool
		wantAlert bool
	}{
		{name: "untreated_untested", cd4: 150, wantAlert: true},
		{name: "on_cotri_but_untested", cd4: 150, onCoTri: true, wantAlert: true},
		{name: "tested_but_not_on_cotri", cd4: 150, cragTaken: true, wantAlert: true},
		{name: "fully_covered", cd4: 150, onCoTri: true, cragTaken: true, wantAlert: false},
		{name: "boundary_200", cd4: 200, wantAlert: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatient()
			p.LatestCD4 = intPtr(tt.cd4)
			p.OnCoTrimoxazole = tt.onCoTri
			if tt.cragTaken {
				p.CrAgHistory = []models.CrAgEntry{{Date: "2024-02-01", Result: "negative"}}
			}

			alerts, _ := GenerateAlerts([]models.Patient{*p}, nil, asOf)
			low := findAlerts(alerts, AlertLowCD4)
			if tt.wantAlert {
				require.Len(t, low, 1)
				assert.Equal(t, PriorityCritical, low[0].Priority)
			} else {
				assert.Empty(t, low)
			}
		})
	}
}

func TestGenerateAlertsChildDBS(t *testing.T) {
	asOf := date(2024, time.June, 1)
	mother := newTestPatient()

	tests := []struct {
		name     string
		nextDBS  string
		wantKind AlertKind
		wantDays int
		wantNone bool
	}{
		{name: "due_today", nextDBS: "2024-06-01", wantKind: AlertDBSDue, wantDays: 0},
		{name: "due_in_seven_days", nextDBS: "2024-06-08", wantKind: AlertDBSDue, wantDays: 7},
		{name: "due_in_eight_days", nextDBS: "2024-06-09", wantNone: true},
		{name: "overdue", nextDBS: "2024-05-28", wantKind: AlertDBSOverdue, wantDays: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChild(models.RiskHigh, "2024-05-20")
			c.NextDBSDate = strPtr(tt.nextDBS)

			alerts, diags := GenerateAlerts([]models.Patient{*mother}, []models.Child{*c}, asOf)
			assert.Empty(t, diags)

			due := append(findAlerts(alerts, AlertDBSDue), findAlerts(alerts, AlertDBSOverdue)...)
			if tt.wantNone {
				assert.Empty(t, due)
				return
			}
			require.Len(t, due, 1)
			assert.Equal(t, tt.wantKind, due[0].Kind)
			assert.Equal(t, c.ID, due[0].ChildID)
			assert.Equal(t, mother.ID, due[0].PatientID)
			require.NotNil(t, due[0].Days)
			assert.Equal(t, tt.wantDays, *due[0].Days)
		})
	}
}

func TestAlertDayCountSerialization(t *testing.T) {
	// A due-today alert carries a zero day count that must survive encoding.
	due := Alert{Priority: PriorityWarning, Kind: AlertDBSDue, PatientID: "pt-001", Days: daysPtr(0)}
	b, err := json.Marshal(due)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"days":0`)

	// Kinds without a day count omit the field entirely.
	positive := Alert{Priority: PriorityCritical, Kind: AlertDBSPositive, PatientID: "pt-001"}
	b, err = json.Marshal(positive)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"days"`)
}

func TestGenerateAlertsNewbornNotYetDue(t *testing.T) {
	// High-risk child born yesterday: first DBS lands in two days, which is
	// inside the seven-day window, so a due-soon warning fires.
	asOf := date(2024, time.June, 1)
	mother := newTestPatient()
	c := newTestChild(models.RiskHigh, "2024-05-31")
	require.NoError(t, InitializeChild(c, asOf))
	require.Equal(t, "2024-06-03", *c.NextDBSDate)

	alerts, _ := GenerateAlerts([]models.Patient{*mother}, []models.Child{*c}, asOf)
	due := findAlerts(alerts, AlertDBSDue)
	require.Len(t, due, 1)
	assert.Equal(t, 2, *due[0].Days)
}

func TestGenerateAlertsDBSPositiveWithoutART(t *testing.T) {
	asOf := date(2024, time.June, 1)
	mother := newTestPatient()

	c := newTestChild(models.RiskHigh, "2024-03-01")
	c.DBSHistory = []models.DBSEntry{{Date: "2024-04-12", Result: "positive"}}

	alerts, _ := GenerateAlerts([]models.Patient{*mother}, []models.Child{*c}, asOf)
	require.Len(t, findAlerts(alerts, AlertDBSPositive), 1)

	c.OnART = true
	alerts, _ = GenerateAlerts([]models.Patient{*mother}, []models.Child{*c}, asOf)
	assert.Empty(t, findAlerts(alerts, AlertDBSPositive))
}

func TestGenerateAlertsOrphanedChildSkipped(t *testing.T) {
	asOf := date(2024, time.June, 1)

	c := newTestChild(models.RiskHigh, "2024-05-20")
	c.MotherID = "pt-missing"
	c.NextDBSDate = strPtr("2024-06-02")

	alerts, diags := GenerateAlerts(nil, []models.Child{*c}, asOf)
	assert.Empty(t, alerts)

	require.Len(t, diags, 1)
	var inconsistent *InconsistentStateError
	require.ErrorAs(t, diags[0], &inconsistent)
	assert.Equal(t, c.ID, inconsistent.ChildID)
	assert.Equal(t, "pt-missing", inconsistent.MotherID)
}

func TestGenerateAlertsSortAndIdempotence(t *testing.T) {
	asOf := date(2024, time.June, 1)

	p1 := newTestPatient()
	p1.ID = "pt-001"
	p1.NextHVLDate = strPtr("2024-05-01") // warning

	p2 := newTestPatient()
	p2.ID = "pt-002"
	p2.UniqueCTCID = "02-11-0001-654321"
	p2.LastVisitDate = strPtr("2024-05-01") // critical
	p2.NextCD4Date = strPtr("2024-05-20")   // warning

	c := newTestChild(models.RiskHigh, "2024-05-25")
	c.NextDBSDate = strPtr("2024-06-03") // warning

	patients := []models.Patient{*p1, *p2}
	children := []models.Child{*c}

	alerts, _ := GenerateAlerts(patients, children, asOf)
	require.Len(t, alerts, 4)

	// Critical first, then warnings in discovery order: patients before
	// children, patients in input order.
	assert.Equal(t, AlertMissedVisit, alerts[0].Kind)
	assert.Equal(t, "pt-002", alerts[0].PatientID)
	assert.Equal(t, AlertHVLOverdue, alerts[1].Kind)
	assert.Equal(t, "pt-001", alerts[1].PatientID)
	assert.Equal(t, AlertCD4Overdue, alerts[2].Kind)
	assert.Equal(t, "pt-002", alerts[2].PatientID)
	assert.Equal(t, AlertDBSDue, alerts[3].Kind)

	// Same inputs, same as-of date: identical ordered output.
	again, _ := GenerateAlerts(patients, children, asOf)
	assert.Equal(t, alerts, again)
}

func TestGenerateAlertsInactiveSubjectsSkipped(t *testing.T) {
	asOf := date(2024, time.June, 1)

	p := newTestPatient()
	p.LastVisitDate = strPtr("2024-04-01")
	p.Active = false

	alerts, _ := GenerateAlerts([]models.Patient{*p}, nil, asOf)
	assert.Empty(t, alerts)
}

func TestHighVLScenario(t *testing.T) {
	// Recording VL 1500 starts EAC with zero sessions; the scan run by a
	// caller that has not yet persisted the EAC change still reports the
	// single critical high-VL alert.
	recordDate := date(2024, time.March, 1)

	p := newTestPatient()
	before := *p
	before.LatestVL = intPtr(1500)

	alerts, _ := GenerateAlerts([]models.Patient{before}, nil, recordDate)
	high := findAlerts(alerts, AlertHighVL)
	require.Len(t, high, 1)
	assert.Equal(t, PriorityCritical, high[0].Priority)

	_, err := RecordHVL(p, 1500, recordDate)
	require.NoError(t, err)
	assert.True(t, p.EAC.Started)
	assert.Equal(t, 0, p.EAC.Sessions)
	assert.Equal(t, "2024-06-01", *p.EAC.EndDate)
}
