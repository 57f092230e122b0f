package engine

import (
	"testing"
	"time"

	"PMTCTCare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializePatientDerivesSchedule(t *testing.T) {
	p := &models.Patient{
		Name:         "AMINA JUMA",
		DateOfBirth:  "1995-04-12",
		Sex:          "Female",
		UniqueCTCID:  "02-11-0001-123456",
		ARTStartDate: "2024-01-10",
	}
	asOf := date(2024, time.March, 1)

	recs, err := InitializePatient(p, InitialLabs{CD4: intPtr(150)}, asOf)
	require.NoError(t, err)

	assert.True(t, p.Active)
	assert.Equal(t, "2024-03-01", p.RegistrationDate)
	assert.Equal(t, "2024-03-01", *p.LastVisitDate)
	assert.Equal(t, "2024-04-01", *p.NextVisitDate)
	// First HVL is three months after ART start, not after registration.
	assert.Equal(t, "2024-04-10", *p.NextHVLDate)

	// The baseline count goes through the normal CD4 path.
	require.Len(t, p.CD4History, 1)
	assert.Equal(t, "Initial test at registration", p.CD4History[0].Note)
	assert.True(t, p.OnCoTrimoxazole)
	assert.Equal(t, "2024-09-01", *p.NextCD4Date)

	// ART started more than two weeks ago, so IPT is already due.
	assert.True(t, p.OnIPT)
	assert.Equal(t, "2024-01-24", *p.IPTStartDate)
	assert.Equal(t, "2024-04-24", *p.IPTEndDate)

	var iptRecs int
	for _, r := range recs {
		if r.Title == "IPT Started" {
			iptRecs++
			assert.Equal(t, PrioritySuccess, r.Priority)
		}
	}
	assert.Equal(t, 1, iptRecs)
}

func TestInitializePatientWithoutBaselineCD4(t *testing.T) {
	p := &models.Patient{
		Name:         "AMINA JUMA",
		DateOfBirth:  "1995-04-12",
		UniqueCTCID:  "02-11-0001-123456",
		ARTStartDate: "2024-02-25",
	}
	asOf := date(2024, time.March, 1)

	_, err := InitializePatient(p, InitialLabs{}, asOf)
	require.NoError(t, err)

	assert.Empty(t, p.CD4History)
	assert.Equal(t, "2025-03-01", *p.NextCD4Date)

	// ART started five days ago; the two-week IPT window has not opened.
	assert.False(t, p.OnIPT)
	assert.Nil(t, p.IPTStartDate)
}

func TestInitializePatientValidation(t *testing.T) {
	asOf := date(2024, time.March, 1)

	tests := []struct {
		name    string
		patient models.Patient
	}{
		{
			name: "missing name",
			patient: models.Patient{
				DateOfBirth:  "1995-04-12",
				UniqueCTCID:  "02-11-0001-123456",
				ARTStartDate: "2024-01-10",
			},
		},
		{
			name: "bad art start date",
			patient: models.Patient{
				Name:         "AMINA JUMA",
				DateOfBirth:  "1995-04-12",
				UniqueCTCID:  "02-11-0001-123456",
				ARTStartDate: "not-a-date",
			},
		},
		{
			name: "pregnant without expected delivery date",
			patient: models.Patient{
				Name:         "AMINA JUMA",
				DateOfBirth:  "1995-04-12",
				UniqueCTCID:  "02-11-0001-123456",
				ARTStartDate: "2024-01-10",
				Pregnant:     true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.patient
			_, err := InitializePatient(&p, InitialLabs{}, asOf)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestInitializePatientRejectedLabsLeaveRecordUntouched(t *testing.T) {
	p := &models.Patient{
		Name:         "AMINA JUMA",
		DateOfBirth:  "1995-04-12",
		UniqueCTCID:  "02-11-0001-123456",
		ARTStartDate: "2024-01-10",
	}
	badCr := -0.5

	_, err := InitializePatient(p, InitialLabs{CD4: intPtr(150), Creatinine: &badCr}, date(2024, time.March, 1))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// The valid CD4 must not have been recorded alongside the rejected value.
	assert.Empty(t, p.CD4History)
	assert.Empty(t, p.CreatinineHistory)
	assert.False(t, p.Active)
	assert.Nil(t, p.NextVisitDate)
}

func TestInitializePatientBaselineALTAndCreatinine(t *testing.T) {
	p := &models.Patient{
		Name:         "AMINA JUMA",
		DateOfBirth:  "1995-04-12",
		UniqueCTCID:  "02-11-0001-123456",
		ARTStartDate: "2024-01-10",
	}
	alt := 32.5
	cr := 0.9

	_, err := InitializePatient(p, InitialLabs{ALT: &alt, Creatinine: &cr}, date(2024, time.March, 1))
	require.NoError(t, err)

	require.Len(t, p.ALTHistory, 1)
	assert.Equal(t, "Initial test at registration", p.ALTHistory[0].Note)
	require.Len(t, p.CreatinineHistory, 1)
	assert.Equal(t, "Initial test at registration", p.CreatinineHistory[0].Note)
}
