package engine

import (
	"testing"
	"time"

	"PMTCTCare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartEAC(t *testing.T) {
	p := newTestPatient()

	started := StartEAC(p, date(2024, time.March, 1))
	assert.True(t, started)
	assert.True(t, p.EAC.Needed)
	assert.True(t, p.EAC.Started)
	assert.Equal(t, "2024-03-01", *p.EAC.StartDate)
	assert.Equal(t, "2024-06-01", *p.EAC.EndDate)
	assert.Equal(t, 0, p.EAC.Sessions)

	// A running course is not restarted.
	assert.False(t, StartEAC(p, date(2024, time.April, 1)))
	assert.Equal(t, "2024-03-01", *p.EAC.StartDate)
}

func TestEACSessionAndCompletion(t *testing.T) {
	p := newTestPatient()

	// Sessions require an active course.
	var verr *ValidationError
	require.ErrorAs(t, RecordEACSession(p), &verr)

	StartEAC(p, date(2024, time.March, 1))
	require.NoError(t, RecordEACSession(p))
	require.NoError(t, RecordEACSession(p))
	assert.Equal(t, 2, p.EAC.Sessions)

	require.NoError(t, CompleteEAC(p, date(2024, time.May, 20)))
	assert.True(t, p.EAC.Completed)
	assert.Equal(t, "2024-05-20", *p.EAC.EndDate)

	// Completed course accepts no more sessions, but a new high VL may
	// start a fresh course.
	require.ErrorAs(t, RecordEACSession(p), &verr)
	assert.True(t, StartEAC(p, date(2024, time.July, 1)))
	assert.Equal(t, 0, p.EAC.Sessions)
	assert.False(t, p.EAC.Completed)
}

func TestComputeIPT(t *testing.T) {
	tests := []struct {
		name      string
		artStart  string
		asOf      time.Time
		wantOnIPT bool
		wantStart string
		wantEnd   string
	}{
		{name: "before_window", artStart: "2024-03-01", asOf: date(2024, time.March, 10), wantOnIPT: false},
		{name: "window_opens", artStart: "2024-03-01", asOf: date(2024, time.March, 15), wantOnIPT: true, wantStart: "2024-03-15", wantEnd: "2024-06-15"},
		{name: "well_past_window", artStart: "2024-01-10", asOf: date(2024, time.June, 1), wantOnIPT: true, wantStart: "2024-01-24", wantEnd: "2024-04-24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatient()
			p.ARTStartDate = tt.artStart

			require.NoError(t, ComputeIPT(p, tt.asOf))
			assert.Equal(t, tt.wantOnIPT, p.OnIPT)
			if tt.wantOnIPT {
				assert.Equal(t, tt.wantStart, *p.IPTStartDate)
				assert.Equal(t, tt.wantEnd, *p.IPTEndDate)
			} else {
				assert.Nil(t, p.IPTStartDate)
			}
		})
	}
}

func TestCompleteVisit(t *testing.T) {
	fullVisit := models.Visit{
		Date:         "2024-03-01",
		Weight:       62.5,
		TBScreening:  true,
		STIScreening: true,
		ARVDispensed: true,
		ARVDays:      30,
	}

	t.Run("complete_checklist", func(t *testing.T) {
		p := newTestPatient()
		require.NoError(t, CompleteVisit(p, fullVisit))
		require.Len(t, p.VisitHistory, 1)
		assert.Equal(t, "2024-03-01", *p.LastVisitDate)
		assert.Equal(t, "2024-04-01", *p.NextVisitDate)
	})

	t.Run("missing_checklist_item", func(t *testing.T) {
		p := newTestPatient()
		v := fullVisit
		v.TBScreening = false

		var verr *ValidationError
		require.ErrorAs(t, CompleteVisit(p, v), &verr)
		assert.Empty(t, p.VisitHistory)
		assert.Nil(t, p.LastVisitDate)
	})

	t.Run("all_items_unchecked", func(t *testing.T) {
		p := newTestPatient()
		v := fullVisit
		v.TBScreening = false
		v.STIScreening = false
		v.ARVDispensed = false

		var verr *ValidationError
		require.ErrorAs(t, CompleteVisit(p, v), &verr)
		assert.Empty(t, p.VisitHistory)
		assert.Nil(t, p.LastVisitDate)
		assert.Nil(t, p.NextVisitDate)
	})

	t.Run("missing_weight", func(t *testing.T) {
		p := newTestPatient()
		v := fullVisit
		v.Weight = 0

		var verr *ValidationError
		require.ErrorAs(t, CompleteVisit(p, v), &verr)
		assert.Empty(t, p.VisitHistory)
	})
}

func TestRecordDelivery(t *testing.T) {
	p := newTestPatient()
	p.Pregnant = true
	edd := "2024-06-15"
	p.ExpectedDeliveryDate = &edd

	require.NoError(t, RecordDelivery(p, date(2024, time.June, 10)))
	assert.True(t, p.Delivered)
	assert.Equal(t, "2024-06-10", *p.DeliveryDate)
	assert.False(t, p.Pregnant)
	assert.True(t, p.Breastfeeding)

	var verr *ValidationError
	require.ErrorAs(t, RecordDelivery(p, date(2024, time.June, 11)), &verr)
}
