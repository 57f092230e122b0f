package engine

import (
	"testing"
	"time"

	"PMTCTCare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPatient() *models.Patient {
	return &models.Patient{
		ID:           "pt-001",
		Name:         "AMINA JUMA",
		DateOfBirth:  "1995-04-12",
		Sex:          "Female",
		UniqueCTCID:  "02-11-0001-123456",
		ARTStartDate: "2024-01-10",
		Active:       true,
	}
}

func TestRecordCD4Policy(t *testing.T) {
	recordDate := date(2024, time.March, 1)

	tests := []struct {
		name             string
		value            int
		wantCoTri        bool
		wantPriority     Priority
		wantNextCD4      string
		wantCoTriCleared bool
	}{
		{name: "critical", value: 150, wantCoTri: true, wantPriority: PriorityCritical, wantNextCD4: "2024-09-01"},
		{name: "low_boundary_200", value: 200, wantCoTri: true, wantPriority: PriorityWarning, wantNextCD4: "2024-09-01"},
		{name: "low_349", value: 349, wantCoTri: true, wantPriority: PriorityWarning, wantNextCD4: "2024-09-01"},
		{name: "good_boundary_350", value: 350, wantCoTri: false, wantPriority: PrioritySuccess, wantNextCD4: "2025-03-01"},
		{name: "good_high", value: 800, wantCoTri: false, wantPriority: PrioritySuccess, wantNextCD4: "2025-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatient()
			recs, err := RecordCD4(p, tt.value, recordDate)
			require.NoError(t, err)

			require.NotNil(t, p.LatestCD4)
			assert.Equal(t, tt.value, *p.LatestCD4)
			require.Len(t, p.CD4History, 1)
			assert.Equal(t, float64(tt.value), p.CD4History[0].Result)
			assert.Equal(t, "2024-03-01", p.CD4History[0].Date)

			assert.Equal(t, tt.wantCoTri, p.OnCoTrimoxazole)
			require.NotNil(t, p.NextCD4Date)
			assert.Equal(t, tt.wantNextCD4, *p.NextCD4Date)

			require.Len(t, recs, 1)
			assert.Equal(t, tt.wantPriority, recs[0].Priority)
			assert.NotEmpty(t, recs[0].Messages)
		})
	}
}

func TestRecordCD4HistoryGrowsByOne(t *testing.T) {
	p := newTestPatient()
	for i, v := range []int{180, 250, 420} {
		_, err := RecordCD4(p, v, date(2024, time.March, 1+i))
		require.NoError(t, err)
		assert.Len(t, p.CD4History, i+1)
		assert.Equal(t, v, *p.LatestCD4)
	}
	// Insertion order preserved.
	assert.Equal(t, float64(180), p.CD4History[0].Result)
	assert.Equal(t, float64(420), p.CD4History[2].Result)
}

func TestRecordCD4RejectsNegative(t *testing.T) {
	p := newTestPatient()
	_, err := RecordCD4(p, -1, date(2024, time.March, 1))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// No partial mutation: the record is untouched.
	assert.Nil(t, p.LatestCD4)
	assert.Empty(t, p.CD4History)
	assert.Nil(t, p.NextCD4Date)
	assert.False(t, p.OnCoTrimoxazole)
}

func TestRecordHVLPolicy(t *testing.T) {
	recordDate := date(2024, time.March, 1)

	tests := []struct {
		name         string
		value        int
		wantPriority Priority
		wantNextHVL  string
		wantEAC      bool
	}{
		{name: "suppressed", value: 30, wantPriority: PrioritySuccess, wantNextHVL: "2024-09-01"},
		{name: "detectable_boundary_50", value: 50, wantPriority: PriorityWarning, wantNextHVL: "2024-06-01"},
		{name: "detectable_boundary_1000", value: 1000, wantPriority: PriorityWarning, wantNextHVL: "2024-06-01"},
		{name: "high", value: 1001, wantPriority: PriorityCritical, wantNextHVL: "2024-06-01", wantEAC: true},
		{name: "very_high", value: 25000, wantPriority: PriorityCritical, wantNextHVL: "2024-06-01", wantEAC: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatient()
			recs, err := RecordHVL(p, tt.value, recordDate)
			require.NoError(t, err)

			require.NotNil(t, p.LatestVL)
			assert.Equal(t, tt.value, *p.LatestVL)
			require.Len(t, p.HVLHistory, 1)
			require.NotNil(t, p.NextHVLDate)
			assert.Equal(t, tt.wantNextHVL, *p.NextHVLDate)

			require.Len(t, recs, 1)
			assert.Equal(t, tt.wantPriority, recs[0].Priority)

			assert.Equal(t, tt.wantEAC, p.EAC.Started)
			if tt.wantEAC {
				require.NotNil(t, p.EAC.StartDate)
				assert.Equal(t, "2024-03-01", *p.EAC.StartDate)
				require.NotNil(t, p.EAC.EndDate)
				assert.Equal(t, "2024-06-01", *p.EAC.EndDate)
				assert.Equal(t, 0, p.EAC.Sessions)
			}
		})
	}
}

func TestRecordHVLDoesNotRestartActiveEAC(t *testing.T) {
	p := newTestPatient()
	_, err := RecordHVL(p, 5000, date(2024, time.March, 1))
	require.NoError(t, err)
	require.NoError(t, RecordEACSession(p))

	_, err = RecordHVL(p, 8000, date(2024, time.April, 1))
	require.NoError(t, err)

	// The running course keeps its dates and session count.
	assert.Equal(t, "2024-03-01", *p.EAC.StartDate)
	assert.Equal(t, 1, p.EAC.Sessions)
}

func TestRecordCrAg(t *testing.T) {
	tests := []struct {
		name         string
		result       string
		wantPriority Priority
		wantErr      bool
	}{
		{name: "positive", result: "positive", wantPriority: PriorityCritical},
		{name: "negative", result: "negative", wantPriority: PrioritySuccess},
		{name: "indeterminate", result: "indeterminate", wantPriority: PriorityWarning},
		{name: "unknown_value", result: "reactive", wantErr: true},
		{name: "empty", result: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatient()
			recs, err := RecordCrAg(p, tt.result, date(2024, time.March, 1))
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Empty(t, p.CrAgHistory)
				return
			}
			require.NoError(t, err)
			require.Len(t, p.CrAgHistory, 1)
			assert.True(t, p.CrAgTested())
			require.Len(t, recs, 1)
			assert.Equal(t, tt.wantPriority, recs[0].Priority)
		})
	}
}

func TestRecordCrAgPositiveIncludesFluconazoleTaper(t *testing.T) {
	p := newTestPatient()
	recs, err := RecordCrAg(p, CrAgPositive, date(2024, time.March, 1))
	require.NoError(t, err)

	joined := ""
	for _, m := range recs[0].Messages {
		joined += m + "\n"
	}
	assert.Contains(t, joined, "lumbar puncture")
	assert.Contains(t, joined, "800mg for 2 weeks")
	assert.Contains(t, joined, "400mg for 8 weeks")
	assert.Contains(t, joined, "200mg for 1 year")
}

func TestRecordALTAndCreatinineAppendOnly(t *testing.T) {
	p := newTestPatient()

	_, err := RecordALT(p, 32.5, date(2024, time.March, 1))
	require.NoError(t, err)
	_, err = RecordCreatinine(p, 88, date(2024, time.March, 1))
	require.NoError(t, err)

	assert.Len(t, p.ALTHistory, 1)
	assert.Len(t, p.CreatinineHistory, 1)
	// No scheduling is derived from reference trends.
	assert.Nil(t, p.NextCD4Date)
	assert.Nil(t, p.NextHVLDate)

	_, err = RecordALT(p, -0.5, date(2024, time.March, 2))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, p.ALTHistory, 1)
}

func TestRecordResultDispatch(t *testing.T) {
	tests := []struct {
		name    string
		kind    TestKind
		value   string
		wantErr bool
	}{
		{name: "cd4", kind: TestCD4, value: "450"},
		{name: "cd4_not_a_number", kind: TestCD4, value: "abc", wantErr: true},
		{name: "hvl", kind: TestHVL, value: "1500"},
		{name: "crag_mixed_case", kind: TestCrAg, value: " Positive "},
		{name: "alt_decimal", kind: TestALT, value: "33.7"},
		{name: "creatinine", kind: TestCreatinine, value: "90"},
		{name: "unknown_kind", kind: TestKind("Hemoglobin"), value: "12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatient()
			recs, err := RecordResult(p, tt.kind, tt.value, date(2024, time.March, 1))
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, recs)
		})
	}
}
