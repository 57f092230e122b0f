package models

import (
	"time"
)

// RiskLevel classifies an HIV-exposed infant for DBS scheduling.
type RiskLevel string

const (
	RiskHigh RiskLevel = "high"
	RiskLow  RiskLevel = "low"
)

// LabEntry is one recorded numeric lab result. Histories are append-only;
// slice order is the order of recording.
type LabEntry struct {
	Date   string  `json:"date"`
	Result float64 `json:"result"`
	Note   string  `json:"note,omitempty"`
}

// CrAgEntry is one recorded cryptococcal antigen result.
type CrAgEntry struct {
	Date   string `json:"date"`
	Result string `json:"result"`
	Note   string `json:"note,omitempty"`
}

// EAC tracks Enhanced Adherence Counselling state for a patient.
type EAC struct {
	Needed    bool    `json:"needed"`
	Started   bool    `json:"started"`
	Completed bool    `json:"completed"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Sessions  int     `json:"sessions"`
}

// TestPerformed records a test taken during a visit.
type TestPerformed struct {
	Test   string `json:"test"`
	Result string `json:"result"`
}

// Visit is one completed clinic visit.
type Visit struct {
	Date           string          `json:"date"`
	Weight         float64         `json:"weight"`
	TBScreening    bool            `json:"tb_screening"`
	STIScreening   bool            `json:"sti_screening"`
	ARVDispensed   bool            `json:"arv_dispensed"`
	ARVDays        int             `json:"arv_days"`
	TestsPerformed []TestPerformed `json:"tests_performed"`
}

// Patient is an adult PMTCT client (mother or mother-to-be).
type Patient struct {
	ID           string `gorm:"primaryKey;column:id" json:"id"`
	Name         string `gorm:"column:name;not null;index" json:"name"`
	DateOfBirth  string `gorm:"column:date_of_birth;not null" json:"date_of_birth"`
	Sex          string `gorm:"column:sex;check:sex IN ('Male', 'Female');not null" json:"sex"`
	Phone        string `gorm:"column:phone" json:"phone"`
	UniqueCTCID  string `gorm:"column:unique_ctc_id;unique;not null;index" json:"unique_ctc_id"`
	NHCI         string `gorm:"column:nhci" json:"nhci"`
	FacilityName string `gorm:"column:facility_name" json:"facility_name"`

	HIVDiagnosisDate string `gorm:"column:hiv_diagnosis_date" json:"hiv_diagnosis_date"`
	ARTStartDate     string `gorm:"column:art_start_date" json:"art_start_date"`
	WHOStage         string `gorm:"column:who_stage" json:"who_stage"`
	CurrentARV       string `gorm:"column:current_arv" json:"current_arv"`

	// Latest values are kept in sync with the last entry of the matching
	// history by the engine; nil means never tested.
	LatestCD4 *int `gorm:"column:latest_cd4" json:"latest_cd4"`
	LatestVL  *int `gorm:"column:latest_vl" json:"latest_vl"`

	CD4History        []LabEntry  `gorm:"column:cd4_history;type:jsonb;serializer:json" json:"cd4_history"`
	HVLHistory        []LabEntry  `gorm:"column:hvl_history;type:jsonb;serializer:json" json:"hvl_history"`
	ALTHistory        []LabEntry  `gorm:"column:alt_history;type:jsonb;serializer:json" json:"alt_history"`
	CreatinineHistory []LabEntry  `gorm:"column:creatinine_history;type:jsonb;serializer:json" json:"creatinine_history"`
	CrAgHistory       []CrAgEntry `gorm:"column:crag_history;type:jsonb;serializer:json" json:"crag_history"`
	VisitHistory      []Visit     `gorm:"column:visit_history;type:jsonb;serializer:json" json:"visit_history"`

	NextCD4Date                 *string `gorm:"column:next_cd4_date" json:"next_cd4_date"`
	NextHVLDate                 *string `gorm:"column:next_hvl_date" json:"next_hvl_date"`
	LastVisitDate               *string `gorm:"column:last_visit_date" json:"last_visit_date"`
	NextVisitDate               *string `gorm:"column:next_visit_date" json:"next_visit_date"`
	CervicalCancerScreeningDate *string `gorm:"column:cervical_cancer_screening_date" json:"cervical_cancer_screening_date"`

	OnCoTrimoxazole bool    `gorm:"column:on_co_trimoxazole" json:"on_co_trimoxazole"`
	OnIPT           bool    `gorm:"column:on_ipt" json:"on_ipt"`
	IPTStartDate    *string `gorm:"column:ipt_start_date" json:"ipt_start_date"`
	IPTEndDate      *string `gorm:"column:ipt_end_date" json:"ipt_end_date"`
	EAC             EAC     `gorm:"column:eac;type:jsonb;serializer:json" json:"eac"`

	Pregnant             bool    `gorm:"column:pregnant" json:"pregnant"`
	Breastfeeding        bool    `gorm:"column:breastfeeding" json:"breastfeeding"`
	ExpectedDeliveryDate *string `gorm:"column:expected_delivery_date" json:"expected_delivery_date"`
	Delivered            bool    `gorm:"column:delivered" json:"delivered"`
	DeliveryDate         *string `gorm:"column:delivery_date" json:"delivery_date"`

	Active           bool      `gorm:"column:active;not null" json:"active"`
	RegistrationDate string    `gorm:"column:registration_date;not null" json:"registration_date"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Children []Child `gorm:"foreignKey:MotherID;references:ID" json:"-"`
}

func (Patient) TableName() string {
	return "patient"
}

// CrAgTested reports whether the patient has ever had a CrAg test recorded.
func (p *Patient) CrAgTested() bool {
	return len(p.CrAgHistory) > 0
}
