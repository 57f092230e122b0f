package models

import (
	"time"
)

// DBSEntry is one dried blood spot test result for an exposed infant.
type DBSEntry struct {
	Date   string `json:"date"`
	Result string `json:"result"`
	Note   string `json:"note,omitempty"`
}

// BiolineEntry is one Bioline antibody test result.
type BiolineEntry struct {
	Date   string `json:"date"`
	Result string `json:"result"`
	Note   string `json:"note,omitempty"`
}

// Child is an HIV-exposed infant followed under a mother's record.
type Child struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	MotherID    string    `gorm:"column:mother_id;not null;index" json:"mother_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	DateOfBirth string    `gorm:"column:date_of_birth;not null" json:"date_of_birth"`
	RiskLevel   RiskLevel `gorm:"column:risk_level;check:risk_level IN ('high', 'low');not null" json:"risk_level"`

	DBSHistory     []DBSEntry     `gorm:"column:dbs_history;type:jsonb;serializer:json" json:"dbs_history"`
	BiolineHistory []BiolineEntry `gorm:"column:bioline_history;type:jsonb;serializer:json" json:"bioline_history"`

	NextDBSDate     *string `gorm:"column:next_dbs_date" json:"next_dbs_date"`
	NextBiolineDate *string `gorm:"column:next_bioline_date" json:"next_bioline_date"`

	Breastfeeding         bool    `gorm:"column:breastfeeding" json:"breastfeeding"`
	BreastfeedingStopDate *string `gorm:"column:breastfeeding_stop_date" json:"breastfeeding_stop_date"`
	OnART                 bool    `gorm:"column:on_art" json:"on_art"`

	Active    bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Mother Patient `gorm:"foreignKey:MotherID;references:ID" json:"mother,omitempty"`
}

func (Child) TableName() string {
	return "child"
}

// DBSPositive reports whether any recorded DBS result is positive.
func (c *Child) DBSPositive() bool {
	for _, entry := range c.DBSHistory {
		if entry.Result == "positive" {
			return true
		}
	}
	return false
}
