package services

import (
	"PMTCTCare/engine"
	"PMTCTCare/repositories"
	"context"
	"log"
	"time"
)

// AlertService runs the rule scan over the full patient and child
// collections. The scan itself is pure; this service only supplies the data
// and logs any record inconsistencies it reports.
type AlertService struct {
	patientRepo *repositories.PatientRepository
	childRepo   *repositories.ChildRepository
}

func NewAlertService(patientRepo *repositories.PatientRepository, childRepo *repositories.ChildRepository) *AlertService {
	return &AlertService{patientRepo: patientRepo, childRepo: childRepo}
}

func (s *AlertService) Generate(ctx context.Context, asOf time.Time) ([]engine.Alert, error) {
	patients, err := s.patientRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	children, err := s.childRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	alerts, diags := engine.GenerateAlerts(patients, children, asOf)
	for _, diag := range diags {
		log.Printf("Alert scan inconsistency: %v", diag)
	}
	return alerts, nil
}
