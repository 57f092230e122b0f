package services

import (
	"PMTCTCare/engine"
	"PMTCTCare/models"
	"PMTCTCare/repositories"
	"context"
	"time"
)

// VisitService covers the clinic visit workflow and the enhanced adherence
// counselling bookkeeping that hangs off it.
type VisitService struct {
	repository *repositories.PatientRepository
}

func NewVisitService(repository *repositories.PatientRepository) *VisitService {
	return &VisitService{repository: repository}
}

func (s *VisitService) CompleteVisit(ctx context.Context, patientID string, visit models.Visit) (*models.Patient, error) {
	patient, err := s.repository.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, &engine.NotFoundError{Kind: "patient", ID: patientID}
	}
	if err := engine.CompleteVisit(patient, visit); err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *VisitService) RecordEACSession(ctx context.Context, patientID string) (*models.Patient, error) {
	patient, err := s.repository.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, &engine.NotFoundError{Kind: "patient", ID: patientID}
	}
	if err := engine.RecordEACSession(patient); err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *VisitService) CompleteEAC(ctx context.Context, patientID string, date time.Time) (*models.Patient, error) {
	patient, err := s.repository.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, &engine.NotFoundError{Kind: "patient", ID: patientID}
	}
	if err := engine.CompleteEAC(patient, date); err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}
