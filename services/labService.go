package services

import (
	"PMTCTCare/engine"
	"PMTCTCare/models"
	"PMTCTCare/repositories"
	"context"
	"time"
)

// LabService applies incoming lab results to a patient record. The rule
// evaluation happens in memory on the loaded record; the repository write
// only runs when the result was accepted, so a rejected value leaves the
// stored record untouched.
type LabService struct {
	repository *repositories.PatientRepository
}

func NewLabService(repository *repositories.PatientRepository) *LabService {
	return &LabService{repository: repository}
}

type LabResultOutcome struct {
	Patient         *models.Patient         `json:"patient"`
	Recommendations []engine.Recommendation `json:"recommendations"`
}

func (s *LabService) RecordResult(ctx context.Context, patientID string, kind engine.TestKind, value string, date time.Time) (*LabResultOutcome, error) {
	patient, err := s.repository.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, &engine.NotFoundError{Kind: "patient", ID: patientID}
	}

	recommendations, err := engine.RecordResult(patient, kind, value, date)
	if err != nil {
		return nil, err
	}

	if err := s.repository.Update(ctx, patient); err != nil {
		return nil, err
	}
	return &LabResultOutcome{Patient: patient, Recommendations: recommendations}, nil
}
