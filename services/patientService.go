package services

import (
	"PMTCTCare/engine"
	"PMTCTCare/models"
	"PMTCTCare/repositories"
	"context"
	"time"
)

type PatientService struct {
	repository *repositories.PatientRepository
}

func NewPatientService(repository *repositories.PatientRepository) *PatientService {
	return &PatientService{repository: repository}
}

// Register derives the initial schedule and prophylaxis state from the intake
// record and baseline labs, then persists the patient. Returned
// recommendations are the clinical guidance produced by the baseline labs.
func (s *PatientService) Register(ctx context.Context, patient *models.Patient, labs engine.InitialLabs, asOf time.Time) ([]engine.Recommendation, error) {
	recommendations, err := engine.InitializePatient(patient, labs, asOf)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Create(ctx, patient); err != nil {
		return nil, err
	}
	return recommendations, nil
}

func (s *PatientService) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *PatientService) GetAll(ctx context.Context) ([]models.Patient, error) {
	return s.repository.GetAll(ctx)
}

func (s *PatientService) Update(ctx context.Context, patient *models.Patient) error {
	return s.repository.Update(ctx, patient)
}

func (s *PatientService) Deactivate(ctx context.Context, id string) error {
	return s.repository.Deactivate(ctx, id)
}

// RecordDelivery transitions a pregnant patient to delivered and
// breastfeeding.
func (s *PatientService) RecordDelivery(ctx context.Context, patientID string, date time.Time) (*models.Patient, error) {
	patient, err := s.repository.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, &engine.NotFoundError{Kind: "patient", ID: patientID}
	}
	if err := engine.RecordDelivery(patient, date); err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}
