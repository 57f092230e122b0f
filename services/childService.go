package services

import (
	"PMTCTCare/engine"
	"PMTCTCare/models"
	"PMTCTCare/repositories"
	"context"
	"time"
)

type ChildService struct {
	repository *repositories.ChildRepository
}

func NewChildService(repository *repositories.ChildRepository) *ChildService {
	return &ChildService{repository: repository}
}

// Register activates an exposed infant record and computes the first DBS
// collection date from the birth date and risk level.
func (s *ChildService) Register(ctx context.Context, child *models.Child, asOf time.Time) error {
	if err := engine.InitializeChild(child, asOf); err != nil {
		return err
	}
	return s.repository.Create(ctx, child)
}

func (s *ChildService) GetByID(ctx context.Context, id string) (*models.Child, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *ChildService) GetAll(ctx context.Context) ([]models.Child, error) {
	return s.repository.GetAll(ctx)
}

func (s *ChildService) GetByMotherID(ctx context.Context, motherID string) ([]models.Child, error) {
	return s.repository.GetByMotherID(ctx, motherID)
}

type ChildTestOutcome struct {
	Child           *models.Child           `json:"child"`
	Recommendations []engine.Recommendation `json:"recommendations"`
}

func (s *ChildService) RecordDBS(ctx context.Context, childID, result string, date time.Time) (*ChildTestOutcome, error) {
	child, err := s.repository.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, &engine.NotFoundError{Kind: "child", ID: childID}
	}
	recommendations, err := engine.RecordDBS(child, result, date)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, child); err != nil {
		return nil, err
	}
	return &ChildTestOutcome{Child: child, Recommendations: recommendations}, nil
}

func (s *ChildService) RecordBioline(ctx context.Context, childID, result string, date time.Time) (*ChildTestOutcome, error) {
	child, err := s.repository.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, &engine.NotFoundError{Kind: "child", ID: childID}
	}
	recommendations, err := engine.RecordBioline(child, result, date)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, child); err != nil {
		return nil, err
	}
	return &ChildTestOutcome{Child: child, Recommendations: recommendations}, nil
}

// StopBreastfeeding records the weaning date and schedules the confirmatory
// antibody test that follows it.
func (s *ChildService) StopBreastfeeding(ctx context.Context, childID string, date time.Time) (*models.Child, error) {
	child, err := s.repository.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, &engine.NotFoundError{Kind: "child", ID: childID}
	}
	if err := engine.StopBreastfeeding(child, date); err != nil {
		return nil, err
	}
	if err := s.repository.Update(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}
