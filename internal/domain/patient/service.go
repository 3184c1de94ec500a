package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrValidation is returned for malformed registration input.
var ErrValidation = errors.New("validation failed")

// Service implements patient registry business logic.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "patient-service").Logger(),
	}
}

// Register creates a new patient record.
func (s *Service) Register(ctx context.Context, req CreateRequest) (*Patient, error) {
	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", ErrValidation)
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrValidation)
	}
	if dob.After(time.Now()) {
		return nil, fmt.Errorf("%w: date_of_birth is in the future", ErrValidation)
	}

	p := &Patient{
		ID:            uuid.New(),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DateOfBirth:   dob,
		Gender:        req.Gender,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("patient_id", p.ID.String()).
		Msg("patient registered")
	return p, nil
}

// Get fetches a patient by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies partial demographic changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.ContactNumber != nil {
		p.ContactNumber = *req.ContactNumber
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name cannot be blank", ErrValidation)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns a page of patients, optionally filtered by name.
func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}
