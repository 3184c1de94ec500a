package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrValidation is returned for malformed staff input.
var ErrValidation = errors.New("validation failed")

// Service implements staff registry business logic.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "staff-service").Logger(),
	}
}

// Register adds a staff member with a department role.
func (s *Service) Register(ctx context.Context, req CreateRequest) (*Member, error) {
	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", ErrValidation)
	}
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if !ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}

	m := &Member{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Role:      req.Role,
		Active:    true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("staff_id", m.ID.String()).
		Str("role", m.Role).
		Msg("staff member registered")
	return m, nil
}

// Get fetches a staff member by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies partial changes, including role reassignment and
// deactivation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		m.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		m.LastName = *req.LastName
	}
	if req.Email != nil {
		m.Email = strings.ToLower(*req.Email)
	}
	if req.Role != nil {
		m.Role = *req.Role
	}
	if req.Active != nil {
		m.Active = *req.Active
	}

	if m.FirstName == "" || m.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name cannot be blank", ErrValidation)
	}
	if !strings.Contains(m.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if !ValidRole(m.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, m.Role)
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("staff_id", m.ID.String()).
		Bool("active", m.Active).
		Msg("staff member updated")
	return m, nil
}

// List returns a page of staff, optionally filtered by role.
func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*Member, int, error) {
	if role != "" && !ValidRole(role) {
		return nil, 0, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return s.repo.List(ctx, role, limit, offset)
}
