package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a staff member does not exist.
	ErrNotFound = errors.New("staff member not found")

	// ErrEmailTaken rejects a second account with the same email.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository defines staff persistence operations.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	Update(ctx context.Context, m *Member) error
	List(ctx context.Context, role string, limit, offset int) ([]*Member, int, error)
}
