// Package staff implements the operator registry: the people whose
// department roles drive login routing and the route guards on every
// department save.
package staff

import (
	"time"

	"github.com/google/uuid"
)

// Roles a staff member can hold. Each maps to one department queue,
// plus admin.
const (
	RoleAdmin     = "admin"
	RoleTriage    = "triage"
	RolePhysician = "physician"
	RoleLab       = "lab"
	RolePharmacy  = "pharmacy"
	RoleBilling   = "billing"
)

// ValidRole reports whether role is a known department role.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTriage, RolePhysician, RoleLab, RolePharmacy, RoleBilling:
		return true
	}
	return false
}

// Member is one staff account. Deactivated members keep their history
// but can no longer act.
type Member struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the display name used in staff listings.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// CreateRequest is the payload for adding a staff member.
type CreateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// UpdateRequest edits a staff member. Nil fields are left unchanged;
// Active false deactivates the account.
type UpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
}
