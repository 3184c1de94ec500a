package visit

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists visits and their workflow state.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)

	// OpenByPatient returns every open visit for the patient. The
	// service decides how to treat zero or more than one.
	OpenByPatient(ctx context.Context, patientID uuid.UUID) ([]*Visit, error)

	// ListByState returns the queue for one department.
	ListByState(ctx context.Context, state State, limit, offset int) ([]*Visit, int, error)

	// AdvanceState performs a compare-and-set on current_state. It
	// returns ErrStateConflict when the stored state does not match
	// asserted, ErrVisitNotFound when the visit does not exist.
	AdvanceState(ctx context.Context, id uuid.UUID, asserted, next, nextDefault State) (*Visit, error)

	// SetNextState updates the routing hint without advancing.
	SetNextState(ctx context.Context, id uuid.UUID, next State) error

	// SetTotalCost stores the accumulated visit cost.
	SetTotalCost(ctx context.Context, id uuid.UUID, total float64) error

	RecordTransition(ctx context.Context, t *StateTransition) error
	Transitions(ctx context.Context, visitID uuid.UUID) ([]*StateTransition, error)
}

// RecordRepository persists the per-department records hanging off a
// visit. GetByVisit calls return (nil, nil) when no record exists.
type RecordRepository interface {
	CreateTriage(ctx context.Context, r *TriageRecord) error
	TriageByVisit(ctx context.Context, visitID uuid.UUID) (*TriageRecord, error)

	CreateNote(ctx context.Context, n *ConsultationNote) error
	UpdateNote(ctx context.Context, n *ConsultationNote) error
	NoteByVisit(ctx context.Context, visitID uuid.UUID) (*ConsultationNote, error)

	CreateLabResult(ctx context.Context, r *LabResult) error
	LabResultByVisit(ctx context.Context, visitID uuid.UUID) (*LabResult, error)

	CreateDispense(ctx context.Context, d *PharmacyDispense) error
	DispenseByVisit(ctx context.Context, visitID uuid.UUID) (*PharmacyDispense, error)

	CreateBilling(ctx context.Context, b *BillingRecord) error
	BillingByVisit(ctx context.Context, visitID uuid.UUID) (*BillingRecord, error)
}

// TxRunner runs a function atomically. The triage flow uses it to pair
// visit creation with the first triage record.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
