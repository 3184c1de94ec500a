// Package visit implements the visit lifecycle: the state machine that
// moves a patient through department queues and the aggregate snapshot
// each department screen reads.
package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// State is a department queue in the visit workflow.
type State string

const (
	StateTriage       State = "TRIAGE"
	StateConsultation State = "CONSULTATION"
	StateLaboratory   State = "LABORATORY"
	StatePharmacy     State = "PHARMACY"
	StateBilling      State = "BILLING"
	StateCompleted    State = "COMPLETED"
)

// allowedTransitions is the full workflow graph. Laboratory hands the
// visit back to the physician; pharmacy and billing only move forward.
var allowedTransitions = map[State][]State{
	StateTriage:       {StateConsultation},
	StateConsultation: {StateLaboratory, StatePharmacy, StateBilling},
	StateLaboratory:   {StateConsultation},
	StatePharmacy:     {StateBilling},
	StateBilling:      {StateCompleted},
}

// Valid reports whether s is a known workflow state.
func (s State) Valid() bool {
	switch s {
	case StateTriage, StateConsultation, StateLaboratory, StatePharmacy, StateBilling, StateCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow permits moving from s
// to next.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DefaultNext is the queue a visit heads to from s before any
// consultation orders refine the routing.
func (s State) DefaultNext() State {
	switch s {
	case StateTriage:
		return StateConsultation
	case StateConsultation:
		return StateBilling
	case StateLaboratory:
		return StateConsultation
	case StatePharmacy:
		return StateBilling
	case StateBilling:
		return StateCompleted
	}
	return ""
}

// Visit is one episode of care, open until billing completes it.
type Visit struct {
	ID           uuid.UUID `json:"visit_id"`
	PatientID    uuid.UUID `json:"patient_id"`
	CurrentState State     `json:"current_state"`
	NextState    State     `json:"next_state"`
	TotalCost    float64   `json:"total_cost"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Open reports whether the visit is still in a department queue.
func (v *Visit) Open() bool {
	return v.CurrentState != StateCompleted
}

// StateTransition is one recorded advance of a visit through the
// workflow.
type StateTransition struct {
	ID        uuid.UUID `json:"id"`
	VisitID   uuid.UUID `json:"visit_id"`
	FromState State     `json:"from_state"`
	ToState   State     `json:"to_state"`
	MovedBy   string    `json:"moved_by"`
	MovedAt   time.Time `json:"moved_at"`
}

// PatientInfo is the demographic slice embedded in a snapshot.
type PatientInfo struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Age         int       `json:"age"`
}

// PatientDirectory resolves patient demographics for snapshots. The
// concrete implementation lives with the patient package; this keeps
// the dependency pointing outward.
type PatientDirectory interface {
	Lookup(ctx context.Context, id uuid.UUID) (*PatientInfo, error)
}

// NoteState tags whether the visit already carries a consultation
// note. Department saves branch on it instead of a bare nil check.
type NoteState struct {
	Present bool      `json:"present"`
	NoteID  uuid.UUID `json:"note_id,omitempty"`
}

// Snapshot is the composite read model of everything recorded for a
// visit so far. It is recomputed on every fetch and never cached
// server-side.
type Snapshot struct {
	VisitID      uuid.UUID         `json:"visit_id"`
	CurrentState State             `json:"current_state"`
	NextState    State             `json:"next_state"`
	TotalCost    float64           `json:"total_cost"`
	Patient      *PatientInfo      `json:"patient_data"`
	Triage       *TriageRecord     `json:"triage_data"`
	Consultation *ConsultationNote `json:"consultation_data"`
	Lab          *LabResult        `json:"lab_data"`
	Pharmacy     *PharmacyDispense `json:"pharmacy_data"`
	Billing      *BillingRecord    `json:"billing_data"`
}

// Note returns the snapshot's consultation note state.
func (s *Snapshot) Note() NoteState {
	if s.Consultation == nil {
		return NoteState{}
	}
	return NoteState{Present: true, NoteID: s.Consultation.ID}
}
