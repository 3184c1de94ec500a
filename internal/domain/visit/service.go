package visit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service drives the visit workflow: opening visits, assembling
// snapshots, saving department records, and advancing state.
type Service struct {
	visits   Repository
	records  RecordRepository
	patients PatientDirectory
	tx       TxRunner
	logger   zerolog.Logger
}

func NewService(visits Repository, records RecordRepository, patients PatientDirectory, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		visits:   visits,
		records:  records,
		patients: patients,
		tx:       tx,
		logger:   logger.With().Str("component", "visit-service").Logger(),
	}
}

// CreateVisitRequest opens a visit for a patient. Vitals may be
// captured in the same action; when present the triage record is
// written in the same transaction so a failed vitals write never
// leaves an orphan visit.
type CreateVisitRequest struct {
	PatientID  uuid.UUID  `json:"patient_id"`
	VitalSigns VitalSigns `json:"vital_signs,omitempty"`
}

// CreateVisit opens a new visit in TRIAGE for a patient with no open
// visit.
func (s *Service) CreateVisit(ctx context.Context, req CreateVisitRequest, operator string) (*Visit, error) {
	if _, err := s.patients.Lookup(ctx, req.PatientID); err != nil {
		return nil, err
	}

	open, err := s.visits.OpenByPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, ErrOpenVisitExists
	}

	v := &Visit{
		ID:           uuid.New(),
		PatientID:    req.PatientID,
		CurrentState: StateTriage,
		NextState:    StateTriage.DefaultNext(),
		TotalCost:    0,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.visits.Create(ctx, v); err != nil {
			return err
		}
		if len(req.VitalSigns) == 0 {
			return nil
		}
		rec := &TriageRecord{
			ID:         uuid.New(),
			VisitID:    v.ID,
			VitalSigns: req.VitalSigns,
			RecordedBy: operator,
		}
		return s.records.CreateTriage(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("visit_id", v.ID.String()).
		Str("patient_id", req.PatientID.String()).
		Str("operator", operator).
		Msg("visit opened")
	return v, nil
}

// CurrentVisitSnapshot resolves the patient's single open visit and
// assembles the composite read model. Zero open visits is a normal
// not-found; more than one is a data-integrity error, never a silent
// pick.
func (s *Service) CurrentVisitSnapshot(ctx context.Context, patientID uuid.UUID) (*Snapshot, error) {
	open, err := s.visits.OpenByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	switch len(open) {
	case 0:
		return nil, ErrNoOpenVisit
	case 1:
	default:
		s.logger.Error().
			Str("patient_id", patientID.String()).
			Int("open_visits", len(open)).
			Msg("patient has multiple open visits")
		return nil, ErrMultipleOpenVisits
	}
	return s.assembleSnapshot(ctx, open[0])
}

// SnapshotByVisit assembles the snapshot for a specific visit.
func (s *Service) SnapshotByVisit(ctx context.Context, visitID uuid.UUID) (*Snapshot, error) {
	v, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	return s.assembleSnapshot(ctx, v)
}

func (s *Service) assembleSnapshot(ctx context.Context, v *Visit) (*Snapshot, error) {
	snap := &Snapshot{
		VisitID:      v.ID,
		CurrentState: v.CurrentState,
		NextState:    v.NextState,
		TotalCost:    v.TotalCost,
	}

	patient, err := s.patients.Lookup(ctx, v.PatientID)
	if err != nil {
		return nil, fmt.Errorf("resolving patient: %w", err)
	}
	snap.Patient = patient

	if snap.Triage, err = s.records.TriageByVisit(ctx, v.ID); err != nil {
		return nil, err
	}
	if snap.Consultation, err = s.records.NoteByVisit(ctx, v.ID); err != nil {
		return nil, err
	}
	if snap.Lab, err = s.records.LabResultByVisit(ctx, v.ID); err != nil {
		return nil, err
	}
	if snap.Pharmacy, err = s.records.DispenseByVisit(ctx, v.ID); err != nil {
		return nil, err
	}
	if snap.Billing, err = s.records.BillingByVisit(ctx, v.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

// AdvanceState moves a visit to the next department queue. The
// asserted state must match the stored one or the call fails with
// ErrStateConflict and the visit is left untouched.
func (s *Service) AdvanceState(ctx context.Context, visitID uuid.UUID, asserted, next State, operator string) (*Visit, error) {
	if !asserted.Valid() || !next.Valid() {
		return nil, fmt.Errorf("%w: unknown state", ErrValidation)
	}
	if !asserted.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, asserted, next)
	}

	var v *Visit
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.visits.AdvanceState(ctx, visitID, asserted, next, next.DefaultNext())
		if err != nil {
			return err
		}
		return s.visits.RecordTransition(ctx, &StateTransition{
			ID:        uuid.New(),
			VisitID:   visitID,
			FromState: asserted,
			ToState:   next,
			MovedBy:   operator,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("visit_id", visitID.String()).
		Str("from", string(asserted)).
		Str("to", string(next)).
		Str("operator", operator).
		Msg("visit advanced")
	return v, nil
}

// Transitions returns a visit's recorded workflow history.
func (s *Service) Transitions(ctx context.Context, visitID uuid.UUID) ([]*StateTransition, error) {
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}
	return s.visits.Transitions(ctx, visitID)
}

// ListQueue returns the visits currently sitting in one department's
// queue.
func (s *Service) ListQueue(ctx context.Context, state State, limit, offset int) ([]*Visit, int, error) {
	if !state.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown state", ErrValidation)
	}
	return s.visits.ListByState(ctx, state, limit, offset)
}

// SaveTriage records vitals for a visit opened without them. A second
// triage record for the same visit is rejected.
func (s *Service) SaveTriage(ctx context.Context, visitID uuid.UUID, vitals VitalSigns, operator string) (*TriageRecord, error) {
	if len(vitals) == 0 {
		return nil, fmt.Errorf("%w: vital_signs is empty", ErrValidation)
	}
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}

	existing, err := s.records.TriageByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRecord
	}

	rec := &TriageRecord{
		ID:         uuid.New(),
		VisitID:    visitID,
		VitalSigns: vitals,
		RecordedBy: operator,
	}
	if err := s.records.CreateTriage(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// NoteRequest is the physician's consultation payload.
type NoteRequest struct {
	Diagnosis       string             `json:"diagnosis"`
	Prescription    []PrescriptionItem `json:"prescription"`
	LabTestsOrdered []LabTestOrder     `json:"lab_tests_ordered"`
}

// SaveConsultationNote creates the visit's note on first save and
// updates it in place thereafter, branching on the note's presence.
// The visit's next_state is re-routed to match the note's orders.
func (s *Service) SaveConsultationNote(ctx context.Context, visitID uuid.UUID, req NoteRequest, operator string) (*ConsultationNote, error) {
	if req.Diagnosis == "" {
		return nil, fmt.Errorf("%w: diagnosis is required", ErrValidation)
	}
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}

	existing, err := s.records.NoteByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	var note *ConsultationNote
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		note = &ConsultationNote{
			ID:              uuid.New(),
			VisitID:         visitID,
			Diagnosis:       req.Diagnosis,
			Prescription:    req.Prescription,
			LabTestsOrdered: req.LabTestsOrdered,
			Physician:       operator,
		}
		state := NoteState{}
		if existing != nil {
			state = NoteState{Present: true, NoteID: existing.ID}
		}
		if state.Present {
			note.ID = state.NoteID
			note.RecordedAt = existing.RecordedAt
			if err := s.records.UpdateNote(ctx, note); err != nil {
				return err
			}
		} else {
			if err := s.records.CreateNote(ctx, note); err != nil {
				return err
			}
		}
		return s.visits.SetNextState(ctx, visitID, note.NextQueue())
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// LabResultRequest is the laboratory's report payload.
type LabResultRequest struct {
	Results   []TestResult `json:"result"`
	TotalCost float64      `json:"total_cost"`
}

// SaveLabResult records the lab report against the visit's note.
func (s *Service) SaveLabResult(ctx context.Context, visitID uuid.UUID, req LabResultRequest, operator string) (*LabResult, error) {
	if len(req.Results) == 0 {
		return nil, fmt.Errorf("%w: result is empty", ErrValidation)
	}
	if req.TotalCost < 0 {
		return nil, fmt.Errorf("%w: total_cost must be non-negative", ErrValidation)
	}
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}

	note, err := s.records.NoteByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteMissing
	}

	existing, err := s.records.LabResultByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRecord
	}

	rec := &LabResult{
		ID:         uuid.New(),
		VisitID:    visitID,
		NoteID:     note.ID,
		Results:    req.Results,
		TotalCost:  req.TotalCost,
		RecordedBy: operator,
	}
	if err := s.records.CreateLabResult(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DispenseRequest is the pharmacy's payload. The economic total is
// computed server-side from the dispensed lines.
type DispenseRequest struct {
	Lines []DispenseLine `json:"prescriptions"`
}

// SaveDispense records what the pharmacy handed out.
func (s *Service) SaveDispense(ctx context.Context, visitID uuid.UUID, req DispenseRequest, operator string) (*PharmacyDispense, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: prescriptions is empty", ErrValidation)
	}
	for _, l := range req.Lines {
		if l.Cost < 0 || l.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative cost or quantity", ErrValidation)
		}
	}
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}

	note, err := s.records.NoteByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteMissing
	}

	existing, err := s.records.DispenseByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRecord
	}

	d := &PharmacyDispense{
		ID:          uuid.New(),
		VisitID:     visitID,
		NoteID:      note.ID,
		Lines:       req.Lines,
		Cost:        DispensedCost(req.Lines),
		DispensedBy: operator,
	}
	if err := s.records.CreateDispense(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// BillingRequest carries the consultation fee; lab and pharmacy costs
// come from the visit's own records.
type BillingRequest struct {
	ConsultationCost float64 `json:"consultation_cost"`
}

// SaveBilling settles the visit: it totals the department costs,
// writes the billing record, and stores the total on the visit, all
// in one transaction.
func (s *Service) SaveBilling(ctx context.Context, visitID uuid.UUID, req BillingRequest, operator string) (*BillingRecord, error) {
	if req.ConsultationCost < 0 {
		return nil, fmt.Errorf("%w: consultation_cost must be non-negative", ErrValidation)
	}
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}

	existing, err := s.records.BillingByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRecord
	}

	var labCost, pharmacyCost float64
	if lab, err := s.records.LabResultByVisit(ctx, visitID); err != nil {
		return nil, err
	} else if lab != nil {
		labCost = lab.TotalCost
	}
	if disp, err := s.records.DispenseByVisit(ctx, visitID); err != nil {
		return nil, err
	} else if disp != nil {
		pharmacyCost = disp.Cost
	}

	b := &BillingRecord{
		ID:               uuid.New(),
		VisitID:          visitID,
		ConsultationCost: req.ConsultationCost,
		LaboratoryCost:   labCost,
		PharmacyCost:     pharmacyCost,
		TotalCost:        req.ConsultationCost + labCost + pharmacyCost,
		BilledBy:         operator,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.records.CreateBilling(ctx, b); err != nil {
			return err
		}
		return s.visits.SetTotalCost(ctx, visitID, b.TotalCost)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("visit_id", visitID.String()).
		Float64("total_cost", b.TotalCost).
		Str("operator", operator).
		Msg("visit billed")
	return b, nil
}
