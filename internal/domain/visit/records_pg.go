package visit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careflow/careflow/internal/platform/db"
)

// PGRecordRepository is the PostgreSQL implementation of
// RecordRepository. Line items and the vitals map live in JSONB
// columns so new readings and order shapes need no migration.
type PGRecordRepository struct {
	pool *pgxpool.Pool
}

func NewPGRecordRepository(pool *pgxpool.Pool) *PGRecordRepository {
	return &PGRecordRepository{pool: pool}
}

func (r *PGRecordRepository) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *PGRecordRepository) CreateTriage(ctx context.Context, rec *TriageRecord) error {
	query := `
		INSERT INTO triage_record (id, visit_id, vital_signs, recorded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING recorded_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		rec.ID, rec.VisitID, rec.VitalSigns, rec.RecordedBy,
	).Scan(&rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting triage record: %w", err)
	}
	return nil
}

func (r *PGRecordRepository) TriageByVisit(ctx context.Context, visitID uuid.UUID) (*TriageRecord, error) {
	query := `
		SELECT id, visit_id, vital_signs, recorded_by, recorded_at
		FROM triage_record WHERE visit_id = $1`

	var rec TriageRecord
	err := r.conn(ctx).QueryRow(ctx, query, visitID).Scan(
		&rec.ID, &rec.VisitID, &rec.VitalSigns, &rec.RecordedBy, &rec.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting triage record: %w", err)
	}
	return &rec, nil
}

func (r *PGRecordRepository) CreateNote(ctx context.Context, n *ConsultationNote) error {
	query := `
		INSERT INTO consultation_note (id, visit_id, diagnosis, prescription, lab_tests_ordered, physician)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING recorded_at, updated_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		n.ID, n.VisitID, n.Diagnosis, n.Prescription, n.LabTestsOrdered, n.Physician,
	).Scan(&n.RecordedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting consultation note: %w", err)
	}
	return nil
}

func (r *PGRecordRepository) UpdateNote(ctx context.Context, n *ConsultationNote) error {
	query := `
		UPDATE consultation_note
		SET diagnosis = $2, prescription = $3, lab_tests_ordered = $4, physician = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		n.ID, n.Diagnosis, n.Prescription, n.LabTestsOrdered, n.Physician,
	).Scan(&n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoteMissing
		}
		return fmt.Errorf("updating consultation note: %w", err)
	}
	return nil
}

func (r *PGRecordRepository) NoteByVisit(ctx context.Context, visitID uuid.UUID) (*ConsultationNote, error) {
	query := `
		SELECT id, visit_id, diagnosis, prescription, lab_tests_ordered, physician, recorded_at, updated_at
		FROM consultation_note WHERE visit_id = $1`

	var n ConsultationNote
	err := r.conn(ctx).QueryRow(ctx, query, visitID).Scan(
		&n.ID, &n.VisitID, &n.Diagnosis, &n.Prescription, &n.LabTestsOrdered,
		&n.Physician, &n.RecordedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting consultation note: %w", err)
	}
	return &n, nil
}

func (r *PGRecordRepository) CreateLabResult(ctx context.Context, rec *LabResult) error {
	query := `
		INSERT INTO lab_result (id, visit_id, note_id, results, total_cost, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING recorded_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		rec.ID, rec.VisitID, rec.NoteID, rec.Results, rec.TotalCost, rec.RecordedBy,
	).Scan(&rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting lab result: %w", err)
	}
	return nil
}

func (r *PGRecordRepository) LabResultByVisit(ctx context.Context, visitID uuid.UUID) (*LabResult, error) {
	query := `
		SELECT id, visit_id, note_id, results, total_cost, recorded_by, recorded_at
		FROM lab_result WHERE visit_id = $1`

	var rec LabResult
	err := r.conn(ctx).QueryRow(ctx, query, visitID).Scan(
		&rec.ID, &rec.VisitID, &rec.NoteID, &rec.Results, &rec.TotalCost,
		&rec.RecordedBy, &rec.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting lab result: %w", err)
	}
	return &rec, nil
}

func (r *PGRecordRepository) CreateDispense(ctx context.Context, d *PharmacyDispense) error {
	query := `
		INSERT INTO pharmacy_dispense (id, visit_id, note_id, lines, cost, dispensed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING dispensed_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		d.ID, d.VisitID, d.NoteID, d.Lines, d.Cost, d.DispensedBy,
	).Scan(&d.DispensedAt)
	if err != nil {
		return fmt.Errorf("inserting pharmacy dispense: %w", err)
	}
	return nil
}

func (r *PGRecordRepository) DispenseByVisit(ctx context.Context, visitID uuid.UUID) (*PharmacyDispense, error) {
	query := `
		SELECT id, visit_id, note_id, lines, cost, dispensed_by, dispensed_at
		FROM pharmacy_dispense WHERE visit_id = $1`

	var d PharmacyDispense
	err := r.conn(ctx).QueryRow(ctx, query, visitID).Scan(
		&d.ID, &d.VisitID, &d.NoteID, &d.Lines, &d.Cost, &d.DispensedBy, &d.DispensedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting pharmacy dispense: %w", err)
	}
	return &d, nil
}

func (r *PGRecordRepository) CreateBilling(ctx context.Context, b *BillingRecord) error {
	query := `
		INSERT INTO billing_record (id, visit_id, consultation_cost, laboratory_cost, pharmacy_cost, total_cost, billed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING recorded_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		b.ID, b.VisitID, b.ConsultationCost, b.LaboratoryCost, b.PharmacyCost, b.TotalCost, b.BilledBy,
	).Scan(&b.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting billing record: %w", err)
	}
	return nil
}

func (r *PGRecordRepository) BillingByVisit(ctx context.Context, visitID uuid.UUID) (*BillingRecord, error) {
	query := `
		SELECT id, visit_id, consultation_cost, laboratory_cost, pharmacy_cost, total_cost, billed_by, recorded_at
		FROM billing_record WHERE visit_id = $1`

	var b BillingRecord
	err := r.conn(ctx).QueryRow(ctx, query, visitID).Scan(
		&b.ID, &b.VisitID, &b.ConsultationCost, &b.LaboratoryCost, &b.PharmacyCost,
		&b.TotalCost, &b.BilledBy, &b.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting billing record: %w", err)
	}
	return &b, nil
}
