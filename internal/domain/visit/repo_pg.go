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

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const visitColumns = `id, patient_id, current_state, next_state, total_cost, created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.PatientID, &v.CurrentState, &v.NextState,
		&v.TotalCost, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) Create(ctx context.Context, v *Visit) error {
	query := `
		INSERT INTO visit (id, patient_id, current_state, next_state, total_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		v.ID, v.PatientID, v.CurrentState, v.NextState, v.TotalCost,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		// The partial unique index on open visits backstops the
		// service precheck when two creates race.
		if db.IsUniqueViolation(err) {
			return ErrOpenVisitExists
		}
		return fmt.Errorf("inserting visit: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	query := fmt.Sprintf(`SELECT %s FROM visit WHERE id = $1`, visitColumns)

	v, err := scanVisit(r.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("selecting visit: %w", err)
	}
	return v, nil
}

func (r *PGRepository) OpenByPatient(ctx context.Context, patientID uuid.UUID) ([]*Visit, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM visit
		WHERE patient_id = $1 AND current_state <> $2
		ORDER BY created_at`, visitColumns)

	rows, err := r.conn(ctx).Query(ctx, query, patientID, StateCompleted)
	if err != nil {
		return nil, fmt.Errorf("selecting open visits: %w", err)
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *PGRepository) ListByState(ctx context.Context, state State, limit, offset int) ([]*Visit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM visit WHERE current_state = $1`, state,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting queue: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM visit
		WHERE current_state = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`, visitColumns)

	rows, err := r.conn(ctx).Query(ctx, query, state, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing queue: %w", err)
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}

// AdvanceState is the optimistic-concurrency core: the UPDATE matches
// on both id and the asserted current state, so a stale assertion
// touches zero rows.
func (r *PGRepository) AdvanceState(ctx context.Context, id uuid.UUID, asserted, next, nextDefault State) (*Visit, error) {
	query := fmt.Sprintf(`
		UPDATE visit
		SET current_state = $3, next_state = $4, updated_at = now()
		WHERE id = $1 AND current_state = $2
		RETURNING %s`, visitColumns)

	v, err := scanVisit(r.conn(ctx).QueryRow(ctx, query, id, asserted, next, nextDefault))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("advancing visit state: %w", err)
	}

	// Zero rows means either the visit is gone or the state moved
	// under us. Distinguish for the caller.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStateConflict
}

func (r *PGRepository) SetNextState(ctx context.Context, id uuid.UUID, next State) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE visit SET next_state = $2, updated_at = now() WHERE id = $1`, id, next)
	if err != nil {
		return fmt.Errorf("setting next state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVisitNotFound
	}
	return nil
}

func (r *PGRepository) SetTotalCost(ctx context.Context, id uuid.UUID, total float64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE visit SET total_cost = $2, updated_at = now() WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("setting total cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVisitNotFound
	}
	return nil
}

func (r *PGRepository) RecordTransition(ctx context.Context, t *StateTransition) error {
	query := `
		INSERT INTO visit_transition (id, visit_id, from_state, to_state, moved_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING moved_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		t.ID, t.VisitID, t.FromState, t.ToState, t.MovedBy,
	).Scan(&t.MovedAt)
	if err != nil {
		return fmt.Errorf("recording transition: %w", err)
	}
	return nil
}

func (r *PGRepository) Transitions(ctx context.Context, visitID uuid.UUID) ([]*StateTransition, error) {
	query := `
		SELECT id, visit_id, from_state, to_state, moved_by, moved_at
		FROM visit_transition
		WHERE visit_id = $1
		ORDER BY moved_at`

	rows, err := r.conn(ctx).Query(ctx, query, visitID)
	if err != nil {
		return nil, fmt.Errorf("selecting transitions: %w", err)
	}
	defer rows.Close()

	var transitions []*StateTransition
	for rows.Next() {
		var t StateTransition
		if err := rows.Scan(&t.ID, &t.VisitID, &t.FromState, &t.ToState, &t.MovedBy, &t.MovedAt); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		transitions = append(transitions, &t)
	}
	return transitions, rows.Err()
}
