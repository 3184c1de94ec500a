package staff

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

const memberColumns = `id, first_name, last_name, email, role, active, created_at, updated_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email,
		&m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PGRepository) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO staff_member (id, first_name, last_name, email, role, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.Role, m.Active,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("inserting staff member: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_member WHERE id = $1`, memberColumns)

	m, err := scanMember(r.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("selecting staff member: %w", err)
	}
	return m, nil
}

func (r *PGRepository) Update(ctx context.Context, m *Member) error {
	query := `
		UPDATE staff_member
		SET first_name = $2, last_name = $3, email = $4, role = $5, active = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.Role, m.Active,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("updating staff member: %w", err)
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, role string, limit, offset int) ([]*Member, int, error) {
	where := ""
	args := []interface{}{}
	if role != "" {
		where = `WHERE role = $1`
		args = append(args, role)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM staff_member %s`, where)
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting staff: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM staff_member %s
		ORDER BY last_name, first_name
		LIMIT $%d OFFSET $%d`, memberColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing staff: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning staff member: %w", err)
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}
