package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// AdminRepository handles persistence for admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	Update(ctx context.Context, admin *domain.Admin) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	List(ctx context.Context, filter AdminFilter) ([]domain.Admin, error)
	// ListLoads returns active admins, restricted to categoryID when set, with the
	// number of assigned tickets that are not closed, ordered by (count, id).
	ListLoads(ctx context.Context, categoryID *int64) ([]domain.AdminLoad, error)
	CountActive(ctx context.Context) (int, error)
}

// AdminFilter defines query params for admin listing.
type AdminFilter struct {
	Active      *bool
	CategoryID  *int64
	OrderByName bool
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository instantiates the repository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

const adminColumns = `
        SELECT a.id, a.email, a.password_hash, a.name, a.role, a.category_id, a.is_active,
               a.created_at, a.updated_at, c.name, c.color
        FROM admins a
        LEFT JOIN categories c ON c.id = a.category_id`

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (email, password_hash, name, role, category_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		admin.Email,
		admin.PasswordHash,
		admin.Name,
		admin.Role,
		admin.CategoryID,
		admin.IsActive,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	return translate(err)
}

func (r *adminRepository) Update(ctx context.Context, admin *domain.Admin) error {
	const query = `
        UPDATE admins
        SET email=$1, password_hash=$2, name=$3, role=$4, category_id=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		admin.Email,
		admin.PasswordHash,
		admin.Name,
		admin.Role,
		admin.CategoryID,
		admin.IsActive,
		admin.ID,
	).Scan(&admin.UpdatedAt)
	return translate(err)
}

func (r *adminRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	return r.fetchSingle(ctx, adminColumns+` WHERE a.id=$1`, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.fetchSingle(ctx, adminColumns+` WHERE a.email=$1`, email)
}

func (r *adminRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Admin, error) {
	admin, err := scanAdmin(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return admin, nil
}

func (r *adminRepository) List(ctx context.Context, filter AdminFilter) ([]domain.Admin, error) {
	query := adminColumns
	args := []any{}
	clauses := []string{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("a.is_active=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("a.category_id=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if filter.OrderByName {
		query += " ORDER BY a.name ASC, a.id ASC"
	} else {
		query += " ORDER BY a.created_at DESC, a.id DESC"
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *admin)
	}
	return result, rows.Err()
}

func (r *adminRepository) ListLoads(ctx context.Context, categoryID *int64) ([]domain.AdminLoad, error) {
	const query = `
        SELECT a.id, COUNT(t.id) AS ticket_count
        FROM admins a
        LEFT JOIN tickets t ON t.assigned_admin_id = a.id AND t.status <> 'closed'
        WHERE a.is_active = TRUE AND ($1::bigint IS NULL OR a.category_id = $1::bigint)
        GROUP BY a.id
        ORDER BY ticket_count ASC, a.id ASC`

	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.AdminLoad
	for rows.Next() {
		var load domain.AdminLoad
		if err := rows.Scan(&load.AdminID, &load.TicketCount); err != nil {
			return nil, err
		}
		result = append(result, load)
	}
	return result, rows.Err()
}

func (r *adminRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins WHERE is_active = TRUE`).Scan(&count)
	return count, translate(err)
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var admin domain.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Name,
		&admin.Role,
		&admin.CategoryID,
		&admin.IsActive,
		&admin.CreatedAt,
		&admin.UpdatedAt,
		&admin.CategoryName,
		&admin.CategoryColor,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
