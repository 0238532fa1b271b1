package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CategoryRepository manages category reference data.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	// SeedDefaults inserts categories whose name does not exist yet.
	SeedDefaults(ctx context.Context, categories []domain.Category) error
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT id, name, description, color, created_at
        FROM categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Color, &cat.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	const query = `
        SELECT id, name, description, color, created_at
        FROM categories WHERE id=$1`
	var cat domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cat.ID,
		&cat.Name,
		&cat.Description,
		&cat.Color,
		&cat.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &cat, nil
}

func (r *categoryRepository) SeedDefaults(ctx context.Context, categories []domain.Category) error {
	const query = `
        INSERT INTO categories (name, description, color)
        VALUES ($1,$2,$3)
        ON CONFLICT (name) DO NOTHING`
	batch := &pgx.Batch{}
	for _, cat := range categories {
		batch.Queue(query, cat.Name, cat.Description, cat.Color)
	}
	return translate(r.pool.SendBatch(ctx, batch).Close())
}
