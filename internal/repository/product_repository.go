package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/product-service/internal/domain"
)

type productRepository struct {
	db DBTX
}

// NewProductRepository returns a Postgres-backed implementation bound to db.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (id, user_id, name, description, price)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		product.ID,
		product.OwnerID,
		product.Name,
		product.Description,
		product.Price,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

// Update never touches user_id; ownership is fixed at creation.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, description=$2, price=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.ID,
	).Scan(&product.UpdatedAt)
	return mapReadError(err)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id=$1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `
        SELECT id, user_id, name, description, price, created_at, updated_at
        FROM products WHERE id=$1`
	var product domain.Product
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.OwnerID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, mapReadError(err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	const query = `
        SELECT id, user_id, name, description, price, created_at, updated_at
        FROM products ORDER BY created_at, id LIMIT $1 OFFSET $2`
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	const query = `
        SELECT id, user_id, name, description, price, created_at, updated_at
        FROM products WHERE user_id=$1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	result := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.OwnerID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}
