package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/pkg/database"
	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, network_node_id, name, model, release_date, created_at, updated_at`

// Create inserts a new product and fills in the generated ID and timestamps.
// A duplicate (node, name, model) triple surfaces as a constraint error.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (network_node_id, name, model, release_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.NetworkNodeID, p.Name, p.Model, p.ReleaseDate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "name/model", p.Name+"/"+p.Model)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProductRow(r.pool.QueryRow(ctx, query, id))
}

// ListByNode returns a node's products, newest first, with the total count.
func (r *ProductRepository) ListByNode(ctx context.Context, nodeID int64, p pagination.Params) ([]domain.Product, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE network_node_id = $1`, nodeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE network_node_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, nodeID, p.PerPage, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		prod, err := scanProductRow(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *prod)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

// Update modifies an existing product. A duplicate triple surfaces as a
// constraint error, same as on insert.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, model = $2, release_date = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, p.Name, p.Model, p.ReleaseDate, p.UpdatedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "name/model", p.Name+"/"+p.Model)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", fmt.Sprint(p.ID))
	}

	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", fmt.Sprint(id))
	}

	return nil
}

func scanProductRow(row rowScanner) (*domain.Product, error) {
	var p domain.Product

	err := row.Scan(
		&p.ID,
		&p.NetworkNodeID,
		&p.Name,
		&p.Model,
		&p.ReleaseDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}
