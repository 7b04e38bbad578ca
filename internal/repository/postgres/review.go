package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/repository"
	"github.com/Altair788/DigitalBazaar/pkg/database"
	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewColumns = `id, text, ad_id, author_id, created_at, updated_at`

// Create inserts a new review and fills in the generated ID and timestamps.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (text, ad_id, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, rv.Text, rv.AdID, rv.AuthorID).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	return scanReviewRow(r.pool.QueryRow(ctx, query, id))
}

// List returns reviews matching the filter, newest first.
func (r *ReviewRepository) List(ctx context.Context, f repository.ReviewFilter, p pagination.Params) ([]domain.Review, int64, error) {
	where := ``
	args := []any{}
	argn := 1

	if f.AdID != 0 {
		where = ` WHERE ad_id = $1`
		args = append(args, f.AdID)
		argn++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reviews`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argn, argn+1)
	args = append(args, p.PerPage, p.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReviewRow(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, total, nil
}

// Update modifies an existing review's text.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	rv.UpdatedAt = time.Now().UTC()

	query := `UPDATE reviews SET text = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, rv.Text, rv.UpdatedAt, rv.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", fmt.Sprint(rv.ID))
	}

	return nil
}

// Delete removes a review by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", fmt.Sprint(id))
	}

	return nil
}

func scanReviewRow(row rowScanner) (*domain.Review, error) {
	var rv domain.Review

	err := row.Scan(
		&rv.ID,
		&rv.Text,
		&rv.AdID,
		&rv.AuthorID,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}
