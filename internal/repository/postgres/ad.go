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

// AdRepository implements repository.AdRepository using PostgreSQL.
type AdRepository struct {
	pool database.DBTX
}

// NewAdRepository creates a new PostgreSQL-backed ad repository.
func NewAdRepository(pool database.DBTX) *AdRepository {
	return &AdRepository{pool: pool}
}

const adColumns = `id, title, price, description, image_url, author_id, created_at, updated_at`

// Create inserts a new ad and fills in the generated ID and timestamps.
func (r *AdRepository) Create(ctx context.Context, a *domain.Ad) error {
	query := `
		INSERT INTO ads (title, price, description, image_url, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.Title,
		a.Price,
		a.Description,
		nullString(a.ImageURL),
		a.AuthorID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}

	return nil
}

// GetByID retrieves an ad by its ID.
func (r *AdRepository) GetByID(ctx context.Context, id int64) (*domain.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads WHERE id = $1`
	return scanAdRow(r.pool.QueryRow(ctx, query, id))
}

// List returns ads matching the filter, newest first. The title filter is a
// case-insensitive substring match.
func (r *AdRepository) List(ctx context.Context, f repository.AdFilter, p pagination.Params) ([]domain.Ad, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argn := 1

	if f.Title != "" {
		where += fmt.Sprintf(` AND title ILIKE $%d`, argn)
		args = append(args, "%"+f.Title+"%")
		argn++
	}
	if f.AuthorID != 0 {
		where += fmt.Sprintf(` AND author_id = $%d`, argn)
		args = append(args, f.AuthorID)
		argn++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM ads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ads: %w", err)
	}

	query := `SELECT ` + adColumns + ` FROM ads` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argn, argn+1)
	args = append(args, p.PerPage, p.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var ads []domain.Ad
	for rows.Next() {
		a, err := scanAdRow(rows)
		if err != nil {
			return nil, 0, err
		}
		ads = append(ads, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ads: %w", err)
	}

	return ads, total, nil
}

// Update modifies an existing ad.
func (r *AdRepository) Update(ctx context.Context, a *domain.Ad) error {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE ads
		SET title = $1, price = $2, description = $3, image_url = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query,
		a.Title,
		a.Price,
		a.Description,
		nullString(a.ImageURL),
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update ad: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("ad", fmt.Sprint(a.ID))
	}

	return nil
}

// Delete removes an ad by its ID. Reviews are removed by the FK cascade.
func (r *AdRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("ad", fmt.Sprint(id))
	}

	return nil
}

func scanAdRow(row rowScanner) (*domain.Ad, error) {
	var (
		a        domain.Ad
		imageURL *string
	)

	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Price,
		&a.Description,
		&imageURL,
		&a.AuthorID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan ad: %w", err)
	}

	a.ImageURL = derefString(imageURL)

	return &a, nil
}
