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

// NodeRepository implements repository.NodeRepository using PostgreSQL.
//
// debt_to_supplier is deliberately absent from the Update statement; the only
// write path for debt is ClearDebt. level is written once, on insert.
type NodeRepository struct {
	pool database.DBTX
}

// NewNodeRepository creates a new PostgreSQL-backed network node repository.
func NewNodeRepository(pool database.DBTX) *NodeRepository {
	return &NodeRepository{pool: pool}
}

// nodeColumns selects node fields plus the supplier's name via self-join.
const nodeColumns = `n.id, n.name, n.node_type, n.email, n.phone, n.country, n.city, n.street,
		n.house_number, n.supplier_id, s.name, n.debt_to_supplier, n.level, n.created_at, n.updated_at`

const nodeFrom = ` FROM network_nodes n LEFT JOIN network_nodes s ON s.id = n.supplier_id`

// Create inserts a new node with its computed level and fills in the
// generated ID and timestamps.
func (r *NodeRepository) Create(ctx context.Context, n *domain.NetworkNode) error {
	query := `
		INSERT INTO network_nodes (name, node_type, email, phone, country, city, street, house_number, supplier_id, debt_to_supplier, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		n.Name,
		n.NodeType,
		n.Email,
		nullString(n.Phone),
		n.Country,
		n.City,
		n.Street,
		n.HouseNumber,
		n.SupplierID,
		n.DebtToSupplier,
		n.Level,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("network node", "phone", n.Phone)
		}
		return fmt.Errorf("insert network node: %w", err)
	}

	return nil
}

// GetByID retrieves a node by its ID, including the supplier's name.
func (r *NodeRepository) GetByID(ctx context.Context, id int64) (*domain.NetworkNode, error) {
	query := `SELECT ` + nodeColumns + nodeFrom + ` WHERE n.id = $1`
	return scanNodeRow(r.pool.QueryRow(ctx, query, id))
}

// List returns nodes matching the filter, newest first. The country filter
// is a case-insensitive substring match.
func (r *NodeRepository) List(ctx context.Context, f repository.NodeFilter, p pagination.Params) ([]domain.NetworkNode, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argn := 1

	if f.Country != "" {
		where += fmt.Sprintf(` AND n.country ILIKE $%d`, argn)
		args = append(args, "%"+f.Country+"%")
		argn++
	}
	if f.NodeType != "" {
		where += fmt.Sprintf(` AND n.node_type = $%d`, argn)
		args = append(args, f.NodeType)
		argn++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*)`+nodeFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count network nodes: %w", err)
	}

	query := `SELECT ` + nodeColumns + nodeFrom + where +
		fmt.Sprintf(` ORDER BY n.created_at DESC LIMIT $%d OFFSET $%d`, argn, argn+1)
	args = append(args, p.PerPage, p.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list network nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.NetworkNode
	for rows.Next() {
		n, err := scanNodeRow(rows)
		if err != nil {
			return nil, 0, err
		}
		nodes = append(nodes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate network nodes: %w", err)
	}

	return nodes, total, nil
}

// Update modifies an existing node. debt_to_supplier and level are never
// written through this path.
func (r *NodeRepository) Update(ctx context.Context, n *domain.NetworkNode) error {
	n.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE network_nodes
		SET name = $1, node_type = $2, email = $3, phone = $4, country = $5,
		    city = $6, street = $7, house_number = $8, supplier_id = $9, updated_at = $10
		WHERE id = $11`

	ct, err := r.pool.Exec(ctx, query,
		n.Name,
		n.NodeType,
		n.Email,
		nullString(n.Phone),
		n.Country,
		n.City,
		n.Street,
		n.HouseNumber,
		n.SupplierID,
		n.UpdatedAt,
		n.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("network node", "phone", n.Phone)
		}
		return fmt.Errorf("update network node: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("network node", fmt.Sprint(n.ID))
	}

	return nil
}

// Delete removes a node by its ID. Children keep existing with their
// supplier reference cleared; owned products are cascaded, both via FK rules.
func (r *NodeRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM network_nodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete network node: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("network node", fmt.Sprint(id))
	}

	return nil
}

// ClearDebt zeroes debt_to_supplier for the given nodes and returns how many
// rows actually changed. Nodes already at zero are left untouched.
func (r *NodeRepository) ClearDebt(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE network_nodes
		SET debt_to_supplier = 0, updated_at = now()
		WHERE id = ANY($1) AND debt_to_supplier > 0`

	ct, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("clear debt: %w", err)
	}

	return ct.RowsAffected(), nil
}

func scanNodeRow(row rowScanner) (*domain.NetworkNode, error) {
	var (
		n                   domain.NetworkNode
		phone, supplierName *string
	)

	err := row.Scan(
		&n.ID,
		&n.Name,
		&n.NodeType,
		&n.Email,
		&phone,
		&n.Country,
		&n.City,
		&n.Street,
		&n.HouseNumber,
		&n.SupplierID,
		&supplierName,
		&n.DebtToSupplier,
		&n.Level,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan network node: %w", err)
	}

	n.Phone = derefString(phone)
	n.SupplierName = derefString(supplierName)

	return &n, nil
}
