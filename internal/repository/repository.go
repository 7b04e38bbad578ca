package repository

import (
	"context"

	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"
)

// AdFilter narrows ad listings.
type AdFilter struct {
	// Title is matched case-insensitively as a substring.
	Title string
	// AuthorID restricts the listing to one author when non-zero.
	AuthorID int64
}

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	// AdID restricts the listing to one ad when non-zero.
	AdID int64
}

// NodeFilter narrows network node listings.
type NodeFilter struct {
	// Country is matched case-insensitively as a substring.
	Country string
	// NodeType restricts the listing to one node type when set.
	NodeType string
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and assigns its generated ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users ordered newest first, with the total count.
	List(ctx context.Context, p pagination.Params) ([]domain.User, int64, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by identifier.
	Delete(ctx context.Context, id int64) error
}

// TokenRepository stores hashed verification and password-reset tokens.
type TokenRepository interface {
	// Create stores a new token record and assigns its generated ID.
	Create(ctx context.Context, token *domain.UserToken) error

	// GetByHash retrieves a token record by its sha256 hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.UserToken, error)

	// Delete removes a single token record.
	Delete(ctx context.Context, id int64) error

	// DeleteByUserAndPurpose invalidates all of a user's tokens for one purpose.
	DeleteByUserAndPurpose(ctx context.Context, userID int64, purpose string) error
}

// AdRepository defines the interface for ad persistence operations.
type AdRepository interface {
	Create(ctx context.Context, ad *domain.Ad) error
	GetByID(ctx context.Context, id int64) (*domain.Ad, error)

	// List returns ads matching the filter, newest first, with the total count.
	List(ctx context.Context, f AdFilter, p pagination.Params) ([]domain.Ad, int64, error)

	Update(ctx context.Context, ad *domain.Ad) error
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	List(ctx context.Context, f ReviewFilter, p pagination.Params) ([]domain.Review, int64, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id int64) error
}

// NodeRepository defines the interface for network node persistence.
// Update never touches debt_to_supplier or level; ClearDebt is the only
// write path for debt.
type NodeRepository interface {
	Create(ctx context.Context, node *domain.NetworkNode) error
	GetByID(ctx context.Context, id int64) (*domain.NetworkNode, error)
	List(ctx context.Context, f NodeFilter, p pagination.Params) ([]domain.NetworkNode, int64, error)
	Update(ctx context.Context, node *domain.NetworkNode) error
	Delete(ctx context.Context, id int64) error

	// ClearDebt zeroes debt_to_supplier for the given nodes and returns how
	// many rows changed.
	ClearDebt(ctx context.Context, ids []int64) (int64, error)
}

// ProductRepository defines the interface for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// ListByNode returns a node's products, newest first, with the total count.
	ListByNode(ctx context.Context, nodeID int64, p pagination.Params) ([]domain.Product, int64, error)

	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}
