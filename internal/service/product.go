package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/repository"
)

// ProductService implements the business logic for node catalog products.
type ProductService struct {
	productRepo repository.ProductRepository
	nodeRepo    repository.NodeRepository
	logger      *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, nodeRepo repository.NodeRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		nodeRepo:    nodeRepo,
		logger:      logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Model       string
	ReleaseDate time.Time
}

// UpdateProductInput holds the parameters for a partial product update.
type UpdateProductInput struct {
	Name        *string
	Model       *string
	ReleaseDate *time.Time
}

// CreateProduct attaches a new product to a node. The (node, name, model)
// triple must be unique; the store reports duplicates as a conflict.
func (s *ProductService) CreateProduct(ctx context.Context, nodeID int64, input CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if strings.TrimSpace(input.Model) == "" {
		return nil, apperrors.InvalidInput("model is required")
	}

	// The node must exist before we attach products to it.
	if _, err := s.nodeRepo.GetByID(ctx, nodeID); err != nil {
		return nil, fmt.Errorf("get node for product: %w", err)
	}

	product := &domain.Product{
		NetworkNodeID: nodeID,
		Name:          input.Name,
		Model:         input.Model,
		ReleaseDate:   input.ReleaseDate,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.Int64("node_id", nodeID),
	)

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns a node's products, newest first.
func (s *ProductService) ListProducts(ctx context.Context, nodeID int64, p pagination.Params) ([]domain.Product, int64, error) {
	products, total, err := s.productRepo.ListByNode(ctx, nodeID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct applies a partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.InvalidInput("name must not be blank")
		}
		product.Name = *input.Name
	}
	if input.Model != nil {
		if strings.TrimSpace(*input.Model) == "" {
			return nil, apperrors.InvalidInput("model must not be blank")
		}
		product.Model = *input.Model
	}
	if input.ReleaseDate != nil {
		product.ReleaseDate = *input.ReleaseDate
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}
