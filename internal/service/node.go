package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/event"
	"github.com/Altair788/DigitalBazaar/internal/repository"
)

// requiredNodeFields must be present in a create payload.
var requiredNodeFields = []string{"name", "node_type", "email", "country", "city", "house_number"}

// NodeService implements the business logic for the supplier network.
// It is the only mutation path for nodes: payload validation, hierarchy
// invariants, and level assignment all happen here before anything is
// persisted.
type NodeService struct {
	nodeRepo repository.NodeRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewNodeService creates a new node service.
func NewNodeService(nodeRepo repository.NodeRepository, producer *event.Producer, logger *slog.Logger) *NodeService {
	return &NodeService{
		nodeRepo: nodeRepo,
		producer: producer,
		logger:   logger,
	}
}

// CreateNode validates a payload, checks the hierarchy invariants, computes
// the node's level from its supplier, and persists it. The payload must be
// decoded with json.Decoder.UseNumber so numeric fields keep full precision.
func (s *NodeService) CreateNode(ctx context.Context, payload map[string]any) (*domain.NetworkNode, error) {
	for _, field := range requiredNodeFields {
		if v, ok := payload[field]; !ok || v == nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s is required", field))
		}
	}

	node := &domain.NetworkNode{}
	if err := domain.ApplyNodePayload(node, payload); err != nil {
		return nil, err
	}

	supplierID, _, err := domain.SupplierIDFromPayload(payload)
	if err != nil {
		return nil, err
	}

	supplier, err := s.resolveSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckNodeInvariants(node.NodeType, 0, supplierID, supplier); err != nil {
		return nil, err
	}

	node.SupplierID = supplierID
	node.Level = domain.ComputeNodeLevel(supplier)
	if supplier != nil {
		node.SupplierName = supplier.Name
	}

	if err := s.nodeRepo.Create(ctx, node); err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}

	// Publish creation event (non-blocking on failure).
	if err := s.producer.PublishNodeCreated(ctx, node); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish node.created event",
			slog.Int64("node_id", node.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "network node created",
		slog.Int64("node_id", node.ID),
		slog.String("node_type", node.NodeType),
		slog.Int("level", node.Level),
	)

	return node, nil
}

// GetNode retrieves a node by ID, supplier name included.
func (s *NodeService) GetNode(ctx context.Context, id int64) (*domain.NetworkNode, error) {
	node, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

// ListNodes returns nodes matching the filter, newest first.
func (s *NodeService) ListNodes(ctx context.Context, f repository.NodeFilter, p pagination.Params) ([]domain.NetworkNode, int64, error) {
	nodes, total, err := s.nodeRepo.List(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list nodes: %w", err)
	}
	return nodes, total, nil
}

// UpdateNode applies a partial update. debt_to_supplier is stripped from the
// payload unconditionally: debt only changes through ClearDebt. The node's
// level is never recomputed, even when the supplier changes.
func (s *NodeService) UpdateNode(ctx context.Context, id int64, payload map[string]any) (*domain.NetworkNode, error) {
	delete(payload, "debt_to_supplier")

	node, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get node for update: %w", err)
	}

	if err := domain.ApplyNodePayload(node, payload); err != nil {
		return nil, err
	}

	supplierID, supplierPresent, err := domain.SupplierIDFromPayload(payload)
	if err != nil {
		return nil, err
	}
	if !supplierPresent {
		supplierID = node.SupplierID
	}

	supplier, err := s.resolveSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckNodeInvariants(node.NodeType, node.ID, supplierID, supplier); err != nil {
		return nil, err
	}

	node.SupplierID = supplierID
	if supplier != nil {
		node.SupplierName = supplier.Name
	} else {
		node.SupplierName = ""
	}

	if err := s.nodeRepo.Update(ctx, node); err != nil {
		return nil, fmt.Errorf("update node: %w", err)
	}

	s.logger.InfoContext(ctx, "network node updated",
		slog.Int64("node_id", node.ID),
	)

	return node, nil
}

// DeleteNode removes a node. Child nodes keep their levels and lose their
// supplier reference; the node's products are removed with it.
func (s *NodeService) DeleteNode(ctx context.Context, id int64) error {
	if err := s.nodeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	s.logger.InfoContext(ctx, "network node deleted",
		slog.Int64("node_id", id),
	)

	return nil
}

// ClearDebt zeroes the supplier debt of the given nodes and reports how many
// actually changed. This is the only write path for debt.
func (s *NodeService) ClearDebt(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.InvalidInput("ids must not be empty")
	}

	cleared, err := s.nodeRepo.ClearDebt(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("clear debt: %w", err)
	}

	if cleared > 0 {
		if err := s.producer.PublishNodeDebtCleared(ctx, ids, cleared); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish node.debt_cleared event",
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "supplier debt cleared",
		slog.Int("nodes", len(ids)),
		slog.Int64("cleared", cleared),
	)

	return cleared, nil
}

// resolveSupplier loads the supplier node when an ID is given. A missing
// supplier is a business rule violation, not a lookup error.
func (s *NodeService) resolveSupplier(ctx context.Context, supplierID *int64) (*domain.NetworkNode, error) {
	if supplierID == nil {
		return nil, nil
	}

	supplier, err := s.nodeRepo.GetByID(ctx, *supplierID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	return supplier, nil
}
