package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/Altair788/DigitalBazaar/pkg/kafka"

	"github.com/Altair788/DigitalBazaar/internal/domain"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicUserRegistered    = "bazaar.user.registered"
	TopicUserPasswordReset = "bazaar.user.password_reset"
	TopicNodeCreated       = "bazaar.node.created"
	TopicNodeDebtCleared   = "bazaar.node.debt_cleared"
)

// Aggregate type constants.
const (
	AggregateTypeUser = "user"
	AggregateTypeNode = "network_node"
)

// Source identifier for events originating from this service.
const SourceBazaar = "digital-bazaar"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserPasswordResetData is the payload for a user.password_reset event.
type UserPasswordResetData struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// NodeCreatedData is the payload for a node.created event.
type NodeCreatedData struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NodeType   string `json:"node_type"`
	Level      int    `json:"level"`
	SupplierID *int64 `json:"supplier_id,omitempty"`
	Country    string `json:"country"`
}

// NodeDebtClearedData is the payload for a node.debt_cleared event.
type NodeDebtClearedData struct {
	NodeIDs []int64 `json:"node_ids"`
	Cleared int64   `json:"cleared"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}

	aggregateID := strconv.FormatInt(user.ID, 10)
	event, err := pkgkafka.NewEvent(TopicUserRegistered, aggregateID, AggregateTypeUser, SourceBazaar, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishUserPasswordReset publishes a user.password_reset event.
func (p *Producer) PublishUserPasswordReset(ctx context.Context, userID int64, email string) error {
	data := UserPasswordResetData{
		UserID: userID,
		Email:  email,
	}

	aggregateID := strconv.FormatInt(userID, 10)
	event, err := pkgkafka.NewEvent(TopicUserPasswordReset, aggregateID, AggregateTypeUser, SourceBazaar, data)
	if err != nil {
		return fmt.Errorf("create user.password_reset event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserPasswordReset, event); err != nil {
		return fmt.Errorf("publish user.password_reset event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.password_reset event",
		slog.Int64("user_id", userID),
	)

	return nil
}

// PublishNodeCreated publishes a node.created event.
func (p *Producer) PublishNodeCreated(ctx context.Context, node *domain.NetworkNode) error {
	data := NodeCreatedData{
		ID:         node.ID,
		Name:       node.Name,
		NodeType:   node.NodeType,
		Level:      node.Level,
		SupplierID: node.SupplierID,
		Country:    node.Country,
	}

	aggregateID := strconv.FormatInt(node.ID, 10)
	event, err := pkgkafka.NewEvent(TopicNodeCreated, aggregateID, AggregateTypeNode, SourceBazaar, data)
	if err != nil {
		return fmt.Errorf("create node.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicNodeCreated, event); err != nil {
		return fmt.Errorf("publish node.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published node.created event",
		slog.Int64("node_id", node.ID),
		slog.String("node_type", node.NodeType),
		slog.Int("level", node.Level),
	)

	return nil
}

// PublishNodeDebtCleared publishes a node.debt_cleared event covering a batch
// of nodes. The batch is keyed by the first node in the list.
func (p *Producer) PublishNodeDebtCleared(ctx context.Context, nodeIDs []int64, cleared int64) error {
	if len(nodeIDs) == 0 {
		return nil
	}

	data := NodeDebtClearedData{
		NodeIDs: nodeIDs,
		Cleared: cleared,
	}

	aggregateID := strconv.FormatInt(nodeIDs[0], 10)
	event, err := pkgkafka.NewEvent(TopicNodeDebtCleared, aggregateID, AggregateTypeNode, SourceBazaar, data)
	if err != nil {
		return fmt.Errorf("create node.debt_cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicNodeDebtCleared, event); err != nil {
		return fmt.Errorf("publish node.debt_cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published node.debt_cleared event",
		slog.Int("nodes", len(nodeIDs)),
		slog.Int64("cleared", cleared),
	)

	return nil
}
