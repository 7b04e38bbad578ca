package domain

import (
	"time"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
)

// Node type constants.
const (
	NodeTypeFactory    = "factory"
	NodeTypeRetail     = "retail"
	NodeTypeIndividual = "individual"
)

// MaxNodeLevel caps the supplier hierarchy depth.
const MaxNodeLevel = 2

// ValidNodeTypes returns the set of valid node types.
func ValidNodeTypes() []string {
	return []string{NodeTypeFactory, NodeTypeRetail, NodeTypeIndividual}
}

// IsValidNodeType checks whether the given string is a known node type.
func IsValidNodeType(nodeType string) bool {
	for _, t := range ValidNodeTypes() {
		if t == nodeType {
			return true
		}
	}
	return false
}

// NetworkNode is one member of the supplier hierarchy. Level is derived at
// creation time and never changes afterwards; DebtToSupplier is writable only
// through the dedicated clearing operation.
type NetworkNode struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	NodeType       string    `json:"node_type"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Country        string    `json:"country"`
	City           string    `json:"city"`
	Street         string    `json:"street,omitempty"`
	HouseNumber    string    `json:"house_number"`
	SupplierID     *int64    `json:"supplier_id,omitempty"`
	SupplierName   string    `json:"supplier_name,omitempty"`
	DebtToSupplier float64   `json:"debt_to_supplier"`
	Level          int       `json:"level"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Product is a catalog item attached to a network node. The triple
// (network_node_id, name, model) is unique, enforced by the store.
type Product struct {
	ID            int64     `json:"id"`
	NetworkNodeID int64     `json:"network_node_id"`
	Name          string    `json:"name"`
	Model         string    `json:"model"`
	ReleaseDate   time.Time `json:"release_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ComputeNodeLevel derives a new node's level from its supplier. It is
// applied once, when the node is first persisted.
func ComputeNodeLevel(supplier *NetworkNode) int {
	if supplier == nil {
		return 0
	}
	return supplier.Level + 1
}

// CheckNodeInvariants runs the whole-object business rules before a node is
// committed: a factory has no supplier, a node is not its own supplier, and
// the supplier sits above the bottom of the hierarchy. The supplier argument
// is nil when the node has none; nodeID is zero for a node not yet persisted.
func CheckNodeInvariants(nodeType string, nodeID int64, supplierID *int64, supplier *NetworkNode) error {
	if supplierID == nil {
		return nil
	}
	if nodeType == NodeTypeFactory {
		return apperrors.BusinessRule("a factory cannot have a supplier")
	}
	if nodeID != 0 && *supplierID == nodeID {
		return apperrors.BusinessRule("a node cannot be its own supplier")
	}
	if supplier == nil {
		return apperrors.BusinessRule("supplier does not exist")
	}
	if supplier.Level >= MaxNodeLevel {
		return apperrors.BusinessRule("supplier is already at the maximum hierarchy depth")
	}
	return nil
}
