package ports

import (
	"context"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Implementations must enforce the optimistic concurrency discipline the
// ledger relies on: Update succeeds only when the stored version still
// matches the version the aggregate was loaded with.
type OrderRepository interface {
	// Add persists a new order aggregate. A duplicate order number fails
	// with a ConflictError so the caller can regenerate and retry.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order, conditional on the
	// stored version matching the aggregate's loaded version. A lost race
	// fails with a ConflictError; the caller must reload before retrying.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns an ObjectNotFoundError for unknown ids.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// FindUnassignedReady retrieves orders in Ready status with no shipper,
	// the pool shippers claim from.
	FindUnassignedReady(ctx context.Context) ([]*order.Order, error)
}
