package ports

import (
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
)

// EventPublisher is the outbound port for real-time notifications.
//
// Publish calls are made only after the ledger transaction has committed and
// returned, and they are fire-and-forget: implementations must never block
// the caller on network delivery, never return delivery errors, and never
// influence ledger correctness. Delivery failures to individual connections
// are logged and dropped.
type EventPublisher interface {
	// OrderCreated announces a freshly created order to its order room, the
	// customer, and administrators.
	OrderCreated(o *order.Order)

	// OrderUpdated announces a committed status change to every party on
	// the post-commit order: order room, customer, partner and shipper when
	// set, and administrators.
	OrderUpdated(o *order.Order)

	// ShipperAssigned announces a successful claim to the customer and,
	// when set, the partner.
	ShipperAssigned(o *order.Order)

	// OrderCancelled announces a cancellation to the order room and
	// administrators.
	OrderCancelled(o *order.Order)

	// LocationUpdated streams a shipper position to the order room and
	// administrators only, never the full customer/partner set.
	LocationUpdated(orderID kernel.UUID, shipperID kernel.UUID, lat, lng float64)
}
