package realtime

import "crabor/internal/core/domain/model/order"

// Wire event names, shared by the dispatcher and the socket gateway.
const (
	EventOrderCreated    = "order-created"
	EventOrderUpdated    = "order-updated"
	EventShipperAssigned = "shipper-assigned"
	EventLocationUpdate  = "location-update"
	EventOrderCancelled  = "order-cancelled"

	EventAuthenticated       = "authenticated"
	EventAuthenticationError = "authentication-error"
	EventSystemStats         = "system-stats"
)

// Event is one unit of real-time delivery: a wire event name plus its
// JSON-serializable payload.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// StatusMessage returns the human-readable notification line for a status,
// e.g. "order delivered". Included in order-updated payloads so clients can
// show it without their own status mapping.
func StatusMessage(s order.Status) string {
	switch s {
	case order.Pending:
		return "order placed"
	case order.Confirmed:
		return "order confirmed"
	case order.Preparing:
		return "order is being prepared"
	case order.Ready:
		return "order ready for pickup"
	case order.Assigned:
		return "shipper assigned"
	case order.PickedUp:
		return "order picked up"
	case order.Delivering:
		return "order on the way"
	case order.Delivered:
		return "order delivered"
	case order.Cancelled:
		return "order cancelled"
	case order.Refunded:
		return "order refunded"
	case order.Failed:
		return "delivery failed"
	default:
		return "order updated"
	}
}
