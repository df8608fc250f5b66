package realtime

import (
	"log/slog"
	"time"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
)

// Dispatcher maps committed order changes to rooms and pushes the events
// through the hub. It implements ports.EventPublisher and is invoked by the
// command handlers strictly after their transaction commits, so clients never
// observe a status that did not land.
//
// The target room set is computed from the post-commit order:
//
//	order-created    → order room, customer, admins
//	order-updated    → order room, customer, partner and shipper when set, admins
//	shipper-assigned → customer, partner when set
//	order-cancelled  → order room, admins
//	location-update  → order room, admins only
type Dispatcher struct {
	hub    *Hub
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher publishing through the given hub.
func NewDispatcher(hub *Hub, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		hub:    hub,
		logger: logger.With("component", "realtime-dispatcher"),
	}
}

// itemSummary is the compact line-item view inside order-created payloads.
type itemSummary struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type orderCreatedPayload struct {
	OrderID string        `json:"orderId"`
	Number  string        `json:"number"`
	Status  string        `json:"status"`
	Items   []itemSummary `json:"items"`
	Total   int64         `json:"total"`
}

type orderUpdatedPayload struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type shipperAssignedPayload struct {
	OrderID   string `json:"orderId"`
	ShipperID string `json:"shipperId"`
}

type orderCancelledPayload struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason,omitempty"`
}

type locationUpdatePayload struct {
	OrderID   string    `json:"orderId"`
	ShipperID string    `json:"shipperId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreated announces a freshly created order.
func (d *Dispatcher) OrderCreated(o *order.Order) {
	items := make([]itemSummary, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, itemSummary{Name: item.Name(), Quantity: item.Quantity()})
	}

	d.publish(Event{
		Name: EventOrderCreated,
		Data: orderCreatedPayload{
			OrderID: o.ID().String(),
			Number:  o.Number(),
			Status:  o.Status().String(),
			Items:   items,
			Total:   o.Pricing().Total(),
		},
	},
		OrderRoom(o.ID()),
		UserRoom(o.CustomerID()),
		RoleRoom(actor.RoleAdmin),
	)
}

// OrderUpdated announces a committed status change to every party on the
// order.
func (d *Dispatcher) OrderUpdated(o *order.Order) {
	rooms := []RoomKey{
		OrderRoom(o.ID()),
		UserRoom(o.CustomerID()),
	}
	if partnerID := o.PartnerID(); partnerID != nil {
		rooms = append(rooms, UserRoom(*partnerID))
	}
	if shipperID := o.ShipperID(); shipperID != nil {
		rooms = append(rooms, UserRoom(*shipperID))
	}
	rooms = append(rooms, RoleRoom(actor.RoleAdmin))

	d.publish(Event{
		Name: EventOrderUpdated,
		Data: orderUpdatedPayload{
			OrderID:   o.ID().String(),
			Status:    o.Status().String(),
			Timestamp: o.UpdatedAt(),
			Message:   StatusMessage(o.Status()),
		},
	}, rooms...)
}

// ShipperAssigned announces a successful claim to the customer and, when
// set, the partner.
func (d *Dispatcher) ShipperAssigned(o *order.Order) {
	shipperID := o.ShipperID()
	if shipperID == nil {
		return
	}

	rooms := []RoomKey{UserRoom(o.CustomerID())}
	if partnerID := o.PartnerID(); partnerID != nil {
		rooms = append(rooms, UserRoom(*partnerID))
	}

	d.publish(Event{
		Name: EventShipperAssigned,
		Data: shipperAssignedPayload{
			OrderID:   o.ID().String(),
			ShipperID: shipperID.String(),
		},
	}, rooms...)
}

// OrderCancelled announces a cancellation.
func (d *Dispatcher) OrderCancelled(o *order.Order) {
	d.publish(Event{
		Name: EventOrderCancelled,
		Data: orderCancelledPayload{
			OrderID: o.ID().String(),
			Reason:  o.CancellationReason(),
		},
	},
		OrderRoom(o.ID()),
		RoleRoom(actor.RoleAdmin),
	)
}

// LocationUpdated streams a shipper position to the order's trackers and
// administrators only, never the full customer/partner set.
func (d *Dispatcher) LocationUpdated(orderID kernel.UUID, shipperID kernel.UUID, lat, lng float64) {
	d.publish(Event{
		Name: EventLocationUpdate,
		Data: locationUpdatePayload{
			OrderID:   orderID.String(),
			ShipperID: shipperID.String(),
			Lat:       lat,
			Lng:       lng,
			Timestamp: time.Now().UTC(),
		},
	},
		OrderRoom(orderID),
		RoleRoom(actor.RoleAdmin),
	)
}

func (d *Dispatcher) publish(event Event, rooms ...RoomKey) {
	d.hub.Broadcast(event, rooms...)
	d.logger.Debug("event published", "event", event.Name, "rooms", len(rooms))
}
