// Package queries contains read-only operations that bypass the aggregate
// layer. Query handlers read projections straight from the database with raw
// SQL and never mutate state, the read side of the CQRS split.
package queries

import (
	"errors"
	"time"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/errs"
	"crabor/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves one order with its full detail: items, monetary
// breakdown, and the complete status history.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the order to fetch.
func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }

// OrderItemResponse is one order line in a query response.
type OrderItemResponse struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	Instructions string `json:"instructions,omitempty"`
}

// StatusChangeResponse is one history entry in a query response.
type StatusChangeResponse struct {
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
	Note    string    `json:"note,omitempty"`
	ActorID *string   `json:"actorId,omitempty"`
}

// PricingResponse is the monetary breakdown in a query response.
type PricingResponse struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Discount    int64 `json:"discount"`
	Tax         int64 `json:"tax"`
	ServiceFee  int64 `json:"serviceFee"`
	Total       int64 `json:"total"`
}

// GetOrderQueryResponse is the full order detail view.
type GetOrderQueryResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	CustomerID    string                 `json:"customerId"`
	PartnerID     *string                `json:"partnerId,omitempty"`
	ShipperID     *string                `json:"shipperId,omitempty"`
	Status        string                 `json:"status"`
	Items         []OrderItemResponse    `json:"items"`
	Pricing       PricingResponse        `json:"pricing"`
	PaymentMethod string                 `json:"paymentMethod"`
	PaymentStatus string                 `json:"paymentStatus"`
	DeliveryType  string                 `json:"deliveryType"`
	DropoffLat    float64                `json:"dropoffLat"`
	DropoffLng    float64                `json:"dropoffLng"`
	DistanceKm    float64                `json:"distanceKm"`
	EtaMinutes    int                    `json:"etaMinutes"`
	Notes         string                 `json:"notes,omitempty"`
	History       []StatusChangeResponse `json:"statusHistory"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}
