package queries

import (
	"errors"
	"time"

	"crabor/internal/pkg/guard"
)

var (
	ErrGetAvailableOrdersQueryIsNotConstructed = errors.New(
		"GetAvailableOrdersQuery must be created via NewGetAvailableOrdersQuery constructor",
	)
)

// GetAvailableOrdersQuery retrieves the claimable pool: orders in ready
// status with no shipper assigned. Shippers poll this list to pick work.
type GetAvailableOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailableOrdersQuery creates a query for the claimable order pool.
// This is a parameterless query.
func NewGetAvailableOrdersQuery() GetAvailableOrdersQuery {
	return GetAvailableOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableOrdersQueryIsNotConstructed)
}

// GetAvailableOrdersQueryResponse is one claimable order: enough for a
// shipper to decide whether the trip is worth taking.
type GetAvailableOrdersQueryResponse struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	PartnerID   *string   `json:"partnerId,omitempty"`
	DropoffLat  float64   `json:"dropoffLat"`
	DropoffLng  float64   `json:"dropoffLng"`
	DistanceKm  float64   `json:"distanceKm"`
	DeliveryFee int64     `json:"deliveryFee"`
	ReadyAt     time.Time `json:"readyAt"`
}
