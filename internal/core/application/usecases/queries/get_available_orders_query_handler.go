package queries

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"crabor/internal/core/domain/model/order"
)

// GetAvailableOrdersQueryHandler retrieves the claimable order pool from the
// database: ready, unassigned, oldest first so waiting orders get claimed
// before fresh ones.
type GetAvailableOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableOrdersQueryHandler creates a handler for claimable pool
// queries.
func NewGetAvailableOrdersQueryHandler(db *gorm.DB) GetAvailableOrdersQueryHandler {
	return GetAvailableOrdersQueryHandler{db: db}
}

// Handle executes the query and returns the claimable orders.
func (h GetAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableOrdersQuery,
) ([]GetAvailableOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	available := make([]GetAvailableOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			partner_id,
			dropoff_lat,
			dropoff_lng,
			distance_km,
			delivery_fee,
			ready_at
		FROM orders
		WHERE status = ? AND shipper_id IS NULL
		ORDER BY ready_at
	`, order.Ready.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetAvailableOrdersQueryResponse
		var partnerID sql.NullString

		err = rows.Scan(
			&resp.ID,
			&resp.Number,
			&partnerID,
			&resp.DropoffLat,
			&resp.DropoffLng,
			&resp.DistanceKm,
			&resp.DeliveryFee,
			&resp.ReadyAt,
		)
		if err != nil {
			return nil, err
		}

		if partnerID.Valid {
			resp.PartnerID = &partnerID.String
		}
		resp.ReadyAt = resp.ReadyAt.UTC()
		available = append(available, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return available, nil
}
