package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"crabor/internal/pkg/errs"
)

// GetOrderQueryHandler reads one order row, including the JSONB items and
// status history columns, straight from the database.
//
// Example:
//
//	handler := NewGetOrderQueryHandler(db)
//	query, err := NewGetOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	detail, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get order: %w", err)
//	}
//	fmt.Printf("order %s is %s\n", detail.Number, detail.Status)
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single order queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. Unknown order ids fail with an
// ObjectNotFoundError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			customer_id,
			partner_id,
			shipper_id,
			status,
			items,
			subtotal,
			delivery_fee,
			discount,
			tax,
			service_fee,
			total,
			payment_method,
			payment_status,
			delivery_type,
			dropoff_lat,
			dropoff_lng,
			distance_km,
			eta_minutes,
			notes,
			status_history,
			created_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().String()).Row()

	var (
		resp        GetOrderQueryResponse
		partnerID   sql.NullString
		shipperID   sql.NullString
		itemsJSON   []byte
		historyJSON []byte
	)

	err := row.Scan(
		&resp.ID,
		&resp.Number,
		&resp.CustomerID,
		&partnerID,
		&shipperID,
		&resp.Status,
		&itemsJSON,
		&resp.Pricing.Subtotal,
		&resp.Pricing.DeliveryFee,
		&resp.Pricing.Discount,
		&resp.Pricing.Tax,
		&resp.Pricing.ServiceFee,
		&resp.Pricing.Total,
		&resp.PaymentMethod,
		&resp.PaymentStatus,
		&resp.DeliveryType,
		&resp.DropoffLat,
		&resp.DropoffLng,
		&resp.DistanceKm,
		&resp.EtaMinutes,
		&resp.Notes,
		&historyJSON,
		&resp.CreatedAt,
		&resp.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID().String())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if partnerID.Valid {
		resp.PartnerID = &partnerID.String
	}
	if shipperID.Valid {
		resp.ShipperID = &shipperID.String
	}

	if err = json.Unmarshal(itemsJSON, &resp.Items); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if err = json.Unmarshal(historyJSON, &resp.History); err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp.CreatedAt = resp.CreatedAt.UTC()
	resp.UpdatedAt = resp.UpdatedAt.UTC()
	for i := range resp.History {
		resp.History[i].At = resp.History[i].At.In(time.UTC)
	}

	return resp, nil
}
