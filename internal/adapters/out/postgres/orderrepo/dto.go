// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows, with the
// items and status history stored as JSONB documents inside the order row.
package orderrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The order number carries a unique index so duplicate numbers are rejected at
// the storage layer, and the status/shipper index serves the claimable pool
// query.
type OrderDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number     string     `gorm:"uniqueIndex"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index"`
	PartnerID  *uuid.UUID `gorm:"type:uuid;index"`
	ShipperID  *uuid.UUID `gorm:"type:uuid;index:idx_orders_status_shipper"`
	Status     string     `gorm:"index:idx_orders_status_shipper"`

	Items         []byte `gorm:"type:jsonb"`
	StatusHistory []byte `gorm:"type:jsonb"`

	Subtotal    int64
	DeliveryFee int64
	Discount    int64
	Tax         int64
	ServiceFee  int64
	Total       int64

	PaymentMethod string
	PaymentStatus string

	DeliveryType string
	DropoffLat   float64
	DropoffLng   float64
	DistanceKm   float64
	EtaMinutes   int

	Notes              string
	CancellationReason string
	CancelledBy        *uuid.UUID `gorm:"type:uuid"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	PreparingAt *time.Time
	ReadyAt     *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time

	Version int
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// itemDTO is one order line inside the items JSONB document.
type itemDTO struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	Instructions string `json:"instructions,omitempty"`
}

// statusChangeDTO is one entry inside the status history JSONB document.
type statusChangeDTO struct {
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
	Note    string    `json:"note,omitempty"`
	ActorID *string   `json:"actorId,omitempty"`
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	items := make([]itemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, itemDTO{
			ProductID:    item.ProductID().String(),
			Name:         item.Name(),
			Quantity:     item.Quantity(),
			UnitPrice:    item.UnitPrice(),
			Instructions: item.Instructions(),
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, err
	}

	history := make([]statusChangeDTO, 0, len(aggregate.History()))
	for _, change := range aggregate.History() {
		entry := statusChangeDTO{
			Status: change.Status.String(),
			At:     change.At,
			Note:   change.Note,
		}
		if change.ActorID != nil {
			actorID := change.ActorID.String()
			entry.ActorID = &actorID
		}
		history = append(history, entry)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return OrderDTO{}, err
	}

	pricing := aggregate.Pricing()

	return OrderDTO{
		ID:                 aggregate.ID().Bytes(),
		Number:             aggregate.Number(),
		CustomerID:         aggregate.CustomerID().Bytes(),
		PartnerID:          optionalUUID(aggregate.PartnerID()),
		ShipperID:          optionalUUID(aggregate.ShipperID()),
		Status:             aggregate.Status().String(),
		Items:              itemsJSON,
		StatusHistory:      historyJSON,
		Subtotal:           pricing.Subtotal(),
		DeliveryFee:        pricing.DeliveryFee(),
		Discount:           pricing.Discount(),
		Tax:                pricing.Tax(),
		ServiceFee:         pricing.ServiceFee(),
		Total:              pricing.Total(),
		PaymentMethod:      string(aggregate.PaymentMethod()),
		PaymentStatus:      string(aggregate.PaymentStatus()),
		DeliveryType:       string(aggregate.DeliveryType()),
		DropoffLat:         aggregate.Dropoff().Lat(),
		DropoffLng:         aggregate.Dropoff().Lng(),
		DistanceKm:         aggregate.DistanceKm(),
		EtaMinutes:         aggregate.EtaMinutes(),
		Notes:              aggregate.Notes(),
		CancellationReason: aggregate.CancellationReason(),
		CancelledBy:        optionalUUID(aggregate.CancelledBy()),
		CreatedAt:          aggregate.CreatedAt(),
		UpdatedAt:          aggregate.UpdatedAt(),
		ConfirmedAt:        aggregate.ConfirmedAt(),
		PreparingAt:        aggregate.PreparingAt(),
		ReadyAt:            aggregate.ReadyAt(),
		AssignedAt:         aggregate.AssignedAt(),
		PickedUpAt:         aggregate.PickedUpAt(),
		DeliveredAt:        aggregate.DeliveredAt(),
		CancelledAt:        aggregate.CancelledAt(),
		Version:            aggregate.Version(),
	}, nil
}

// toDomain converts a database row to an order aggregate using RestoreOrder,
// which re-validates the structural invariants.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	partnerID, err := optionalKernelUUID(dto.PartnerID)
	if err != nil {
		return nil, err
	}
	shipperID, err := optionalKernelUUID(dto.ShipperID)
	if err != nil {
		return nil, err
	}
	cancelledBy, err := optionalKernelUUID(dto.CancelledBy)
	if err != nil {
		return nil, err
	}

	var itemDTOs []itemDTO
	if err = json.Unmarshal(dto.Items, &itemDTOs); err != nil {
		return nil, err
	}
	items := make([]order.Item, 0, len(itemDTOs))
	for _, raw := range itemDTOs {
		productID, itemErr := kernel.UUIDFromString(raw.ProductID)
		if itemErr != nil {
			return nil, itemErr
		}
		item, itemErr := order.NewItem(productID, raw.Name, raw.Quantity, raw.UnitPrice, raw.Instructions)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var historyDTOs []statusChangeDTO
	if err = json.Unmarshal(dto.StatusHistory, &historyDTOs); err != nil {
		return nil, err
	}
	history := make([]order.StatusChange, 0, len(historyDTOs))
	for _, raw := range historyDTOs {
		status, histErr := order.StatusFromString(raw.Status)
		if histErr != nil {
			return nil, histErr
		}
		entry := order.StatusChange{
			Status: status,
			At:     raw.At.UTC(),
			Note:   raw.Note,
		}
		if raw.ActorID != nil {
			actorID, actorErr := kernel.UUIDFromString(*raw.ActorID)
			if actorErr != nil {
				return nil, actorErr
			}
			entry.ActorID = &actorID
		}
		history = append(history, entry)
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	pricing, err := order.RestorePricing(
		dto.Subtotal, dto.DeliveryFee, dto.Discount, dto.Tax, dto.ServiceFee, dto.Total)
	if err != nil {
		return nil, err
	}

	dropoff, err := kernel.NewGeoPoint(dto.DropoffLat, dto.DropoffLng)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		NewOrderParams: order.NewOrderParams{
			ID:            id,
			Number:        dto.Number,
			CustomerID:    customerID,
			PartnerID:     partnerID,
			Items:         items,
			Pricing:       pricing,
			PaymentMethod: order.PaymentMethod(dto.PaymentMethod),
			DeliveryType:  order.DeliveryType(dto.DeliveryType),
			Dropoff:       dropoff,
			DistanceKm:    dto.DistanceKm,
			EtaMinutes:    dto.EtaMinutes,
			Notes:         dto.Notes,
		},
		ShipperID:          shipperID,
		Status:             status,
		History:            history,
		PaymentStatus:      order.PaymentStatus(dto.PaymentStatus),
		CancellationReason: dto.CancellationReason,
		CancelledBy:        cancelledBy,
		CreatedAt:          dto.CreatedAt.UTC(),
		UpdatedAt:          dto.UpdatedAt.UTC(),
		ConfirmedAt:        dto.ConfirmedAt,
		PreparingAt:        dto.PreparingAt,
		ReadyAt:            dto.ReadyAt,
		AssignedAt:         dto.AssignedAt,
		PickedUpAt:         dto.PickedUpAt,
		DeliveredAt:        dto.DeliveredAt,
		CancelledAt:        dto.CancelledAt,
		Version:            dto.Version,
	})
}

func optionalUUID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func optionalKernelUUID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil //nolint:nilnil //absent optional reference
	}
	parsed, err := kernel.UUIDFromBytes((*id)[:])
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
