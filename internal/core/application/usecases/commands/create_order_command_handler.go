package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/core/domain/services"
	"crabor/internal/core/ports"
	"crabor/internal/pkg/errs"
)

// orderNumberAttempts bounds the regenerate-and-retry loop on order number
// collisions before giving up with a ConflictError.
const orderNumberAttempts = 3

// CreateOrderCommandHandler handles the business logic for order creation:
// computes the delivery estimate and the monetary breakdown, assigns the
// order id and number, and persists the order in pending status with its
// creation history entry. The order-created event is published only after
// the transaction commits.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, estimator, publisher)
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	fmt.Printf("order %s placed, ETA %d minutes", created.Number(), created.EtaMinutes())
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	estimator  services.DeliveryEstimator
	publisher  ports.EventPublisher
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	estimator services.DeliveryEstimator,
	publisher ports.EventPublisher,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		estimator:  estimator,
		publisher:  publisher,
	}
}

// Handle processes the order creation command and returns the created order.
// An order number collision regenerates the number and retries; persistent
// collisions surface as a ConflictError. Each attempt runs in its own unit of
// work: a unique violation aborts the surrounding database transaction, so a
// retry inside the same transaction could never succeed.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	distanceKm, fee, etaMinutes, err := h.estimator.Estimate(cmd.Pickup(), cmd.Dropoff())
	if err != nil {
		return nil, err
	}

	items, subtotal, err := buildItems(cmd.Items())
	if err != nil {
		return nil, err
	}

	pricing, err := order.NewPricing(subtotal, fee, cmd.Discount(), cmd.Tax(), cmd.ServiceFee())
	if err != nil {
		return nil, err
	}

	id := kernel.NewUUID()

	var created *order.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		created, err = order.NewOrder(order.NewOrderParams{
			ID:            id,
			Number:        newOrderNumber(),
			CustomerID:    cmd.CustomerID(),
			PartnerID:     cmd.PartnerID(),
			Items:         items,
			Pricing:       pricing,
			PaymentMethod: cmd.PaymentMethod(),
			DeliveryType:  cmd.DeliveryType(),
			Dropoff:       cmd.Dropoff(),
			DistanceKm:    distanceKm,
			EtaMinutes:    etaMinutes,
			Notes:         cmd.Notes(),
		})
		if err != nil {
			return nil, err
		}

		err = h.persist(ctx, created)
		if err == nil {
			break
		}
		if !errors.Is(err, errs.ErrConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	h.publisher.OrderCreated(created)
	return created, nil
}

// persist stores the order in a fresh unit of work, committed on success and
// rolled back otherwise.
func (h CreateOrderCommandHandler) persist(ctx context.Context, o *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// buildItems converts the requested lines into validated order items and
// sums the subtotal.
func buildItems(requested []CreateOrderItem) ([]order.Item, int64, error) {
	items := make([]order.Item, 0, len(requested))
	var subtotal int64

	for _, line := range requested {
		item, err := order.NewItem(line.ProductID, line.Name, line.Quantity, line.UnitPrice, line.Instructions)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		subtotal += item.LineTotal()
	}

	return items, subtotal, nil
}

// newOrderNumber generates a human-readable order number in the
// "ORD-<timestamp><random>" shape, e.g. "ORD-483920117". Uniqueness is
// enforced by the store; collisions are retried by the caller.
func newOrderNumber() string {
	timestamp := time.Now().UnixMilli() % 1_000_000
	return fmt.Sprintf("ORD-%06d%03d", timestamp, rand.IntN(1000)) //nolint:gosec // not a secret
}
