package commands

import (
	"context"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/core/ports"
	"crabor/internal/pkg/errs"
)

// ClaimOrderCommandHandler handles shipper claims. Claiming is the only way
// an order acquires a shipper reference and the only way it reaches assigned
// status. Two shippers racing for the same order are serialized by the
// repository's conditional update: exactly one claim commits, the loser gets
// a ConflictError.
type ClaimOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewClaimOrderCommandHandler creates a handler for order claims.
func NewClaimOrderCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the claim and returns the assigned order. Shippers may
// only claim for themselves; administrators may assign any shipper.
func (h ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	switch cmd.Actor().Role() {
	case actor.RoleShipper:
		if !cmd.ShipperID().IsEqual(cmd.Actor().UserID()) {
			return nil, errs.NewUnauthorizedError("shippers claim orders for themselves", nil)
		}
	case actor.RoleAdmin:
	default:
		return nil, errs.NewUnauthorizedError("only shippers claim orders", nil)
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()

	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = o.AssignShipper(cmd.ShipperID(), cmd.Actor().UserID()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.ShipperAssigned(o)
	h.publisher.OrderUpdated(o)
	return o, nil
}
