package commands

import (
	"context"

	"crabor/internal/core/domain/model/order"
	"crabor/internal/core/domain/services"
	"crabor/internal/core/ports"
)

// CancelOrderCommandHandler handles cancellation requests. Cancellation is a
// constrained transition: the authorizer enforces who may cancel, the
// aggregate enforces that only pending and confirmed orders can be cancelled.
// Both the order-cancelled and order-updated events go out after commit, so
// identity rooms see the state change even when the cancelling party is the
// other side of the order.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	authorizer services.TransitionAuthorizer
	publisher  ports.EventPublisher
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(
	uowFactory OrderUoWFactory,
	authorizer services.TransitionAuthorizer,
	publisher ports.EventPublisher,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		publisher:  publisher,
	}
}

// Handle processes the cancellation and returns the cancelled order.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
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

	decision, err := h.authorizer.Decide(o, cmd.Actor(), order.Cancelled)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, denialError(o, order.Cancelled, decision)
	}

	if err = o.Cancel(cmd.Actor().UserID(), cmd.Reason()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.OrderCancelled(o)
	h.publisher.OrderUpdated(o)
	return o, nil
}
