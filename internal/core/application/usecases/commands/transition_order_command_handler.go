package commands

import (
	"context"

	"crabor/internal/core/domain/model/order"
	"crabor/internal/core/domain/services"
	"crabor/internal/core/ports"
	"crabor/internal/pkg/errs"
)

// TransitionOrderCommandHandler handles status transition requests. The check
// sequence is fixed: authorization first (role capability, then ownership,
// then edge validity), then the aggregate transition, then the conditional
// update. The order-updated event goes out only after commit; a no-op
// re-request of the current status publishes nothing.
type TransitionOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	authorizer services.TransitionAuthorizer
	publisher  ports.EventPublisher
}

// NewTransitionOrderCommandHandler creates a handler for status transitions.
func NewTransitionOrderCommandHandler(
	uowFactory OrderUoWFactory,
	authorizer services.TransitionAuthorizer,
	publisher ports.EventPublisher,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		publisher:  publisher,
	}
}

// Handle processes the transition request and returns the post-transition
// order. Denials surface as UnauthorizedError (role or ownership) or
// InvalidTransitionError (undefined edge); a lost concurrent race surfaces
// as the repository's ConflictError.
func (h TransitionOrderCommandHandler) Handle(
	ctx context.Context, cmd TransitionOrderCommand,
) (*order.Order, error) {
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

	decision, err := h.authorizer.Decide(o, cmd.Actor(), cmd.Target())
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, denialError(o, cmd.Target(), decision)
	}

	changed, err := o.TransitionTo(cmd.Target(), cmd.Actor().UserID(), cmd.Note())
	if err != nil {
		return nil, err
	}

	if !changed {
		return o, nil
	}

	if err = repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.OrderUpdated(o)
	return o, nil
}

// denialError maps an authorization decision to the error the caller should
// see: role and ownership denials are authorization failures, an undefined
// edge is a transition failure.
func denialError(o *order.Order, target order.Status, decision services.Decision) error {
	switch decision.Reason {
	case services.ReasonRoleCannotRequest:
		return errs.NewUnauthorizedError(
			"role cannot request this status", order.StatusNames(decision.AllowedTargets))
	case services.ReasonNotOwner:
		return errs.NewUnauthorizedError(
			"actor does not own this order", order.StatusNames(decision.AllowedTargets))
	default:
		return errs.NewInvalidTransitionError(
			o.Status().String(), target.String(), order.StatusNames(decision.AllowedTargets))
	}
}
