package commands

import (
	"errors"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/pkg/errs"
	"crabor/internal/pkg/guard"
)

var (
	ErrTransitionOrderCommandIsNotConstructed = errors.New(
		"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
	)
)

// TransitionOrderCommand represents an actor's request to move an order to a
// target status. The handler consults the transition authorizer before
// applying anything.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   actor.Actor
	target  order.Status
	note    string

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand validates the inputs and creates the command.
func NewTransitionOrderCommand(
	orderID kernel.UUID, a actor.Actor, target order.Status, note string,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		note:  note,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(a),
		cmd.setTarget(target),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c TransitionOrderCommand) OrderID() kernel.UUID { return c.orderID }

// Actor returns the verified identity requesting the transition.
func (c TransitionOrderCommand) Actor() actor.Actor { return c.actor }

// Target returns the requested status.
func (c TransitionOrderCommand) Target() order.Status { return c.target }

// Note returns the optional free-text note recorded in the history entry.
func (c TransitionOrderCommand) Note() string { return c.note }

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setActor(a actor.Actor) error {
	if err := a.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	c.actor = a
	return nil
}

func (c *TransitionOrderCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("status", err)
	}
	c.target = target
	return nil
}
