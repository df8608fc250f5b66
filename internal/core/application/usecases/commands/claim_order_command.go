package commands

import (
	"errors"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/errs"
	"crabor/internal/pkg/guard"
)

var (
	ErrClaimOrderCommandIsNotConstructed = errors.New(
		"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
	)
)

// ClaimOrderCommand represents a shipper claiming a ready order for delivery.
// ShipperID is the shipper who will deliver: shippers claim for themselves,
// administrators may assign any shipper.
type ClaimOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	actor     actor.Actor
	shipperID kernel.UUID

	guard guard.ConstructorGuard
}

// NewClaimOrderCommand validates the inputs and creates the command.
func NewClaimOrderCommand(orderID kernel.UUID, a actor.Actor, shipperID kernel.UUID) (ClaimOrderCommand, error) {
	cmd := ClaimOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(a),
		cmd.setShipperID(shipperID),
	); err != nil {
		return ClaimOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to claim.
func (c ClaimOrderCommand) OrderID() kernel.UUID { return c.orderID }

// Actor returns the verified identity requesting the claim.
func (c ClaimOrderCommand) Actor() actor.Actor { return c.actor }

// ShipperID returns the shipper the order is claimed for.
func (c ClaimOrderCommand) ShipperID() kernel.UUID { return c.shipperID }

func (c *ClaimOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	c.orderID = orderID
	return nil
}

func (c *ClaimOrderCommand) setActor(a actor.Actor) error {
	if err := a.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	c.actor = a
	return nil
}

func (c *ClaimOrderCommand) setShipperID(shipperID kernel.UUID) error {
	if err := shipperID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shipperId", err)
	}
	c.shipperID = shipperID
	return nil
}
