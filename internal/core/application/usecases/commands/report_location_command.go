package commands

import (
	"errors"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/errs"
	"crabor/internal/pkg/guard"
)

var (
	ErrReportLocationCommandIsNotConstructed = errors.New(
		"ReportLocationCommand must be created via NewReportLocationCommand constructor",
	)
)

// ReportLocationCommand represents a shipper reporting their position while
// delivering an order. Positions are streamed to trackers, never persisted
// on the order.
type ReportLocationCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	actor    actor.Actor
	position kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewReportLocationCommand validates the inputs and creates the command.
func NewReportLocationCommand(
	orderID kernel.UUID, a actor.Actor, position kernel.GeoPoint,
) (ReportLocationCommand, error) {
	cmd := ReportLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(a),
		cmd.setPosition(position),
	); err != nil {
		return ReportLocationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportLocationCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being delivered.
func (c ReportLocationCommand) OrderID() kernel.UUID { return c.orderID }

// Actor returns the verified identity reporting the position.
func (c ReportLocationCommand) Actor() actor.Actor { return c.actor }

// Position returns the reported coordinates.
func (c ReportLocationCommand) Position() kernel.GeoPoint { return c.position }

func (c *ReportLocationCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	c.orderID = orderID
	return nil
}

func (c *ReportLocationCommand) setActor(a actor.Actor) error {
	if err := a.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	c.actor = a
	return nil
}

func (c *ReportLocationCommand) setPosition(position kernel.GeoPoint) error {
	if err := position.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("position", err)
	}
	c.position = position
	return nil
}
