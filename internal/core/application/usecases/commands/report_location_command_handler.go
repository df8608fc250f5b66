package commands

import (
	"context"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/ports"
	"crabor/internal/pkg/errs"
)

// ReportLocationCommandHandler handles shipper position reports. It verifies
// the reporter is the shipper assigned to the order and streams the position
// to the trackers. Nothing is written to the ledger, so no transaction is
// opened.
type ReportLocationCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewReportLocationCommandHandler creates a handler for position reports.
func NewReportLocationCommandHandler(
	uowFactory OrderUoWFactory, publisher ports.EventPublisher,
) ReportLocationCommandHandler {
	return ReportLocationCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle verifies the reporter and publishes the position.
func (h ReportLocationCommandHandler) Handle(ctx context.Context, cmd ReportLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if cmd.Actor().Role() != actor.RoleShipper {
		return errs.NewUnauthorizedError("only shippers report positions", nil)
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	shipperID := o.ShipperID()
	if shipperID == nil || !shipperID.IsEqual(cmd.Actor().UserID()) {
		return errs.NewUnauthorizedError("actor is not the shipper of this order", nil)
	}

	h.publisher.LocationUpdated(o.ID(), *shipperID, cmd.Position().Lat(), cmd.Position().Lng())
	return nil
}
