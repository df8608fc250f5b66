package commands

import (
	"errors"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/pkg/errs"
	"crabor/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// CreateOrderItem is one requested order line, as received from the customer.
type CreateOrderItem struct {
	ProductID    kernel.UUID
	Name         string
	Quantity     int
	UnitPrice    int64
	Instructions string
}

// CreateOrderCommand represents a customer's request to place a new order.
// It carries the validated draft; the handler computes the monetary
// breakdown and the delivery estimate.
//
// Example:
//
//	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderDraft{
//	    CustomerID:    customerID,
//	    PartnerID:     &partnerID,
//	    Items:         items,
//	    PaymentMethod: order.PaymentCOD,
//	    DeliveryType:  order.DeliveryStandard,
//	    Pickup:        kitchen,
//	    Dropoff:       home,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order draft: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	customerID    kernel.UUID
	partnerID     *kernel.UUID
	items         []CreateOrderItem
	discount      int64
	tax           int64
	serviceFee    int64
	paymentMethod order.PaymentMethod
	deliveryType  order.DeliveryType
	pickup        kernel.GeoPoint
	dropoff       kernel.GeoPoint
	notes         string

	guard guard.ConstructorGuard
}

// CreateOrderDraft carries the raw inputs for NewCreateOrderCommand.
type CreateOrderDraft struct {
	CustomerID    kernel.UUID
	PartnerID     *kernel.UUID
	Items         []CreateOrderItem
	Discount      int64
	Tax           int64
	ServiceFee    int64
	PaymentMethod order.PaymentMethod
	DeliveryType  order.DeliveryType
	Pickup        kernel.GeoPoint
	Dropoff       kernel.GeoPoint
	Notes         string
}

// NewCreateOrderCommand validates the draft and creates the command.
// Empty items and missing customer or delivery coordinates are rejected
// here, before any state exists.
func NewCreateOrderCommand(draft CreateOrderDraft) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		partnerID:     draft.PartnerID,
		items:         append([]CreateOrderItem(nil), draft.Items...),
		discount:      draft.Discount,
		tax:           draft.Tax,
		serviceFee:    draft.ServiceFee,
		paymentMethod: draft.PaymentMethod,
		deliveryType:  draft.DeliveryType,
		notes:         draft.Notes,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomerID(draft.CustomerID),
		cmd.setPickup(draft.Pickup),
		cmd.setDropoff(draft.Dropoff),
		cmd.validateItems(),
		cmd.paymentMethod.Validate(),
		cmd.deliveryType.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// CustomerID returns the ordering customer's identifier.
func (c CreateOrderCommand) CustomerID() kernel.UUID { return c.customerID }

// PartnerID returns the preparing partner's identifier, if known.
func (c CreateOrderCommand) PartnerID() *kernel.UUID { return c.partnerID }

// Items returns the requested order lines.
func (c CreateOrderCommand) Items() []CreateOrderItem {
	return append([]CreateOrderItem(nil), c.items...)
}

// Discount returns the discount to apply.
func (c CreateOrderCommand) Discount() int64 { return c.discount }

// Tax returns the tax amount.
func (c CreateOrderCommand) Tax() int64 { return c.tax }

// ServiceFee returns the platform service fee.
func (c CreateOrderCommand) ServiceFee() int64 { return c.serviceFee }

// PaymentMethod returns how the customer pays.
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod { return c.paymentMethod }

// DeliveryType returns the requested delivery type.
func (c CreateOrderCommand) DeliveryType() order.DeliveryType { return c.deliveryType }

// Pickup returns the partner's pickup coordinates.
func (c CreateOrderCommand) Pickup() kernel.GeoPoint { return c.pickup }

// Dropoff returns the customer's delivery coordinates.
func (c CreateOrderCommand) Dropoff() kernel.GeoPoint { return c.dropoff }

// Notes returns the customer's free-text notes.
func (c CreateOrderCommand) Notes() string { return c.notes }

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("pickup", err)
	}
	c.pickup = pickup
	return nil
}

func (c *CreateOrderCommand) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("dropoff", err)
	}
	c.dropoff = dropoff
	return nil
}

func (c CreateOrderCommand) validateItems() error {
	if len(c.items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	return nil
}
