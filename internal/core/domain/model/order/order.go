package order

import (
	"errors"
	"fmt"
	"time"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder. This ensures all orders are
	// properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrShipperAlreadyAssigned is returned when claiming an order that
	// already has a shipper.
	ErrShipperAlreadyAssigned = errors.New("order already has a shipper assigned")
)

// StatusChange is one entry of an order's append-only status history.
// ActorID is nil for the creation entry and for system-initiated changes.
type StatusChange struct {
	Status  Status
	At      time.Time
	Note    string
	ActorID *kernel.UUID
}

// Order is the aggregate root owning the order lifecycle: who ordered what
// from whom, the monetary breakdown, the current status, and the append-only
// history of every accepted transition.
//
// Order maintains these invariants:
//   - pricing total equals the breakdown sum within PricingTolerance
//   - history length equals the number of accepted transitions plus one
//     (the creation entry), and the current status is always the status of
//     the last history entry
//   - status only moves along the edges of the transition table
//   - a shipper reference appears exactly once, when the order is claimed
//
// The struct uses private fields so every mutation goes through a validated
// method. Authorization (who may request a transition) is not the
// aggregate's concern; see the TransitionAuthorizer domain service.
type Order struct {
	id         kernel.UUID
	number     string
	customerID kernel.UUID
	partnerID  *kernel.UUID
	shipperID  *kernel.UUID

	items   []Item
	pricing Pricing

	status  Status
	history []StatusChange

	paymentMethod PaymentMethod
	paymentStatus PaymentStatus

	deliveryType DeliveryType
	dropoff      kernel.GeoPoint
	distanceKm   float64
	etaMinutes   int

	notes              string
	cancellationReason string
	cancelledBy        *kernel.UUID

	createdAt   time.Time
	updatedAt   time.Time
	confirmedAt *time.Time
	preparingAt *time.Time
	readyAt     *time.Time
	assignedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	cancelledAt *time.Time

	version int

	isConstructed bool
}

// NewOrderParams carries the validated inputs for creating an order.
type NewOrderParams struct {
	ID            kernel.UUID
	Number        string
	CustomerID    kernel.UUID
	PartnerID     *kernel.UUID
	Items         []Item
	Pricing       Pricing
	PaymentMethod PaymentMethod
	DeliveryType  DeliveryType
	Dropoff       kernel.GeoPoint
	DistanceKm    float64
	EtaMinutes    int
	Notes         string
}

// NewOrder creates an order in Pending status with a single creation history
// entry. It fails with a validation error when items are empty or when the
// customer/delivery fields are missing, and never produces a partially
// initialized aggregate.
func NewOrder(params NewOrderParams) (*Order, error) {
	if err := errors.Join(
		validateID("id", params.ID),
		validateNumber(params.Number),
		validateID("customerId", params.CustomerID),
		validateOptionalID("partnerId", params.PartnerID),
		validateItems(params.Items),
		params.Pricing.Validate(),
		params.PaymentMethod.Validate(),
		params.DeliveryType.Validate(),
		params.Dropoff.Validate(),
		validateDistance(params.DistanceKm),
	); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := &Order{
		id:            params.ID,
		number:        params.Number,
		customerID:    params.CustomerID,
		partnerID:     params.PartnerID,
		items:         append([]Item(nil), params.Items...),
		pricing:       params.Pricing,
		status:        Pending,
		paymentMethod: params.PaymentMethod,
		paymentStatus: PaymentPending,
		deliveryType:  params.DeliveryType,
		dropoff:       params.Dropoff,
		distanceKm:    params.DistanceKm,
		etaMinutes:    params.EtaMinutes,
		notes:         params.Notes,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	o.history = []StatusChange{{
		Status: Pending,
		At:     now,
		Note:   "order created",
	}}

	return o, nil
}

// RestoreOrderParams carries the full persisted state for rebuilding an
// order aggregate.
type RestoreOrderParams struct {
	NewOrderParams
	ShipperID          *kernel.UUID
	Status             Status
	History            []StatusChange
	PaymentStatus      PaymentStatus
	CancellationReason string
	CancelledBy        *kernel.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ConfirmedAt        *time.Time
	PreparingAt        *time.Time
	ReadyAt            *time.Time
	AssignedAt         *time.Time
	PickedUpAt         *time.Time
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	Version            int
}

// RestoreOrder rebuilds an aggregate from persistence. It re-checks the
// structural invariants (pricing sum, history/status agreement) so corrupted
// rows surface as errors instead of invalid aggregates.
func RestoreOrder(params RestoreOrderParams) (*Order, error) {
	if err := errors.Join(
		validateID("id", params.ID),
		validateNumber(params.Number),
		validateID("customerId", params.CustomerID),
		validateItems(params.Items),
		params.Pricing.Validate(),
		params.Status.Validate(),
		params.PaymentStatus.Validate(),
		validateHistory(params.History, params.Status),
	); err != nil {
		return nil, err
	}

	o := &Order{
		id:                 params.ID,
		number:             params.Number,
		customerID:         params.CustomerID,
		partnerID:          params.PartnerID,
		shipperID:          params.ShipperID,
		items:              append([]Item(nil), params.Items...),
		pricing:            params.Pricing,
		status:             params.Status,
		history:            append([]StatusChange(nil), params.History...),
		paymentMethod:      params.PaymentMethod,
		paymentStatus:      params.PaymentStatus,
		deliveryType:       params.DeliveryType,
		dropoff:            params.Dropoff,
		distanceKm:         params.DistanceKm,
		etaMinutes:         params.EtaMinutes,
		notes:              params.Notes,
		cancellationReason: params.CancellationReason,
		cancelledBy:        params.CancelledBy,
		createdAt:          params.CreatedAt,
		updatedAt:          params.UpdatedAt,
		confirmedAt:        params.ConfirmedAt,
		preparingAt:        params.PreparingAt,
		readyAt:            params.ReadyAt,
		assignedAt:         params.AssignedAt,
		pickedUpAt:         params.PickedUpAt,
		deliveredAt:        params.DeliveredAt,
		cancelledAt:        params.CancelledAt,
		version:            params.Version,
		isConstructed:      true,
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
// Call this when reconstructing orders from persistence.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// Number returns the human-readable order number, e.g. "ORD-483920117".
func (o *Order) Number() string { return o.number }

// CustomerID returns the ordering customer's identifier.
func (o *Order) CustomerID() kernel.UUID { return o.customerID }

// PartnerID returns the preparing partner's identifier, nil until known.
func (o *Order) PartnerID() *kernel.UUID { return o.partnerID }

// ShipperID returns the delivering shipper's identifier, nil until claimed.
func (o *Order) ShipperID() *kernel.UUID { return o.shipperID }

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

// Pricing returns the monetary breakdown.
func (o *Order) Pricing() Pricing { return o.pricing }

// Status returns the current lifecycle status.
func (o *Order) Status() Status { return o.status }

// History returns a copy of the append-only status history. The first entry
// is always the creation entry.
func (o *Order) History() []StatusChange {
	return append([]StatusChange(nil), o.history...)
}

// PaymentMethod returns how the customer pays.
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }

// PaymentStatus returns the settlement state of the payment.
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }

// DeliveryType returns the delivery type.
func (o *Order) DeliveryType() DeliveryType { return o.deliveryType }

// Dropoff returns the delivery destination coordinates.
func (o *Order) Dropoff() kernel.GeoPoint { return o.dropoff }

// DistanceKm returns the estimated partner-to-customer distance.
func (o *Order) DistanceKm() float64 { return o.distanceKm }

// EtaMinutes returns the delivery estimate computed at creation time.
func (o *Order) EtaMinutes() int { return o.etaMinutes }

// Notes returns the customer's free-text notes.
func (o *Order) Notes() string { return o.notes }

// CancellationReason returns the reason recorded on cancellation, if any.
func (o *Order) CancellationReason() string { return o.cancellationReason }

// CancelledBy returns who cancelled the order, nil if not cancelled.
func (o *Order) CancelledBy() *kernel.UUID { return o.cancelledBy }

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt returns the timestamp of the last accepted mutation.
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// ConfirmedAt returns when the partner confirmed the order, if it did.
func (o *Order) ConfirmedAt() *time.Time { return o.confirmedAt }

// PreparingAt returns when preparation started, if it did.
func (o *Order) PreparingAt() *time.Time { return o.preparingAt }

// ReadyAt returns when the order became ready for pickup, if it did.
func (o *Order) ReadyAt() *time.Time { return o.readyAt }

// AssignedAt returns when a shipper claimed the order, if one did.
func (o *Order) AssignedAt() *time.Time { return o.assignedAt }

// PickedUpAt returns when the shipper collected the order, if it did.
func (o *Order) PickedUpAt() *time.Time { return o.pickedUpAt }

// DeliveredAt returns when the order reached the customer, if it did.
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }

// CancelledAt returns when the order was cancelled, if it was.
func (o *Order) CancelledAt() *time.Time { return o.cancelledAt }

// Version returns the optimistic concurrency version loaded from the store.
func (o *Order) Version() int { return o.version }

// TransitionTo moves the order to target along a valid edge of the
// transition table and appends a history entry.
//
// Re-requesting the current status is a no-op: the order is unchanged, no
// history entry is appended, and TransitionTo reports changed == false.
// A terminal current status (except the Delivered → Refunded edge) and any
// undefined edge fail with an InvalidTransitionError carrying the set of
// statuses that are reachable instead.
//
// TransitionTo performs no authorization; callers must consult the
// TransitionAuthorizer before invoking it.
func (o *Order) TransitionTo(target Status, actorID kernel.UUID, note string) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if err := target.Validate(); err != nil {
		return false, err
	}

	if target == o.status {
		return false, nil
	}

	if !o.status.CanTransitionTo(target) {
		return false, errs.NewInvalidTransitionError(
			o.status.String(), target.String(), StatusNames(o.status.NextStatuses()))
	}

	o.applyStatus(target, &actorID, note)
	return true, nil
}

// AssignShipper claims the order for a shipper: the order must be Ready and
// unassigned, and atomically (within the surrounding transaction) acquires
// the shipper reference and moves to Assigned.
func (o *Order) AssignShipper(shipperID kernel.UUID, actorID kernel.UUID) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := shipperID.Validate(); err != nil {
		return err
	}

	if o.shipperID != nil {
		return errs.NewConflictErrorWithCause("order", o.id.String(), ErrShipperAlreadyAssigned)
	}

	if !o.status.CanTransitionTo(Assigned) {
		return errs.NewInvalidTransitionError(
			o.status.String(), Assigned.String(), StatusNames(o.status.NextStatuses()))
	}

	o.shipperID = &shipperID
	o.applyStatus(Assigned, &actorID, "shipper claimed order")
	return nil
}

// Cancel is the constrained transition to Cancelled: permitted only from the
// pre-dispatch statuses Pending and Confirmed. Records the reason and who
// cancelled.
func (o *Order) Cancel(actorID kernel.UUID, reason string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if o.status != Pending && o.status != Confirmed {
		return errs.NewInvalidTransitionError(
			o.status.String(), Cancelled.String(), StatusNames(o.status.NextStatuses()))
	}

	o.cancellationReason = reason
	o.cancelledBy = &actorID
	note := "order cancelled"
	if reason != "" {
		note = fmt.Sprintf("order cancelled: %s", reason)
	}
	o.applyStatus(Cancelled, &actorID, note)
	return nil
}

// applyStatus commits an already validated transition: updates the status,
// appends the history entry, and maintains the status-specific timestamp
// fields. Delivery settles a pending payment.
func (o *Order) applyStatus(target Status, actorID *kernel.UUID, note string) {
	now := time.Now().UTC()

	o.status = target
	o.updatedAt = now
	o.history = append(o.history, StatusChange{
		Status:  target,
		At:      now,
		Note:    note,
		ActorID: actorID,
	})

	switch target {
	case Confirmed:
		o.confirmedAt = &now
	case Preparing:
		o.preparingAt = &now
	case Ready:
		o.readyAt = &now
	case Assigned:
		o.assignedAt = &now
	case PickedUp:
		o.pickedUpAt = &now
	case Delivered:
		o.deliveredAt = &now
		if o.paymentStatus == PaymentPending {
			o.paymentStatus = PaymentPaid
		}
	case Cancelled:
		o.cancelledAt = &now
	case Refunded:
		o.paymentStatus = PaymentRefundedState
	}
}

func validateID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}

func validateOptionalID(name string, id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	return validateID(name, *id)
}

func validateNumber(number string) error {
	if number == "" {
		return errs.NewValueIsRequiredError("number")
	}
	return nil
}

func validateItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateDistance(distanceKm float64) error {
	if distanceKm < 0 {
		return errs.NewValueIsInvalidErrorWithCause("distanceKm",
			fmt.Errorf("%g is negative", distanceKm))
	}
	return nil
}

func validateHistory(history []StatusChange, current Status) error {
	if len(history) == 0 {
		return errs.NewValueIsRequiredError("statusHistory")
	}
	if history[len(history)-1].Status != current {
		return errs.NewValueIsInvalidErrorWithCause("statusHistory",
			fmt.Errorf("last history entry %s does not match status %s",
				history[len(history)-1].Status, current))
	}
	return nil
}
