package order_test

import (
	"testing"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions.
func createValidItem(t *testing.T) order.Item {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), "Com Tam", 2, 45000, "extra egg")
	require.NoError(t, err)
	return item
}

func createValidParams(t *testing.T) order.NewOrderParams {
	t.Helper()

	pricing, err := order.NewPricing(90000, 10000, 0, 0, 0)
	require.NoError(t, err)

	dropoff, err := kernel.NewGeoPoint(10.7769, 106.7009)
	require.NoError(t, err)

	partnerID := kernel.NewUUID()
	return order.NewOrderParams{
		ID:            kernel.NewUUID(),
		Number:        "ORD-482991007",
		CustomerID:    kernel.NewUUID(),
		PartnerID:     &partnerID,
		Items:         []order.Item{createValidItem(t)},
		Pricing:       pricing,
		PaymentMethod: order.PaymentCOD,
		DeliveryType:  order.DeliveryStandard,
		Dropoff:       dropoff,
		DistanceKm:    3.4,
		EtaMinutes:    26,
	}
}

func createValidOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(createValidParams(t))
	require.NoError(t, err)
	return o
}

// walkTo drives the order along valid edges until it reaches target.
func walkTo(t *testing.T, o *order.Order, target order.Status) {
	t.Helper()
	path := []order.Status{
		order.Confirmed, order.Preparing, order.Ready, order.Assigned,
		order.PickedUp, order.Delivering, order.Delivered,
	}
	actorID := kernel.NewUUID()
	for _, next := range path {
		if o.Status() == target {
			return
		}
		if next == order.Assigned {
			require.NoError(t, o.AssignShipper(kernel.NewUUID(), actorID))
			continue
		}
		changed, err := o.TransitionTo(next, actorID, "")
		require.NoError(t, err)
		require.True(t, changed)
	}
	require.Equal(t, target, o.Status())
}

func TestNewOrder(t *testing.T) {
	t.Run("should create pending order with creation history entry", func(t *testing.T) {
		params := createValidParams(t)

		o, err := order.NewOrder(params)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, order.PaymentPending, o.PaymentStatus())
		assert.True(t, o.ID().IsEqual(params.ID))
		assert.Nil(t, o.ShipperID())
		assert.Equal(t, 0, o.Version())

		history := o.History()
		require.Len(t, history, 1)
		assert.Equal(t, order.Pending, history[0].Status)
		assert.Nil(t, history[0].ActorID)
	})

	t.Run("should return error for missing number", func(t *testing.T) {
		params := createValidParams(t)
		params.Number = ""

		o, err := order.NewOrder(params)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should return error for empty items", func(t *testing.T) {
		params := createValidParams(t)
		params.Items = nil

		_, err := order.NewOrder(params)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should return error for negative distance", func(t *testing.T) {
		params := createValidParams(t)
		params.DistanceKm = -1

		_, err := order.NewOrder(params)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should return error for missing customer", func(t *testing.T) {
		params := createValidParams(t)
		params.CustomerID = kernel.UUID{}

		_, err := order.NewOrder(params)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestOrder_TransitionTo(t *testing.T) {
	t.Run("should append one history entry per accepted transition", func(t *testing.T) {
		o := createValidOrder(t)
		actorID := kernel.NewUUID()

		changed, err := o.TransitionTo(order.Confirmed, actorID, "sounds good")
		require.NoError(t, err)
		assert.True(t, changed)

		require.Len(t, o.History(), 2)
		last := o.History()[1]
		assert.Equal(t, order.Confirmed, last.Status)
		assert.Equal(t, "sounds good", last.Note)
		require.NotNil(t, last.ActorID)
		assert.True(t, last.ActorID.IsEqual(actorID))
		require.NotNil(t, o.ConfirmedAt())
	})

	t.Run("should treat re-requesting the current status as a no-op", func(t *testing.T) {
		o := createValidOrder(t)

		changed, err := o.TransitionTo(order.Pending, kernel.NewUUID(), "")

		require.NoError(t, err)
		assert.False(t, changed)
		assert.Len(t, o.History(), 1, "no-op must not grow the history")
	})

	t.Run("should reject an undefined edge with the allowed set", func(t *testing.T) {
		o := createValidOrder(t)

		_, err := o.TransitionTo(order.Delivered, kernel.NewUUID(), "")

		require.Error(t, err)
		var transitionErr *errs.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, "pending", transitionErr.CurrentStatus)
		assert.Equal(t, "delivered", transitionErr.TargetStatus)
		assert.ElementsMatch(t, []string{"confirmed", "cancelled", "failed"}, transitionErr.AllowedTargets)
	})

	t.Run("should reject any move out of a terminal status", func(t *testing.T) {
		o := createValidOrder(t)
		_, err := o.TransitionTo(order.Failed, kernel.NewUUID(), "kitchen fire")
		require.NoError(t, err)

		_, err = o.TransitionTo(order.Pending, kernel.NewUUID(), "")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should settle a pending cod payment on delivery", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Delivered)

		assert.Equal(t, order.PaymentPaid, o.PaymentStatus())
		require.NotNil(t, o.DeliveredAt())
	})

	t.Run("should mark payment refunded on the delivered to refunded edge", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Delivered)

		changed, err := o.TransitionTo(order.Refunded, kernel.NewUUID(), "customer complaint")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, order.PaymentRefundedState, o.PaymentStatus())
	})

	t.Run("should keep the status in sync with the last history entry", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Delivering)

		history := o.History()
		assert.Equal(t, o.Status(), history[len(history)-1].Status)
		assert.Len(t, history, 7) // creation plus six transitions
	})
}

func TestOrder_AssignShipper(t *testing.T) {
	t.Run("should claim a ready order", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Ready)
		shipperID := kernel.NewUUID()

		err := o.AssignShipper(shipperID, shipperID)

		require.NoError(t, err)
		assert.Equal(t, order.Assigned, o.Status())
		require.NotNil(t, o.ShipperID())
		assert.True(t, o.ShipperID().IsEqual(shipperID))
		require.NotNil(t, o.AssignedAt())
	})

	t.Run("should reject a second claim", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Ready)
		first := kernel.NewUUID()
		require.NoError(t, o.AssignShipper(first, first))

		err := o.AssignShipper(kernel.NewUUID(), kernel.NewUUID())

		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.True(t, o.ShipperID().IsEqual(first), "first claimer keeps the order")
	})

	t.Run("should reject claiming an order that is not ready", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Preparing)

		err := o.AssignShipper(kernel.NewUUID(), kernel.NewUUID())
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("should cancel a pending order with reason", func(t *testing.T) {
		o := createValidOrder(t)
		actorID := kernel.NewUUID()

		err := o.Cancel(actorID, "ordered twice")

		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, "ordered twice", o.CancellationReason())
		require.NotNil(t, o.CancelledBy())
		assert.True(t, o.CancelledBy().IsEqual(actorID))
		require.NotNil(t, o.CancelledAt())
	})

	t.Run("should cancel a confirmed order", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Confirmed)

		require.NoError(t, o.Cancel(kernel.NewUUID(), ""))
		assert.Equal(t, order.Cancelled, o.Status())
	})

	t.Run("should reject cancellation once preparation started", func(t *testing.T) {
		o := createValidOrder(t)
		walkTo(t, o, order.Preparing)

		err := o.Cancel(kernel.NewUUID(), "too late")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("should rebuild an aggregate from persisted state", func(t *testing.T) {
		source := createValidOrder(t)
		walkTo(t, source, order.Ready)

		restored, err := order.RestoreOrder(order.RestoreOrderParams{
			NewOrderParams: createValidParams(t),
			Status:         source.Status(),
			History:        source.History(),
			PaymentStatus:  source.PaymentStatus(),
			CreatedAt:      source.CreatedAt(),
			UpdatedAt:      source.UpdatedAt(),
			ReadyAt:        source.ReadyAt(),
			Version:        3,
		})

		require.NoError(t, err)
		assert.Equal(t, order.Ready, restored.Status())
		assert.Equal(t, 3, restored.Version())
		assert.Len(t, restored.History(), len(source.History()))
	})

	t.Run("should reject a history that disagrees with the status", func(t *testing.T) {
		source := createValidOrder(t)

		_, err := order.RestoreOrder(order.RestoreOrderParams{
			NewOrderParams: createValidParams(t),
			Status:         order.Delivered,
			History:        source.History(),
			PaymentStatus:  order.PaymentPending,
			CreatedAt:      source.CreatedAt(),
			UpdatedAt:      source.UpdatedAt(),
		})

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject an empty history", func(t *testing.T) {
		_, err := order.RestoreOrder(order.RestoreOrderParams{
			NewOrderParams: createValidParams(t),
			Status:         order.Pending,
			PaymentStatus:  order.PaymentPending,
		})

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestOrder_Validate(t *testing.T) {
	var notConstructed order.Order
	assert.ErrorIs(t, notConstructed.Validate(), order.ErrOrderIsNotConstructed)
}
