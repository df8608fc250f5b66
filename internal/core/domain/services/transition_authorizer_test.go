package services_test

import (
	"testing"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions.
func createOrder(t *testing.T, customerID kernel.UUID, partnerID *kernel.UUID) *order.Order {
	t.Helper()

	item, err := order.NewItem(kernel.NewUUID(), "Hu Tieu", 1, 50000, "")
	require.NoError(t, err)

	pricing, err := order.NewPricing(50000, 10000, 0, 0, 0)
	require.NoError(t, err)

	dropoff, err := kernel.NewGeoPoint(10.8, 106.7)
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:            kernel.NewUUID(),
		Number:        "ORD-771004002",
		CustomerID:    customerID,
		PartnerID:     partnerID,
		Items:         []order.Item{item},
		Pricing:       pricing,
		PaymentMethod: order.PaymentMomo,
		DeliveryType:  order.DeliveryStandard,
		Dropoff:       dropoff,
		DistanceKm:    1.5,
		EtaMinutes:    20,
	})
	require.NoError(t, err)
	return o
}

func createActor(t *testing.T, role actor.Role) actor.Actor {
	t.Helper()
	a, err := actor.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func advanceTo(t *testing.T, o *order.Order, target order.Status) {
	t.Helper()
	path := []order.Status{
		order.Confirmed, order.Preparing, order.Ready, order.Assigned,
		order.PickedUp, order.Delivering, order.Delivered,
	}
	for _, next := range path {
		if o.Status() == target {
			return
		}
		if next == order.Assigned {
			require.NoError(t, o.AssignShipper(kernel.NewUUID(), kernel.NewUUID()))
			continue
		}
		changed, err := o.TransitionTo(next, kernel.NewUUID(), "")
		require.NoError(t, err)
		require.True(t, changed)
	}
	require.Equal(t, target, o.Status())
}

func TestTransitionAuthorizer_Decide(t *testing.T) {
	authorizer := services.NewTransitionAuthorizer()

	t.Run("should allow the assigned partner to confirm", func(t *testing.T) {
		partner := createActor(t, actor.RolePartner)
		partnerID := partner.UserID()
		o := createOrder(t, kernel.NewUUID(), &partnerID)

		decision, err := authorizer.Decide(o, partner, order.Confirmed)

		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, services.ReasonAllowed, decision.Reason)
	})

	t.Run("should deny a shipper requesting confirmed before ownership is even checked", func(t *testing.T) {
		shipper := createActor(t, actor.RoleShipper)
		o := createOrder(t, kernel.NewUUID(), nil)

		decision, err := authorizer.Decide(o, shipper, order.Confirmed)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, services.ReasonRoleCannotRequest, decision.Reason)
		assert.Equal(t, []order.Status{order.Failed}, decision.AllowedTargets,
			"failed is the only pending edge a shipper may ever request")
	})

	t.Run("should allow the owning customer to cancel a pending order", func(t *testing.T) {
		customer := createActor(t, actor.RoleCustomer)
		o := createOrder(t, customer.UserID(), nil)

		decision, err := authorizer.Decide(o, customer, order.Cancelled)

		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("should deny a customer acting on another customer's order", func(t *testing.T) {
		stranger := createActor(t, actor.RoleCustomer)
		o := createOrder(t, kernel.NewUUID(), nil)

		decision, err := authorizer.Decide(o, stranger, order.Cancelled)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, services.ReasonNotOwner, decision.Reason)
		assert.Equal(t, []order.Status{order.Cancelled}, decision.AllowedTargets,
			"ownership denials still report what the role could request here")
	})

	t.Run("should deny a partner that is not on the order", func(t *testing.T) {
		partner := createActor(t, actor.RolePartner)
		otherPartnerID := kernel.NewUUID()
		o := createOrder(t, kernel.NewUUID(), &otherPartnerID)

		decision, err := authorizer.Decide(o, partner, order.Confirmed)

		require.NoError(t, err)
		assert.Equal(t, services.ReasonNotOwner, decision.Reason)
		assert.ElementsMatch(t, []order.Status{order.Confirmed, order.Cancelled}, decision.AllowedTargets)
	})

	t.Run("should deny a partner when the order has no partner reference", func(t *testing.T) {
		partner := createActor(t, actor.RolePartner)
		o := createOrder(t, kernel.NewUUID(), nil)

		decision, err := authorizer.Decide(o, partner, order.Confirmed)

		require.NoError(t, err)
		assert.Equal(t, services.ReasonNotOwner, decision.Reason)
	})

	t.Run("should deny a shipper that never claimed the order", func(t *testing.T) {
		shipper := createActor(t, actor.RoleShipper)
		o := createOrder(t, kernel.NewUUID(), nil)
		advanceTo(t, o, order.PickedUp)

		decision, err := authorizer.Decide(o, shipper, order.Delivering)

		require.NoError(t, err)
		assert.Equal(t, services.ReasonNotOwner, decision.Reason)
	})

	t.Run("should allow an admin on any order without ownership", func(t *testing.T) {
		admin := createActor(t, actor.RoleAdmin)
		o := createOrder(t, kernel.NewUUID(), nil)

		decision, err := authorizer.Decide(o, admin, order.Confirmed)

		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("should deny an admin on an undefined edge", func(t *testing.T) {
		admin := createActor(t, actor.RoleAdmin)
		o := createOrder(t, kernel.NewUUID(), nil)

		decision, err := authorizer.Decide(o, admin, order.Delivered)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, services.ReasonInvalidEdge, decision.Reason)
		assert.ElementsMatch(t,
			[]order.Status{order.Confirmed, order.Cancelled, order.Failed},
			decision.AllowedTargets)
	})

	t.Run("should deny the owning customer cancelling a delivering order as an edge problem", func(t *testing.T) {
		customer := createActor(t, actor.RoleCustomer)
		o := createOrder(t, customer.UserID(), nil)
		advanceTo(t, o, order.Delivering)

		decision, err := authorizer.Decide(o, customer, order.Cancelled)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, services.ReasonInvalidEdge, decision.Reason)
	})

	t.Run("should return error for an unconstructed actor", func(t *testing.T) {
		o := createOrder(t, kernel.NewUUID(), nil)

		_, err := authorizer.Decide(o, actor.Actor{}, order.Confirmed)
		require.Error(t, err)
	})

	t.Run("should return error for an undefined target", func(t *testing.T) {
		admin := createActor(t, actor.RoleAdmin)
		o := createOrder(t, kernel.NewUUID(), nil)

		_, err := authorizer.Decide(o, admin, order.Unknown)
		require.Error(t, err)
	})
}
