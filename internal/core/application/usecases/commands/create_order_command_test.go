package commands_test

import (
	"testing"

	"crabor/internal/core/application/usecases/commands"
	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand(t *testing.T) {
	validDraft := func(t *testing.T) commands.CreateOrderDraft {
		t.Helper()
		return commands.CreateOrderDraft{
			CustomerID: kernel.NewUUID(),
			Items: []commands.CreateOrderItem{
				{ProductID: kernel.NewUUID(), Name: "Banh Mi", Quantity: 1, UnitPrice: 25000},
			},
			PaymentMethod: order.PaymentCOD,
			DeliveryType:  order.DeliveryStandard,
			Pickup:        testGeoPoint(t, 10.7769, 106.7009),
			Dropoff:       testGeoPoint(t, 10.7869, 106.7109),
		}
	}

	t.Run("should create command from valid draft", func(t *testing.T) {
		cmd, err := commands.NewCreateOrderCommand(validDraft(t))
		require.NoError(t, err)
		assert.NoError(t, cmd.Validate())
		assert.Len(t, cmd.Items(), 1)
	})

	t.Run("should reject missing customer", func(t *testing.T) {
		draft := validDraft(t)
		draft.CustomerID = kernel.UUID{}
		_, err := commands.NewCreateOrderCommand(draft)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject empty items", func(t *testing.T) {
		draft := validDraft(t)
		draft.Items = nil
		_, err := commands.NewCreateOrderCommand(draft)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject unknown payment method", func(t *testing.T) {
		draft := validDraft(t)
		draft.PaymentMethod = "barter"
		_, err := commands.NewCreateOrderCommand(draft)
		assert.Error(t, err)
	})

	t.Run("should reject missing coordinates", func(t *testing.T) {
		draft := validDraft(t)
		draft.Dropoff = kernel.GeoPoint{}
		_, err := commands.NewCreateOrderCommand(draft)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject default-constructed command in Validate", func(t *testing.T) {
		var cmd commands.CreateOrderCommand
		assert.ErrorIs(t, cmd.Validate(), commands.ErrCreateOrderCommandIsNotConstructed)
	})
}

func TestNewTransitionOrderCommand(t *testing.T) {
	t.Run("should create command from valid inputs", func(t *testing.T) {
		a := testActor(t, actor.RolePartner)
		cmd, err := commands.NewTransitionOrderCommand(kernel.NewUUID(), a, order.Confirmed, "ok")
		require.NoError(t, err)
		assert.Equal(t, order.Confirmed, cmd.Target())
		assert.Equal(t, "ok", cmd.Note())
	})

	t.Run("should reject unconstructed actor", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(kernel.NewUUID(), actor.Actor{}, order.Confirmed, "")
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject unknown target status", func(t *testing.T) {
		a := testActor(t, actor.RolePartner)
		_, err := commands.NewTransitionOrderCommand(kernel.NewUUID(), a, order.Unknown, "")
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
