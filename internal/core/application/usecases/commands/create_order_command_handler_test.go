package commands_test

import (
	"context"
	"errors"
	"testing"

	"crabor/internal/core/application/usecases/commands"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validCreateOrderCommand(t *testing.T) commands.CreateOrderCommand {
	t.Helper()

	partnerID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderDraft{
		CustomerID: kernel.NewUUID(),
		PartnerID:  &partnerID,
		Items: []commands.CreateOrderItem{
			{ProductID: kernel.NewUUID(), Name: "Pho Bo", Quantity: 2, UnitPrice: 55000},
			{ProductID: kernel.NewUUID(), Name: "Tra Da", Quantity: 1, UnitPrice: 5000},
		},
		PaymentMethod: order.PaymentCOD,
		DeliveryType:  order.DeliveryStandard,
		Pickup:        testGeoPoint(t, 10.7769, 106.7009),
		Dropoff:       testGeoPoint(t, 10.7869, 106.7109),
	})
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateOrderCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("OrderCreated", mock.AnythingOfType("*order.Order")).Once()

	h := commands.NewCreateOrderCommandHandler(factory, testEstimator(t), publisher)
	created, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, order.Pending, created.Status())
	require.Regexp(t, `^ORD-\d+$`, created.Number())
	require.Len(t, created.History(), 1)
	require.EqualValues(t, 115000, created.Pricing().Subtotal())
	require.EqualValues(t, 10000, created.Pricing().DeliveryFee())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOrderCommand{} // not constructed properly
	factory := new(MockOrderUoWFactory)
	publisher := new(MockEventPublisher)
	h := commands.NewCreateOrderCommandHandler(factory, testEstimator(t), publisher)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	publisher.AssertNotCalled(t, "OrderCreated", mock.Anything)
}

// collisionUoW builds a unit of work whose Add fails with the given error and
// which is only ever rolled back. A unique violation aborts the database
// transaction, so a retry must never reuse or commit the failed unit of work.
func collisionUoW(ctx context.Context, addErr error) *MockOrderUoW {
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(addErr).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	return uow
}

func TestCreateOrderCommandHandler_Handle_NumberCollisionRetriesInFreshUoW(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateOrderCommand(t)

	collision := errs.NewConflictError("number", "ORD-000001001")
	abortedUoW := collisionUoW(ctx, collision)

	retryRepo := new(MockOrderRepository)
	retryUoW := new(MockOrderUoW)
	mock.InOrder(
		retryUoW.On("Begin", ctx).Return(nil).Once(),
		retryUoW.On("OrderRepository").Return(retryRepo).Once(),
		retryRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		retryUoW.On("Commit", ctx).Return(nil).Once(),
		retryUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(abortedUoW).Once()
	factory.On("Create").Return(retryUoW).Once()

	publisher := new(MockEventPublisher)
	publisher.On("OrderCreated", mock.AnythingOfType("*order.Order")).Once()

	h := commands.NewCreateOrderCommandHandler(factory, testEstimator(t), publisher)
	created, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, created)
	abortedUoW.AssertNotCalled(t, "Commit", mock.Anything)
	abortedUoW.AssertExpectations(t)
	retryUoW.AssertExpectations(t)
	retryRepo.AssertExpectations(t)
	factory.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_NumberCollisionExhausted(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateOrderCommand(t)

	collision := errs.NewConflictError("number", "ORD-000001001")
	factory := new(MockOrderUoWFactory)
	uows := make([]*MockOrderUoW, 0, 3)
	for i := 0; i < 3; i++ {
		uow := collisionUoW(ctx, collision)
		uows = append(uows, uow)
		factory.On("Create").Return(uow).Once()
	}

	publisher := new(MockEventPublisher)

	h := commands.NewCreateOrderCommandHandler(factory, testEstimator(t), publisher)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrConflict)
	for _, uow := range uows {
		uow.AssertNotCalled(t, "Commit", mock.Anything)
		uow.AssertExpectations(t)
	}
	factory.AssertExpectations(t)
	publisher.AssertNotCalled(t, "OrderCreated", mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_CommitErrorSkipsPublish(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateOrderCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)

	h := commands.NewCreateOrderCommandHandler(factory, testEstimator(t), publisher)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	publisher.AssertNotCalled(t, "OrderCreated", mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_FeeBeyondFreeRadius(t *testing.T) {
	ctx := t.Context()

	// roughly 5.6 km apart: base 10000 + ceil(3.6) * 3000 = 22000
	partnerID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderDraft{
		CustomerID: kernel.NewUUID(),
		PartnerID:  &partnerID,
		Items: []commands.CreateOrderItem{
			{ProductID: kernel.NewUUID(), Name: "Com Tam", Quantity: 1, UnitPrice: 45000},
		},
		PaymentMethod: order.PaymentMomo,
		DeliveryType:  order.DeliveryExpress,
		Pickup:        testGeoPoint(t, 10.7769, 106.7009),
		Dropoff:       testGeoPoint(t, 10.8273, 106.7009),
	})
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	publisher := new(MockEventPublisher)
	publisher.On("OrderCreated", mock.Anything)

	h := commands.NewCreateOrderCommandHandler(factory, testEstimator(t), publisher)
	created, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	require.EqualValues(t, 22000, created.Pricing().DeliveryFee())
	require.InDelta(t, 5.6, created.DistanceKm(), 0.1)
}
