package commands_test

import (
	"context"
	"errors"
	"testing"

	"crabor/internal/core/application/usecases/commands"
	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/core/domain/services"
	"crabor/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindUnassignedReady(_ context.Context) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) OrderCreated(o *order.Order)    { m.Called(o) }
func (m *MockEventPublisher) OrderUpdated(o *order.Order)    { m.Called(o) }
func (m *MockEventPublisher) ShipperAssigned(o *order.Order) { m.Called(o) }
func (m *MockEventPublisher) OrderCancelled(o *order.Order)  { m.Called(o) }
func (m *MockEventPublisher) LocationUpdated(orderID kernel.UUID, shipperID kernel.UUID, lat, lng float64) {
	m.Called(orderID, shipperID, lat, lng)
}

func testEstimator(t *testing.T) services.DeliveryEstimator {
	t.Helper()
	estimator, err := services.NewDeliveryEstimator(services.DefaultEstimatorConfig())
	require.NoError(t, err)
	return estimator
}

func testActor(t *testing.T, role actor.Role) actor.Actor {
	t.Helper()
	a, err := actor.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func testActorWithID(t *testing.T, id kernel.UUID, role actor.Role) actor.Actor {
	t.Helper()
	a, err := actor.NewActor(id, role)
	require.NoError(t, err)
	return a
}

func testGeoPoint(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

// testOrder builds a pending order owned by the given customer and partner.
func testOrder(t *testing.T, customerID kernel.UUID, partnerID *kernel.UUID) *order.Order {
	t.Helper()

	item, err := order.NewItem(kernel.NewUUID(), "Pho Bo", 2, 55000, "")
	require.NoError(t, err)

	pricing, err := order.NewPricing(110000, 10000, 0, 0, 0)
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:            kernel.NewUUID(),
		Number:        "ORD-000001001",
		CustomerID:    customerID,
		PartnerID:     partnerID,
		Items:         []order.Item{item},
		Pricing:       pricing,
		PaymentMethod: order.PaymentCOD,
		DeliveryType:  order.DeliveryStandard,
		Dropoff:       testGeoPoint(t, 10.77, 106.69),
		DistanceKm:    1.4,
		EtaMinutes:    20,
	})
	require.NoError(t, err)
	return o
}

// advanceOrder walks the order along valid edges until it reaches target.
func advanceOrder(t *testing.T, o *order.Order, target order.Status) {
	t.Helper()

	path := []order.Status{order.Confirmed, order.Preparing, order.Ready}
	system := kernel.NewUUID()
	for _, next := range path {
		if o.Status() == target {
			return
		}
		changed, err := o.TransitionTo(next, system, "")
		require.NoError(t, err)
		require.True(t, changed)
	}
	require.Equal(t, target, o.Status())
}
