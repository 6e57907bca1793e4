package http

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vasiliy-maslov/baskets-service/internal/baskets"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, userID, deliveryID uuid.UUID, message string, items []baskets.OrderItemInput) (*baskets.Order, error) {
	args := m.Called(ctx, userID, deliveryID, message, items)
	if order, ok := args.Get(0).(*baskets.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*baskets.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if order, ok := args.Get(0).(*baskets.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]baskets.Order, error) {
	args := m.Called(ctx, userID)
	if orders, ok := args.Get(0).([]baskets.Order); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) UpdateOrder(ctx context.Context, orderID, userID uuid.UUID, message string, items []baskets.OrderItemInput) (*baskets.Order, error) {
	args := m.Called(ctx, orderID, userID, message, items)
	if order, ok := args.Get(0).(*baskets.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, orderID, userID uuid.UUID) error {
	args := m.Called(ctx, orderID, userID)
	return args.Error(0)
}

func (m *mockOrderService) SaveOrderItem(ctx context.Context, item *baskets.OrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockOrderService) DeleteOrderItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type mockDeliveryService struct {
	mock.Mock
}

func (m *mockDeliveryService) CreateDelivery(ctx context.Context, d *baskets.Delivery, productIDs []uuid.UUID) error {
	args := m.Called(ctx, d, productIDs)
	return args.Error(0)
}

func (m *mockDeliveryService) GetDeliveryByID(ctx context.Context, id uuid.UUID) (*baskets.Delivery, error) {
	args := m.Called(ctx, id)
	if d, ok := args.Get(0).(*baskets.Delivery); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeliveryService) ListOpenDeliveries(ctx context.Context) ([]baskets.Delivery, error) {
	args := m.Called(ctx)
	if deliveries, ok := args.Get(0).([]baskets.Delivery); ok {
		return deliveries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeliveryService) UpdateDelivery(ctx context.Context, d *baskets.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockDeliveryService) DeleteDelivery(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDeliveryService) SetProducts(ctx context.Context, deliveryID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, deliveryID, productIDs)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeliveryService) AddProduct(ctx context.Context, deliveryID, productID uuid.UUID) error {
	args := m.Called(ctx, deliveryID, productID)
	return args.Error(0)
}

func (m *mockDeliveryService) RemoveProduct(ctx context.Context, deliveryID, productID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, deliveryID, productID)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) CreateProducer(ctx context.Context, p *baskets.Producer) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockCatalogService) GetProducerByID(ctx context.Context, id uuid.UUID) (*baskets.Producer, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*baskets.Producer); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogService) ListProducers(ctx context.Context) ([]baskets.Producer, error) {
	args := m.Called(ctx)
	if producers, ok := args.Get(0).([]baskets.Producer); ok {
		return producers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogService) ListProducerProducts(ctx context.Context, producerID uuid.UUID) ([]baskets.Product, error) {
	args := m.Called(ctx, producerID)
	if products, ok := args.Get(0).([]baskets.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogService) UpdateProducer(ctx context.Context, p *baskets.Producer) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockCatalogService) DeleteProducer(ctx context.Context, id uuid.UUID, mode baskets.DeleteMode) ([]uuid.UUID, error) {
	args := m.Called(ctx, id, mode)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogService) CreateProduct(ctx context.Context, p *baskets.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockCatalogService) GetProductByID(ctx context.Context, id uuid.UUID) (*baskets.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*baskets.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogService) UpdateProduct(ctx context.Context, p *baskets.Product) ([]uuid.UUID, error) {
	args := m.Called(ctx, p)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID, mode baskets.DeleteMode) ([]uuid.UUID, error) {
	args := m.Called(ctx, id, mode)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExportService struct {
	mock.Mock
}

func (m *mockExportService) OrderAmountsByUserAndMonth(ctx context.Context) ([]baskets.UserMonthAmount, error) {
	args := m.Called(ctx)
	if rows, ok := args.Get(0).([]baskets.UserMonthAmount); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExportService) ProducerQuantitiesByMonth(ctx context.Context) ([]baskets.ProducerMonthQuantity, error) {
	args := m.Called(ctx)
	if rows, ok := args.Get(0).([]baskets.ProducerMonthQuantity); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrdersChanged(ctx context.Context, userIDs []uuid.UUID, reason string) {
	m.Called(ctx, userIDs, reason)
}
