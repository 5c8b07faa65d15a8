package services

import (
	"context"
	"testing"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCartOrderRepository struct {
	mock.Mock
}

func (m *MockCartOrderRepository) GetOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error) {
	args := m.Called(ctx, tenantID, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockCartOrderRepository) LockOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error) {
	args := m.Called(ctx, tenantID, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockCartOrderRepository) CreateOpen(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) (*model.Order, error) {
	args := m.Called(ctx, tenantID, customer, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockCartOrderRepository) UpsertItem(ctx context.Context, orderID, productID int64, quantity int) error {
	args := m.Called(ctx, orderID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartOrderRepository) RecomputeTotal(ctx context.Context, orderID int64) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartOrderRepository) ItemsWithProducts(ctx context.Context, orderID int64) ([]repository.CartLineRow, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CartLineRow), args.Error(1)
}

func (m *MockCartOrderRepository) Finalize(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockCartOrderRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockCartProductRepository struct {
	mock.Mock
}

func (m *MockCartProductRepository) GetActive(ctx context.Context, tenantID, id int64) (*model.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func TestCartService_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewCartService(new(MockCartOrderRepository), new(MockCartProductRepository))

	for _, qty := range []int{0, -1, -10} {
		_, err := svc.AddItem(context.Background(), 1, "whatsapp:+5511999990000", 5, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	orderRepo := new(MockCartOrderRepository)
	productRepo := new(MockCartProductRepository)
	productRepo.On("GetActive", mock.Anything, int64(1), int64(42)).
		Return(nil, repository.ErrProductNotFound)

	svc := NewCartService(orderRepo, productRepo)
	_, err := svc.AddItem(context.Background(), 1, "whatsapp:+5511999990000", 42, 1)

	assert.ErrorIs(t, err, ErrProductNotFound)
	orderRepo.AssertNotCalled(t, "WithinTransaction", mock.Anything, mock.Anything)
}

func TestCartService_AddItem_CreatesOrderWhenNoneOpen(t *testing.T) {
	ctx := context.Background()
	customer := "whatsapp:+5511999990000"
	product := &model.Product{ID: 5, TenantID: 1, Name: "Chá Verde", PriceCents: 1250, Active: true}

	orderRepo := new(MockCartOrderRepository)
	productRepo := new(MockCartProductRepository)

	productRepo.On("GetActive", mock.Anything, int64(1), int64(5)).Return(product, nil)
	orderRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
	orderRepo.On("LockOpen", mock.Anything, int64(1), customer).Return(nil, repository.ErrOrderNotFound)
	orderRepo.On("CreateOpen", mock.Anything, int64(1), customer, model.AttendanceModeBot).
		Return(&model.Order{ID: 10, TenantID: 1, Customer: customer, Status: model.OrderStatusOpen}, nil)
	orderRepo.On("UpsertItem", mock.Anything, int64(10), int64(5), 2).Return(nil)
	orderRepo.On("RecomputeTotal", mock.Anything, int64(10)).Return(int64(2500), nil)

	svc := NewCartService(orderRepo, productRepo)
	update, err := svc.AddItem(ctx, 1, customer, 5, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(10), update.OrderID)
	assert.Equal(t, 2, update.Quantity)
	assert.Equal(t, int64(2500), update.TotalCents)
	assert.Equal(t, "Chá Verde", update.Product.Name)
	orderRepo.AssertExpectations(t)
}

func TestCartService_AddItem_MergesIntoOpenOrder(t *testing.T) {
	customer := "whatsapp:+5511999990000"
	product := &model.Product{ID: 5, TenantID: 1, Name: "Chá Verde", PriceCents: 1000, Active: true}
	open := &model.Order{ID: 10, TenantID: 1, Customer: customer, Status: model.OrderStatusOpen}

	orderRepo := new(MockCartOrderRepository)
	productRepo := new(MockCartProductRepository)

	productRepo.On("GetActive", mock.Anything, int64(1), int64(5)).Return(product, nil)
	orderRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
	orderRepo.On("LockOpen", mock.Anything, int64(1), customer).Return(open, nil)
	orderRepo.On("UpsertItem", mock.Anything, int64(10), int64(5), 3).Return(nil)
	orderRepo.On("RecomputeTotal", mock.Anything, int64(10)).Return(int64(5000), nil)

	svc := NewCartService(orderRepo, productRepo)
	update, err := svc.AddItem(context.Background(), 1, customer, 5, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(5000), update.TotalCents)
	orderRepo.AssertNotCalled(t, "CreateOpen", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
}

func TestCartService_ViewCart_EmptyWhenNoOpenOrder(t *testing.T) {
	orderRepo := new(MockCartOrderRepository)
	orderRepo.On("GetOpen", mock.Anything, int64(1), "whatsapp:+551199").
		Return(nil, repository.ErrOrderNotFound)

	svc := NewCartService(orderRepo, new(MockCartProductRepository))
	view, err := svc.ViewCart(context.Background(), 1, "whatsapp:+551199")

	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestCartService_ViewCart_ToleratesMissingProducts(t *testing.T) {
	name := "Chá Verde"
	price := int64(1250)

	orderRepo := new(MockCartOrderRepository)
	orderRepo.On("GetOpen", mock.Anything, int64(1), "whatsapp:+551199").
		Return(&model.Order{ID: 10, Status: model.OrderStatusOpen}, nil)
	orderRepo.On("ItemsWithProducts", mock.Anything, int64(10)).Return([]repository.CartLineRow{
		{ProductID: 5, Quantity: 2, Name: &name, PriceCents: &price},
		{ProductID: 9, Quantity: 1, Name: nil, PriceCents: nil},
	}, nil)

	svc := NewCartService(orderRepo, new(MockCartProductRepository))
	view, err := svc.ViewCart(context.Background(), 1, "whatsapp:+551199")

	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.False(t, view.Lines[0].Missing)
	assert.Equal(t, int64(2500), view.Lines[0].SubtotalCents)
	assert.True(t, view.Lines[1].Missing)
	// Missing lines contribute nothing to the total.
	assert.Equal(t, int64(2500), view.TotalCents)
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	orderRepo := new(MockCartOrderRepository)
	orderRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
	orderRepo.On("LockOpen", mock.Anything, int64(1), "whatsapp:+551199").
		Return(nil, repository.ErrOrderNotFound)

	svc := NewCartService(orderRepo, new(MockCartProductRepository))
	_, err := svc.Checkout(context.Background(), 1, "whatsapp:+551199")

	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCartService_Checkout_OpenOrderWithoutItems(t *testing.T) {
	orderRepo := new(MockCartOrderRepository)
	orderRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
	orderRepo.On("LockOpen", mock.Anything, int64(1), "whatsapp:+551199").
		Return(&model.Order{ID: 10, Status: model.OrderStatusOpen}, nil)

	svc := NewCartService(orderRepo, new(MockCartProductRepository))
	_, err := svc.Checkout(context.Background(), 1, "whatsapp:+551199")

	assert.ErrorIs(t, err, ErrCartEmpty)
	orderRepo.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
}

func TestCartService_Checkout_FinalizesAndReturnsReceipt(t *testing.T) {
	open := &model.Order{
		ID:     10,
		Status: model.OrderStatusOpen,
		Items:  []model.OrderItem{{ProductID: 5, Quantity: 2}},
	}

	orderRepo := new(MockCartOrderRepository)
	orderRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
	orderRepo.On("LockOpen", mock.Anything, int64(1), "whatsapp:+551199").Return(open, nil)
	orderRepo.On("RecomputeTotal", mock.Anything, int64(10)).Return(int64(2500), nil)
	orderRepo.On("Finalize", mock.Anything, int64(10)).Return(nil)

	svc := NewCartService(orderRepo, new(MockCartProductRepository))
	receipt, err := svc.Checkout(context.Background(), 1, "whatsapp:+551199")

	require.NoError(t, err)
	assert.Equal(t, int64(10), receipt.OrderID)
	assert.Equal(t, int64(2500), receipt.TotalCents)
	orderRepo.AssertExpectations(t)
}
