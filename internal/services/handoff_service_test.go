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

type MockHandoffOrderRepository struct {
	mock.Mock
}

func (m *MockHandoffOrderRepository) GetOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error) {
	args := m.Called(ctx, tenantID, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockHandoffOrderRepository) CreateOpen(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) (*model.Order, error) {
	args := m.Called(ctx, tenantID, customer, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockHandoffOrderRepository) SetMode(ctx context.Context, orderID int64, mode model.AttendanceMode) error {
	args := m.Called(ctx, orderID, mode)
	return args.Error(0)
}

func (m *MockHandoffOrderRepository) SetAttendanceStatus(ctx context.Context, orderID int64, status model.AttendanceStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func TestHandoffService_Mode_DefaultsToBot(t *testing.T) {
	repo := new(MockHandoffOrderRepository)
	repo.On("GetOpen", mock.Anything, int64(1), "+551199").
		Return(nil, repository.ErrOrderNotFound)

	svc := NewHandoffService(repo)
	mode, err := svc.Mode(context.Background(), 1, "+551199")

	require.NoError(t, err)
	assert.Equal(t, model.AttendanceModeBot, mode)
}

func TestHandoffService_Mode_ReadsOpenOrder(t *testing.T) {
	repo := new(MockHandoffOrderRepository)
	repo.On("GetOpen", mock.Anything, int64(1), "+551199").
		Return(&model.Order{ID: 10, Mode: model.AttendanceModeManual}, nil)

	svc := NewHandoffService(repo)
	mode, err := svc.Mode(context.Background(), 1, "+551199")

	require.NoError(t, err)
	assert.Equal(t, model.AttendanceModeManual, mode)
}

func TestHandoffService_SetMode_CreatesCarrierOrder(t *testing.T) {
	repo := new(MockHandoffOrderRepository)
	repo.On("GetOpen", mock.Anything, int64(1), "+551199").
		Return(nil, repository.ErrOrderNotFound)
	repo.On("CreateOpen", mock.Anything, int64(1), "+551199", model.AttendanceModeManual).
		Return(&model.Order{ID: 10, Mode: model.AttendanceModeManual}, nil)

	svc := NewHandoffService(repo)
	err := svc.SetMode(context.Background(), 1, "+551199", model.AttendanceModeManual)

	require.NoError(t, err)
	repo.AssertNotCalled(t, "SetMode", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandoffService_SetMode_UpdatesExistingOrder(t *testing.T) {
	repo := new(MockHandoffOrderRepository)
	repo.On("GetOpen", mock.Anything, int64(1), "+551199").
		Return(&model.Order{ID: 10, Mode: model.AttendanceModeManual}, nil)
	repo.On("SetMode", mock.Anything, int64(10), model.AttendanceModeBot).Return(nil)

	svc := NewHandoffService(repo)
	err := svc.SetMode(context.Background(), 1, "+551199", model.AttendanceModeBot)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// Escalation flags the conversation but must not change who answers it.
func TestHandoffService_MarkRequiresAttention_KeepsBotMode(t *testing.T) {
	repo := new(MockHandoffOrderRepository)
	repo.On("GetOpen", mock.Anything, int64(1), "+551199").
		Return(&model.Order{ID: 10, Mode: model.AttendanceModeBot}, nil)
	repo.On("SetAttendanceStatus", mock.Anything, int64(10), model.AttendanceStatusRequiresAttention).
		Return(nil)

	svc := NewHandoffService(repo)
	err := svc.MarkRequiresAttention(context.Background(), 1, "+551199")

	require.NoError(t, err)
	repo.AssertNotCalled(t, "SetMode", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestHandoffService_ClearAttention_NoOpenOrder(t *testing.T) {
	repo := new(MockHandoffOrderRepository)
	repo.On("GetOpen", mock.Anything, int64(1), "+551199").
		Return(nil, repository.ErrOrderNotFound)

	svc := NewHandoffService(repo)
	require.NoError(t, svc.ClearAttention(context.Background(), 1, "+551199"))
}
