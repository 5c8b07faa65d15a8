package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) Contacts(ctx context.Context, tenantID int64) ([]*model.ContactSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ContactSummary), args.Error(1)
}

func (m *MockConversationService) History(ctx context.Context, tenantID int64, contact string) ([]*model.Conversation, error) {
	args := m.Called(ctx, tenantID, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Conversation), args.Error(1)
}

func (m *MockConversationService) ManualReply(ctx context.Context, tenantID int64, contact, body string) error {
	args := m.Called(ctx, tenantID, contact, body)
	return args.Error(0)
}

type MockHandoffService struct {
	mock.Mock
}

func (m *MockHandoffService) SetMode(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) error {
	args := m.Called(ctx, tenantID, customer, mode)
	return args.Error(0)
}

func (m *MockHandoffService) ClearAttention(ctx context.Context, tenantID int64, customer string) error {
	args := m.Called(ctx, tenantID, customer)
	return args.Error(0)
}

func TestConversationHandler_ListContacts(t *testing.T) {
	svc := new(MockConversationService)
	svc.On("Contacts", mock.Anything, int64(1)).Return([]*model.ContactSummary{
		{Contact: "+551199", TotalMessages: 4, Unread: 2, AttendanceStatus: "requires_attention"},
	}, nil)

	ctx := apiContext("GET", "/api/conversations", "1", nil)
	NewConversationHandler(svc, new(MockHandoffService)).ListContacts(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "requires_attention")
}

func TestConversationHandler_History_RequiresContact(t *testing.T) {
	svc := new(MockConversationService)
	ctx := apiContext("GET", "/api/conversations/history", "1", nil)
	NewConversationHandler(svc, new(MockHandoffService)).History(ctx)

	assert.Equal(t, 400, ctx.Response.StatusCode())
	svc.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationHandler_ManualReply(t *testing.T) {
	svc := new(MockConversationService)
	svc.On("ManualReply", mock.Anything, int64(1), "+551199", "Já estamos separando.").Return(nil)

	body, _ := json.Marshal(manualReplyRequest{Contact: "+551199", Body: "Já estamos separando."})
	ctx := apiContext("POST", "/api/conversations/reply", "1", body)
	NewConversationHandler(svc, new(MockHandoffService)).ManualReply(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	svc.AssertExpectations(t)
}

func TestConversationHandler_ReleaseToBot(t *testing.T) {
	handoff := new(MockHandoffService)
	handoff.On("SetMode", mock.Anything, int64(1), "+551199", model.AttendanceModeBot).Return(nil)
	handoff.On("ClearAttention", mock.Anything, int64(1), "+551199").Return(nil)

	body, _ := json.Marshal(releaseRequest{Contact: "+551199"})
	ctx := apiContext("POST", "/api/conversations/release", "1", body)
	NewConversationHandler(new(MockConversationService), handoff).ReleaseToBot(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	handoff.AssertExpectations(t)
}
