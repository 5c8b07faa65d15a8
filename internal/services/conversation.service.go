package services

import (
	"context"
	"fmt"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/logger"
)

// ManualReplyMarker records a dashboard-sent reply in the audit trail in
// place of a user message, so the thread reads chronologically.
const ManualReplyMarker = "--- RESPOSTA MANUAL DO PAINEL ---"

type ConversationRepository interface {
	Append(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	History(ctx context.Context, tenantID int64, contact string) ([]*model.Conversation, error)
	MarkRead(ctx context.Context, tenantID int64, contact string) error
	ContactSummaries(ctx context.Context, tenantID int64) ([]*model.ContactSummary, error)
}

type ConversationTenantRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
}

// MessageSender delivers an outbound text to a customer on behalf of a
// tenant. Implemented by the WhatsApp gateway client.
type MessageSender interface {
	SendText(ctx context.Context, tenant *model.Tenant, to, body string) error
}

// ConversationService is the dashboard's view onto the message audit
// trail, plus the path for attendants to answer customers directly.
type ConversationService struct {
	convRepo   ConversationRepository
	tenantRepo ConversationTenantRepository
	sender     MessageSender
	handoff    *HandoffService
}

func NewConversationService(convRepo ConversationRepository, tenantRepo ConversationTenantRepository, sender MessageSender, handoff *HandoffService) *ConversationService {
	return &ConversationService{
		convRepo:   convRepo,
		tenantRepo: tenantRepo,
		sender:     sender,
		handoff:    handoff,
	}
}

// Log appends one exchange to the audit trail. Failures are logged and
// swallowed; a broken audit write must not break the conversation.
func (s *ConversationService) Log(ctx context.Context, tenantID int64, contact, userMessage, botReply string) {
	_, err := s.convRepo.Append(ctx, &model.Conversation{
		TenantID:    tenantID,
		Contact:     contact,
		UserMessage: userMessage,
		BotReply:    botReply,
	})
	if err != nil {
		logger.Error("append conversation", "tenant_id", tenantID, "contact", contact, "error", err)
	}
}

func (s *ConversationService) Contacts(ctx context.Context, tenantID int64) ([]*model.ContactSummary, error) {
	return s.convRepo.ContactSummaries(ctx, tenantID)
}

// History returns the full thread with a contact and marks it read.
func (s *ConversationService) History(ctx context.Context, tenantID int64, contact string) ([]*model.Conversation, error) {
	history, err := s.convRepo.History(ctx, tenantID, contact)
	if err != nil {
		return nil, err
	}
	if err := s.convRepo.MarkRead(ctx, tenantID, contact); err != nil {
		logger.Error("mark conversation read", "tenant_id", tenantID, "contact", contact, "error", err)
	}
	return history, nil
}

// ManualReply sends an attendant-written message to the customer and pins
// the conversation to manual mode so the bot stops answering.
func (s *ConversationService) ManualReply(ctx context.Context, tenantID int64, contact, body string) error {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("load tenant: %w", err)
	}

	if err := s.sender.SendText(ctx, tenant, contact, body); err != nil {
		return fmt.Errorf("send manual reply: %w", err)
	}

	s.Log(ctx, tenantID, contact, ManualReplyMarker, "[ATENDENTE]: "+body)

	if err := s.handoff.SetMode(ctx, tenantID, contact, model.AttendanceModeManual); err != nil {
		logger.Error("pin manual mode after reply", "tenant_id", tenantID, "contact", contact, "error", err)
	}
	return nil
}
