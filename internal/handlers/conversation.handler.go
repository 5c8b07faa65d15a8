package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/zapshop/commerce-bot/internal/model"
	xhttp "github.com/zapshop/commerce-bot/pkg/http"
)

type ConversationService interface {
	Contacts(ctx context.Context, tenantID int64) ([]*model.ContactSummary, error)
	History(ctx context.Context, tenantID int64, contact string) ([]*model.Conversation, error)
	ManualReply(ctx context.Context, tenantID int64, contact, body string) error
}

type HandoffService interface {
	SetMode(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) error
	ClearAttention(ctx context.Context, tenantID int64, customer string) error
}

// ConversationHandler backs the dashboard inbox: thread list, history,
// manual replies and handing a thread back to the bot.
type ConversationHandler struct {
	svc     ConversationService
	handoff HandoffService
}

func RegisterConversationRoutes(e *router.Group, h *ConversationHandler) {
	e.GET("/conversations", h.ListContacts)
	e.GET("/conversations/history", h.History)
	e.POST("/conversations/reply", h.ManualReply)
	e.POST("/conversations/release", h.ReleaseToBot)
}

func NewConversationHandler(svc ConversationService, handoff HandoffService) *ConversationHandler {
	return &ConversationHandler{svc: svc, handoff: handoff}
}

func (h *ConversationHandler) ListContacts(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	contacts, err := h.svc.Contacts(ctx, tenant)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": contacts})
}

func (h *ConversationHandler) History(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	contact := query(ctx, "contact")
	if contact == "" {
		writeError(ctx, 400, "contact query parameter is required")
		return
	}
	history, err := h.svc.History(ctx, tenant, contact)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": history})
}

type manualReplyRequest struct {
	Contact string `json:"contact"`
	Body    string `json:"body"`
}

func (h *ConversationHandler) ManualReply(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	var req manualReplyRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.Contact == "" || req.Body == "" {
		writeError(ctx, 400, "contact and body are required")
		return
	}
	if err := h.svc.ManualReply(ctx, tenant, req.Contact, req.Body); err != nil {
		writeError(ctx, 502, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "sent"})
}

type releaseRequest struct {
	Contact string `json:"contact"`
}

// ReleaseToBot returns a manually attended thread to the bot and clears
// its attention flag.
func (h *ConversationHandler) ReleaseToBot(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	var req releaseRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.Contact == "" {
		writeError(ctx, 400, "contact is required")
		return
	}
	if err := h.handoff.SetMode(ctx, tenant, req.Contact, model.AttendanceModeBot); err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	if err := h.handoff.ClearAttention(ctx, tenant, req.Contact); err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "released"})
}
