package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/services"
	xhttp "github.com/zapshop/commerce-bot/pkg/http"
)

type TenantService interface {
	Register(ctx context.Context, req *model.TenantCreateRequest) (*model.Tenant, error)
	Get(ctx context.Context, id int64) (*model.Tenant, error)
}

type TenantHandler struct {
	svc TenantService
}

func RegisterTenantRoutes(e *router.Group, h *TenantHandler) {
	e.POST("/tenants", h.Register)
	e.GET("/tenants/me", h.Me)
}

func NewTenantHandler(svc TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

type registerTenantRequest struct {
	Name            string `json:"name"`
	Plan            string `json:"plan"`
	WhatsAppNumber  string `json:"whatsapp_number"`
	SubaccountSID   string `json:"subaccount_sid"`
	SubaccountToken string `json:"subaccount_token"`
	OperatorNumber  string `json:"operator_number"`
}

func (h *TenantHandler) Register(ctx *xhttp.RequestCtx) {
	var req registerTenantRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	tenant, err := h.svc.Register(ctx, &model.TenantCreateRequest{
		Name:            req.Name,
		Plan:            req.Plan,
		WhatsAppNumber:  req.WhatsAppNumber,
		SubaccountSID:   req.SubaccountSID,
		SubaccountToken: req.SubaccountToken,
		OperatorNumber:  req.OperatorNumber,
	})
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, tenant)
}

func (h *TenantHandler) Me(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	t, err := h.svc.Get(ctx, tenant)
	if errors.Is(err, services.ErrTenantNotFound) {
		writeError(ctx, 404, "tenant not found")
		return
	}
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, t)
}
