package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/zapshop/commerce-bot/internal/model"
	xhttp "github.com/zapshop/commerce-bot/pkg/http"
)

type BotConfigService interface {
	Get(ctx context.Context, tenantID int64) (*model.BotConfig, error)
	Save(ctx context.Context, cfg *model.BotConfig) (*model.BotConfig, error)
}

type BotConfigHandler struct {
	svc BotConfigService
}

func RegisterBotConfigRoutes(e *router.Group, h *BotConfigHandler) {
	e.GET("/bot-config", h.Get)
	e.PUT("/bot-config", h.Save)
}

func NewBotConfigHandler(svc BotConfigService) *BotConfigHandler {
	return &BotConfigHandler{svc: svc}
}

func (h *BotConfigHandler) Get(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	cfg, err := h.svc.Get(ctx, tenant)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, cfg)
}

func (h *BotConfigHandler) Save(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	var cfg model.BotConfig
	if err := readJSON(ctx, &cfg); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	// The body cannot re-scope the config to another tenant.
	cfg.TenantID = tenant

	saved, err := h.svc.Save(ctx, &cfg)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, saved)
}
