package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/fasthttp/router"
	"github.com/zapshop/commerce-bot/internal/model"
	xhttp "github.com/zapshop/commerce-bot/pkg/http"
)

type SaleService interface {
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error)
}

type SaleHandler struct {
	svc SaleService
}

func RegisterSaleRoutes(e *router.Group, h *SaleHandler) {
	e.GET("/sales", h.List)
}

func NewSaleHandler(svc SaleService) *SaleHandler {
	return &SaleHandler{svc: svc}
}

type saleListResponse struct {
	Items []*model.Order `json:"items"`
	Total int64          `json:"total"`
}

func (h *SaleHandler) List(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}

	f := model.OrderFilter{TenantID: tenant}
	if v := query(ctx, "status"); v != "" {
		status := model.OrderStatus(v)
		if status != model.OrderStatusOpen && status != model.OrderStatusFinalized {
			writeError(ctx, 400, "invalid status")
			return
		}
		f.Status = &status
	}
	if v := query(ctx, "customer"); v != "" {
		f.Customer = &v
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, saleListResponse{Items: items, Total: total})
}
