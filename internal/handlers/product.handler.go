package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
	"github.com/zapshop/commerce-bot/internal/services"
	xhttp "github.com/zapshop/commerce-bot/pkg/http"
)

type ProductService interface {
	Create(ctx context.Context, req *model.ProductCreateRequest) (*model.Product, error)
	Update(ctx context.Context, req *model.ProductUpdateRequest) (*model.Product, error)
	Get(ctx context.Context, tenantID, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error)
	Deactivate(ctx context.Context, tenantID, id int64) error
	Delete(ctx context.Context, tenantID, id int64) error
	ImportCSV(ctx context.Context, tenantID int64, r io.Reader) (*services.CSVImportResult, error)
}

type ProductHandler struct {
	svc ProductService
}

func RegisterProductRoutes(e *router.Group, h *ProductHandler) {
	e.POST("/products", h.Create)
	e.GET("/products", h.List)
	e.GET("/products/{id}", h.Get)
	e.PUT("/products/{id}", h.Update)
	e.POST("/products/{id}/deactivate", h.Deactivate)
	e.DELETE("/products/{id}", h.Delete)
	e.POST("/products/import", h.ImportCSV)
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
	ImageURL    string `json:"image_url"`
}

type productListResponse struct {
	Items []*model.Product `json:"items"`
	Total int64            `json:"total"`
}

func (h *ProductHandler) Create(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	var req productRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	p, err := h.svc.Create(ctx, &model.ProductCreateRequest{
		TenantID:    tenant,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, p)
}

func (h *ProductHandler) Update(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid product id")
		return
	}
	var req productRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	p, err := h.svc.Update(ctx, &model.ProductUpdateRequest{
		TenantID:    tenant,
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	})
	if errors.Is(err, repository.ErrProductNotFound) {
		writeError(ctx, 404, "product not found")
		return
	}
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, p)
}

func (h *ProductHandler) Get(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid product id")
		return
	}
	p, err := h.svc.Get(ctx, tenant, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		writeError(ctx, 404, "product not found")
		return
	}
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, p)
}

func (h *ProductHandler) List(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	f := model.ProductFilter{TenantID: tenant}
	if v := query(ctx, "category"); v != "" {
		f.Category = &v
	}
	if query(ctx, "active") == "true" {
		f.ActiveOnly = true
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

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, productListResponse{Items: items, Total: total})
}

func (h *ProductHandler) Deactivate(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid product id")
		return
	}
	if err := h.svc.Deactivate(ctx, tenant, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(ctx, 404, "product not found")
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "deactivated"})
}

func (h *ProductHandler) Delete(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid product id")
		return
	}
	if err := h.svc.Delete(ctx, tenant, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(ctx, 404, "product not found")
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "deleted"})
}

func (h *ProductHandler) ImportCSV(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 401, err.Error())
		return
	}
	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, 400, "empty csv body")
		return
	}
	result, err := h.svc.ImportCSV(ctx, tenant, bytes.NewReader(body))
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, result)
}
