package services

import (
	"context"

	"github.com/zapshop/commerce-bot/internal/model"
)

type SaleOrderRepository interface {
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error)
}

// SaleService is the dashboard's read side over orders.
type SaleService struct {
	orderRepo SaleOrderRepository
}

func NewSaleService(orderRepo SaleOrderRepository) *SaleService {
	return &SaleService{orderRepo: orderRepo}
}

func (s *SaleService) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	return s.orderRepo.List(ctx, f)
}

// Finalized lists completed sales, newest first.
func (s *SaleService) Finalized(ctx context.Context, tenantID int64, limit, offset int) ([]*model.Order, int64, error) {
	status := model.OrderStatusFinalized
	return s.orderRepo.List(ctx, model.OrderFilter{
		TenantID: tenantID,
		Status:   &status,
		Desc:     true,
		Limit:    limit,
		Offset:   offset,
	})
}
