package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
	"github.com/zapshop/commerce-bot/pkg/logger"
)

type HandoffOrderRepository interface {
	GetOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error)
	CreateOpen(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) (*model.Order, error)
	SetMode(ctx context.Context, orderID int64, mode model.AttendanceMode) error
	SetAttendanceStatus(ctx context.Context, orderID int64, status model.AttendanceStatus) error
}

// HandoffService tracks who answers a conversation, the bot or a human.
// The mode lives on the customer's open order; a customer with no open
// order is in bot mode by definition.
type HandoffService struct {
	orderRepo HandoffOrderRepository
}

func NewHandoffService(orderRepo HandoffOrderRepository) *HandoffService {
	return &HandoffService{orderRepo: orderRepo}
}

func (s *HandoffService) Mode(ctx context.Context, tenantID int64, customer string) (model.AttendanceMode, error) {
	order, err := s.orderRepo.GetOpen(ctx, tenantID, customer)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return model.AttendanceModeBot, nil
	}
	if err != nil {
		return model.AttendanceModeBot, err
	}
	return order.Mode, nil
}

// SetMode pins the conversation to the given mode, creating an empty open
// order to carry it when the customer has none.
func (s *HandoffService) SetMode(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) error {
	order, err := s.orderRepo.GetOpen(ctx, tenantID, customer)
	if errors.Is(err, repository.ErrOrderNotFound) {
		order, err = s.orderRepo.CreateOpen(ctx, tenantID, customer, mode)
		if err != nil {
			return fmt.Errorf("create order for handoff: %w", err)
		}
		if order.Mode == mode {
			return nil
		}
	} else if err != nil {
		return err
	}
	return s.orderRepo.SetMode(ctx, order.ID, mode)
}

// MarkRequiresAttention flags the conversation for the dashboard without
// switching who answers. An escalated customer keeps talking to the bot
// until an attendant takes over explicitly.
func (s *HandoffService) MarkRequiresAttention(ctx context.Context, tenantID int64, customer string) error {
	order, err := s.orderRepo.GetOpen(ctx, tenantID, customer)
	if errors.Is(err, repository.ErrOrderNotFound) {
		order, err = s.orderRepo.CreateOpen(ctx, tenantID, customer, model.AttendanceModeBot)
		if err != nil {
			return fmt.Errorf("create order for attention flag: %w", err)
		}
	} else if err != nil {
		return err
	}
	if err := s.orderRepo.SetAttendanceStatus(ctx, order.ID, model.AttendanceStatusRequiresAttention); err != nil {
		return err
	}
	logger.Info("conversation flagged for attention", "tenant_id", tenantID, "customer", customer, "order_id", order.ID)
	return nil
}

func (s *HandoffService) ClearAttention(ctx context.Context, tenantID int64, customer string) error {
	order, err := s.orderRepo.GetOpen(ctx, tenantID, customer)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.orderRepo.SetAttendanceStatus(ctx, order.ID, model.AttendanceStatusNone)
}
