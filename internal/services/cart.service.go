package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrProductNotFound = errors.New("product not found or inactive")
	ErrCartEmpty       = errors.New("cart is empty")
)

type CartOrderRepository interface {
	GetOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error)
	LockOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error)
	CreateOpen(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) (*model.Order, error)
	UpsertItem(ctx context.Context, orderID, productID int64, quantity int) error
	RecomputeTotal(ctx context.Context, orderID int64) (int64, error)
	ItemsWithProducts(ctx context.Context, orderID int64) ([]repository.CartLineRow, error)
	Finalize(ctx context.Context, orderID int64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CartProductRepository interface {
	GetActive(ctx context.Context, tenantID, id int64) (*model.Product, error)
}

// CartService owns the open-order state machine:
//
//	(none) --AddItem--> open --AddItem--> open --Checkout--> finalized
//
// Every mutation runs inside a transaction that locks the open order row,
// so two near-simultaneous adds from the same customer merge instead of
// overwriting each other.
type CartService struct {
	orderRepo   CartOrderRepository
	productRepo CartProductRepository
}

func NewCartService(orderRepo CartOrderRepository, productRepo CartProductRepository) *CartService {
	return &CartService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// AddItem merges quantity of a product into the customer's open order,
// creating the order when none exists. The total is recomputed from current
// catalog prices on every call.
func (s *CartService) AddItem(ctx context.Context, tenantID int64, customer string, productID int64, quantity int) (*model.CartUpdate, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.GetActive(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("look up product: %w", err)
	}

	var update *model.CartUpdate
	err = s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.LockOpen(ctx, tenantID, customer)
		if errors.Is(err, repository.ErrOrderNotFound) {
			order, err = s.orderRepo.CreateOpen(ctx, tenantID, customer, model.AttendanceModeBot)
		}
		if err != nil {
			return fmt.Errorf("open order: %w", err)
		}

		if err := s.orderRepo.UpsertItem(ctx, order.ID, productID, quantity); err != nil {
			return fmt.Errorf("upsert item: %w", err)
		}

		total, err := s.orderRepo.RecomputeTotal(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("recompute total: %w", err)
		}

		update = &model.CartUpdate{
			OrderID:    order.ID,
			Product:    product,
			Quantity:   quantity,
			TotalCents: total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

// ViewCart renders the open order against the current catalog. A line whose
// product no longer resolves is kept with Missing set instead of failing
// the whole view.
func (s *CartService) ViewCart(ctx context.Context, tenantID int64, customer string) (*model.CartView, error) {
	order, err := s.orderRepo.GetOpen(ctx, tenantID, customer)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return &model.CartView{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.orderRepo.ItemsWithProducts(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	view := &model.CartView{OrderID: order.ID}
	for _, row := range rows {
		line := model.CartLine{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
		}
		if row.Name == nil || row.PriceCents == nil {
			line.Missing = true
		} else {
			line.Name = *row.Name
			line.SubtotalCents = *row.PriceCents * int64(row.Quantity)
			view.TotalCents += line.SubtotalCents
		}
		view.Lines = append(view.Lines, line)
	}
	return view, nil
}

// Checkout finalizes the open order. The next AddItem after a checkout
// starts a fresh order; that reset is the intended behavior, not a leak.
func (s *CartService) Checkout(ctx context.Context, tenantID int64, customer string) (*model.Receipt, error) {
	var receipt *model.Receipt
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.LockOpen(ctx, tenantID, customer)
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrCartEmpty
		}
		if err != nil {
			return err
		}
		if len(order.Items) == 0 {
			// An open order can exist purely to hold the handoff mode.
			return ErrCartEmpty
		}

		total, err := s.orderRepo.RecomputeTotal(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("recompute total: %w", err)
		}

		if err := s.orderRepo.Finalize(ctx, order.ID); err != nil {
			return fmt.Errorf("finalize: %w", err)
		}

		receipt = &model.Receipt{OrderID: order.ID, TotalCents: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
