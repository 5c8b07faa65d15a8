package repository

import (
	"context"
	"errors"
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderClosed   = errors.New("order is not open")
)

type OrderRepository struct {
	*pg.DB
}

func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

// GetOpen returns the open order for (tenant, customer), items included.
// The schema enforces at most one open row per pair; if that invariant is
// ever violated the most recently created row wins and we log loudly
// instead of failing the whole operation.
func (r *OrderRepository) GetOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error) {
	var entities []*OrderEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND customer = ? AND status = ?", tenantID, customer, string(model.OrderStatusOpen)).
		Order("created_at DESC, id DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, ErrOrderNotFound
	}
	if len(entities) > 1 {
		logger.Error("data integrity: multiple open orders for customer",
			"tenant_id", tenantID, "customer", customer, "count", len(entities))
	}
	return toOrderModel(entities[0]), nil
}

// LockOpen is GetOpen with SELECT ... FOR UPDATE semantics, for use inside
// WithinTransaction. Two concurrent cart mutations for the same customer
// serialize on this lock; without it rapid-fire adds lose updates.
func (r *OrderRepository) LockOpen(ctx context.Context, tenantID int64, customer string) (*model.Order, error) {
	var entity OrderEntity
	err := r.Write(ctx).WithContext(ctx).
		Preload("Items").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND customer = ? AND status = ?", tenantID, customer, string(model.OrderStatusOpen)).
		Order("created_at DESC, id DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderModel(&entity), nil
}

func (r *OrderRepository) CreateOpen(ctx context.Context, tenantID int64, customer string, mode model.AttendanceMode) (*model.Order, error) {
	entity := &OrderEntity{
		TenantID:         tenantID,
		Customer:         customer,
		Status:           string(model.OrderStatusOpen),
		Mode:             string(mode),
		AttendanceStatus: string(model.AttendanceStatusNone),
	}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toOrderModel(entity), nil
}

// UpsertItem merges quantity into the order's line for the product as a
// single statement, additive on conflict.
func (r *OrderRepository) UpsertItem(ctx context.Context, orderID, productID int64, quantity int) error {
	item := &OrderItemEntity{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("order_items.quantity + excluded.quantity"),
			}),
		}).
		Create(item).
		Error
}

// RecomputeTotal recalculates the order total from its line items joined
// against current product prices. Always from scratch: an incrementally
// accumulated total drifts when a price changes mid-cart. Only active
// products count, the same predicate ItemsWithProducts renders with, so the
// receipt never charges for a line the cart view showed as unavailable.
func (r *OrderRepository) RecomputeTotal(ctx context.Context, orderID int64) (int64, error) {
	err := r.Write(ctx).WithContext(ctx).Exec(`
		UPDATE orders SET total_cents = (
			SELECT COALESCE(SUM(p.price_cents * oi.quantity), 0)
			FROM order_items oi
			JOIN products p ON p.id = oi.product_id AND p.active = ?
			WHERE oi.order_id = orders.id
		)
		WHERE id = ?`, true, orderID).Error
	if err != nil {
		return 0, err
	}

	var total int64
	err = r.Write(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Select("total_cents").
		Where("id = ?", orderID).
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// CartLineRow is one cart line joined against the catalog. Name and
// PriceCents are nil when the product no longer resolves.
type CartLineRow struct {
	ProductID  int64   `gorm:"column:product_id"`
	Quantity   int     `gorm:"column:quantity"`
	Name       *string `gorm:"column:name"`
	PriceCents *int64  `gorm:"column:price_cents"`
}

func (r *OrderRepository) ItemsWithProducts(ctx context.Context, orderID int64) ([]CartLineRow, error) {
	var rows []CartLineRow
	err := r.Read(ctx).WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id, oi.quantity, p.name, p.price_cents").
		Joins("LEFT JOIN products p ON p.id = oi.product_id AND p.active = ?", true).
		Where("oi.order_id = ?", orderID).
		Order("oi.product_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Finalize transitions an open order to finalized. Finalized is terminal;
// the guard on status makes double checkouts a no-op error instead of a
// silent rewrite.
func (r *OrderRepository) Finalize(ctx context.Context, orderID int64) error {
	now := time.Now()
	result := r.Write(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Where("id = ? AND status = ?", orderID, string(model.OrderStatusOpen)).
		Updates(map[string]interface{}{
			"status":       string(model.OrderStatusFinalized),
			"finalized_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderClosed
	}
	return nil
}

func (r *OrderRepository) SetMode(ctx context.Context, orderID int64, mode model.AttendanceMode) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Where("id = ?", orderID).
		Update("attendance_mode", string(mode))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) SetAttendanceStatus(ctx context.Context, orderID int64, status model.AttendanceStatus) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Where("id = ?", orderID).
		Update("attendance_status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	q := r.Read(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Where("tenant_id = ?", f.TenantID)

	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.Customer != nil && *f.Customer != "" {
		q = q.Where("customer = ?", *f.Customer)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*OrderEntity
	if err := q.Preload("Items").Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toOrderModels(entities), total, nil
}
