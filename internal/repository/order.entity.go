package repository

import (
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
)

type OrderEntity struct {
	ID               int64             `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	TenantID         int64             `db:"tenant_id"         gorm:"column:tenant_id;not null;index"`
	Customer         string            `db:"customer"          gorm:"column:customer;not null;index"`
	Status           string            `db:"status"            gorm:"column:status;not null;default:open"`
	TotalCents       int64             `db:"total_cents"       gorm:"column:total_cents;not null;default:0"`
	Mode             string            `db:"attendance_mode"   gorm:"column:attendance_mode;not null;default:bot"`
	AttendanceStatus string            `db:"attendance_status" gorm:"column:attendance_status;not null;default:none"`
	Items            []OrderItemEntity `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time         `db:"created_at"        gorm:"column:created_at;autoCreateTime"`
	FinalizedAt      *time.Time        `db:"finalized_at"      gorm:"column:finalized_at"`
}

func (OrderEntity) TableName() string {
	return "orders"
}

type OrderItemEntity struct {
	OrderID   int64 `db:"order_id"   gorm:"column:order_id;primaryKey;autoIncrement:false"`
	ProductID int64 `db:"product_id" gorm:"column:product_id;primaryKey;autoIncrement:false"`
	Quantity  int   `db:"quantity"   gorm:"column:quantity;not null"`
}

func (OrderItemEntity) TableName() string {
	return "order_items"
}

func toOrderModel(e *OrderEntity) *model.Order {
	if e == nil {
		return nil
	}
	items := make([]model.OrderItem, len(e.Items))
	for i, it := range e.Items {
		items[i] = model.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return &model.Order{
		ID:               e.ID,
		TenantID:         e.TenantID,
		Customer:         e.Customer,
		Status:           model.OrderStatus(e.Status),
		TotalCents:       e.TotalCents,
		Mode:             model.AttendanceMode(e.Mode),
		AttendanceStatus: model.AttendanceStatus(e.AttendanceStatus),
		Items:            items,
		CreatedAt:        e.CreatedAt,
		FinalizedAt:      e.FinalizedAt,
	}
}

func toOrderModels(entities []*OrderEntity) []*model.Order {
	if entities == nil {
		return nil
	}
	models := make([]*model.Order, len(entities))
	for i, e := range entities {
		models[i] = toOrderModel(e)
	}
	return models
}
