package repository

import (
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
)

type ProductEntity struct {
	ID          int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	TenantID    int64     `db:"tenant_id"   gorm:"column:tenant_id;not null;index"`
	Name        string    `db:"name"        gorm:"column:name;not null"`
	Description string    `db:"description" gorm:"column:description"`
	PriceCents  int64     `db:"price_cents" gorm:"column:price_cents;not null"`
	Category    string    `db:"category"    gorm:"column:category"`
	Active      bool      `db:"active"      gorm:"column:active;not null"`
	ImageURL    string    `db:"image_url"   gorm:"column:image_url"`
	CreatedAt   time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (ProductEntity) TableName() string {
	return "products"
}

func toProductEntity(m *model.Product) *ProductEntity {
	if m == nil {
		return nil
	}
	return &ProductEntity{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Description: m.Description,
		PriceCents:  m.PriceCents,
		Category:    m.Category,
		Active:      m.Active,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
	}
}

func toProductModel(e *ProductEntity) *model.Product {
	if e == nil {
		return nil
	}
	return &model.Product{
		ID:          e.ID,
		TenantID:    e.TenantID,
		Name:        e.Name,
		Description: e.Description,
		PriceCents:  e.PriceCents,
		Category:    e.Category,
		Active:      e.Active,
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
	}
}

func toProductModels(entities []*ProductEntity) []*model.Product {
	if entities == nil {
		return nil
	}
	models := make([]*model.Product, len(entities))
	for i, e := range entities {
		models[i] = toProductModel(e)
	}
	return models
}
