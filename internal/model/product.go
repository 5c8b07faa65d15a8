package model

import (
	"errors"
	"time"
)

type Product struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Product) TableName() string { return "products" }

type ProductCreateRequest struct {
	TenantID    int64
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Active      bool
	ImageURL    string
}

func (p ProductCreateRequest) Validate() error {
	if p.TenantID == 0 {
		return errors.New("tenant_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.PriceCents < 0 {
		return errors.New("price_cents must not be negative")
	}
	return nil
}

type ProductUpdateRequest struct {
	TenantID    int64
	ID          int64
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Active      bool
	ImageURL    string
}

// ProductFilter controls dashboard listing queries. Customer-facing reads
// always add active = true on top of this.
type ProductFilter struct {
	TenantID   int64
	Category   *string
	ActiveOnly bool
	Limit      int // default 50
	Offset     int
}
