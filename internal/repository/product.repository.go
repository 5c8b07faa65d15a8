package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

type ProductRepository struct {
	*pg.DB
}

func NewProductRepository(db *pg.DB) *ProductRepository {
	return &ProductRepository{
		db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	entity := toProductEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toProductModel(entity), nil
}

func (r *ProductRepository) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	entity := toProductEntity(p)

	result := r.Write(ctx).WithContext(ctx).
		Model(&ProductEntity{}).
		Where("id = ? AND tenant_id = ?", p.ID, p.TenantID).
		Updates(map[string]interface{}{
			"name":        entity.Name,
			"description": entity.Description,
			"price_cents": entity.PriceCents,
			"category":    entity.Category,
			"active":      entity.Active,
			"image_url":   entity.ImageURL,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return r.Get(ctx, p.TenantID, p.ID)
}

// Get returns the product regardless of its active flag. Callers on the bot
// path must use GetActive instead.
func (r *ProductRepository) Get(ctx context.Context, tenantID, id int64) (*model.Product, error) {
	var entity ProductEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return toProductModel(&entity), nil
}

func (r *ProductRepository) GetActive(ctx context.Context, tenantID, id int64) (*model.Product, error) {
	var entity ProductEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND active = ?", id, tenantID, true).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return toProductModel(&entity), nil
}

func (r *ProductRepository) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	q := r.Read(ctx).WithContext(ctx).
		Model(&ProductEntity{}).
		Where("tenant_id = ?", f.TenantID)

	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if f.Category != nil && *f.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", *f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ProductEntity
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toProductModels(entities), total, nil
}

// ListActiveAll returns the full active catalog for a tenant. Used to build
// the AI fallback context.
func (r *ProductRepository) ListActiveAll(ctx context.Context, tenantID int64) ([]*model.Product, error) {
	var entities []*ProductEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toProductModels(entities), nil
}

func (r *ProductRepository) ListCategories(ctx context.Context, tenantID int64) ([]string, error) {
	var categories []string
	err := r.Read(ctx).WithContext(ctx).
		Model(&ProductEntity{}).
		Where("tenant_id = ? AND active = ? AND category <> ''", tenantID, true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).
		Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *ProductRepository) ListByCategory(ctx context.Context, tenantID int64, category string) ([]*model.Product, error) {
	var entities []*ProductEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tenant_id = ? AND active = ? AND LOWER(category) = ?", tenantID, true, strings.ToLower(category)).
		Order("name ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toProductModels(entities), nil
}

// SearchByName returns the first active product whose name contains the
// query, case-insensitively. Length guarding lives in the service layer.
func (r *ProductRepository) SearchByName(ctx context.Context, tenantID int64, query string) (*model.Product, error) {
	var entity ProductEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tenant_id = ? AND active = ? AND LOWER(name) LIKE ?", tenantID, true, "%"+strings.ToLower(query)+"%").
		Order("id ASC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return toProductModel(&entity), nil
}

func (r *ProductRepository) Deactivate(ctx context.Context, tenantID, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ProductEntity{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// HardDelete removes the row. The dashboard exposes exactly one such route;
// everything else is a soft deactivate.
func (r *ProductRepository) HardDelete(ctx context.Context, tenantID, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&ProductEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
