package repository

import (
	"context"
	"errors"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
)

type TenantRepository struct {
	*pg.DB
}

func NewTenantRepository(db *pg.DB) *TenantRepository {
	return &TenantRepository{
		db,
	}
}

func (r *TenantRepository) Create(ctx context.Context, t *model.Tenant) (*model.Tenant, error) {
	entity := toTenantEntity(t)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTenantModel(entity), nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	var entity TenantEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return toTenantModel(&entity), nil
}

// GetByWhatsAppNumber is the canonical tenant resolution strategy: the
// receiving number of the inbound webhook maps to exactly one tenant.
// Resolving by sender or by subaccount id is deliberately not implemented;
// mixing strategies is how cross-tenant misrouting happens.
func (r *TenantRepository) GetByWhatsAppNumber(ctx context.Context, number string) (*model.Tenant, error) {
	var entity TenantEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("whatsapp_number = ?", number).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return toTenantModel(&entity), nil
}
