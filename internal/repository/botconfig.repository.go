package repository

import (
	"context"
	"errors"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBotConfigNotFound = errors.New("bot config not found")
)

type BotConfigRepository struct {
	*pg.DB
}

func NewBotConfigRepository(db *pg.DB) *BotConfigRepository {
	return &BotConfigRepository{
		db,
	}
}

func (r *BotConfigRepository) Get(ctx context.Context, tenantID int64) (*model.BotConfig, error) {
	var entity BotConfigEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBotConfigNotFound
		}
		return nil, err
	}
	return toBotConfigModel(&entity), nil
}

// Upsert writes the whole config row, inserting it on first save.
func (r *BotConfigRepository) Upsert(ctx context.Context, cfg *model.BotConfig) (*model.BotConfig, error) {
	entity := toBotConfigEntity(cfg)

	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"store_name", "hours", "address", "maps_link", "assistant_name",
				"greeting", "use_emojis", "faq", "persona_prompt", "knowledge", "updated_at",
			}),
		}).
		Create(entity).
		Error
	if err != nil {
		return nil, err
	}
	return toBotConfigModel(entity), nil
}
