package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/redis"
)

const botConfigCacheTTL = 5 * time.Minute

type BotConfigRepository interface {
	Get(ctx context.Context, tenantID int64) (*model.BotConfig, error)
	Upsert(ctx context.Context, cfg *model.BotConfig) (*model.BotConfig, error)
}

type BotConfigTenantRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
}

// BotConfigService serves tenant bot personality and store info. Reads go
// through a short-lived Redis cache since every inbound message needs the
// config; writes invalidate the cached entry.
type BotConfigService struct {
	repo       BotConfigRepository
	tenantRepo BotConfigTenantRepository
	cache      redis.RedisAdapter
}

func NewBotConfigService(repo BotConfigRepository, tenantRepo BotConfigTenantRepository, cache redis.RedisAdapter) *BotConfigService {
	return &BotConfigService{
		repo:       repo,
		tenantRepo: tenantRepo,
		cache:      cache,
	}
}

func botConfigCacheKey(tenantID int64) string {
	return fmt.Sprintf("botcfg:%d", tenantID)
}

// Get returns the tenant's bot config, falling back to sensible defaults
// when the tenant never saved one.
func (s *BotConfigService) Get(ctx context.Context, tenantID int64) (*model.BotConfig, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(botConfigCacheKey(tenantID)); err == nil {
			var cfg model.BotConfig
			if err := json.Unmarshal(raw, &cfg); err == nil {
				return &cfg, nil
			}
			logger.Warn("discarding unparsable cached bot config", "tenant_id", tenantID)
		}
	}

	cfg, err := s.repo.Get(ctx, tenantID)
	if errors.Is(err, repository.ErrBotConfigNotFound) {
		cfg, err = s.defaults(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}

	s.cacheSet(tenantID, cfg)
	return cfg, nil
}

// Save upserts the config and invalidates the cache so the next inbound
// message sees the new personality immediately.
func (s *BotConfigService) Save(ctx context.Context, cfg *model.BotConfig) (*model.BotConfig, error) {
	saved, err := s.repo.Upsert(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Del(botConfigCacheKey(cfg.TenantID)); err != nil {
			logger.Error("invalidate bot config cache", "tenant_id", cfg.TenantID, "error", err)
		}
	}
	return saved, nil
}

func (s *BotConfigService) defaults(ctx context.Context, tenantID int64) (*model.BotConfig, error) {
	storeName := "nossa loja"
	if tenant, err := s.tenantRepo.GetByID(ctx, tenantID); err == nil {
		storeName = tenant.Name
	}
	return model.DefaultBotConfig(tenantID, storeName), nil
}

func (s *BotConfigService) cacheSet(tenantID int64, cfg *model.BotConfig) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := s.cache.Set(botConfigCacheKey(tenantID), raw, botConfigCacheTTL); err != nil {
		logger.Error("cache bot config", "tenant_id", tenantID, "error", err)
	}
}
