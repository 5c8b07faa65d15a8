package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
	"github.com/zapshop/commerce-bot/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBotConfigRepository struct {
	mock.Mock
}

func (m *MockBotConfigRepository) Get(ctx context.Context, tenantID int64) (*model.BotConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotConfig), args.Error(1)
}

func (m *MockBotConfigRepository) Upsert(ctx context.Context, cfg *model.BotConfig) (*model.BotConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotConfig), args.Error(1)
}

func setupTestCache(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Unique connection name per test; the adapter registry is global.
	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	return mr, adapter
}

func TestBotConfigService_Get_CachesAfterFirstRead(t *testing.T) {
	mr, cache := setupTestCache(t)
	defer mr.Close()

	cfg := &model.BotConfig{TenantID: 1, StoreName: "Empório Verde", Greeting: "Olá!"}
	repo := new(MockBotConfigRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(cfg, nil).Once()

	svc := NewBotConfigService(repo, new(MockTenantRepository), cache)
	ctx := context.Background()

	first, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Empório Verde", first.StoreName)

	// Second read is served from the cache; the mock only allows one call.
	second, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Empório Verde", second.StoreName)
	repo.AssertExpectations(t)
}

func TestBotConfigService_Get_DefaultsWhenUnconfigured(t *testing.T) {
	mr, cache := setupTestCache(t)
	defer mr.Close()

	repo := new(MockBotConfigRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(nil, repository.ErrBotConfigNotFound)
	tenantRepo := new(MockTenantRepository)
	tenantRepo.On("GetByID", mock.Anything, int64(1)).
		Return(&model.Tenant{ID: 1, Name: "Empório Verde"}, nil)

	svc := NewBotConfigService(repo, tenantRepo, cache)
	cfg, err := svc.Get(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Empório Verde", cfg.StoreName)
	assert.NotEmpty(t, cfg.Greeting)
}

func TestBotConfigService_Save_InvalidatesCache(t *testing.T) {
	mr, cache := setupTestCache(t)
	defer mr.Close()

	old := &model.BotConfig{TenantID: 1, StoreName: "Antiga"}
	updated := &model.BotConfig{TenantID: 1, StoreName: "Nova"}

	repo := new(MockBotConfigRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(old, nil).Once()
	repo.On("Upsert", mock.Anything, updated).Return(updated, nil)
	repo.On("Get", mock.Anything, int64(1)).Return(updated, nil).Once()

	svc := NewBotConfigService(repo, new(MockTenantRepository), cache)
	ctx := context.Background()

	first, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Antiga", first.StoreName)

	_, err = svc.Save(ctx, updated)
	require.NoError(t, err)

	second, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Nova", second.StoreName)
	repo.AssertExpectations(t)
}

func TestBotConfigService_Get_CacheExpiry(t *testing.T) {
	mr, cache := setupTestCache(t)
	defer mr.Close()

	cfg := &model.BotConfig{TenantID: 1, StoreName: "Empório Verde"}
	repo := new(MockBotConfigRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(cfg, nil).Twice()

	svc := NewBotConfigService(repo, new(MockTenantRepository), cache)
	ctx := context.Background()

	_, err := svc.Get(ctx, 1)
	require.NoError(t, err)

	mr.FastForward(botConfigCacheTTL + time.Second)

	_, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
