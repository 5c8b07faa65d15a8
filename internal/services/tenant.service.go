package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
)

var ErrTenantNotFound = errors.New("tenant not found")

type TenantRepository interface {
	Create(ctx context.Context, t *model.Tenant) (*model.Tenant, error)
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
	GetByWhatsAppNumber(ctx context.Context, number string) (*model.Tenant, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TenantBotConfigRepository interface {
	Upsert(ctx context.Context, cfg *model.BotConfig) (*model.BotConfig, error)
}

type TenantService struct {
	repo          TenantRepository
	botConfigRepo TenantBotConfigRepository
}

func NewTenantService(repo TenantRepository, botConfigRepo TenantBotConfigRepository) *TenantService {
	return &TenantService{
		repo:          repo,
		botConfigRepo: botConfigRepo,
	}
}

// Register creates the tenant and seeds its default bot config in one
// transaction, so a new store never answers with a half-configured bot.
func (s *TenantService) Register(ctx context.Context, req *model.TenantCreateRequest) (*model.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var tenant *model.Tenant
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		tenant, err = s.repo.Create(ctx, &model.Tenant{
			Name:            req.Name,
			Plan:            req.Plan,
			WhatsAppNumber:  req.WhatsAppNumber,
			SubaccountSID:   req.SubaccountSID,
			SubaccountToken: req.SubaccountToken,
			OperatorNumber:  req.OperatorNumber,
		})
		if err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}

		_, err = s.botConfigRepo.Upsert(ctx, model.DefaultBotConfig(tenant.ID, tenant.Name))
		if err != nil {
			return fmt.Errorf("seed bot config: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *TenantService) Get(ctx context.Context, id int64) (*model.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTenantNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

// Resolve maps the receiving WhatsApp number of an inbound webhook to its
// tenant. The receiving number is the only resolution key; sender-based
// lookups would collide the moment one person messages two stores.
func (s *TenantService) Resolve(ctx context.Context, receivingNumber string) (*model.Tenant, error) {
	tenant, err := s.repo.GetByWhatsAppNumber(ctx, receivingNumber)
	if errors.Is(err, repository.ErrTenantNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}
