package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/repository"
)

var ErrQueryTooShort = errors.New("search query too short")

// MinSearchRunes guards free-text search against one- and two-letter
// fragments, which match half the catalog and read as noise to the
// customer. Counted in runes so accented words are measured correctly.
const MinSearchRunes = 3

type CatalogProductRepository interface {
	GetActive(ctx context.Context, tenantID, id int64) (*model.Product, error)
	ListCategories(ctx context.Context, tenantID int64) ([]string, error)
	ListByCategory(ctx context.Context, tenantID int64, category string) ([]*model.Product, error)
	SearchByName(ctx context.Context, tenantID int64, query string) (*model.Product, error)
	ListActiveAll(ctx context.Context, tenantID int64) ([]*model.Product, error)
}

// CatalogService is the customer-facing read side of the product catalog.
// It only ever sees active products; dashboard management goes through
// ProductService instead.
type CatalogService struct {
	productRepo CatalogProductRepository
}

func NewCatalogService(productRepo CatalogProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

func (s *CatalogService) Categories(ctx context.Context, tenantID int64) ([]string, error) {
	return s.productRepo.ListCategories(ctx, tenantID)
}

func (s *CatalogService) ProductsInCategory(ctx context.Context, tenantID int64, category string) ([]*model.Product, error) {
	return s.productRepo.ListByCategory(ctx, tenantID, category)
}

func (s *CatalogService) Product(ctx context.Context, tenantID, id int64) (*model.Product, error) {
	p, err := s.productRepo.GetActive(ctx, tenantID, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Search resolves a free-text fragment to the first matching active
// product by name.
func (s *CatalogService) Search(ctx context.Context, tenantID int64, query string) (*model.Product, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchRunes {
		return nil, ErrQueryTooShort
	}
	p, err := s.productRepo.SearchByName(ctx, tenantID, query)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// AllActive returns the tenant's whole active catalog, used to build the
// assistant prompt context.
func (s *CatalogService) AllActive(ctx context.Context, tenantID int64) ([]*model.Product, error) {
	return s.productRepo.ListActiveAll(ctx, tenantID)
}
