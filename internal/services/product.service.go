package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/logger"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	Get(ctx context.Context, tenantID, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error)
	Deactivate(ctx context.Context, tenantID, id int64) error
	HardDelete(ctx context.Context, tenantID, id int64) error
}

// CSVImportResult reports what a catalog import did, row by row.
type CSVImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ProductService is the dashboard's catalog management surface.
type ProductService struct {
	repo ProductRepository
}

func NewProductService(repo ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) Create(ctx context.Context, req *model.ProductCreateRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &model.Product{
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	})
}

func (s *ProductService) Update(ctx context.Context, req *model.ProductUpdateRequest) (*model.Product, error) {
	return s.repo.Update(ctx, &model.Product{
		ID:          req.ID,
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	})
}

func (s *ProductService) Get(ctx context.Context, tenantID, id int64) (*model.Product, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *ProductService) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	return s.repo.List(ctx, f)
}

func (s *ProductService) Deactivate(ctx context.Context, tenantID, id int64) error {
	return s.repo.Deactivate(ctx, tenantID, id)
}

func (s *ProductService) Delete(ctx context.Context, tenantID, id int64) error {
	return s.repo.HardDelete(ctx, tenantID, id)
}

// ImportCSV bulk-loads products from a CSV with header
// nome,descricao,preco,categoria,ativo. Prices are reais with optional
// decimals ("12,50" or "12.50"). Bad rows are skipped and reported, good
// rows still land.
func (s *ProductService) ImportCSV(ctx context.Context, tenantID int64, r io.Reader) (*CSVImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"nome", "preco"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}

	result := &CSVImportResult{}
	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %v", line, err))
			continue
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := field("nome")
		if name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: nome vazio", line))
			continue
		}

		priceCents, err := parsePriceCents(field("preco"))
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %v", line, err))
			continue
		}

		active := true
		if v := field("ativo"); v != "" {
			active = isTruthy(v)
		}

		_, err = s.repo.Create(ctx, &model.Product{
			TenantID:    tenantID,
			Name:        name,
			Description: field("descricao"),
			PriceCents:  priceCents,
			Category:    field("categoria"),
			Active:      active,
		})
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	logger.Info("catalog csv import finished",
		"tenant_id", tenantID, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// parsePriceCents accepts "12,50", "12.50", "1.234,56" and bare integers,
// returning the value in cents.
func parsePriceCents(raw string) (int64, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "R$")
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("preco vazio")
	}

	if strings.Contains(v, ",") {
		// Comma is the decimal separator; dots are thousands.
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("preco invalido %q", raw)
	}
	return int64(math.Round(f * 100)), nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "sim", "s", "yes", "y", "ativo":
		return true
	}
	return false
}
