package services

import (
	"context"
	"strings"
	"testing"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Get(ctx context.Context, tenantID, id int64) (*model.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, tenantID, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProductRepository) HardDelete(ctx context.Context, tenantID, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func TestProductService_Create_Validates(t *testing.T) {
	svc := NewProductService(new(MockProductRepository))

	_, err := svc.Create(context.Background(), &model.ProductCreateRequest{TenantID: 1, PriceCents: 100})
	assert.ErrorContains(t, err, "name")

	_, err = svc.Create(context.Background(), &model.ProductCreateRequest{Name: "Chá", PriceCents: 100})
	assert.ErrorContains(t, err, "tenant_id")
}

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12,50", 1250},
		{"12.50", 1250},
		{"1.234,56", 123456},
		{"R$ 30", 3000},
		{"30", 3000},
		{"0,99", 99},
	}
	for _, tc := range cases {
		got, err := parsePriceCents(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "abc", "-5"} {
		_, err := parsePriceCents(bad)
		assert.Error(t, err, bad)
	}
}

func TestProductService_ImportCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"nome,descricao,preco,categoria,ativo",
		"Chá Verde,Folhas selecionadas,\"12,50\",chás,sim",
		"Óleo de Coco,Extra virgem,30.00,óleos,",
		",sem nome,10,chás,sim",
		"Sabonete,preco ruim,abc,higiene,sim",
	}, "\n")

	repo := new(MockProductRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.Name == "Chá Verde" && p.PriceCents == 1250 && p.Active && p.Category == "chás"
	})).Return(&model.Product{ID: 1}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.Name == "Óleo de Coco" && p.PriceCents == 3000 && p.Active
	})).Return(&model.Product{ID: 2}, nil)

	svc := NewProductService(repo)
	result, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Errors, 2)
	repo.AssertExpectations(t)
}

func TestProductService_ImportCSV_MissingRequiredColumn(t *testing.T) {
	svc := NewProductService(new(MockProductRepository))

	_, err := svc.ImportCSV(context.Background(), 1, strings.NewReader("nome,descricao\nChá,bom"))
	assert.ErrorContains(t, err, "preco")
}
