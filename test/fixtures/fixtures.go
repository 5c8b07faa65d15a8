package fixtures

import (
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
)

var (
	TestTenantBakery = model.Tenant{
		ID:             1,
		Name:           "Padaria do Zé",
		Plan:           "free",
		WhatsAppNumber: "5511900001111",
		OperatorNumber: "5511999990000",
	}

	TestTenantFlorist = model.Tenant{
		ID:             2,
		Name:           "Flores da Ana",
		Plan:           "pro",
		WhatsAppNumber: "5511900002222",
		OperatorNumber: "5511999991111",
	}

	TestTenantNoOperator = model.Tenant{
		ID:             3,
		Name:           "Loja Sem Atendente",
		Plan:           "free",
		WhatsAppNumber: "5511900003333",
	}
)

func NewTestProduct(tenantID int64, name string, priceCents int64, category string) *model.Product {
	return &model.Product{
		TenantID:   tenantID,
		Name:       name,
		PriceCents: priceCents,
		Category:   category,
		Active:     true,
		CreatedAt:  time.Now(),
	}
}

func NewTestProductCreateRequest(name string, priceCents int64, category string) model.ProductCreateRequest {
	return model.ProductCreateRequest{
		Name:       name,
		PriceCents: priceCents,
		Category:   category,
		Active:     true,
	}
}

func NewTestBotConfig(tenantID int64, storeName string) *model.BotConfig {
	return model.DefaultBotConfig(tenantID, storeName)
}

var (
	ValidCustomerNumbers = []string{
		"5511888887777",
		"5521977776666",
		"551188888777",
		"5531966665555",
	}

	GreetingMessages = []string{
		"oi",
		"olá",
		"bom dia",
		"boa tarde",
	}

	EscalationMessages = []string{
		"quero falar com atendente",
		"me passa pra um humano",
		"preciso de uma pessoa",
	}
)

func ProductCreateRequestMissingName() model.ProductCreateRequest {
	return NewTestProductCreateRequest("", 1000, "doces")
}

func ProductCreateRequestFreePrice() model.ProductCreateRequest {
	return NewTestProductCreateRequest("Brinde", 0, "doces")
}

func ProductFilterByCategory(tenantID int64, category string) model.ProductFilter {
	return model.ProductFilter{
		TenantID: tenantID,
		Category: &category,
		Limit:    50,
		Offset:   0,
	}
}

func OrderFilterFinalized(tenantID int64) model.OrderFilter {
	status := model.OrderStatusFinalized
	return model.OrderFilter{
		TenantID: tenantID,
		Status:   &status,
		Limit:    50,
		Offset:   0,
		Desc:     true,
	}
}
