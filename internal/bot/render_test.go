package bot

import (
	"testing"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "R$ 12.50", FormatPrice(1250))
	assert.Equal(t, "R$ 0.99", FormatPrice(99))
	assert.Equal(t, "R$ 30.00", FormatPrice(3000))
	assert.Equal(t, "R$ 0.00", FormatPrice(0))
}

func TestRenderCart(t *testing.T) {
	assert.Equal(t, "Seu carrinho está vazio.", RenderCart(&model.CartView{}))
	assert.Equal(t, "Seu carrinho está vazio.", RenderCart(nil))

	view := &model.CartView{
		OrderID: 10,
		Lines: []model.CartLine{
			{ProductID: 5, Name: "Chá Verde", Quantity: 2, SubtotalCents: 2500},
			{ProductID: 9, Quantity: 1, Missing: true},
		},
		TotalCents: 2500,
	}
	out := RenderCart(view)
	assert.Contains(t, out, "2x Chá Verde - R$ 25.00")
	assert.Contains(t, out, "produto indisponível")
	assert.Contains(t, out, "Total: *R$ 25.00*")
}

func TestRenderGreeting_UsesConfiguredText(t *testing.T) {
	cfg := &model.BotConfig{StoreName: "Empório Verde", Greeting: "Oi, tudo bem?"}
	out := RenderGreeting(cfg)
	assert.Contains(t, out, "Oi, tudo bem?")
	assert.Contains(t, out, "Empório Verde")
	assert.Contains(t, out, "*produtos*")

	assert.Contains(t, RenderGreeting(nil), "Olá! Bem-vindo(a)!")
}

func TestRenderCategories_Empty(t *testing.T) {
	assert.Contains(t, RenderCategories(nil), "Ainda não temos produtos")
}

func TestBuildAssistantPrompt(t *testing.T) {
	cfg := &model.BotConfig{
		StoreName:     "Empório Verde",
		AssistantName: "Vera",
		Hours:         "9h às 18h",
		UseEmojis:     false,
		FAQ:           []model.FAQEntry{{Question: "tem entrega?", Answer: "Sim, na região central."}},
	}
	products := []*model.Product{{ID: 5, Name: "Chá Verde", PriceCents: 1250}}

	prompt := BuildAssistantPrompt(cfg, products)
	assert.Contains(t, prompt, "Vera")
	assert.Contains(t, prompt, "Empório Verde")
	assert.Contains(t, prompt, "9h às 18h")
	assert.Contains(t, prompt, "Não use emojis.")
	assert.Contains(t, prompt, "tem entrega?")
	assert.Contains(t, prompt, "5. Chá Verde - R$ 12.50")
}
