package bot

import (
	"context"
	"testing"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier_AddCommand(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	got := c.Classify(ctx, "add 5 2", nil, nil)
	assert.Equal(t, IntentAddItem, got.Intent)
	assert.Equal(t, int64(5), got.ProductID)
	assert.Equal(t, 2, got.Quantity)

	got = c.Classify(ctx, "  ADD 12 1  ", nil, nil)
	assert.Equal(t, IntentAddItem, got.Intent)
	assert.Equal(t, int64(12), got.ProductID)

	for _, bad := range []string{"add cinco dois", "add 5", "add 5 2 3", "add 5 0"} {
		got = c.Classify(ctx, bad, nil, nil)
		assert.Equal(t, IntentAddInvalid, got.Intent, "message %q", bad)
	}

	// Only the literal "add " prefix is a command; anything else starting
	// with add still reaches product search.
	for _, msg := range []string{"add", "addreno", "adesivo"} {
		got = c.Classify(ctx, msg, nil, nil)
		assert.Equal(t, IntentUnknown, got.Intent, "message %q", msg)
		assert.Equal(t, msg, got.Query)
	}
}

func TestKeywordClassifier_KeywordSets(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	cases := map[string]Intent{
		"oi":            IntentGreeting,
		"Olá":           IntentGreeting,
		"bom dia":       IntentGreeting,
		"menu":          IntentGreeting,
		"carrinho":      IntentShowCart,
		"Meu Carrinho":  IntentShowCart,
		"produtos":      IntentCatalog,
		"catálogo":      IntentCatalog,
		"finalizar":     IntentCheckout,
		"atendente":     IntentEscalate,
		"quero ajuda":   IntentEscalate,
		"tive um problema com o pedido": IntentEscalate,
	}
	for msg, want := range cases {
		got := c.Classify(ctx, msg, nil, nil)
		assert.Equal(t, want, got.Intent, "message %q", msg)
	}
}

func TestKeywordClassifier_FAQBeatsGreeting(t *testing.T) {
	cfg := &model.BotConfig{
		FAQ: []model.FAQEntry{
			{Question: "bom dia", Answer: "Bom dia! Como posso ajudar?"},
		},
	}

	got := NewKeywordClassifier().Classify(context.Background(), "Bom Dia", cfg, nil)
	assert.Equal(t, IntentFAQ, got.Intent)
	assert.Equal(t, "Bom dia! Como posso ajudar?", got.FAQAnswer)
}

func TestKeywordClassifier_FAQBeatsEveryCommand(t *testing.T) {
	cfg := &model.BotConfig{
		FAQ: []model.FAQEntry{
			{Question: "add 1 1", Answer: "Use os botões do catálogo para comprar."},
			{Question: "atendente", Answer: "Nosso horário de atendimento é das 9h às 18h."},
		},
	}
	c := NewKeywordClassifier()

	got := c.Classify(context.Background(), "add 1 1", cfg, nil)
	assert.Equal(t, IntentFAQ, got.Intent)

	got = c.Classify(context.Background(), "atendente", cfg, nil)
	assert.Equal(t, IntentFAQ, got.Intent)
}

func TestKeywordClassifier_CategoryMatch(t *testing.T) {
	c := NewKeywordClassifier()
	categories := []string{"Chás", "Óleos"}

	got := c.Classify(context.Background(), "chás", nil, categories)
	assert.Equal(t, IntentCategory, got.Intent)
	assert.Equal(t, "Chás", got.Category)

	// A category cannot shadow a fixed command.
	got = c.Classify(context.Background(), "finalizar", nil, []string{"Finalizar"})
	assert.Equal(t, IntentCheckout, got.Intent)
}

func TestKeywordClassifier_UnknownCarriesQuery(t *testing.T) {
	got := NewKeywordClassifier().Classify(context.Background(), "  Chá Verde  ", nil, nil)
	assert.Equal(t, IntentUnknown, got.Intent)
	assert.Equal(t, "chá verde", got.Query)
}
