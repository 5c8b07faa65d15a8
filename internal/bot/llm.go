package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gateway "github.com/zapshop/commerce-bot/internal/gateways"
	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/logger"
)

// AICompleter is the slice of the AI client the bot needs.
type AICompleter interface {
	Complete(ctx context.Context, messages []gateway.ChatMessage) (string, error)
}

const classifierSystemPrompt = `Você é um roteador de intenções para um bot de vendas no WhatsApp.
Classifique a mensagem do cliente em exatamente uma das intenções:
greeting, catalog, category, show_cart, add_item, checkout, escalate, faq, unknown.
Responda SOMENTE com JSON no formato:
{"intent": "...", "product_id": 0, "quantity": 0, "category": ""}
Use product_id e quantity apenas para add_item; category apenas para category.`

type llmClassification struct {
	Intent    string `json:"intent"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category"`
}

// LLMClassifier routes messages through a language model and falls back to
// the keyword rules whenever the model is unavailable or answers garbage.
// The deterministic commands stay deterministic: keyword routing runs
// first and the model only sees messages the rules could not place.
type LLMClassifier struct {
	ai       AICompleter
	keywords *KeywordClassifier
}

func NewLLMClassifier(ai AICompleter) *LLMClassifier {
	return &LLMClassifier{
		ai:       ai,
		keywords: NewKeywordClassifier(),
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, message string, cfg *model.BotConfig, categories []string) Classification {
	result := c.keywords.Classify(ctx, message, cfg, categories)
	if result.Intent != IntentUnknown {
		return result
	}

	user := fmt.Sprintf("Categorias disponíveis: %s\nMensagem do cliente: %s",
		strings.Join(categories, ", "), message)

	raw, err := c.ai.Complete(ctx, []gateway.ChatMessage{
		{Role: "system", Content: classifierSystemPrompt},
		{Role: "user", Content: user},
	})
	if err != nil {
		logger.Warn("llm classification unavailable, keeping keyword result", "error", err)
		return result
	}

	var parsed llmClassification
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		logger.Warn("llm classification unparsable", "raw", raw, "error", err)
		return result
	}

	switch Intent(parsed.Intent) {
	case IntentGreeting, IntentCatalog, IntentShowCart, IntentCheckout, IntentEscalate:
		return Classification{Intent: Intent(parsed.Intent)}
	case IntentAddItem:
		if parsed.ProductID > 0 && parsed.Quantity > 0 {
			return Classification{Intent: IntentAddItem, ProductID: parsed.ProductID, Quantity: parsed.Quantity}
		}
	case IntentCategory:
		for _, cat := range categories {
			if strings.EqualFold(cat, parsed.Category) {
				return Classification{Intent: IntentCategory, Category: cat}
			}
		}
	}
	return result
}

// extractJSON tolerates models that wrap the JSON in prose or code fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

// Assistant answers free-form questions with the tenant's persona and the
// full active catalog as context.
type Assistant struct {
	ai AICompleter
}

func NewAssistant(ai AICompleter) *Assistant {
	return &Assistant{ai: ai}
}

func (a *Assistant) Reply(ctx context.Context, cfg *model.BotConfig, products []*model.Product, question string) (string, error) {
	return a.ai.Complete(ctx, []gateway.ChatMessage{
		{Role: "system", Content: BuildAssistantPrompt(cfg, products)},
		{Role: "user", Content: question},
	})
}

// BuildAssistantPrompt assembles the system prompt from store info, the
// configured persona and the catalog.
func BuildAssistantPrompt(cfg *model.BotConfig, products []*model.Product) string {
	var b strings.Builder

	name := "Assistente"
	store := "a loja"
	if cfg != nil {
		if cfg.AssistantName != "" {
			name = cfg.AssistantName
		}
		if cfg.StoreName != "" {
			store = cfg.StoreName
		}
	}
	b.WriteString(fmt.Sprintf("Você é %s, o assistente de vendas da loja %s no WhatsApp. Responda em português, de forma curta e simpática.\n", name, store))

	if cfg != nil {
		if cfg.Hours != "" {
			b.WriteString(fmt.Sprintf("Horário de funcionamento: %s\n", cfg.Hours))
		}
		if cfg.Address != "" {
			b.WriteString(fmt.Sprintf("Endereço: %s\n", cfg.Address))
		}
		if cfg.MapsLink != "" {
			b.WriteString(fmt.Sprintf("Mapa: %s\n", cfg.MapsLink))
		}
		if !cfg.UseEmojis {
			b.WriteString("Não use emojis.\n")
		}
		if cfg.PersonaPrompt != "" {
			b.WriteString(cfg.PersonaPrompt)
			b.WriteString("\n")
		}
		if cfg.Knowledge != "" {
			b.WriteString("Informações adicionais da loja:\n")
			b.WriteString(cfg.Knowledge)
			b.WriteString("\n")
		}
		for _, f := range cfg.FAQ {
			b.WriteString(fmt.Sprintf("P: %s R: %s\n", f.Question, f.Answer))
		}
	}

	if len(products) > 0 {
		b.WriteString("\nCatálogo atual (ID, nome, preço):\n")
		for _, p := range products {
			b.WriteString(fmt.Sprintf("%d. %s - %s\n", p.ID, p.Name, FormatPrice(p.PriceCents)))
		}
		b.WriteString("\nPara comprar, o cliente deve enviar: add <ID> <quantidade>.")
	}

	return b.String()
}
