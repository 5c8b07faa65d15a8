package bot

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/zapshop/commerce-bot/internal/model"
)

// Intent is what the customer is trying to do with a message.
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentCatalog    Intent = "catalog"
	IntentCategory   Intent = "category"
	IntentShowCart   Intent = "show_cart"
	IntentAddItem    Intent = "add_item"
	IntentAddInvalid Intent = "add_invalid"
	IntentCheckout   Intent = "checkout"
	IntentEscalate   Intent = "escalate"
	IntentFAQ        Intent = "faq"
	IntentUnknown    Intent = "unknown"
)

// Classification is a routed message plus its extracted parameters.
type Classification struct {
	Intent    Intent
	ProductID int64  // add_item
	Quantity  int    // add_item
	Category  string // category
	FAQAnswer string // faq
	Query     string // unknown, the normalized text for search and AI
}

// Classifier routes one inbound message. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Classify(ctx context.Context, message string, cfg *model.BotConfig, categories []string) Classification
}

var addCommandRe = regexp.MustCompile(`^add\s+(\d+)\s+(\d+)$`)

var (
	greetingWords = []string{"oi", "olá", "ola", "menu", "começar", "comecar", "bom dia", "boa tarde", "boa noite"}
	cartWords     = []string{"carrinho", "ver carrinho", "meu carrinho"}
	catalogWords  = []string{"produtos", "ver produtos", "catalogo", "catálogo"}
	checkoutWords = []string{"finalizar", "fechar pedido", "finalizar compra"}
	escalateWords = []string{"ajuda", "atendente", "humano", "problema", "reclamação", "reclamacao", "cancelar", "falar com atendente"}
)

// KeywordClassifier is the deterministic router. Order matters: a configured
// FAQ answer wins over everything, escalation and greeting come before the
// cart commands, the add command requires its literal "add " prefix so other
// words starting with add still reach search, and category names are only
// consulted after the fixed commands so a store cannot shadow "finalizar"
// with a category.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(_ context.Context, message string, cfg *model.BotConfig, categories []string) Classification {
	text := normalize(message)
	if text == "" {
		return Classification{Intent: IntentUnknown}
	}

	if cfg != nil {
		for _, entry := range cfg.FAQ {
			if normalize(entry.Question) == text {
				return Classification{Intent: IntentFAQ, FAQAnswer: entry.Answer}
			}
		}
	}

	switch {
	case containsAny(text, escalateWords):
		return Classification{Intent: IntentEscalate}
	case matchesAny(text, greetingWords):
		return Classification{Intent: IntentGreeting}
	}

	if strings.HasPrefix(text, "add ") {
		return classifyAdd(text)
	}

	switch {
	case matchesAny(text, cartWords):
		return Classification{Intent: IntentShowCart}
	case matchesAny(text, checkoutWords):
		return Classification{Intent: IntentCheckout}
	case matchesAny(text, catalogWords):
		return Classification{Intent: IntentCatalog}
	}

	for _, cat := range categories {
		if normalize(cat) == text {
			return Classification{Intent: IntentCategory, Category: cat}
		}
	}

	return Classification{Intent: IntentUnknown, Query: text}
}

func classifyAdd(text string) Classification {
	m := addCommandRe.FindStringSubmatch(text)
	if m == nil {
		return Classification{Intent: IntentAddInvalid}
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Classification{Intent: IntentAddInvalid}
	}
	qty, err := strconv.Atoi(m[2])
	if err != nil || qty <= 0 {
		return Classification{Intent: IntentAddInvalid}
	}
	return Classification{Intent: IntentAddItem, ProductID: id, Quantity: qty}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchesAny(text string, words []string) bool {
	for _, w := range words {
		if text == w {
			return true
		}
	}
	return false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
