package bot

import (
	"fmt"
	"strings"

	"github.com/zapshop/commerce-bot/internal/model"
)

// FormatPrice renders cents as the customer-facing price string.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("R$ %d.%02d", cents/100, cents%100)
}

func RenderGreeting(cfg *model.BotConfig) string {
	var b strings.Builder
	greeting := "Olá! Bem-vindo(a)!"
	if cfg != nil && cfg.Greeting != "" {
		greeting = cfg.Greeting
	}
	b.WriteString(greeting)
	if cfg != nil && cfg.StoreName != "" {
		b.WriteString(fmt.Sprintf("\nAqui é o assistente virtual de *%s*.", cfg.StoreName))
	}
	b.WriteString("\n\nComandos: *produtos*, *carrinho*, *finalizar*.")
	return b.String()
}

func RenderCategories(categories []string) string {
	if len(categories) == 0 {
		return "Ainda não temos produtos cadastrados. Volte em breve!"
	}
	var b strings.Builder
	b.WriteString("Nossas categorias:\n")
	for _, c := range categories {
		b.WriteString(fmt.Sprintf("\n▪ %s", c))
	}
	b.WriteString("\n\nResponda com o nome de uma categoria para ver os produtos.")
	return b.String()
}

func RenderCategoryProducts(category string, products []*model.Product) string {
	if len(products) == 0 {
		return fmt.Sprintf("Nenhum produto encontrado na categoria *%s*.", category)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Produtos em *%s*:\n", category))
	for _, p := range products {
		b.WriteString("\n")
		b.WriteString(RenderProductCard(p))
		b.WriteString("\n")
	}
	b.WriteString("\nPara comprar, envie: `add <ID> <quantidade>`")
	return b.String()
}

func RenderProductCard(p *model.Product) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("*%s* (ID %d)\n", p.Name, p.ID))
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n")
	}
	b.WriteString(FormatPrice(p.PriceCents))
	return b.String()
}

func RenderCart(view *model.CartView) string {
	if view == nil || view.Empty() {
		return "Seu carrinho está vazio."
	}
	var b strings.Builder
	b.WriteString("🛒 Seu carrinho:\n")
	for _, line := range view.Lines {
		if line.Missing {
			b.WriteString(fmt.Sprintf("\n%dx produto indisponível (removido do catálogo)", line.Quantity))
			continue
		}
		b.WriteString(fmt.Sprintf("\n%dx %s - %s", line.Quantity, line.Name, FormatPrice(line.SubtotalCents)))
	}
	b.WriteString(fmt.Sprintf("\n\nTotal: *%s*", FormatPrice(view.TotalCents)))
	b.WriteString("\nEnvie *finalizar* para concluir o pedido.")
	return b.String()
}

func RenderCartUpdate(update *model.CartUpdate) string {
	return fmt.Sprintf("%dx %s adicionado(s) ao carrinho!\nTotal atual: *%s*\n\nEnvie *carrinho* para revisar ou *finalizar* para concluir.",
		update.Quantity, update.Product.Name, FormatPrice(update.TotalCents))
}

func RenderReceipt(receipt *model.Receipt) string {
	return fmt.Sprintf("Pedido #%d confirmado! ✅\nTotal: *%s*\n\nObrigado pela compra! Em breve entraremos em contato para combinar a entrega.",
		receipt.OrderID, FormatPrice(receipt.TotalCents))
}

const (
	ReplyEmptyCartCheckout = "Seu carrinho está vazio. Envie *produtos* para ver o catálogo."
	ReplyEscalationAck     = "Entendido. Um de nossos atendentes entrará em contato em breve. Por favor, aguarde."
	ReplyInvalidAdd        = "Formato inválido. Use: `add <ID> <quantidade>`."
	ReplyProductNotFound   = "Produto não encontrado. Envie *produtos* para ver o catálogo."
	ReplyFallbackApology   = "Desculpe, não entendi. 🤔\nComandos: *produtos*, *carrinho*, *finalizar*."
)
