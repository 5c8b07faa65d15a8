package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/zapshop/commerce-bot/internal/alerts"
	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/services"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/prom"
)

// SendFailureMarker is appended to the logged reply when delivery failed,
// so the dashboard shows what the customer did not receive.
const SendFailureMarker = "\n--- FALHA NO ENVIO ---"

// ManualModeMarker is logged in place of a reply while an attendant owns
// the conversation.
const ManualModeMarker = "--- MENSAGEM RECEBIDA EM MODO MANUAL ---"

// InboundMessage is one webhook delivery, already decoded.
type InboundMessage struct {
	From          string // customer number
	To            string // tenant's receiving number
	Body          string
	ButtonPayload string // set when the customer tapped a button
}

// Text returns what should be routed: a tapped button payload wins over
// the typed body.
func (m *InboundMessage) Text() string {
	if m.ButtonPayload != "" {
		return m.ButtonPayload
	}
	return m.Body
}

type TenantResolver interface {
	Resolve(ctx context.Context, receivingNumber string) (*model.Tenant, error)
}

type CartOperations interface {
	AddItem(ctx context.Context, tenantID int64, customer string, productID int64, quantity int) (*model.CartUpdate, error)
	ViewCart(ctx context.Context, tenantID int64, customer string) (*model.CartView, error)
	Checkout(ctx context.Context, tenantID int64, customer string) (*model.Receipt, error)
}

type CatalogReader interface {
	Categories(ctx context.Context, tenantID int64) ([]string, error)
	ProductsInCategory(ctx context.Context, tenantID int64, category string) ([]*model.Product, error)
	Search(ctx context.Context, tenantID int64, query string) (*model.Product, error)
	AllActive(ctx context.Context, tenantID int64) ([]*model.Product, error)
}

type HandoffOperations interface {
	Mode(ctx context.Context, tenantID int64, customer string) (model.AttendanceMode, error)
	MarkRequiresAttention(ctx context.Context, tenantID int64, customer string) error
}

type BotConfigReader interface {
	Get(ctx context.Context, tenantID int64) (*model.BotConfig, error)
}

type ConversationLogger interface {
	Log(ctx context.Context, tenantID int64, contact, userMessage, botReply string)
}

type Sender interface {
	SendText(ctx context.Context, tenant *model.Tenant, to, body string) error
}

type AlertPublisher interface {
	Publish(ctx context.Context, alert *alerts.EscalationAlert)
}

// AssistantReplier answers messages the router could not place.
type AssistantReplier interface {
	Reply(ctx context.Context, cfg *model.BotConfig, products []*model.Product, question string) (string, error)
}

// ProcessorOptions carries the optional pieces and the sandbox switch.
// TestMode restricts processing to the developer's number so a staging
// deployment pointed at production credentials stays silent.
type ProcessorOptions struct {
	Assistant       AssistantReplier
	Alerts          AlertPublisher
	TestMode        bool
	DeveloperNumber string
}

// Processor turns one inbound WhatsApp message into at most one reply.
// Every branch logs to the conversation trail; the webhook handler above
// it always answers 200 regardless of what happens here.
type Processor struct {
	tenants    TenantResolver
	cart       CartOperations
	catalog    CatalogReader
	handoff    HandoffOperations
	botConfig  BotConfigReader
	convo      ConversationLogger
	sender     Sender
	classifier Classifier
	opts       ProcessorOptions
}

func NewProcessor(
	tenants TenantResolver,
	cart CartOperations,
	catalog CatalogReader,
	handoff HandoffOperations,
	botConfig BotConfigReader,
	convo ConversationLogger,
	sender Sender,
	classifier Classifier,
	opts ProcessorOptions,
) *Processor {
	return &Processor{
		tenants:    tenants,
		cart:       cart,
		catalog:    catalog,
		handoff:    handoff,
		botConfig:  botConfig,
		convo:      convo,
		sender:     sender,
		classifier: classifier,
		opts:       opts,
	}
}

// HandleInbound processes one webhook delivery end to end. It never
// returns an error to the caller: failures are logged, counted and, when
// possible, answered with an apology.
func (p *Processor) HandleInbound(ctx context.Context, msg *InboundMessage) {
	if p.opts.TestMode && msg.From != p.opts.DeveloperNumber {
		logger.Info("test mode: ignoring message from non-developer number", "from", msg.From)
		return
	}

	tenant, err := p.tenants.Resolve(ctx, msg.To)
	if err != nil {
		logger.Warn("inbound for unknown receiving number", "to", msg.To, "error", err)
		prom.IncCounter("bot", "unknown_tenant_total")
		return
	}

	mode, err := p.handoff.Mode(ctx, tenant.ID, msg.From)
	if err != nil {
		logger.Error("resolve attendance mode", "tenant_id", tenant.ID, "customer", msg.From, "error", err)
		mode = model.AttendanceModeBot
	}
	if mode == model.AttendanceModeManual {
		// A human owns this thread. Record the message, stay quiet.
		p.convo.Log(ctx, tenant.ID, msg.From, msg.Text(), ManualModeMarker)
		prom.IncCounter("bot", "manual_mode_messages_total")
		return
	}

	cfg, err := p.botConfig.Get(ctx, tenant.ID)
	if err != nil {
		logger.Error("load bot config", "tenant_id", tenant.ID, "error", err)
	}
	categories, err := p.catalog.Categories(ctx, tenant.ID)
	if err != nil {
		logger.Error("list categories", "tenant_id", tenant.ID, "error", err)
	}

	c := p.classifier.Classify(ctx, msg.Text(), cfg, categories)
	prom.IncCounterVec("bot", "intent_total", string(c.Intent))

	reply := p.dispatch(ctx, tenant, msg, cfg, categories, c)
	if reply == "" {
		return
	}

	logged := reply
	if err := p.sender.SendText(ctx, tenant, msg.From, reply); err != nil {
		logger.Error("send reply", "tenant_id", tenant.ID, "customer", msg.From, "error", err)
		prom.IncCounter("bot", "send_failures_total")
		logged += SendFailureMarker
	}
	p.convo.Log(ctx, tenant.ID, msg.From, msg.Text(), logged)
}

func (p *Processor) dispatch(ctx context.Context, tenant *model.Tenant, msg *InboundMessage, cfg *model.BotConfig, categories []string, c Classification) string {
	switch c.Intent {
	case IntentGreeting:
		return RenderGreeting(cfg)

	case IntentFAQ:
		return c.FAQAnswer

	case IntentCatalog:
		return RenderCategories(categories)

	case IntentCategory:
		products, err := p.catalog.ProductsInCategory(ctx, tenant.ID, c.Category)
		if err != nil {
			logger.Error("list category products", "tenant_id", tenant.ID, "category", c.Category, "error", err)
			return ReplyFallbackApology
		}
		return RenderCategoryProducts(c.Category, products)

	case IntentShowCart:
		view, err := p.cart.ViewCart(ctx, tenant.ID, msg.From)
		if err != nil {
			logger.Error("view cart", "tenant_id", tenant.ID, "customer", msg.From, "error", err)
			return ReplyFallbackApology
		}
		return RenderCart(view)

	case IntentAddItem:
		return p.handleAdd(ctx, tenant, msg.From, c)

	case IntentAddInvalid:
		return ReplyInvalidAdd

	case IntentCheckout:
		receipt, err := p.cart.Checkout(ctx, tenant.ID, msg.From)
		if errors.Is(err, services.ErrCartEmpty) {
			return ReplyEmptyCartCheckout
		}
		if err != nil {
			logger.Error("checkout", "tenant_id", tenant.ID, "customer", msg.From, "error", err)
			return ReplyFallbackApology
		}
		prom.IncCounter("bot", "orders_finalized_total")
		return RenderReceipt(receipt)

	case IntentEscalate:
		return p.handleEscalation(ctx, tenant, msg)

	default:
		return p.handleUnknown(ctx, tenant, cfg, c.Query)
	}
}

func (p *Processor) handleAdd(ctx context.Context, tenant *model.Tenant, customer string, c Classification) string {
	update, err := p.cart.AddItem(ctx, tenant.ID, customer, c.ProductID, c.Quantity)
	switch {
	case errors.Is(err, services.ErrInvalidQuantity):
		return ReplyInvalidAdd
	case errors.Is(err, services.ErrProductNotFound):
		return ReplyProductNotFound
	case err != nil:
		logger.Error("add item", "tenant_id", tenant.ID, "customer", customer,
			"product_id", c.ProductID, "error", err)
		return ReplyFallbackApology
	}
	prom.IncCounter("bot", "items_added_total")
	return RenderCartUpdate(update)
}

func (p *Processor) handleEscalation(ctx context.Context, tenant *model.Tenant, msg *InboundMessage) string {
	if err := p.handoff.MarkRequiresAttention(ctx, tenant.ID, msg.From); err != nil {
		logger.Error("mark requires attention", "tenant_id", tenant.ID, "customer", msg.From, "error", err)
	}
	if p.opts.Alerts != nil {
		p.opts.Alerts.Publish(ctx, &alerts.EscalationAlert{
			TenantID:    tenant.ID,
			Customer:    msg.From,
			LastMessage: msg.Text(),
		})
	}
	prom.IncCounter("bot", "escalations_total")
	return ReplyEscalationAck
}

// handleUnknown tries a catalog name search first, then the assistant, and
// only then gives up with the canned apology.
func (p *Processor) handleUnknown(ctx context.Context, tenant *model.Tenant, cfg *model.BotConfig, query string) string {
	if query != "" {
		product, err := p.catalog.Search(ctx, tenant.ID, query)
		if err == nil {
			return fmt.Sprintf("%s\n\nPara comprar, envie: `add %d <quantidade>`",
				RenderProductCard(product), product.ID)
		}
		if !errors.Is(err, services.ErrProductNotFound) && !errors.Is(err, services.ErrQueryTooShort) {
			logger.Error("catalog search", "tenant_id", tenant.ID, "query", query, "error", err)
		}
	}

	if p.opts.Assistant != nil {
		products, err := p.catalog.AllActive(ctx, tenant.ID)
		if err != nil {
			logger.Error("load catalog for assistant", "tenant_id", tenant.ID, "error", err)
		}
		answer, err := p.opts.Assistant.Reply(ctx, cfg, products, query)
		if err == nil && answer != "" {
			prom.IncCounter("bot", "assistant_replies_total")
			return answer
		}
		if err != nil {
			logger.Warn("assistant reply unavailable", "tenant_id", tenant.ID, "error", err)
		}
	}

	prom.IncCounter("bot", "fallback_apologies_total")
	return ReplyFallbackApology
}
