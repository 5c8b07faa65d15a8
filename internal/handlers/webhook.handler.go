package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/zapshop/commerce-bot/internal/bot"
	xhttp "github.com/zapshop/commerce-bot/pkg/http"
)

type InboundProcessor interface {
	HandleInbound(ctx context.Context, msg *bot.InboundMessage)
}

// WebhookHandler receives provider callbacks. The provider retries on
// anything but 2xx, and a retry would re-run the whole cart mutation, so
// this endpoint answers 200 no matter what happened downstream.
type WebhookHandler struct {
	processor InboundProcessor
}

func RegisterWebhookRoutes(e *router.Group, h *WebhookHandler) {
	e.POST("/webhook", h.Receive)
}

func NewWebhookHandler(processor InboundProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

func (h *WebhookHandler) Receive(ctx *xhttp.RequestCtx) {
	args := ctx.PostArgs()
	msg := &bot.InboundMessage{
		From:          string(args.Peek("From")),
		To:            string(args.Peek("To")),
		Body:          string(args.Peek("Body")),
		ButtonPayload: string(args.Peek("ButtonPayload")),
	}

	if msg.From != "" && msg.To != "" {
		// The 200 goes back regardless, so a provider disconnect must not
		// cancel a cart mutation mid-flight.
		h.processor.HandleInbound(context.WithoutCancel(ctx), msg)
	}

	ctx.Response.Header.Set("Content-Type", "text/plain; charset=utf-8")
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyString("OK")
}
