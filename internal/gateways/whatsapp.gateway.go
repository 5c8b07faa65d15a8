package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/prom"
	"github.com/valyala/fasthttp"
)

var ErrSendFailed = errors.New("message send failed")

const (
	maxButtons  = 3
	maxListRows = 10
)

// Button is one quick-reply option. Payload comes back verbatim in the
// webhook when the customer taps it.
type Button struct {
	Payload string `json:"payload"`
	Label   string `json:"label"`
}

// ListRow is one row of an interactive list message.
type ListRow struct {
	Payload     string `json:"payload"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type sendPayload struct {
	MessageID string    `json:"message_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Buttons   []Button  `json:"buttons,omitempty"`
	ListRows  []ListRow `json:"list_rows,omitempty"`
	ListTitle string    `json:"list_title,omitempty"`
}

type sendResult struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	ErrorMsg  string `json:"error_message,omitempty"`
}

type WhatsAppConfig struct {
	BaseURL         string
	MasterSID       string
	MasterToken     string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MaxConns        int
	ReadBufferSize  int
	WriteBufferSize int
}

// WhatsAppClient talks to the WhatsApp provider API. Each tenant sends
// from its own subaccount when one is provisioned; otherwise the platform
// master credentials are used.
type WhatsAppClient struct {
	config *WhatsAppConfig
	client *fasthttp.Client
}

func NewWhatsAppClient(config *WhatsAppConfig) (*WhatsAppClient, error) {
	if config == nil || config.BaseURL == "" {
		return nil, errors.New("whatsapp gateway base url is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 200 * time.Millisecond
	}

	client := &fasthttp.Client{
		MaxConnsPerHost:     config.MaxConns,
		ReadTimeout:         config.Timeout,
		WriteTimeout:        config.Timeout,
		MaxIdleConnDuration: 60 * time.Second,
		ReadBufferSize:      config.ReadBufferSize,
		WriteBufferSize:     config.WriteBufferSize,
	}

	logger.Info("whatsapp client initialized", "base_url", config.BaseURL, "timeout", config.Timeout)

	return &WhatsAppClient{config: config, client: client}, nil
}

func (c *WhatsAppClient) SendText(ctx context.Context, tenant *model.Tenant, to, body string) error {
	return c.send(ctx, tenant, &sendPayload{
		MessageID: uuid.NewString(),
		From:      tenant.WhatsAppNumber,
		To:        to,
		Body:      body,
	})
}

// SendButtons sends up to three quick-reply buttons. When the provider
// rejects the interactive payload the message is retried as plain text
// with the options rendered inline, so the customer always gets an answer.
func (c *WhatsAppClient) SendButtons(ctx context.Context, tenant *model.Tenant, to, body string, buttons []Button) error {
	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}
	err := c.send(ctx, tenant, &sendPayload{
		MessageID: uuid.NewString(),
		From:      tenant.WhatsAppNumber,
		To:        to,
		Body:      body,
		Buttons:   buttons,
	})
	if err == nil {
		return nil
	}
	logger.Warn("interactive buttons rejected, falling back to text",
		"tenant_id", tenant.ID, "to", to, "error", err)
	return c.SendText(ctx, tenant, to, renderButtonsFallback(body, buttons))
}

// SendList sends an interactive list of up to ten rows, with the same
// plain-text fallback as SendButtons.
func (c *WhatsAppClient) SendList(ctx context.Context, tenant *model.Tenant, to, body, title string, rows []ListRow) error {
	if len(rows) > maxListRows {
		rows = rows[:maxListRows]
	}
	err := c.send(ctx, tenant, &sendPayload{
		MessageID: uuid.NewString(),
		From:      tenant.WhatsAppNumber,
		To:        to,
		Body:      body,
		ListRows:  rows,
		ListTitle: title,
	})
	if err == nil {
		return nil
	}
	logger.Warn("interactive list rejected, falling back to text",
		"tenant_id", tenant.ID, "to", to, "error", err)
	return c.SendText(ctx, tenant, to, renderListFallback(body, rows))
}

func (c *WhatsAppClient) send(ctx context.Context, tenant *model.Tenant, payload *sendPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		start := time.Now()
		err := c.doRequest(ctx, tenant, body)
		latency := time.Since(start).Milliseconds()
		if err != nil {
			prom.AddGatewaySendDuration(time.Since(start).Seconds(), "error")
			logger.Warn("whatsapp send failed",
				"tenant_id", tenant.ID, "to", payload.To, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}
		prom.AddGatewaySendDuration(time.Since(start).Seconds(), "ok")

		logger.Info("whatsapp message sent",
			"tenant_id", tenant.ID, "to", payload.To, "message_id", payload.MessageID, "latency_ms", latency)
		return nil
	}
	return fmt.Errorf("%w: after %d attempts: %v", ErrSendFailed, c.config.MaxRetries+1, lastErr)
}

func (c *WhatsAppClient) doRequest(ctx context.Context, tenant *model.Tenant, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + "/v1/messages")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Basic "+c.credentials(tenant))
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusAccepted {
		return fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	var result sendResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if result.Status == "failed" {
		return fmt.Errorf("%w: %s", ErrSendFailed, result.ErrorMsg)
	}
	return nil
}

func (c *WhatsAppClient) credentials(tenant *model.Tenant) string {
	sid, token := c.config.MasterSID, c.config.MasterToken
	if tenant.SubaccountSID != "" && tenant.SubaccountToken != "" {
		sid, token = tenant.SubaccountSID, tenant.SubaccountToken
	}
	return base64.StdEncoding.EncodeToString([]byte(sid + ":" + token))
}

func renderButtonsFallback(body string, buttons []Button) string {
	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	for _, btn := range buttons {
		b.WriteString(fmt.Sprintf("\n▪ %s", btn.Label))
	}
	return b.String()
}

func renderListFallback(body string, rows []ListRow) string {
	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("\n▪ %s", row.Title))
		if row.Description != "" {
			b.WriteString(" - " + row.Description)
		}
	}
	return b.String()
}
