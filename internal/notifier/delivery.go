package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zapshop/commerce-bot/internal/alerts"
	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/internal/queue"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/prom"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
}

type MessageSender interface {
	SendText(ctx context.Context, tenant *model.Tenant, to, body string) error
}

// Deliverer turns one escalation alert into one WhatsApp ping to the
// tenant's operator.
type Deliverer struct {
	tenantRepo TenantRepository
	sender     MessageSender
	dedupe     *Deduper
	metrics    *DeliveryMetrics
}

func NewDeliverer(tenantRepo TenantRepository, sender MessageSender, dedupe *Deduper, metrics *DeliveryMetrics) *Deliverer {
	return &Deliverer{
		tenantRepo: tenantRepo,
		sender:     sender,
		dedupe:     dedupe,
		metrics:    metrics,
	}
}

// Deliver handles a single stream entry. Returning nil acks the entry;
// returning an error lets the queue retry and eventually dead-letter it.
func (d *Deliverer) Deliver(ctx context.Context, msg *queue.Message) error {
	var alert alerts.EscalationAlert
	if err := json.Unmarshal(msg.Data, &alert); err != nil {
		// Unparsable payloads would retry forever; drop them.
		logger.Error("unparsable escalation alert", "message_id", msg.ID, "error", err)
		d.metrics.RecordDropped()
		return nil
	}

	if d.dedupe.AlreadyDelivered(msg.ID) {
		logger.Info("alert already delivered, skipping", "message_id", msg.ID)
		return nil
	}

	tenant, err := d.tenantRepo.GetByID(ctx, alert.TenantID)
	if err != nil {
		d.metrics.RecordFailed()
		return fmt.Errorf("load tenant %d: %w", alert.TenantID, err)
	}
	if tenant.OperatorNumber == "" {
		logger.Warn("tenant has no operator number, dropping alert", "tenant_id", tenant.ID)
		d.metrics.RecordDropped()
		return nil
	}

	if !d.dedupe.ShouldNotify(alert.TenantID, alert.Customer) {
		logger.Info("operator already pinged recently, suppressing",
			"tenant_id", alert.TenantID, "customer", alert.Customer)
		d.metrics.RecordSuppressed()
		prom.IncCounter("notifier", "alerts_suppressed_total")
		d.dedupe.MarkDelivered(msg.ID)
		return nil
	}

	start := time.Now()
	body := fmt.Sprintf("🚨 Cliente pedindo atendimento humano!\n\nCliente: %s\nÚltima mensagem: %s\n\nResponda pelo painel para assumir a conversa.",
		alert.Customer, alert.LastMessage)
	if err := d.sender.SendText(ctx, tenant, tenant.OperatorNumber, body); err != nil {
		d.metrics.RecordFailed()
		prom.IncCounter("notifier", "alerts_failed_total")
		// Give the retry a fresh shot at the window.
		d.dedupe.Release(alert.TenantID, alert.Customer)
		return fmt.Errorf("notify operator: %w", err)
	}

	d.dedupe.MarkDelivered(msg.ID)
	d.metrics.RecordDelivered(time.Since(start))
	prom.IncCounter("notifier", "alerts_delivered_total")
	logger.Info("operator notified", "tenant_id", tenant.ID, "customer", alert.Customer)
	return nil
}
