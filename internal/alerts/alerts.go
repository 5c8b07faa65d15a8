package alerts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zapshop/commerce-bot/internal/queue"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/redis"
)

const StreamName = "alerts:escalations"

// EscalationAlert is published when a customer asks for a human. A
// separate consumer delivers it to the store operator's WhatsApp.
type EscalationAlert struct {
	TenantID    int64     `json:"tenant_id"`
	Customer    string    `json:"customer"`
	LastMessage string    `json:"last_message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publisher pushes escalation alerts onto the redis stream. Publishing is
// best effort: an unreachable stream must never block the customer's
// acknowledgement.
type Publisher struct {
	queue *queue.Queue
}

func NewPublisher(adapter redis.RedisAdapter, consumerName string) (*Publisher, error) {
	q, err := queue.NewQueue(adapter, queue.QueueConfig{
		Name:          StreamName,
		ConsumerGroup: ConsumerGroup,
		ConsumerName:  consumerName,
		MaxLen:        10000,
		EnableDLQ:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create escalation queue: %w", err)
	}
	return &Publisher{queue: q}, nil
}

func (p *Publisher) Publish(ctx context.Context, alert *EscalationAlert) {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	_, err := p.queue.PublishJSON(ctx, alert, map[string]string{
		"tenant_id": strconv.FormatInt(alert.TenantID, 10),
	})
	if err != nil {
		logger.Error("publish escalation alert",
			"tenant_id", alert.TenantID, "customer", alert.Customer, "error", err)
		return
	}
	logger.Info("escalation alert published", "tenant_id", alert.TenantID, "customer", alert.Customer)
}

// ConsumerGroup is shared by every notifier instance so each alert is
// delivered once across the fleet.
const ConsumerGroup = "notifiers"
