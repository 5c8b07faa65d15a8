package notifier

import (
	"fmt"
	"time"

	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/redis"
)

type DedupeConfig struct {
	// SuppressWindow is how long after an operator ping further alerts for
	// the same customer are swallowed. Customers asking for a human tend to
	// repeat themselves; the operator only needs one ping.
	SuppressWindow time.Duration

	// ProcessedTTL is how long delivered stream entries stay marked, so a
	// redelivery after a crash-and-claim does not ping the operator twice.
	ProcessedTTL time.Duration

	RecentKeyPrefix    string
	ProcessedKeyPrefix string
}

func DefaultDedupeConfig() DedupeConfig {
	return DedupeConfig{
		SuppressWindow:     10 * time.Minute,
		ProcessedTTL:       24 * time.Hour,
		RecentKeyPrefix:    "alerts:recent:",
		ProcessedKeyPrefix: "alerts:processed:",
	}
}

// Deduper keeps operator pings from repeating. Both checks are advisory:
// when redis misbehaves we deliver anyway, a duplicate ping beats a lost one.
type Deduper struct {
	redis  redis.RedisAdapter
	config DedupeConfig
}

func NewDeduper(redisAdapter redis.RedisAdapter, config DedupeConfig) *Deduper {
	return &Deduper{redis: redisAdapter, config: config}
}

// AlreadyDelivered reports whether this exact stream entry was handled
// before.
func (d *Deduper) AlreadyDelivered(messageID string) bool {
	exists, err := d.redis.Exist(d.config.ProcessedKeyPrefix + messageID)
	if err != nil {
		logger.Warn("failed to check processed marker", "message_id", messageID, "error", err)
		return false
	}
	return exists > 0
}

// MarkDelivered records the stream entry as handled.
func (d *Deduper) MarkDelivered(messageID string) {
	key := d.config.ProcessedKeyPrefix + messageID
	if err := d.redis.Set(key, []byte("1"), d.config.ProcessedTTL); err != nil {
		logger.Warn("failed to set processed marker", "message_id", messageID, "error", err)
	}
}

// ShouldNotify atomically claims the suppression window for the customer.
// The first caller inside the window wins; everyone else is suppressed.
func (d *Deduper) ShouldNotify(tenantID int64, customer string) bool {
	if d.config.SuppressWindow <= 0 {
		return true
	}
	key := fmt.Sprintf("%s%d:%s", d.config.RecentKeyPrefix, tenantID, customer)
	ok, err := d.redis.SetNX(key, []byte("1"), d.config.SuppressWindow)
	if err != nil {
		logger.Warn("failed to claim suppression window", "tenant_id", tenantID, "customer", customer, "error", err)
		return true
	}
	return ok
}

// Release drops the suppression window, used when delivery failed so the
// retry can claim it again.
func (d *Deduper) Release(tenantID int64, customer string) {
	key := fmt.Sprintf("%s%d:%s", d.config.RecentKeyPrefix, tenantID, customer)
	if err := d.redis.Del(key); err != nil {
		logger.Warn("failed to release suppression window", "tenant_id", tenantID, "customer", customer, "error", err)
	}
}
