package notifier

import (
	"sync/atomic"
	"time"
)

type DeliveryMetrics struct {
	totalDelivered  int64
	totalSuppressed int64
	totalFailed     int64
	totalDropped    int64
	totalDurationNs int64
	lastResetNs     int64
}

func NewDeliveryMetrics() *DeliveryMetrics {
	return &DeliveryMetrics{
		lastResetNs: time.Now().UnixNano(),
	}
}

func (m *DeliveryMetrics) RecordDelivered(duration time.Duration) {
	atomic.AddInt64(&m.totalDelivered, 1)
	atomic.AddInt64(&m.totalDurationNs, int64(duration))
}

func (m *DeliveryMetrics) RecordSuppressed() {
	atomic.AddInt64(&m.totalSuppressed, 1)
}

func (m *DeliveryMetrics) RecordFailed() {
	atomic.AddInt64(&m.totalFailed, 1)
}

func (m *DeliveryMetrics) RecordDropped() {
	atomic.AddInt64(&m.totalDropped, 1)
}

func (m *DeliveryMetrics) GetStats() map[string]interface{} {
	delivered := atomic.LoadInt64(&m.totalDelivered)
	suppressed := atomic.LoadInt64(&m.totalSuppressed)
	failed := atomic.LoadInt64(&m.totalFailed)
	dropped := atomic.LoadInt64(&m.totalDropped)
	durationNs := atomic.LoadInt64(&m.totalDurationNs)
	lastResetNs := atomic.LoadInt64(&m.lastResetNs)

	elapsed := time.Since(time.Unix(0, lastResetNs)).Seconds()

	rate := 0.0
	if elapsed > 0 {
		rate = float64(delivered) / elapsed
	}

	avgDuration := time.Duration(0)
	if delivered > 0 {
		avgDuration = time.Duration(durationNs / delivered)
	}

	return map[string]interface{}{
		"total_delivered":  delivered,
		"total_suppressed": suppressed,
		"total_failed":     failed,
		"total_dropped":    dropped,
		"rate_per_second":  rate,
		"avg_duration_ms":  avgDuration.Milliseconds(),
		"uptime_seconds":   elapsed,
	}
}

func (m *DeliveryMetrics) Reset() {
	atomic.StoreInt64(&m.totalDelivered, 0)
	atomic.StoreInt64(&m.totalSuppressed, 0)
	atomic.StoreInt64(&m.totalFailed, 0)
	atomic.StoreInt64(&m.totalDropped, 0)
	atomic.StoreInt64(&m.totalDurationNs, 0)
	atomic.StoreInt64(&m.lastResetNs, time.Now().UnixNano())
}
