package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zapshop/commerce-bot/internal/alerts"
	"github.com/zapshop/commerce-bot/internal/config"
	"github.com/zapshop/commerce-bot/internal/queue"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/redis"
	"github.com/zapshop/commerce-bot/pkg/worker"
)

const DeliveryTimeout = time.Second * 15
const HealthInterval = time.Second * 30
const ShutdownTimeout = time.Minute

// Service consumes the escalation stream and fans deliveries out over a
// worker pool. Delivery is slow (an HTTP round trip per alert), so the
// pool keeps one stuck operator number from stalling the whole stream.
type Service struct {
	adapter   redis.RedisAdapter
	queues    []*queue.Queue
	deliverer *Deliverer
	metrics   *DeliveryMetrics
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	worker    *worker.WorkerManager
}

func NewService(adapter redis.RedisAdapter, tenantRepo TenantRepository, sender MessageSender) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	metrics := NewDeliveryMetrics()
	dedupe := NewDeduper(adapter, DefaultDedupeConfig())

	workers := config.Get().AlertWorkers
	if workers <= 0 {
		workers = 4
	}

	return &Service{
		adapter:   adapter,
		queues:    make([]*queue.Queue, 0),
		deliverer: NewDeliverer(tenantRepo, sender, dedupe, metrics),
		metrics:   metrics,
		ctx:       ctx,
		cancel:    cancel,
		worker:    worker.NewWorkerManager(1_000, workers, nil),
	}
}

func (s *Service) Start() error {
	logger.Info("starting escalation notifier")

	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil {
			logger.Error("worker manager stopped", "error", err)
		}
	}()

	queueConfig := queue.QueueConfig{
		Name:              alerts.StreamName,
		ConsumerGroup:     alerts.ConsumerGroup,
		ConsumerName:      config.Get().AlertConsumerName,
		MaxRetries:        config.Get().AlertMaxRetries,
		VisibilityTimeout: config.Get().AlertVisibilityTimeout,
		EnableDLQ:         true,
	}

	q, err := queue.NewQueue(s.adapter, queueConfig)
	if err != nil {
		return fmt.Errorf("failed to create alert queue: %w", err)
	}
	if err := q.Consume(s.messageHandler); err != nil {
		return fmt.Errorf("failed to start alert consumer: %w", err)
	}
	s.queues = append(s.queues, q)

	s.wg.Add(2)
	go s.statsReporter()
	go s.healthChecker()

	logger.Info("escalation notifier started", "consumers", len(s.queues))
	return nil
}

func (s *Service) statsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportStats()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) reportStats() {
	stats := s.metrics.GetStats()
	logger.Info("notifier stats",
		"total_delivered", stats["total_delivered"],
		"total_suppressed", stats["total_suppressed"],
		"total_failed", stats["total_failed"],
		"total_dropped", stats["total_dropped"],
		"rate_per_second", stats["rate_per_second"],
		"avg_duration_ms", stats["avg_duration_ms"],
		"uptime_seconds", stats["uptime_seconds"])

	for i, q := range s.queues {
		if qStats, err := q.GetStats(); err == nil {
			logger.Info("queue stats", "queue", i, "total", qStats.TotalMessages, "pending", qStats.PendingMessages)
		}
	}
}

func (s *Service) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthCheck()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) performHealthCheck() {
	if err := s.adapter.Client().Ping(context.Background()).Err(); err != nil {
		logger.Error("health check failed: redis connection error", "error", err)
		return
	}

	for i, q := range s.queues {
		stats, err := q.GetStats()
		if err != nil {
			logger.Warn("health check: queue stats unavailable", "queue", i, "error", err)
			continue
		}
		if stats.PendingMessages > 1000 {
			logger.Warn("health check: alert queue has high lag", "queue", i, "pending_messages", stats.PendingMessages)
		}
	}
}

// Stop drains consumers, then the worker pool.
func (s *Service) Stop() {
	logger.Info("shutting down escalation notifier")

	s.cancel()

	timeout := ShutdownTimeout
	stopChan := make(chan bool, len(s.queues))

	for i, q := range s.queues {
		go func(index int, queue *queue.Queue) {
			if err := queue.Stop(timeout); err != nil {
				logger.Error("error stopping queue", "queue", index, "error", err)
			}
			stopChan <- true
		}(i, q)
	}

	for range s.queues {
		select {
		case <-stopChan:
		case <-time.After(timeout + 5*time.Second):
			logger.Warn("timeout waiting for queues to stop")
		}
	}

	s.worker.Exit()
	s.wg.Wait()
	s.reportStats()

	logger.Info("escalation notifier stopped")
}

type job struct {
	msg        *queue.Message
	resultChan chan error
	ctx        context.Context
}

// messageHandler bridges the queue consumer to the worker pool and blocks
// until a worker reports the outcome, so ack/retry stays with the queue.
func (s *Service) messageHandler(ctx context.Context, msg *queue.Message) error {
	resultChan := make(chan error, 1)

	msgCtx, cancel := context.WithTimeout(ctx, DeliveryTimeout+time.Second)
	defer cancel()

	s.worker.Enqueue(&job{
		msg:        msg,
		resultChan: resultChan,
		ctx:        msgCtx,
	})

	select {
	case err := <-resultChan:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timeout waiting for worker to deliver alert: %w", msgCtx.Err())
	}
}

func (s *Service) workerHandler(workerIndex int, item interface{}) {
	j, ok := item.(*job)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}

	select {
	case <-j.ctx.Done():
		logger.Warn("job context cancelled before delivery started", "worker", workerIndex)
		return
	default:
	}

	err := s.deliverer.Deliver(j.ctx, j.msg)

	select {
	case j.resultChan <- err:
	case <-j.ctx.Done():
		logger.Warn("context cancelled while sending result", "worker", workerIndex)
	}
}
