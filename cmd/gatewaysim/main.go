package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DeliveryStatus is the provider-side status of a WhatsApp message
type DeliveryStatus string

const (
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
	StatusPending DeliveryStatus = "pending"
)

// ButtonRequest mirrors one interactive button on an outbound message
type ButtonRequest struct {
	Payload string `json:"payload"`
	Label   string `json:"label"`
}

// ListRowRequest mirrors one interactive list row on an outbound message
type ListRowRequest struct {
	Payload     string `json:"payload"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SendMessageRequest is the payload the bot gateway posts to /v1/messages
type SendMessageRequest struct {
	MessageID string           `json:"message_id" binding:"required"`
	From      string           `json:"from" binding:"required"`
	To        string           `json:"to" binding:"required"`
	Body      string           `json:"body" binding:"required"`
	Buttons   []ButtonRequest  `json:"buttons"`
	ListRows  []ListRowRequest `json:"list_rows"`
	ListTitle string           `json:"list_title"`
}

// SendMessageResponse is what the real provider answers with
type SendMessageResponse struct {
	MessageID   string         `json:"message_id"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	ErrorMsg    string         `json:"error_message,omitempty"`
	ProviderID  string         `json:"provider_id"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// SimulateInboundRequest plays a customer texting the store
type SimulateInboundRequest struct {
	From          string `json:"from" binding:"required"`
	To            string `json:"to" binding:"required"`
	Body          string `json:"body"`
	ButtonPayload string `json:"button_payload"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status       string    `json:"status"`
	ProviderID   string    `json:"provider_id"`
	Timestamp    time.Time `json:"timestamp"`
	DeliveryRate float64   `json:"delivery_rate"`
}

// MockProvider simulates a WhatsApp Business API provider
type MockProvider struct {
	deliveryRate    float64
	interactiveRate float64
	minDelay        time.Duration
	maxDelay        time.Duration
	providerID      string
	webhookURL      string
	rng             *rand.Rand

	mu       sync.Mutex
	statuses map[string]DeliveryStatus
}

// NewMockProvider creates a new mock provider instance
func NewMockProvider(deliveryRate, interactiveRate float64, minDelay, maxDelay time.Duration, webhookURL string) *MockProvider {
	return &MockProvider{
		deliveryRate:    deliveryRate,
		interactiveRate: interactiveRate,
		minDelay:        minDelay,
		maxDelay:        maxDelay,
		providerID:      "MOCK_WA_" + uuid.New().String()[:8],
		webhookURL:      webhookURL,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		statuses:        make(map[string]DeliveryStatus),
	}
}

// simulateDelivery simulates handing the message to WhatsApp
func (m *MockProvider) simulateDelivery(req *SendMessageRequest) *SendMessageResponse {
	delay := m.randomDelay()
	time.Sleep(delay)

	response := &SendMessageResponse{
		MessageID:   req.MessageID,
		ProviderID:  m.providerID,
		ProcessedAt: time.Now(),
	}

	interactive := len(req.Buttons) > 0 || len(req.ListRows) > 0

	switch {
	case interactive && !m.interactiveSucceeds():
		// Interactive templates are rejected far more often than plain
		// text on the real API; this forces callers to fall back.
		response.Status = StatusFailed
		response.ErrorMsg = "interactive message rejected: template not approved"

		log.Warn().
			Str("message_id", req.MessageID).
			Str("to", req.To).
			Int("buttons", len(req.Buttons)).
			Int("list_rows", len(req.ListRows)).
			Msg("Interactive message rejected")
	case m.shouldSucceed():
		now := time.Now()
		response.Status = StatusSent
		response.DeliveredAt = &now

		log.Info().
			Str("message_id", req.MessageID).
			Str("to", req.To).
			Dur("delay", delay).
			Msg("Message delivered")
	default:
		response.Status = StatusFailed
		response.ErrorMsg = m.randomError()

		log.Warn().
			Str("message_id", req.MessageID).
			Str("to", req.To).
			Str("error", response.ErrorMsg).
			Msg("Message delivery failed")
	}

	m.mu.Lock()
	m.statuses[req.MessageID] = response.Status
	m.mu.Unlock()

	return response
}

func (m *MockProvider) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockProvider) shouldSucceed() bool {
	return m.rng.Float64() < m.deliveryRate
}

func (m *MockProvider) interactiveSucceeds() bool {
	return m.rng.Float64() < m.interactiveRate
}

func (m *MockProvider) randomError() string {
	errs := []string{
		"recipient not on whatsapp",
		"recipient blocked the sender",
		"rate limit exceeded",
		"network timeout at provider",
		"message content rejected",
	}
	return errs[m.rng.Intn(len(errs))]
}

// forwardInbound posts a customer message to the bot's webhook the way the
// real provider does, form-encoded.
func (m *MockProvider) forwardInbound(req *SimulateInboundRequest) error {
	form := url.Values{}
	form.Set("From", req.From)
	form.Set("To", req.To)
	form.Set("Body", req.Body)
	form.Set("ButtonPayload", req.ButtonPayload)

	resp, err := http.PostForm(m.webhookURL, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook answered %d", resp.StatusCode)
	}
	return nil
}

// Handler struct holds the mock provider and routes
type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

// SendMessage handles outbound message requests from the bot gateway
func (h *Handler) SendMessage(c *gin.Context) {
	if !hasBasicAuth(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing or malformed Authorization header",
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("message_id", req.MessageID).
		Str("from", req.From).
		Str("to", req.To).
		Msg("Received send request")

	response := h.provider.simulateDelivery(&req)

	statusCode := http.StatusOK
	if response.Status == StatusFailed {
		statusCode = http.StatusAccepted // 202: accepted but failed delivery
	}

	c.JSON(statusCode, response)
}

// GetStatus handles delivery status check requests
func (h *Handler) GetStatus(c *gin.Context) {
	messageID := c.Param("message_id")

	if messageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "message_id is required",
		})
		return
	}

	h.provider.mu.Lock()
	status, ok := h.provider.statuses[messageID]
	h.provider.mu.Unlock()

	if !ok {
		status = StatusPending
	}

	c.JSON(http.StatusOK, gin.H{
		"message_id":  messageID,
		"status":      status,
		"provider_id": h.provider.providerID,
	})
}

// SimulateInbound plays a customer message into the bot webhook
func (h *Handler) SimulateInbound(c *gin.Context) {
	if h.provider.webhookURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "WEBHOOK_URL is not configured",
		})
		return
	}

	var req SimulateInboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.provider.forwardInbound(&req); err != nil {
		log.Error().Err(err).Str("from", req.From).Msg("Failed to forward inbound message")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
		})
		return
	}

	log.Info().
		Str("from", req.From).
		Str("to", req.To).
		Msg("Inbound message forwarded to webhook")

	c.JSON(http.StatusOK, gin.H{"status": "forwarded"})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		ProviderID:   h.provider.providerID,
		Timestamp:    time.Now(),
		DeliveryRate: h.provider.deliveryRate,
	})
}

// UpdateConfig allows changing provider behavior at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate    *float64 `json:"delivery_rate"`
		InteractiveRate *float64 `json:"interactive_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.DeliveryRate != nil && *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
		h.provider.deliveryRate = *config.DeliveryRate
		log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
	}
	if config.InteractiveRate != nil && *config.InteractiveRate >= 0 && *config.InteractiveRate <= 1.0 {
		h.provider.interactiveRate = *config.InteractiveRate
		log.Info().Float64("rate", *config.InteractiveRate).Msg("Updated interactive rate")
	}

	c.JSON(http.StatusOK, gin.H{
		"delivery_rate":    h.provider.deliveryRate,
		"interactive_rate": h.provider.interactiveRate,
	})
}

func hasBasicAuth(c *gin.Context) bool {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return false
	}
	return strings.Contains(string(raw), ":")
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/messages", handler.SendMessage)
		v1.GET("/messages/:message_id/status", handler.GetStatus)
	}

	sim := router.Group("/simulate")
	{
		sim.POST("/inbound", handler.SimulateInbound)
	}

	router.GET("/health", handler.HealthCheck)
	router.PUT("/config", handler.UpdateConfig)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8081")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 1)
	interactiveRate := getEnvFloat("INTERACTIVE_RATE", 0.9)
	minDelay := getEnvDuration("MIN_DELAY", 100*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 800*time.Millisecond)
	webhookURL := getEnv("WEBHOOK_URL", "")

	log.Info().
		Str("port", port).
		Float64("delivery_rate", deliveryRate).
		Float64("interactive_rate", interactiveRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Str("webhook_url", webhookURL).
		Msg("Starting Mock WhatsApp Provider")

	provider := NewMockProvider(deliveryRate, interactiveRate, minDelay, maxDelay, webhookURL)
	handler := NewHandler(provider)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
