package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zapshop/commerce-bot/internal/alerts"
	"github.com/zapshop/commerce-bot/internal/bot"
	"github.com/zapshop/commerce-bot/internal/config"
	gateway "github.com/zapshop/commerce-bot/internal/gateways"
	"github.com/zapshop/commerce-bot/internal/handlers"
	"github.com/zapshop/commerce-bot/internal/repository"
	"github.com/zapshop/commerce-bot/internal/services"
	xhttp "github.com/zapshop/commerce-bot/pkg/http"
	"github.com/zapshop/commerce-bot/pkg/logger"
	"github.com/zapshop/commerce-bot/pkg/pg"
	"github.com/zapshop/commerce-bot/pkg/prom"
	"github.com/zapshop/commerce-bot/pkg/redis"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 30))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	if config.Get().AppDebugMetricsAddr != "" {
		go func() {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, "/metrics")
		}()
	}

	whatsapp, err := gateway.NewWhatsAppClient(&gateway.WhatsAppConfig{
		BaseURL:         config.Get().GatewayBaseUrl,
		MasterSID:       config.Get().GatewayMasterSID,
		MasterToken:     config.Get().GatewayMasterToken,
		Timeout:         config.Get().GatewayTimeout,
		MaxRetries:      config.Get().GatewayMaxRetries,
		MaxConns:        512,
		ReadBufferSize:  1024 * 16,
		WriteBufferSize: 1024 * 16,
	})
	if err != nil {
		logger.Error("failed creating whatsapp client", "error", err)
		return
	}

	// repositories
	tenantRepo := repository.NewTenantRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	convRepo := repository.NewConversationRepository(db)
	botConfigRepo := repository.NewBotConfigRepository(db)

	// services
	tenantService := services.NewTenantService(tenantRepo, botConfigRepo)
	productService := services.NewProductService(productRepo)
	catalogService := services.NewCatalogService(productRepo)
	cartService := services.NewCartService(orderRepo, productRepo)
	handoffService := services.NewHandoffService(orderRepo)
	botConfigService := services.NewBotConfigService(botConfigRepo, tenantRepo, redisAdap)
	conversationService := services.NewConversationService(convRepo, tenantRepo, whatsapp, handoffService)
	saleService := services.NewSaleService(orderRepo)
	healthService := services.NewHealthService(db)

	// bot pipeline
	var ai *gateway.AIClient
	if config.Get().OpenAIAPIKey != "" {
		ai, err = gateway.NewAIClient(&gateway.AIConfig{
			BaseURL:   config.Get().OpenAIBaseUrl,
			APIKey:    config.Get().OpenAIAPIKey,
			Model:     config.Get().OpenAIModel,
			MaxTokens: config.Get().OpenAIMaxTokens,
		})
		if err != nil {
			logger.Error("failed creating ai client", "error", err)
			return
		}
	}

	var classifier bot.Classifier = bot.NewKeywordClassifier()
	if config.Get().BotClassifier == "llm" && ai != nil {
		classifier = bot.NewLLMClassifier(ai)
	}

	opts := bot.ProcessorOptions{
		TestMode:        config.Get().TestModeEnabled,
		DeveloperNumber: config.Get().DeveloperWhatsAppNumber,
	}
	if ai != nil {
		opts.Assistant = bot.NewAssistant(ai)
	}
	alertPublisher, err := alerts.NewPublisher(redisAdap, config.Get().AlertConsumerName)
	if err != nil {
		logger.Error("failed creating alert publisher", "error", err)
	} else {
		opts.Alerts = alertPublisher
	}

	processor := bot.NewProcessor(
		tenantService,
		cartService,
		catalogService,
		handoffService,
		botConfigService,
		conversationService,
		whatsapp,
		classifier,
		opts,
	)

	// handlers
	webhookHandler := handlers.NewWebhookHandler(processor)
	productHandler := handlers.NewProductHandler(productService)
	conversationHandler := handlers.NewConversationHandler(conversationService, handoffService)
	saleHandler := handlers.NewSaleHandler(saleService)
	botConfigHandler := handlers.NewBotConfigHandler(botConfigService)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	healthHandler := handlers.NewHealthHandler(healthService)

	root := s.Router.Group("")
	handlers.RegisterWebhookRoutes(root, webhookHandler)

	g := s.Router.Group("/api/v1")
	handlers.RegisterProductRoutes(g, productHandler)
	handlers.RegisterConversationRoutes(g, conversationHandler)
	handlers.RegisterSaleRoutes(g, saleHandler)
	handlers.RegisterBotConfigRoutes(g, botConfigHandler)
	handlers.RegisterTenantRoutes(g, tenantHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
