package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/zapshop/commerce-bot/pkg/logger"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every runtime setting. Only this struct is read for
// configuration; no direct env access elsewhere.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"commerce_bot"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`
	AppBaseUrl          string `env:"APP_BASE_URL"`

	HttpListenAddr            string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpBaseRequestUrl        string `env:"HTTP_BASE_REQUEST_URI" validation:"mustExists"`
	HttpServerReadTimeout     int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout    int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`
	HttpServerReadBufferSize  int    `env:"HTTP_SERVER_READ_BUFFER_SIZE"`
	HttpServerWriteBufferSize int    `env:"HTTP_SERVER_WRITE_BUFFER_SIZE"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	ProfilerEnable bool `env:"PROFILER_ENABLE"`
	ProfilerPort   int  `env:"PROFILER_PORT"`

	LogLevel []string `env:"LOG_LEVEL"`

	AlertConsumerName      string        `env:"ALERT_CONSUMER_NAME"`
	AlertMaxRetries        int           `env:"ALERT_MAX_RETRIES"`
	AlertVisibilityTimeout time.Duration `env:"ALERT_VISIBILITY_TIMEOUT"`
	AlertWorkers           int           `env:"ALERT_WORKERS" default:"4"`

	// WhatsApp provider API.
	GatewayBaseUrl     string        `env:"GATEWAY_BASE_URL"`
	GatewayMasterSID   string        `env:"GATEWAY_MASTER_SID"`
	GatewayMasterToken string        `env:"GATEWAY_MASTER_TOKEN"`
	GatewayTimeout     time.Duration `env:"GATEWAY_TIMEOUT" default:"10s"`
	GatewayMaxRetries  int           `env:"GATEWAY_MAX_RETRIES" default:"2"`

	// AI assistant. Empty key disables the assistant and the llm classifier.
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseUrl   string `env:"OPENAI_BASE_URL"`
	OpenAIModel     string `env:"OPENAI_MODEL"`
	OpenAIMaxTokens int    `env:"OPENAI_MAX_TOKENS"`

	// BotClassifier selects the intent router: "keyword" or "llm".
	BotClassifier string `env:"BOT_CLASSIFIER" default:"keyword"`

	// TestMode restricts the bot to the developer's number.
	TestModeEnabled         bool   `env:"TEST_MODE_ENABLED"`
	DeveloperWhatsAppNumber string `env:"DEVELOPER_WHATSAPP_NUMBER"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
