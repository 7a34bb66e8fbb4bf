package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
)

// Config holds everything the suite, the stub service and the tools read from the environment.
type Config struct {
	Env string

	APIBaseURL   string
	APITimeout   time.Duration
	APIAuthToken string
	APIJWTSecret string

	AWS                 aws_pkg.Settings
	OrdersQueue         string
	EnrichmentQueue     string
	QueueWaitSeconds    int32
	OrderEventsTopicARN string
	OrderEventsTopic    string

	FixturesDir    string
	FixturesBucket string
	FixturesPrefix string

	CloudWatchEnabled bool
	UseSecrets        bool
	SecretName        string

	StubPort        string
	StubSlowDelay   time.Duration
	StubEventsQueue string
	StubRateLimit   float64
	StubCORSOrigins []string
	RunRemote       bool
	RunQueueSpecs   bool
}

// SecretsSource is implemented by *aws_pkg.SecretsClient.
type SecretsSource interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	timeout, err := parseTimeout(getEnv("API_TIMEOUT", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	slowDelay, err := time.ParseDuration(getEnv("STUB_SLOW_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STUB_SLOW_DELAY: %w", err)
	}
	wait, err := strconv.Atoi(getEnv("SQS_WAIT_SECONDS", strconv.Itoa(int(aws_pkg.DefaultWaitTimeSeconds))))
	if err != nil || wait < 0 || wait > 20 {
		return nil, fmt.Errorf("invalid SQS_WAIT_SECONDS %q: must be 0..20", os.Getenv("SQS_WAIT_SECONDS"))
	}
	rateLimit, err := strconv.ParseFloat(getEnv("STUB_RATE_LIMIT", "0"), 64)
	if err != nil || rateLimit < 0 {
		return nil, fmt.Errorf("invalid STUB_RATE_LIMIT %q", os.Getenv("STUB_RATE_LIMIT"))
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		APIBaseURL:          strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3000"), "/"),
		APITimeout:          timeout,
		APIAuthToken:        os.Getenv("API_AUTH_TOKEN"),
		APIJWTSecret:        os.Getenv("API_JWT_SECRET"),
		AWS:                 aws_pkg.SettingsFromEnv(),
		OrdersQueue:         getEnv("SQS_ORDERS_QUEUE", "orders-queue"),
		EnrichmentQueue:     getEnv("SQS_ENRICHMENT_QUEUE", "enrichment-queue"),
		QueueWaitSeconds:    int32(wait),
		OrderEventsTopicARN: os.Getenv("ORDER_SNS_TOPIC_ARN"),
		OrderEventsTopic:    os.Getenv("ORDER_SNS_TOPIC_NAME"),
		FixturesDir:         os.Getenv("FIXTURES_DIR"),
		FixturesBucket:      os.Getenv("FIXTURES_S3_BUCKET"),
		FixturesPrefix:      os.Getenv("FIXTURES_S3_PREFIX"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		UseSecrets:          os.Getenv("AWS_USE_SECRETS") == "true",
		SecretName:          getEnv("E2E_SECRET_NAME", "oas-e2e/API_CREDENTIALS"),
		StubPort:            getEnv("STUB_PORT", "3000"),
		StubSlowDelay:       slowDelay,
		StubEventsQueue:     os.Getenv("STUB_EVENTS_QUEUE"),
		StubRateLimit:       rateLimit,
		StubCORSOrigins:     splitList(os.Getenv("STUB_CORS_ORIGINS")),
		RunRemote:           os.Getenv("RUN_E2E_REMOTE") == "true",
		RunQueueSpecs:       os.Getenv("RUN_LOCALSTACK_INTEGRATION") == "true",
	}

	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive")
	}
	return cfg, nil
}

// ApplySecrets overlays API credentials stored as a JSON secret. Only keys that
// are present and non-empty replace the environment values.
func (c *Config) ApplySecrets(ctx context.Context, secrets SecretsSource) error {
	m, err := secrets.GetSecretMap(ctx, c.SecretName)
	if err != nil {
		return err
	}
	if v := m["API_AUTH_TOKEN"]; v != "" {
		c.APIAuthToken = v
	}
	if v := m["API_JWT_SECRET"]; v != "" {
		c.APIJWTSecret = v
	}
	if v := m["API_BASE_URL"]; v != "" {
		c.APIBaseURL = strings.TrimRight(v, "/")
	}
	return nil
}

// parseTimeout accepts plain milliseconds ("10000") or a Go duration ("10s").
func parseTimeout(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// splitList parses a comma separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
