package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Settings are the connection details for AWS or LocalStack.
type Settings struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides every service endpoint (LocalStack edge port).
	Endpoint string
}

// SettingsFromEnv reads AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SQS_ENDPOINT, falling back to LocalStack defaults.
func SettingsFromEnv() Settings {
	endpoint := os.Getenv("AWS_SQS_ENDPOINT")
	if endpoint == "" {
		endpoint = os.Getenv("AWS_ENDPOINT")
	}
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}
	return Settings{
		Region:          envOr("AWS_REGION", "us-east-1"),
		AccessKeyID:     envOr("AWS_ACCESS_KEY_ID", "test"),
		SecretAccessKey: envOr("AWS_SECRET_ACCESS_KEY", "test"),
		Endpoint:        endpoint,
	}
}

// LoadAWSConfig loads an SDK config from s. When s.Endpoint is set every client
// built from the config targets that URL instead of AWS.
func LoadAWSConfig(ctx context.Context, s Settings) (sdkaws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if s.Endpoint != "" {
		cfg.BaseEndpoint = sdkaws.String(s.Endpoint)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
