// Package e2e composes the suite's building blocks into per-test fixtures and
// holds the end-to-end specs for the orders service.
package e2e

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	"github.com/anithaparamashivam/oas-e2e/clients"
	"github.com/anithaparamashivam/oas-e2e/common/logger"
	"github.com/anithaparamashivam/oas-e2e/config"
	"github.com/anithaparamashivam/oas-e2e/fixtures"
	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
	"github.com/anithaparamashivam/oas-e2e/schema"
)

// AssembledOrderSchemaID identifies the enriched order schema in the registry.
const AssembledOrderSchemaID = "assembled-order"

// tokenSubject is the subject of bearer tokens minted from API_JWT_SECRET.
const tokenSubject = "oas-e2e"

// Environment holds what is built once per suite run.
type Environment struct {
	Config   *config.Config
	AWS      sdkaws.Config
	Logger   *zap.Logger
	Metrics  *aws_pkg.MetricsClient
	Source   fixtures.Source
	Registry *schema.Registry

	bearerToken string
}

// Fixture is the set of collaborators handed to a single test.
type Fixture struct {
	API     *clients.APIClient
	Queue   *aws_pkg.QueueClient
	Data    *fixtures.TestData
	Schemas *schema.Registry
	Logger  *zap.Logger
}

// Bootstrap prepares logging, AWS access, fixture loading and the schema registry.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Environment, error) {
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	log, err := buildLogger(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	if cfg.UseSecrets {
		if err := cfg.ApplySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg)); err != nil {
			log.Warn("Secrets Manager overlay failed, using environment", zap.Error(err))
		}
	}

	var reader fixtures.ObjectReader
	if cfg.FixturesBucket != "" {
		reader = aws_pkg.NewObjectReader(aws_pkg.NewS3Client(awsCfg))
	}
	source := fixtures.SelectSource(cfg.FixturesDir, cfg.FixturesBucket, cfg.FixturesPrefix, reader)

	registry := schema.NewRegistry()
	doc, err := fixtures.NewTestData(source).LoadAssembledOrderSchema(ctx)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(AssembledOrderSchemaID, doc); err != nil {
		return nil, err
	}

	env := &Environment{
		Config:   cfg,
		AWS:      awsCfg,
		Logger:   log,
		Metrics:  aws_pkg.NewMetricsClient(awsCfg),
		Source:   source,
		Registry: registry,
	}

	switch {
	case cfg.APIAuthToken != "":
		env.bearerToken = cfg.APIAuthToken
	case cfg.APIJWTSecret != "":
		token, err := clients.NewBearerToken(cfg.APIJWTSecret, tokenSubject, time.Hour)
		if err != nil {
			return nil, err
		}
		env.bearerToken = token
	}

	log.Info("E2E environment ready",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Duration("api_timeout", cfg.APITimeout),
		zap.String("aws_endpoint", cfg.AWS.Endpoint),
		zap.Bool("remote", cfg.RunRemote),
	)
	return env, nil
}

func buildLogger(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config) (*zap.Logger, error) {
	if !cfg.CloudWatchEnabled {
		return logger.Build(cfg.Env, nil)
	}
	cw, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, "e2e")
	if err != nil {
		return nil, fmt.Errorf("failed to set up CloudWatch logs: %w", err)
	}
	return logger.Build(cfg.Env, cw)
}

// NewFixture returns fresh clients and test data sharing the suite's registry.
func (e *Environment) NewFixture() *Fixture {
	cfg := e.Config
	return &Fixture{
		API: clients.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout,
			clients.WithLogger(e.Logger),
			clients.WithMetrics(e.Metrics),
			clients.WithBearerToken(e.bearerToken),
		),
		Queue: aws_pkg.NewQueueClient(e.AWS,
			aws_pkg.WithQueueLogger(e.Logger),
			aws_pkg.WithWaitTime(cfg.QueueWaitSeconds),
			aws_pkg.WithQueueMetrics(e.Metrics),
		),
		Data:    fixtures.NewTestData(e.Source),
		Schemas: e.Registry,
		Logger:  e.Logger,
	}
}

// QueueAdmin is the subset of *aws_pkg.QueueClient needed to clean and drain queues.
type QueueAdmin interface {
	GetQueueURL(ctx context.Context, queueName string) (string, error)
	PurgeQueue(ctx context.Context, queueURL string) error
	ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32) ([]aws_pkg.QueueMessage, error)
}

// CleanQueues purges every named queue. Failures are logged and ignored.
func (f *Fixture) CleanQueues(ctx context.Context, queueNames ...string) {
	cleanQueues(ctx, f.Queue, f.Logger, queueNames...)
}

// CollectMessages receives from queueURL until n messages arrived or a receive
// comes back empty.
func (f *Fixture) CollectMessages(ctx context.Context, queueURL string, n int) ([]aws_pkg.QueueMessage, error) {
	return collectMessages(ctx, f.Queue, queueURL, n)
}

func cleanQueues(ctx context.Context, q QueueAdmin, log *zap.Logger, queueNames ...string) {
	for _, name := range queueNames {
		url, err := q.GetQueueURL(ctx, name)
		if err != nil {
			log.Warn("Skipping purge, queue not resolved", zap.String("queue", name), zap.Error(err))
			continue
		}
		if err := q.PurgeQueue(ctx, url); err != nil {
			log.Warn("Queue purge failed", zap.String("queue", name), zap.Error(err))
		}
	}
}

func collectMessages(ctx context.Context, q QueueAdmin, queueURL string, n int) ([]aws_pkg.QueueMessage, error) {
	var out []aws_pkg.QueueMessage
	for len(out) < n {
		batch := n - len(out)
		if batch > 10 {
			batch = 10
		}
		msgs, err := q.ReceiveMessages(ctx, queueURL, int32(batch))
		if err != nil {
			return out, err
		}
		if len(msgs) == 0 {
			break
		}
		out = append(out, msgs...)
	}
	return out, nil
}
