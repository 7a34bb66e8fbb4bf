// Command setup-queues creates the SQS queues used by the e2e suite, including
// STUB_EVENTS_QUEUE when set, and optionally an order-events SNS topic fanned
// out to the orders queue.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/anithaparamashivam/oas-e2e/common/logger"
	"github.com/anithaparamashivam/oas-e2e/config"
	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
	}

	queue := aws_pkg.NewQueueClient(awsCfg, aws_pkg.WithQueueLogger(logger.Log))
	sns := aws_pkg.NewSNSClient(awsCfg)

	if err := run(ctx, cfg, queue, sns); err != nil {
		logger.Log.Fatal("Queue setup failed", zap.Error(err))
	}
}

type queueAdmin interface {
	CreateQueue(ctx context.Context, queueName string) (string, error)
	GetQueueARN(ctx context.Context, queueURL string) (string, error)
}

type topicAdmin interface {
	CreateTopic(ctx context.Context, name string) (string, error)
	SubscribeQueue(ctx context.Context, topicArn, queueArn string) (string, error)
}

func run(ctx context.Context, cfg *config.Config, queues queueAdmin, topics topicAdmin) error {
	names := []string{cfg.OrdersQueue, cfg.EnrichmentQueue}
	if q := cfg.StubEventsQueue; q != "" && q != cfg.OrdersQueue && q != cfg.EnrichmentQueue {
		names = append(names, q)
	}

	var ordersURL string
	for _, name := range names {
		url, err := queues.CreateQueue(ctx, name)
		if err != nil {
			return err
		}
		if name == cfg.OrdersQueue {
			ordersURL = url
		}
		fmt.Printf("queue %s: %s\n", name, url)
	}

	if cfg.OrderEventsTopic == "" {
		return nil
	}

	topicArn, err := topics.CreateTopic(ctx, cfg.OrderEventsTopic)
	if err != nil {
		return err
	}
	queueArn, err := queues.GetQueueARN(ctx, ordersURL)
	if err != nil {
		return err
	}
	subArn, err := topics.SubscribeQueue(ctx, topicArn, queueArn)
	if err != nil {
		return err
	}

	fmt.Printf("topic %s: %s\n", cfg.OrderEventsTopic, topicArn)
	fmt.Printf("subscription: %s\n", subArn)
	fmt.Printf("export ORDER_SNS_TOPIC_ARN=%s\n", topicArn)
	return nil
}
