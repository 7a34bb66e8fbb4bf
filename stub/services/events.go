package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
	"github.com/anithaparamashivam/oas-e2e/stub/models"
)

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

// MessageSender is implemented by *aws_pkg.QueueClient.
type MessageSender interface {
	SendMessage(ctx context.Context, queueURL string, body any) (string, error)
}

// QueuePublisher sends events straight to an SQS queue.
type QueuePublisher struct {
	sender   MessageSender
	queueURL string
}

func NewQueuePublisher(sender MessageSender, queueURL string) *QueuePublisher {
	return &QueuePublisher{sender: sender, queueURL: queueURL}
}

func (p *QueuePublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	if _, err := p.sender.SendMessage(ctx, p.queueURL, event); err != nil {
		return fmt.Errorf("failed to send %s event: %w", event.Type, err)
	}
	return nil
}

// TopicPublisher publishes events to an SNS topic.
type TopicPublisher struct {
	sns      aws_pkg.SNSPublisher
	topicArn string
}

func NewTopicPublisher(sns aws_pkg.SNSPublisher, topicArn string) *TopicPublisher {
	return &TopicPublisher{sns: sns, topicArn: topicArn}
}

func (p *TopicPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	if err := p.sns.Publish(ctx, p.topicArn, b); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// MultiPublisher fans an event out to every publisher and joins their errors.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
