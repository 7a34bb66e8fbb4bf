package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// DefaultWaitTimeSeconds is how long a receive long-polls before returning empty.
const DefaultWaitTimeSeconds int32 = 5

// SQSAPI is the subset of *sqs.Client used by QueueClient.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	PurgeQueue(ctx context.Context, params *sqs.PurgeQueueInput, optFns ...func(*sqs.Options)) (*sqs.PurgeQueueOutput, error)
}

// QueueMessage is a received SQS message.
type QueueMessage struct {
	MessageID     string
	ReceiptHandle string
	Body          string
	Attributes    map[string]string
}

// Decode unmarshals the message body into out. Bodies delivered through an SNS
// subscription are unwrapped from their notification envelope first.
func (m QueueMessage) Decode(out any) error {
	body := m.Body

	var envelope struct {
		Type    string `json:"Type"`
		Message string `json:"Message"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Type == "Notification" && envelope.Message != "" {
		body = envelope.Message
	}

	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("failed to decode message %s: %w", m.MessageID, err)
	}
	return nil
}

// QueueClient wraps the SQS operations the suite needs.
type QueueClient struct {
	api      SQSAPI
	waitTime int32
	logger   *zap.Logger
	metrics  Recorder
}

// QueueOption configures a QueueClient.
type QueueOption func(*QueueClient)

// WithQueueLogger sets the logger used for best-effort failures.
func WithQueueLogger(l *zap.Logger) QueueOption {
	return func(c *QueueClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWaitTime sets the receive long-poll window in seconds (0..20).
func WithWaitTime(seconds int32) QueueOption {
	return func(c *QueueClient) {
		if seconds >= 0 && seconds <= 20 {
			c.waitTime = seconds
		}
	}
}

// WithQueueMetrics records message counts through r.
func WithQueueMetrics(r Recorder) QueueOption {
	return func(c *QueueClient) { c.metrics = r }
}

// NewQueueClient creates a QueueClient from an AWS config.
func NewQueueClient(cfg aws.Config, opts ...QueueOption) *QueueClient {
	return NewQueueClientWithAPI(sqs.NewFromConfig(cfg), opts...)
}

// NewQueueClientWithAPI creates a QueueClient over any SQSAPI implementation.
func NewQueueClientWithAPI(api SQSAPI, opts ...QueueOption) *QueueClient {
	c := &QueueClient{
		api:      api,
		waitTime: DefaultWaitTimeSeconds,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetQueueURL retrieves the URL for a queue name
func (c *QueueClient) GetQueueURL(ctx context.Context, queueName string) (string, error) {
	result, err := c.api.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(queueName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL for %s: %w", queueName, err)
	}
	return aws.ToString(result.QueueUrl), nil
}

// CreateQueue creates queueName (a no-op if it already exists) and returns its URL.
func (c *QueueClient) CreateQueue(ctx context.Context, queueName string) (string, error) {
	result, err := c.api.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String(queueName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create queue %s: %w", queueName, err)
	}
	return aws.ToString(result.QueueUrl), nil
}

// GetQueueARN returns the ARN of the queue at queueURL.
func (c *QueueClient) GetQueueARN(ctx context.Context, queueURL string) (string, error) {
	result, err := c.api.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get queue attributes: %w", err)
	}
	arn := result.Attributes[string(types.QueueAttributeNameQueueArn)]
	if arn == "" {
		return "", fmt.Errorf("queue %s has no ARN attribute", queueURL)
	}
	return arn, nil
}

// SendMessage JSON-encodes body and sends it, returning the message ID.
// Strings and byte slices are sent as-is.
func (c *QueueClient) SendMessage(ctx context.Context, queueURL string, body any) (string, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return "", err
	}

	result, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(payload),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	c.count(ctx, MetricQueueMessagesSent, queueURL)
	return aws.ToString(result.MessageId), nil
}

// ReceiveMessages waits up to the configured window for at most maxMessages
// messages. No messages is an empty slice, not an error. Messages missing an
// ID, receipt handle or body are dropped.
func (c *QueueClient) ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32) ([]QueueMessage, error) {
	if maxMessages < 1 {
		maxMessages = 1
	}
	if maxMessages > 10 {
		maxMessages = 10
	}

	result, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(queueURL),
		MaxNumberOfMessages:         maxMessages,
		WaitTimeSeconds:             c.waitTime,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameAll},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]QueueMessage, 0, len(result.Messages))
	for _, msg := range result.Messages {
		if msg.MessageId == nil || msg.ReceiptHandle == nil || msg.Body == nil {
			c.logger.Debug("dropping malformed message", zap.String("queue_url", queueURL))
			continue
		}
		messages = append(messages, QueueMessage{
			MessageID:     *msg.MessageId,
			ReceiptHandle: *msg.ReceiptHandle,
			Body:          *msg.Body,
			Attributes:    msg.Attributes,
		})
	}
	if len(messages) > 0 {
		c.count(ctx, MetricQueueMessagesReceived, queueURL)
	}
	return messages, nil
}

// DeleteMessage deletes a received message. Failures are logged and returned so
// cleanup code can choose to ignore them.
func (c *QueueClient) DeleteMessage(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		c.logger.Warn("failed to delete message", zap.String("queue_url", queueURL), zap.Error(err))
		return fmt.Errorf("failed to delete message: %w", err)
	}
	c.logger.Debug("message deleted", zap.String("queue_url", queueURL))
	return nil
}

// PurgeQueue removes every message from the queue.
func (c *QueueClient) PurgeQueue(ctx context.Context, queueURL string) error {
	if _, err := c.api.PurgeQueue(ctx, &sqs.PurgeQueueInput{QueueUrl: aws.String(queueURL)}); err != nil {
		return fmt.Errorf("failed to purge queue %s: %w", queueURL, err)
	}
	return nil
}

func (c *QueueClient) count(ctx context.Context, metric, queueURL string) {
	if c.metrics == nil {
		return
	}
	if err := c.metrics.RecordCount(ctx, metric, map[string]string{"Queue": queueURL}); err != nil {
		c.logger.Debug("failed to record queue metric", zap.String("metric", metric), zap.Error(err))
	}
}

func encodeBody(body any) (string, error) {
	switch v := body.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode message body: %w", err)
	}
	return string(b), nil
}
