package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher is a minimal interface for publishing messages to SNS.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

// SNSAPI is the subset of *sns.Client used by SNSClient.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	CreateTopic(ctx context.Context, params *sns.CreateTopicInput, optFns ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
}

type SNSClient struct {
	client SNSAPI
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

func NewSNSClientWithAPI(api SNSAPI) *SNSClient {
	return &SNSClient{client: api}
}

// Publish publishes a raw message to the given SNS topic ARN.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(topicArn),
		Message:  sdkaws.String(string(message)),
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}

// CreateTopic creates (or looks up) a topic by name and returns its ARN.
func (s *SNSClient) CreateTopic(ctx context.Context, name string) (string, error) {
	out, err := s.client.CreateTopic(ctx, &sns.CreateTopicInput{Name: sdkaws.String(name)})
	if err != nil {
		return "", fmt.Errorf("failed to create topic %s: %w", name, err)
	}
	return sdkaws.ToString(out.TopicArn), nil
}

// SubscribeQueue subscribes an SQS queue to the topic and returns the subscription ARN.
func (s *SNSClient) SubscribeQueue(ctx context.Context, topicArn, queueArn string) (string, error) {
	out, err := s.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: sdkaws.String(topicArn),
		Protocol: sdkaws.String("sqs"),
		Endpoint: sdkaws.String(queueArn),
	})
	if err != nil {
		return "", fmt.Errorf("failed to subscribe %s to %s: %w", queueArn, topicArn, err)
	}
	return sdkaws.ToString(out.SubscriptionArn), nil
}
