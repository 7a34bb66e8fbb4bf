package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anithaparamashivam/oas-e2e/config"
)

type fakeQueues struct {
	created []string
	err     error
}

func (f *fakeQueues) CreateQueue(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, name)
	return "http://localhost:4566/000000000000/" + name, nil
}

func (f *fakeQueues) GetQueueARN(_ context.Context, url string) (string, error) {
	return "arn:aws:sqs:us-east-1:000000000000:" + url[len("http://localhost:4566/000000000000/"):], nil
}

type fakeTopics struct {
	topic    string
	topicArn string
	queueArn string
}

func (f *fakeTopics) CreateTopic(_ context.Context, name string) (string, error) {
	f.topic = name
	return "arn:aws:sns:us-east-1:000000000000:" + name, nil
}

func (f *fakeTopics) SubscribeQueue(_ context.Context, topicArn, queueArn string) (string, error) {
	f.topicArn = topicArn
	f.queueArn = queueArn
	return topicArn + ":sub-1", nil
}

func TestRun_CreatesQueues(t *testing.T) {
	cfg := &config.Config{OrdersQueue: "orders-queue", EnrichmentQueue: "enrichment-queue"}
	queues := &fakeQueues{}
	topics := &fakeTopics{}

	require.NoError(t, run(context.Background(), cfg, queues, topics))
	assert.Equal(t, []string{"orders-queue", "enrichment-queue"}, queues.created)
	assert.Empty(t, topics.topic)
}

func TestRun_CreatesStubEventsQueue(t *testing.T) {
	cfg := &config.Config{OrdersQueue: "orders-queue", EnrichmentQueue: "enrichment-queue", StubEventsQueue: "order-events-queue"}
	queues := &fakeQueues{}

	require.NoError(t, run(context.Background(), cfg, queues, &fakeTopics{}))
	assert.Equal(t, []string{"orders-queue", "enrichment-queue", "order-events-queue"}, queues.created)

	cfg.StubEventsQueue = "orders-queue"
	queues = &fakeQueues{}
	require.NoError(t, run(context.Background(), cfg, queues, &fakeTopics{}))
	assert.Equal(t, []string{"orders-queue", "enrichment-queue"}, queues.created)
}

func TestRun_SubscribesOrdersQueueToTopic(t *testing.T) {
	cfg := &config.Config{OrdersQueue: "orders-queue", EnrichmentQueue: "enrichment-queue", OrderEventsTopic: "order-events"}
	topics := &fakeTopics{}

	require.NoError(t, run(context.Background(), cfg, &fakeQueues{}, topics))
	assert.Equal(t, "order-events", topics.topic)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:order-events", topics.topicArn)
	assert.Equal(t, "arn:aws:sqs:us-east-1:000000000000:orders-queue", topics.queueArn)
}

func TestRun_PropagatesErrors(t *testing.T) {
	cfg := &config.Config{OrdersQueue: "orders-queue", EnrichmentQueue: "enrichment-queue"}
	err := run(context.Background(), cfg, &fakeQueues{err: errors.New("boom")}, &fakeTopics{})
	assert.EqualError(t, err, "boom")
}
