// Package pubsub implements messaging.Publisher on a Google Pub/Sub topic.
package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/geofield/satextract/service"
)

// Publisher publishes on a pubsub topic
type Publisher struct {
	topic *pubsub.Topic
}

// NewPublisher creates a Publisher on the given topic
func NewPublisher(ctx context.Context, projectID, topic string) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewPublisher.NewClient: %w", err)
	}
	t := client.Topic(topic)
	if ok, err := t.Exists(ctx); err != nil {
		return nil, fmt.Errorf("NewPublisher.Exists: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("NewPublisher: topic %s/%s does not exist", projectID, topic)
	}
	return &Publisher{topic: t}, nil
}

// Publish implements messaging.Publisher. All messages are submitted before
// waiting; failures are merged into one error.
func (p *Publisher) Publish(ctx context.Context, data ...[]byte) error {
	results := make([]*pubsub.PublishResult, len(data))
	for i, d := range data {
		results[i] = p.topic.Publish(ctx, &pubsub.Message{Data: d})
	}
	var err error
	for _, res := range results {
		if _, rerr := res.Get(ctx); rerr != nil {
			err = service.MergeErrors(true, err, fmt.Errorf("Publish: %w", rerr))
		}
	}
	return err
}

// Stop flushes the pending messages
func (p *Publisher) Stop() {
	p.topic.Stop()
}
