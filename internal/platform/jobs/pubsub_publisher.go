package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/voterlens/polisync/internal/services"
)

// PubSubRunPublisher announces completed sync runs on a Pub/Sub topic.
type PubSubRunPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubRunPublisher constructs a Pub/Sub backed run event publisher.
func NewPubSubRunPublisher(topic *pubsub.Topic) (*PubSubRunPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub run publisher: topic is required")
	}
	return &PubSubRunPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishRunCompleted enqueues a run-completed message on the configured topic.
func (p *PubSubRunPublisher) PublishRunCompleted(ctx context.Context, message services.RunCompletedMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub run publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal run event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "runId", message.RunID)
	setAttr(attrs, "rows", strconv.Itoa(message.Rows))
	setAttr(attrs, "politicians", strconv.Itoa(message.Politicians))

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish run event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
