package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pneumalabs/sermon-pages/internal/sermon/model"
)

const (
	RoutingKeyReady  = "sermon.ready"
	RoutingKeyFailed = "sermon.failed"
)

// Broker is the publish surface the lifecycle publisher needs from the
// message broker client.
type Broker interface {
	PublishWithRetry(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// Event is the envelope for sermon lifecycle notifications. Consumers
// fan these out to email digests and cache invalidation.
type Event struct {
	EventType  string    `json:"event_type"`
	SermonID   string    `json:"sermon_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title,omitempty"`
	PageURL    string    `json:"page_url,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits sermon lifecycle events to the broker.
type Publisher struct {
	broker Broker
}

func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker}
}

// SermonReady publishes a sermon.ready event for a completed sermon.
func (p *Publisher) SermonReady(ctx context.Context, sermon *model.Sermon) error {
	return p.publish(ctx, RoutingKeyReady, Event{
		EventType:  RoutingKeyReady,
		SermonID:   sermon.SermonID,
		UserID:     sermon.UserID,
		Title:      sermon.Title,
		PageURL:    sermon.PageURL,
		Status:     sermon.Status,
		OccurredAt: time.Now().UTC(),
	})
}

// SermonFailed publishes a sermon.failed event.
func (p *Publisher) SermonFailed(ctx context.Context, userID, sermonID string) error {
	return p.publish(ctx, RoutingKeyFailed, Event{
		EventType:  RoutingKeyFailed,
		SermonID:   sermonID,
		UserID:     userID,
		Status:     "failed",
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	if err := p.broker.PublishWithRetry(ctx, routingKey, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", routingKey, err)
	}

	return nil
}
