// Package events publishes campaign change notifications to a Redis stream.
package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"crowdfund-backend/internal/features/campaign/models"
)

const DefaultStream = "crowdfund:events"

// Publisher delivers campaign events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, models.Event) error { return nil }

type streamPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewStreamPublisher appends events to stream with XADD, trimming it to
// roughly maxLen entries. maxLen <= 0 disables trimming.
func NewStreamPublisher(client redis.UniversalClient, stream string, maxLen int64) Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &streamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *streamPublisher) Publish(ctx context.Context, event models.Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: Encode(event),
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Encode flattens an event into stream entry fields.
func Encode(event models.Event) map[string]interface{} {
	return map[string]interface{}{
		"type":        string(event.Type),
		"campaign_id": event.CampaignID,
		"owner_id":    event.OwnerID,
		"donor_id":    event.DonorID,
		"amount":      strconv.FormatInt(event.Amount, 10),
		"raised":      strconv.FormatInt(event.Raised, 10),
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

// Decode parses stream entry fields written by Encode.
func Decode(values map[string]interface{}) (models.Event, error) {
	var event models.Event

	eventType, ok := values["type"].(string)
	if !ok || eventType == "" {
		return event, fmt.Errorf("event without type")
	}
	event.Type = models.EventType(eventType)

	campaignID, ok := values["campaign_id"].(string)
	if !ok || campaignID == "" {
		return event, fmt.Errorf("%s event without campaign_id", eventType)
	}
	event.CampaignID = campaignID

	event.OwnerID, _ = values["owner_id"].(string)
	event.DonorID, _ = values["donor_id"].(string)

	var err error
	if event.Amount, err = parseInt(values, "amount"); err != nil {
		return event, err
	}
	if event.Raised, err = parseInt(values, "raised"); err != nil {
		return event, err
	}
	if s, ok := values["occurred_at"].(string); ok && s != "" {
		if event.OccurredAt, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return event, fmt.Errorf("invalid occurred_at: %w", err)
		}
	}
	return event, nil
}

func parseInt(values map[string]interface{}, field string) (int64, error) {
	s, ok := values[field].(string)
	if !ok || s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	return n, nil
}
